package depth

import "errors"

// ErrImageNotFound marks an estimate request whose image path does not
// exist on disk. The check runs before any model or network work.
var ErrImageNotFound = errors.New("image file not found")
