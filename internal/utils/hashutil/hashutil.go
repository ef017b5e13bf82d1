package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Blake3Hash returns the hex-encoded BLAKE3-256 digest of data. Stored
// files are named by this digest so identical content maps to one object.
func Blake3Hash(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
