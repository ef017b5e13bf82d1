package config

import "errors"

// AppName seeds the port derivation; the service has always answered on
// the port derived from it.
const AppName = "depth_estimator"

const (
	DefaultModelID     = "LiheYoung/depth-anything-large-hf"
	DefaultHost        = "0.0.0.0"
	DefaultHomeDir     = "~/.depth-estimator"
	DefaultEnvironment = "development"
	DefaultWorkerCmd   = "python3 -m depth_estimator_worker"
	DefaultWorkerHost  = "localhost"
)

// TCPPort is the default port the inference worker listens on.
const TCPPort = 8882

// DefaultTcpTimeout is the worker dial timeout in seconds.
const DefaultTcpTimeout = 10

var (
	ErrHomeDirNotSet       = errors.New("home directory is not set")
	ErrHomeDirExpandFailed = errors.New("failed to expand home directory")
)
