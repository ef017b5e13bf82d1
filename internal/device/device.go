package device

import (
	"runtime"
	"strings"

	"github.com/elastic/go-sysinfo"
	"github.com/jaypipes/ghw"
	"go.uber.org/zap"
)

// Device identifies the compute device the inference worker runs the model
// on. The values are the literal device strings the worker's tensor runtime
// accepts.
type Device string

const (
	// MPS is the Metal backend on Apple silicon.
	MPS Device = "mps"
	// CUDA is the NVIDIA GPU backend.
	CUDA Device = "cuda"
	// CPU is the universal fallback, always available.
	CPU Device = "cpu"
)

func (d Device) String() string {
	return string(d)
}

// Probe hooks, split out so tests can force an environment.
var (
	hasMetal  = detectMetal
	hasNVIDIA = detectNVIDIA
)

// Select probes for hardware acceleration in a fixed preference order:
// Metal, then CUDA, then the CPU fallback. It never fails. The probe is
// cheap and is expected to be re-run on every pipeline construction rather
// than cached.
func Select(logger *zap.Logger) Device {
	d := CPU
	if hasMetal() {
		d = MPS
	} else if hasNVIDIA() {
		d = CUDA
	}

	logger.Info("Using device", zap.String("device", d.String()))
	return d
}

func detectMetal() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

func detectNVIDIA() bool {
	gpu, err := ghw.GPU()
	if err != nil {
		return false
	}

	for _, card := range gpu.GraphicsCards {
		if card.DeviceInfo == nil || card.DeviceInfo.Vendor == nil {
			continue
		}
		if strings.Contains(strings.ToLower(card.DeviceInfo.Vendor.Name), "nvidia") {
			return true
		}
	}

	return false
}

// LogHostInfo reports the host environment once at startup: total RAM and
// any graphics cards the hardware layer enumerates.
func LogHostInfo(logger *zap.Logger) {
	if host, err := sysinfo.Host(); err == nil {
		if mem, err := host.Memory(); err == nil {
			logger.Info("Host memory",
				zap.Uint64("total_mb", mem.Total/1024/1024),
				zap.Uint64("available_mb", mem.Available/1024/1024),
			)
		}
	}

	gpu, err := ghw.GPU()
	if err != nil {
		logger.Info("No GPU information available", zap.Error(err))
		return
	}

	for _, card := range gpu.GraphicsCards {
		if card.DeviceInfo == nil {
			continue
		}

		vendor, product := "unknown", "unknown"
		if card.DeviceInfo.Vendor != nil {
			vendor = card.DeviceInfo.Vendor.Name
		}
		if card.DeviceInfo.Product != nil {
			product = card.DeviceInfo.Product.Name
		}
		logger.Info("Graphics card",
			zap.String("vendor", vendor),
			zap.String("product", product),
		)
	}
}
