package depth

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/depthmap"
	"github.com/cyfeng16/depth-estimator/internal/device"
	"github.com/cyfeng16/depth-estimator/internal/services/modelstore"
	"github.com/cyfeng16/depth-estimator/pkg/tcpclient"

	"go.uber.org/zap"
)

// sessionFunc runs one estimate exchange: device probe, model ensure,
// worker dial, request/response. It is a field on the Estimator so tests
// can substitute the whole construction path.
type sessionFunc func(ctx context.Context, modelID string, imagePath string) (*depthmap.DepthMap, error)

// Estimator produces a depth map for an image on disk. Each call builds a
// fresh session; nothing is cached between calls, matching the worker's
// per-request pipeline construction.
type Estimator struct {
	cfg     *config.Config
	models  *modelstore.Manager
	logger  *zap.Logger
	session sessionFunc
}

func NewEstimator(cfg *config.Config, models *modelstore.Manager, logger *zap.Logger) *Estimator {
	e := &Estimator{
		cfg:    cfg,
		models: models,
		logger: logger.Named("depth"),
	}
	e.session = e.workerSession

	return e
}

// Estimate validates imagePath, then runs the pretrained pipeline on the
// inference worker. The path check always happens first; a missing file
// never triggers a model download or a worker dial. Failures are returned
// as-is: no retry, no fallback model.
func (e *Estimator) Estimate(ctx context.Context, imagePath string) (*depthmap.DepthMap, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
	}

	dm, err := e.session(ctx, e.cfg.ModelID, imagePath)
	if err != nil {
		e.logger.Error("Estimation failed",
			zap.String("image_path", imagePath),
			zap.String("model_id", e.cfg.ModelID),
			zap.Error(err))
		return nil, err
	}

	return dm, nil
}

func (e *Estimator) workerSession(ctx context.Context, modelID string, imagePath string) (*depthmap.DepthMap, error) {
	dev := device.Select(e.logger)

	if err := e.models.EnsureDownloaded(ctx, modelID); err != nil {
		return nil, fmt.Errorf("failed to prepare model %s: %w", modelID, err)
	}

	address := net.JoinHostPort(e.cfg.WorkerHost, strconv.Itoa(e.cfg.TcpPort))
	client, err := tcpclient.Dial(address, time.Duration(e.cfg.TcpTimeout)*time.Second,
		tcpclient.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("inference worker unreachable: %w", err)
	}
	defer client.Close()

	payload, err := encodeRequest(&Request{
		Op:        opEstimate,
		ModelID:   modelID,
		Device:    dev.String(),
		ImagePath: imagePath,
	})
	if err != nil {
		return nil, err
	}

	if err := client.SendFrame(ctx, payload); err != nil {
		return nil, fmt.Errorf("failed to send estimate request: %w", err)
	}

	// Inference runs to completion once started; the reply read carries no
	// deadline and does not observe the caller going away.
	frame, err := client.ReceiveFrame(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to receive estimate response: %w", err)
	}

	resp, err := decodeResponse(frame)
	if err != nil {
		return nil, err
	}

	if resp.Status != statusOK {
		if resp.Error != "" {
			return nil, fmt.Errorf("worker failed to estimate depth: %s", resp.Error)
		}
		return nil, fmt.Errorf("worker returned status %q", resp.Status)
	}

	return depthmap.New(resp.Width, resp.Height, resp.Depth)
}
