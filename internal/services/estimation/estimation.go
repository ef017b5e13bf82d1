package estimation

import (
	"context"
	"fmt"
	"time"

	"github.com/cyfeng16/depth-estimator/internal/depthmap"
	"github.com/cyfeng16/depth-estimator/internal/utils/imageutil"
	"github.com/cyfeng16/depth-estimator/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DepthEstimator is the inference dependency; *depth.Estimator satisfies it.
type DepthEstimator interface {
	Estimate(ctx context.Context, imagePath string) (*depthmap.DepthMap, error)
}

// Outcome is the tagged result of one estimation. Original always carries
// the input path unchanged. On success Depth holds the colorized map as a
// PNG at Width x Height; on failure Err carries the cause and Depth is nil.
// Rendering Err as user-facing text happens at the HTTP edge, not here.
type Outcome struct {
	Original string
	Depth    []byte
	Width    int
	Height   int
	Err      error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Service runs depth estimations one at a time and colorizes the results.
type Service struct {
	estimator DepthEstimator
	queue     *worker.Queue
	logger    *zap.Logger
}

func NewService(estimator DepthEstimator, logger *zap.Logger) *Service {
	return &Service{
		estimator: estimator,
		queue:     worker.NewQueue(),
		logger:    logger.Named("estimation"),
	}
}

// Estimate waits for the estimation slot, runs the estimator on imagePath,
// and renders the resulting depth map through the inferno palette at the
// source image's dimensions. Failures are folded into the Outcome rather
// than returned.
func (s *Service) Estimate(ctx context.Context, imagePath string) Outcome {
	var outcome Outcome
	s.queue.Do(func() {
		outcome = s.estimate(ctx, imagePath)
	})

	return outcome
}

func (s *Service) estimate(ctx context.Context, imagePath string) Outcome {
	outcome := Outcome{Original: imagePath}

	jobID := uuid.NewString()
	started := time.Now()
	s.logger.Info("Estimation started",
		zap.String("job_id", jobID),
		zap.String("image_path", imagePath))

	dm, err := s.estimator.Estimate(ctx, imagePath)
	if err != nil {
		s.logger.Error("Estimation failed",
			zap.String("job_id", jobID),
			zap.Duration("took", time.Since(started)),
			zap.Error(err))
		outcome.Err = err
		return outcome
	}

	s.logger.Info("Estimation finished",
		zap.String("job_id", jobID),
		zap.Int("map_width", dm.Width()),
		zap.Int("map_height", dm.Height()),
		zap.Duration("took", time.Since(started)))

	// Models often predict at a reduced resolution; display at the source
	// image's size when it is readable.
	width, height := dm.Width(), dm.Height()
	if w, h, err := imageutil.DecodeConfigFile(imagePath); err == nil {
		width, height = w, h
	} else {
		s.logger.Warn("Could not read source dimensions, keeping model resolution",
			zap.String("image_path", imagePath), zap.Error(err))
	}

	rendered := depthmap.RenderResized(dm, depthmap.Inferno, width, height)
	encoded, err := imageutil.EncodePNG(rendered)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to encode depth rendering: %w", err)
		return outcome
	}

	outcome.Depth = encoded
	outcome.Width = width
	outcome.Height = height

	return outcome
}

func (s *Service) Stop() {
	s.queue.Stop()
}
