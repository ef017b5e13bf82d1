package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/pkg/tcpclient"

	"go.uber.org/zap"
)

// StartPythonWorker launches the Python inference worker and blocks until
// the process exits or ctx is cancelled. The worker command comes from the
// config so a packaged install, a venv, or a plain script all work; host,
// port, and the model cache dir are appended as flags.
func StartPythonWorker(ctx context.Context, cfg *config.Config, cacheDir string, logger *zap.Logger) error {
	argv := strings.Fields(cfg.WorkerCmd)
	if len(argv) == 0 {
		return fmt.Errorf("worker_cmd is empty")
	}

	args := append(argv[1:],
		"--host", cfg.WorkerHost,
		"--port", strconv.Itoa(cfg.TcpPort),
		"--cache", cacheDir,
	)

	cmd := exec.CommandContext(ctx, argv[0], args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open worker stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open worker stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	logger.Info("Starting inference worker",
		zap.String("cmd", cfg.WorkerCmd),
		zap.Int("pid", cmd.Process.Pid))

	workerLog := logger.Named("worker")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		forwardOutput(workerLog, "stdout", stdout)
	}()
	go func() {
		defer wg.Done()
		forwardOutput(workerLog, "stderr", stderr)
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	go waitUntilHealthy(pollCtx, cfg, logger)

	// Pipes must drain before Wait closes them.
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("worker exited: %w", err)
	}

	return nil
}

func forwardOutput(logger *zap.Logger, stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Info(scanner.Text(), zap.String("stream", stream))
	}
}

// waitUntilHealthy polls the worker port until the PING healthcheck
// answers, then logs readiness. The first run downloads model weights, so
// a long silence gets a warning rather than a failure.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	addr := net.JoinHostPort(cfg.WorkerHost, strconv.Itoa(cfg.TcpPort))
	started := time.Now()
	warned := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}

		client, err := tcpclient.Dial(addr, 2*time.Second,
			tcpclient.WithMaxRetries(1), tcpclient.WithLogger(zap.NewNop()))
		if err == nil {
			err = client.HealthCheck()
			client.Close()
		}
		if err == nil {
			logger.Info("Inference worker ready",
				zap.String("addr", addr),
				zap.Duration("took", time.Since(started)))
			return
		}

		if !warned && time.Since(started) > time.Minute {
			logger.Warn("Inference worker not answering yet, model load can take a while",
				zap.String("addr", addr))
			warned = true
		}
	}
}
