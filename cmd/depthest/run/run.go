package cmd

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyfeng16/depth-estimator/internal/app"
	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/device"
	"github.com/cyfeng16/depth-estimator/internal/server"
	"github.com/cyfeng16/depth-estimator/tools"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the depth estimation server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", 0, "Port to run the server on")
	flags.String("host", "", "Host to run the server on")
	flags.String("environment", "", "Environment configuration; affects logging and gin mode")
	flags.String("model-id", "", "Default model used for depth estimation")
	flags.StringSlice("warmup-models", []string{}, "Models to download before the server starts")
	flags.String("filesystem-type", "", "Filesystem type: 'local' or 's3'")
	flags.String("public-dir", "", "Path where static files should be served from")
	flags.Bool("launch-worker", true, "Launch the Python inference worker as a subprocess")
	flags.String("worker-cmd", "", "Command that starts the inference worker")
	flags.String("worker-host", "", "Host the inference worker listens on")
	flags.Int("tcp-port", 0, "Port the inference worker listens on")

	flags.String("s3-access-key", "", "S3 access key")
	flags.String("s3-secret-key", "", "S3 secret key")
	flags.String("s3-region-name", "", "S3 region name")
	flags.String("s3-bucket-name", "", "S3 bucket name")
	flags.String("s3-folder", "", "S3 folder")
	flags.String("s3-vanity-url", "", "Public URL for S3 files")
	flags.String("s3-endpoint-url", "", "S3 endpoint URL")

	viper.BindPFlag("port", flags.Lookup("port"))
	viper.BindPFlag("host", flags.Lookup("host"))
	viper.BindPFlag("environment", flags.Lookup("environment"))
	viper.BindPFlag("model_id", flags.Lookup("model-id"))
	viper.BindPFlag("warmup_models", flags.Lookup("warmup-models"))
	viper.BindPFlag("filesystem_type", flags.Lookup("filesystem-type"))
	viper.BindPFlag("public_dir", flags.Lookup("public-dir"))
	viper.BindPFlag("launch_worker", flags.Lookup("launch-worker"))
	viper.BindPFlag("worker_cmd", flags.Lookup("worker-cmd"))
	viper.BindPFlag("worker_host", flags.Lookup("worker-host"))
	viper.BindPFlag("tcp_port", flags.Lookup("tcp-port"))

	viper.BindPFlag("s3.access_key", flags.Lookup("s3-access-key"))
	viper.BindPFlag("s3.secret_key", flags.Lookup("s3-secret-key"))
	viper.BindPFlag("s3.region_name", flags.Lookup("s3-region-name"))
	viper.BindPFlag("s3.bucket_name", flags.Lookup("s3-bucket-name"))
	viper.BindPFlag("s3.folder", flags.Lookup("s3-folder"))
	viper.BindPFlag("s3.vanity_url", flags.Lookup("s3-vanity-url"))
	viper.BindPFlag("s3.endpoint_url", flags.Lookup("s3-endpoint-url"))
}

func runApp(_ *cobra.Command, _ []string) error {
	errc := make(chan error, 2)
	signalc := make(chan os.Signal, 1)

	a, err := app.NewApp(config.GetConfig(),
		app.WithFileStorage(),
		app.WithModelStore(),
		app.WithEstimation(),
	)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	ctx := a.Context()

	device.LogHostInfo(a.Logger)

	if len(cfg.WarmupModels) > 0 {
		a.Logger.Info("Downloading warmup models", zap.Strings("models", cfg.WarmupModels))
		if err := a.Models().DownloadAll(ctx, cfg.WarmupModels); err != nil {
			return err
		}
	}

	srv, serverErrc, err := runServer(a)
	if err != nil {
		return err
	}

	if cfg.LaunchWorker {
		go func() {
			if err := tools.StartPythonWorker(ctx, cfg, a.Models().CacheDir(), a.Logger); err != nil {
				errc <- err
			}
		}()
	}

	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-errc:
		srv.Stop(ctx)
		return err
	case <-signalc:
		srv.Stop(ctx)
		return nil
	}
}

func runServer(a *app.App) (*server.Server, <-chan error, error) {
	srv, err := server.NewServer(a.Config())
	if err != nil {
		return nil, nil, err
	}

	srv.SetupRoutes(a)

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("Server started",
			zap.String("host", a.Config().Host),
			zap.Int("port", a.Config().Port))
		errc <- srv.Start()
	}()

	return srv, errc, nil
}
