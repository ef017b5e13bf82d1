package app

import (
	"context"
	"fmt"

	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/services/depth"
	"github.com/cyfeng16/depth-estimator/internal/services/estimation"
	"github.com/cyfeng16/depth-estimator/internal/services/filestorage"
	"github.com/cyfeng16/depth-estimator/internal/services/fileuploader"
	"github.com/cyfeng16/depth-estimator/internal/services/modelstore"
	"github.com/cyfeng16/depth-estimator/pkg/logger"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc

	filestorage  filestorage.FileStorage
	fileuploader *fileuploader.Uploader
	models       *modelstore.Manager
	estimation   *estimation.Service

	Logger *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(l *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = l
		return nil
	}
}

func WithFileStorage() OptionFunc {
	return func(app *App) error {
		storage, err := filestorage.NewFileStorage(app.Config())
		if err != nil {
			return err
		}

		app.filestorage = storage
		app.fileuploader = fileuploader.NewFileUploader(storage, 10, app.Logger)
		return nil
	}
}

func WithModelStore() OptionFunc {
	return func(app *App) error {
		app.models = modelstore.NewManager(app.Config(), app.Logger)
		return nil
	}
}

func WithEstimation() OptionFunc {
	return func(app *App) error {
		if app.models == nil {
			return fmt.Errorf("estimation requires the model store to be initialized first")
		}

		estimator := depth.NewEstimator(app.Config(), app.models, app.Logger)
		app.estimation = estimation.NewService(estimator, app.Logger)
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	l, err := logger.InitLogger(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		Logger:     l,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize app: %w", err)
		}
	}

	return app, nil
}

func (app *App) Close() {
	app.cancelFunc()

	if app.estimation != nil {
		app.estimation.Stop()
	}
	if app.fileuploader != nil {
		app.fileuploader.Stop()
	}

	app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Storage() filestorage.FileStorage {
	return app.filestorage
}

func (app *App) Uploader() *fileuploader.Uploader {
	return app.fileuploader
}

func (app *App) Models() *modelstore.Manager {
	return app.models
}

func (app *App) Estimation() *estimation.Service {
	return app.estimation
}
