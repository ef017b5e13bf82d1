package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cyfeng16/depth-estimator/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

type Server struct {
	listenAddr string
	ginEngine  *gin.Engine
	inner      *http.Server
}

func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(getGinMode(cfg.Environment))
	r := gin.New()

	// Setup logger middleware
	r.Use(logger.SetLogger(
		logger.WithUTC(true),
		logger.WithSkipPath([]string{}),
	))

	// Setup CORS middleware
	r.Use(cors.New(
		cors.Config{
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowOrigins:     []string{"*"},
			AllowHeaders:     []string{"*"},
			ExposeHeaders:    []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		},
	))

	// Files dropped into the public dir shadow the built-in routes.
	r.Use(static.Serve("/", static.LocalFile(cfg.PublicDir, true)))
	r.Use(gin.Recovery())

	listenAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	return &Server{
		listenAddr: listenAddr,
		ginEngine:  r,
		inner: &http.Server{
			Handler: r,
			Addr:    listenAddr,
		},
	}, nil
}

func (s *Server) Start() (err error) {
	if err := s.inner.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	fmt.Println("Stopping server...")

	if err := s.inner.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}

func getGinMode(env string) string {
	switch env {
	case "development":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
