// Package server exposes the custom resource handler over HTTP for local
// development, so events can be replayed without a Lambda runtime.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
)

type Server struct {
	echo    *echo.Echo
	version string
	commit  string
}

func New(fn cfn.CustomResourceLambdaFunction, version, commit string) *Server {
	e := echo.New()
	e.Use(MetricsMiddleware())

	e.GET("/healthz", Healthz(version, commit))
	e.GET("/metrics", MetricsHandler())
	e.POST("/invoke", Invoke(fn))

	return &Server{echo: e, version: version, commit: commit}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", s.version).Msg("local invoke server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
