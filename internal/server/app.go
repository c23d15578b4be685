package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kpi_coach_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// App runs the HTTP server with graceful shutdown.
type App struct {
	srv *http.Server
	log *logger.Logger
}

// NewApp wraps the engine in an http.Server with production timeouts.
func NewApp(addr string, engine *gin.Engine, log *logger.Logger) *App {
	return &App{
		srv: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
