// Package api serves the attendance reports over HTTP for dashboards.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"office-attendance/internal/config"
	"office-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SetupRouter wires every attendance route.
func SetupRouter(cfg *config.AppConfig, svc *service.AttendanceService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Logger(), CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Attendance API is running",
		})
	})

	h := NewAttendanceHandler(cfg, svc)
	attendance := r.Group("/api/v1/attendance")
	{
		attendance.GET("/session", h.GetSession)
		attendance.GET("/daily", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Daily(c.Request.Context(), q)
		}))
		attendance.GET("/weekly", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Weekly(c.Request.Context(), q)
		}))
		attendance.GET("/stability", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Stability(c.Request.Context(), q)
		}))
		attendance.GET("/period", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Period(c.Request.Context(), q)
		}))
		attendance.GET("/division", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Division(c.Request.Context(), q)
		}))
		attendance.GET("/employees", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Employees(c.Request.Context(), q)
		}))
		attendance.GET("/facts", windowed(func(c *gin.Context, q service.Query) (any, error) {
			return svc.Facts(c.Request.Context(), q)
		}))
		attendance.GET("/quality", h.GetQuality)
		attendance.GET("/explain", h.GetExplanation)
		attendance.POST("/reload", h.Reload)
		attendance.POST("/export", h.Export)
	}
	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("HTTP server shutting down")
	return srv.Shutdown(shutdownCtx)
}
