// Package preview serves the rendered page over HTTP. Every request runs
// the paths again, so the page always reflects the endpoint as it is now.
package preview

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Renderer writes one complete page.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// Server wraps the gin router that serves the page.
type Server struct {
	Page Renderer
	// Charset goes into the Content-Type header and must match what Page
	// writes.
	Charset string
	Logger  *zap.Logger
}

// Router returns the gin engine with / and /health.
func (sv *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(sv.logger()), gin.CustomRecovery(func(c *gin.Context, err any) {
		sv.logger().Error("panic recovered", zap.Any("error", err))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	r.GET("/", sv.index)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return r
}

func (sv *Server) index(c *gin.Context) {
	var buf bytes.Buffer
	if err := sv.Page.Render(c.Request.Context(), &buf); err != nil {
		sv.logger().Error("render failed", zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset="+sv.Charset, buf.Bytes())
}

// ListenAndServe serves on addr until ctx is done.
func (sv *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           sv.Router(),
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	sv.logger().Info("preview listening", zap.String("address", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

func (sv *Server) logger() *zap.Logger {
	if sv.Logger == nil {
		return zap.NewNop()
	}
	return sv.Logger
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		c.Next()

		log.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
