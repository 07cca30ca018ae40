package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"docsum/internal/domain"
	"docsum/internal/summarizer"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	multipartMemory   = 32 << 20

	// formOverhead is the room left for the text field and multipart
	// headers on top of the upload limit.
	formOverhead = 1 << 20
)

//go:embed templates/*.html
var templatesFS embed.FS

type Extractor interface {
	Extract(ctx context.Context, doc domain.UploadedDocument) (domain.Extraction, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (domain.Summary, error)
}

// Server is the browser front end: one page with an upload field, a text
// area and the summary panel.
type Server struct {
	router     *gin.Engine
	extractor  Extractor
	summarizer Summarizer
	maxBytes   int64
	log        *slog.Logger
}

func New(
	extractor Extractor,
	summarizer Summarizer,
	maxBytes int64,
	log *slog.Logger,
) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = multipartMemory

	s := &Server{
		router:     r,
		extractor:  extractor,
		summarizer: summarizer,
		maxBytes:   maxBytes,
		log:        log,
	}
	r.Use(gin.Recovery(), requestLogger(log), s.bodyLimit())
	s.setupRoutes()

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "HTTP server is started",
			"addr", addr)

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

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	s.log.InfoContext(ctx, "HTTP server is stopped")

	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/", s.handleIndex)
	s.router.POST("/", s.handleSubmit)
}

// bodyLimit rejects declared oversized bodies up front and cuts off the
// rest once they pass the limit.
func (s *Server) bodyLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		limit := s.maxBytes + formOverhead
		if c.Request.ContentLength > limit {
			s.renderError(c, page{}, newPageError(http.StatusRequestEntityTooLarge, s.tooLargeMessage(), nil))
			c.Abort()

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (s *Server) tooLargeMessage() string {
	return "The file is larger than " + humanize.IBytes(uint64(s.maxBytes))
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.InfoContext(c.Request.Context(), "Request is handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds())
	}
}
