// Package server provides the GoPoster HTTP API: template browsing, layout
// previews, photo upload and poster rendering.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/xob0t/GoPoster/pkg/compositor"
	"github.com/xob0t/GoPoster/pkg/config"
	"github.com/xob0t/GoPoster/pkg/fonts"
	"github.com/xob0t/GoPoster/pkg/logging"
	"github.com/xob0t/GoPoster/pkg/template"
)

// Server holds the engine and the stores behind the API.
type Server struct {
	cfg       config.Config
	templates *template.Store
	fonts     *fonts.Manager
	assets    *compositor.MemoryStore
	cache     *compositor.BackgroundCache
	comp      *compositor.Compositor
	log       *zerolog.Logger
}

// New wires a server. Backgrounds are read from template files or fetched
// over HTTP; photos and rendered posters live in an in-memory asset store.
func New(cfg config.Config, templates *template.Store, fm *fonts.Manager) *Server {
	s := &Server{
		cfg:       cfg,
		templates: templates,
		fonts:     fm,
		assets:    compositor.NewMemoryStore(),
		log:       logging.WithComponent("server"),
	}

	httpFetcher := compositor.NewHTTPFetcher(cfg.Render.FetchTimeout)
	httpFetcher.MaxBytes = cfg.Render.MaxAssetBytes
	fetcher := compositor.MultiFetcher{
		Store: s.assets,
		HTTP:  httpFetcher,
		Files: compositor.FileFetcher{Root: cfg.Templates.Dir},
	}

	opts := []compositor.Option{
		compositor.WithTuning(cfg.Tuning),
		compositor.WithFetchTimeout(cfg.Render.FetchTimeout),
	}
	if cfg.Render.CacheBackgrounds {
		s.cache = compositor.NewBackgroundCache(cfg.Render.CacheLimit)
		opts = append(opts, compositor.WithCache(s.cache))
		templates.OnReplace(s.cache.Invalidate)
	}
	s.comp = compositor.New(fm, fetcher, opts...)
	s.warnMissingFonts()
	return s
}

// warnMissingFonts logs every template text zone whose family has no
// registered font. Those zones render in the default family.
func (s *Server) warnMissingFonts() {
	for _, tpl := range s.templates.List("") {
		for _, z := range tpl.LayoutConfig.TextZones {
			if z.FontFamily != "" && !s.fonts.Has(z.FontFamily) {
				s.log.Warn().Str("template", tpl.ID).Str("zone", string(z.Type)).Str("family", z.FontFamily).
					Msg("font family not registered, using default")
			}
		}
	}
}

// Assets exposes the asset store, mainly for tests and embedding callers.
func (s *Server) Assets() *compositor.MemoryStore { return s.assets }

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.requestTimeout(s.cfg.Server.RequestTimeout))
	s.registerRoutes(r)
	return r
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/categories", s.listCategories)
		api.GET("/templates", s.listTemplates)
		api.GET("/templates/:id", s.getTemplate)
		api.POST("/reload", s.reloadTemplates)
		api.POST("/templates/:id/layout", s.layoutTemplate)
		api.POST("/render", s.render)
		api.POST("/posters", s.generatePoster)
		api.POST("/photos", s.uploadPhoto)
		api.POST("/photos/crop", s.cropPhoto)
		api.GET("/assets/:id", s.getAsset)
		api.DELETE("/assets/:id", s.deleteAsset)
		api.GET("/share/qr", s.shareQR)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("GoPoster API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// ── Middleware ──

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := s.log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ── Errors ──

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var fetchErr *compositor.AssetFetchError
	var cfgErr *template.InvalidTemplateConfigError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, template.ErrNotFound), errors.Is(err, compositor.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
