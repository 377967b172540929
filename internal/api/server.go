// Package api serves the photo archive over HTTP: the JSON query endpoints,
// the stored files, the report page, health, metrics and the Telegram webhook.
package api

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgard/photobot/internal/config"
	"github.com/edgard/photobot/internal/logger"
	"github.com/edgard/photobot/internal/metrics"
)

// UploadsPrefix is the URL prefix stored files are served under.
const UploadsPrefix = "/uploads/"

const reportPage = "report.html"

// Options configures a Server. Store, UploadDir and Static are required.
type Options struct {
	Addr      string
	Store     Store
	UploadDir string
	Static    fs.FS

	CORSOrigins []string
	RateLimit   float64
	RateBurst   int

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Webhook, when set, receives Telegram updates at config.WebhookPath.
	Webhook http.Handler

	// Location is used for month filters. Defaults to time.Local.
	Location *time.Location
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		logger: opts.Logger.With("component", "http_server"),
	}
	s.setupMiddleware(opts)
	s.setupRoutes(opts)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.HTTPMiddleware(opts.Logger))
	s.router.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		s.router.Use(instrument(opts.Metrics))
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(opts Options) {
	h := &handlers{store: opts.Store, logger: s.logger, location: opts.Location}

	s.router.Route("/api", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(newRateLimiter(opts.RateLimit, opts.RateBurst).handler)
		}
		r.Get("/images", h.listImages)
		r.Get("/groups", h.listGroups)
	})

	s.router.Get("/healthz", h.health)
	if opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.Webhook != nil {
		s.router.Post(config.WebhookPath, opts.Webhook.ServeHTTP)
	}

	uploads := http.FileServer(noListing{http.Dir(opts.UploadDir)})
	s.router.Handle(UploadsPrefix+"*", http.StripPrefix(UploadsPrefix, uploads))

	static := opts.Static
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, reportPage)
	})
	s.router.Handle("/*", http.FileServer(noListing{http.FS(static)}))
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// noListing hides directories so file servers return 404 instead of an index.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
