package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"enriquecer/internal/amqp"
	"enriquecer/internal/backend"
	"enriquecer/internal/cache"
	"enriquecer/internal/log"
	"enriquecer/internal/middleware/ratelimit"
	"enriquecer/internal/middleware/security"
	"enriquecer/internal/middleware/trace"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Addr               string
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	Logger             *log.Logger

	// Now is the clock used for default month selection and export names.
	Now func() time.Time
}

// Server is the JSON API over a ledger backend.
type Server struct {
	http.Server

	backend backend.Backend
	logger  *log.Logger
	now     func() time.Time
	started time.Time

	summaries *cache.LRUCache[summaryResponse]
	// summaryGen counts ledger changes; a summary computed under an older
	// generation is never cached.
	summaryMu  sync.Mutex
	summaryGen uint64

	caches    *cache.Manager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(b backend.Backend, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8081"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		backend:   b,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		now:       opts.Now,
		started:   opts.Now(),
		summaries: cache.NewLRUCache[summaryResponse](opts.CacheSize, opts.CacheTTL),
		caches:    cache.NewManager(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	s.caches.Register(s.summaries)
	s.caches.StartCleanup(10 * time.Minute)

	b.OnChange(func(ctx context.Context, ev amqp.LedgerEvent) {
		s.invalidateSummaries()
		s.logger.DebugContext(ctx, "Summary cache cleared", "event", ev.Type)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/summary/month", s.handleMonthSummary)
	mux.HandleFunc("GET /api/summary/cumulative", s.handleCumulativeSummary)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/years", s.handleYears)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleRenameCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// internalError logs err with the request logger and answers with a generic
// 500 so storage details never leak to clients.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	sl := log.NewStructuredLogger(log.FromContext(r.Context()))
	sl.LogError(r.Context(), msg, err, log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
	InternalServerError().Write(w)
}
