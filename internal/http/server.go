package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
)

// ExpenseAPI is the service surface the handlers need.
type ExpenseAPI interface {
	Create(ctx context.Context, account core.Account, req core.NewExpense) (core.Expense, error)
	Get(ctx context.Context, account core.Account, id string) (core.Expense, error)
	List(ctx context.Context, account core.Account) ([]core.Expense, error)
	ListByMonthYear(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error)
	Summary(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error)
	MonthYears(ctx context.Context, account core.Account) ([]core.MonthYear, error)
	Update(ctx context.Context, account core.Account, id string, p core.Patch) (core.Expense, error)
	Delete(ctx context.Context, account core.Account, id string) error
	Ping(ctx context.Context) error
}

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
}

// Server is the expense API server.
type Server struct {
	http.Server
	svc    ExpenseAPI
	logger *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	started          time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc ExpenseAPI, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			opts.Logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}

	s := &Server{
		svc:              svc,
		logger:           opts.Logger,
		securityDetector: detector,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		started:          time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, writeRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.GetRequestID)(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelError),
	}
	return s
}

// routes registers every endpoint with and without its trailing slash.
func (s *Server) routes(mux *http.ServeMux) {
	handle := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(method+" "+path, h)
		mux.HandleFunc(method+" "+path+"/{$}", h)
	}

	handle(http.MethodPost, "/expenses", s.handleCreateExpense)
	handle(http.MethodGet, "/expenses", s.handleListExpenses)
	handle(http.MethodGet, "/expenses/ls_month_year", s.handleListByMonthYear)
	handle(http.MethodGet, "/expenses/summary", s.handleSummary)
	handle(http.MethodGet, "/expenses/{id}", s.handleGetExpense)
	handle(http.MethodPut, "/expenses/{id}", s.handleUpdateExpense)
	handle(http.MethodDelete, "/expenses/{id}", s.handleDeleteExpense)
	handle(http.MethodGet, "/month_year", s.handleMonthYears)
	handle(http.MethodGet, "/month/year", s.handleMonthYears)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

// Shutdown stops background workers and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}
