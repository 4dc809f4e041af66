package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"odonto/internal/cache"
	applog "odonto/internal/log"
	"odonto/internal/middleware/ratelimit"
	"odonto/internal/middleware/security"
	"odonto/internal/middleware/trace"
	"odonto/internal/services"
)

// Cache invalidation groups. A mutation purges every group its resource
// feeds: patient names are embedded in plans and installments, so a
// patient edit purges all three.
const (
	groupPazienti  = "pazienti"
	groupPagamenti = "pagamenti"
	groupRate      = "rate"
)

type Server struct {
	http.Server
	svc   *services.Service
	cache *cache.Registry

	rateLimiter *ratelimit.Limiter
	ips         *security.Resolver
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// The registry may be nil to disable response caching.
func NewServer(addr string, svc *services.Service, registry *cache.Registry) *Server {
	s := &Server{
		svc:         svc,
		cache:       registry,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ips:         security.NewResolver(),
	}
	s.tracer = trace.NewMiddleware(s.ips.ClientIP)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/pazienti", s.handleListPazienti).Methods(http.MethodGet)
	api.HandleFunc("/pazienti", s.handleCreatePaziente).Methods(http.MethodPost)
	api.HandleFunc("/pazienti/{id:[0-9]+}", s.handleGetPaziente).Methods(http.MethodGet)
	api.HandleFunc("/pazienti/{id:[0-9]+}", s.handleUpdatePaziente).Methods(http.MethodPut)
	api.HandleFunc("/pazienti/{id:[0-9]+}", s.handleDeletePaziente).Methods(http.MethodDelete)
	api.HandleFunc("/pazienti/{id:[0-9]+}/pagamenti", s.handleListPagamentiByPaziente).Methods(http.MethodGet)
	api.HandleFunc("/pazienti/{id:[0-9]+}/rate_scadute", s.handleListRateScadute).Methods(http.MethodGet)

	api.HandleFunc("/pagamenti", s.handleListPagamenti).Methods(http.MethodGet)
	api.HandleFunc("/pagamenti", s.handleCreatePagamento).Methods(http.MethodPost)
	api.HandleFunc("/pagamenti/{id:[0-9]+}", s.handleGetPagamento).Methods(http.MethodGet)
	api.HandleFunc("/pagamenti/{id:[0-9]+}", s.handleUpdatePagamento).Methods(http.MethodPut)
	api.HandleFunc("/pagamenti/{id:[0-9]+}", s.handleDeletePagamento).Methods(http.MethodDelete)
	api.HandleFunc("/pagamenti/{id:[0-9]+}/rate", s.handleListRateByPagamento).Methods(http.MethodGet)

	api.HandleFunc("/rate", s.handleListRate).Methods(http.MethodGet)
	api.HandleFunc("/rate/{id:[0-9]+}", s.handleUpdateRata).Methods(http.MethodPut)
	api.HandleFunc("/rate/{id:[0-9]+}/paga", s.handlePagaRata).Methods(http.MethodPost)

	api.HandleFunc("/riepilogo", s.handleRiepilogo).Methods(http.MethodGet)

	httpLogger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.Default().Handler(),
	})
	handler := s.tracer.Handler(
		security.Headers(security.DefaultHeadersConfig())(
			applog.Middleware(httpLogger)(
				s.limitMutations(r))))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if s.cache != nil {
		s.cache.StartCleanup(10 * time.Minute)
	}

	return s
}

// limitMutations throttles writes per client; reads pass through.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.Allow(s.ips.ClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the HTTP listener and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		if s.cache != nil {
			s.cache.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// storage reachability is the only dependency a request needs
	if _, err := s.svc.ListPazienti(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// cachedJSON serves a GET from the response cache, falling back to fetch
// and storing the encoded body on success.
func (s *Server) cachedJSON(w http.ResponseWriter, r *http.Request, group, key string, fetch func() (any, error)) {
	if s.cache != nil {
		if body, ok := s.cache.Get(group, key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
	}

	v, err := fetch()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(group, key, body)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) invalidate(groups ...string) {
	if s.cache != nil {
		s.cache.Invalidate(groups...)
	}
}
