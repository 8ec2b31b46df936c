package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/BrandishGacha_Go/internal/gacha"
	"github.com/osse101/BrandishGacha_Go/internal/handler"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
	"github.com/osse101/BrandishGacha_Go/internal/metrics"
)

// Options configures the HTTP surface.
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	CatalogVersion string
	// Ready is pinged by /readyz. Nil means always ready.
	Ready  handler.HealthChecker
	Replay *handler.ReplayCache
	// Limits tunes the per-client guard. The zero value uses the defaults.
	Limits GuardLimits
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc gacha.Service) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, svc),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(opts Options, svc gacha.Service) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	guard := NewClientGuard(opts.Limits)

	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	r.Use(ClientIPMiddleware(ParseProxySet(opts.TrustedProxies)))
	r.Use(AuthMiddleware(opts.APIKey, guard))
	r.Use(RateLimitMiddleware(guard))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(opts.Ready))
	r.Get("/version", handler.HandleVersion(opts.CatalogVersion))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pulls", handler.HandlePull(svc, opts.Replay))

		r.Route("/pools", func(r chi.Router) {
			r.Get("/", handler.HandleListPools(svc))
			r.Post("/active", handler.HandleSwitchPool(svc))
			r.Get("/{id}/rates", handler.HandleGetRates(svc))
			r.Get("/{id}/simulate", handler.HandleSimulate(svc))
		})

		r.Get("/pity", handler.HandleGetPity(svc))
		r.Get("/history", handler.HandleGetHistory(svc))
		r.Get("/stats", handler.HandleGetStats(svc))
		r.Get("/balances", handler.HandleGetBalances(svc))
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// isQuietPath skips request logging for probes and scrapes.
func isQuietPath(path string) bool {
	return isPublicPath(path) && path != "/version"
}

// requestID keeps a caller supplied X-Request-ID when it is short enough to
// log safely, otherwise mints one.
func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" && len(id) <= MaxRequestIDLength {
		return id
	}
	return logger.GenerateRequestID()
}

func redactedHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range []string{HeaderAPIKey, HeaderAuthorization} {
		if out.Get(k) != "" {
			out.Set(k, RedactedValue)
		}
	}
	return out
}

// loggingMiddleware tags the context with a request id and logs start and completion.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		id := requestID(r)
		w.Header().Set(HeaderRequestID, id)
		r = r.WithContext(logger.WithRequestID(r.Context(), id))
		log := logger.FromContext(r.Context())

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactedHeaders(r.Header))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
