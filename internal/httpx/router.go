package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asad/mailreg/internal/core"
	"github.com/asad/mailreg/internal/logging"
)

// EdgeRouter is the HTTP router that receives all incoming requests and
// dispatches them to the registered services.
type EdgeRouter struct {
	router chi.Router
	logger logging.Logger
}

// NewEdgeRouter creates the router with its middleware stack, a health check
// and one sub-router per service.
func NewEdgeRouter(services []core.Service, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"mailreg"}`))
	})

	for _, service := range services {
		logger.Info("registering service routes",
			logging.String("service", service.Name()),
		)
		r.Route("/"+service.Name(), service.RegisterRoutes)
	}

	return &EdgeRouter{
		router: r,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler interface.
func (er *EdgeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	er.router.ServeHTTP(w, r)
}

// requestLoggingMiddleware logs method, path, status code and latency of
// every request.
func requestLoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("query", r.URL.RawQuery),
				logging.Int("status", ww.Status()),
				logging.Duration("latency", time.Since(start)),
				logging.String("request_id", middleware.GetReqID(r.Context())),
				logging.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
