package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/cartkeeper/pkg/log"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second

// Server serves the cart API and the metrics endpoint.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     log.Logger
}

// NewServer builds a Server listening on addr. Metrics registered with reg
// are exposed on /metrics; request metrics are added to it as well.
func NewServer(addr string, svc CartService, reg *prometheus.Registry, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	router := mux.NewRouter()

	if reg != nil {
		router.Use(mux.MiddlewareFunc(NewHTTPMetrics(reg).Middleware()))
	}
	router.Use(mux.MiddlewareFunc(Logging(logger)))

	NewHandler(svc, logger).RegisterRoutes(router)
	if reg != nil {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Outside the router so unmatched routes get a request ID too.
	handler := RequestID()(Recovery(logger)(router))

	return &Server{
		handler: handler,
		logger:  logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", log.String("address", l.Addr().String()))
		errCh <- s.httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, l)
}
