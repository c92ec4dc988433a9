package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/roach88/stringsvc/internal/phrase"
	"github.com/roach88/stringsvc/internal/store"
)

// maxBodyBytes bounds POST /strings bodies.
const maxBodyBytes = 1 << 20

// IDGenerator produces request ids for requests without X-Request-ID.
type IDGenerator interface {
	Generate() string
}

// Server routes HTTP requests to a Store.
type Server struct {
	store   store.Store
	parser  phrase.Parser
	logger  *slog.Logger
	ids     IDGenerator
	limiter *rate.Limiter
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithParser sets the natural-language parser. The default is phrase.Default.
func WithParser(p phrase.Parser) Option {
	return func(s *Server) { s.parser = p }
}

// WithIDGenerator sets the request id source. The default issues UUIDv7s.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Server) { s.ids = g }
}

// WithRateLimit enables a token bucket of perSecond requests with the
// given burst. perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a Server over st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		parser: phrase.Default,
		logger: slog.New(slog.DiscardHandler),
		ids:    uuidGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /strings", s.handleCreate)
	mux.HandleFunc("GET /strings", s.handleList)
	mux.HandleFunc("GET /strings/filter-by-natural-language", s.handleNaturalLanguage)
	mux.HandleFunc("GET /strings/{value...}", s.handleGet)
	mux.HandleFunc("DELETE /strings/{value...}", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.recoverPanics(h)
	h = s.accessLog(h)
	h = s.requestID(h)
	s.handler = h
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Timeouts bounds connection handling and graceful shutdown.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within t.Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener, t Timeouts) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  t.Read,
		WriteTimeout: t.Write,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.Shutdown)
		defer cancel()
		s.logger.Info("shutting down", "timeout", t.Shutdown)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln, t)
}
