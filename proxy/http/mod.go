// Package http implements the proxy with the standard HTTP server.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame"
)

type key int

const (
	requestIDKey key = 0

	// RequestIDHeader is the header holding the identifier of a request. It is
	// generated if the client does not provide one.
	RequestIDHeader = "X-Request-Id"

	shutdownTimeout = 10 * time.Second
)

// NewHTTP creates a new proxy http. An empty address listens on a random free
// port of all the interfaces.
func NewHTTP(listenAddr string) *HTTP {
	logger := matchgame.Logger.With().Str("role", "http proxy").Logger()

	nextRequestID := func() string {
		return xid.New().String()
	}

	mux := http.NewServeMux()

	return &HTTP{
		mux: mux,
		server: &http.Server{
			Handler: tracing(nextRequestID)(logging(logger)(mux)),
		},
		logger:     logger,
		listenAddr: listenAddr,
		quit:       make(chan struct{}),
	}
}

// HTTP defines a proxy http
//
// - implements proxy.Proxy
type HTTP struct {
	sync.Mutex

	mux        *http.ServeMux
	server     *http.Server
	logger     zerolog.Logger
	listenAddr string
	ln         net.Listener
	quit       chan struct{}
}

// Listen implements proxy.Proxy. It panics if the address cannot be used.
func (h *HTTP) Listen() {
	h.logger.Info().Msg("client server is starting...")

	ln, err := net.Listen("tcp", h.listenAddr)
	if err != nil {
		h.logger.Error().Err(err).Msgf("failed to create conn '%s'", h.listenAddr)
		panic("failed to create conn '" + h.listenAddr + "': " + err.Error())
	}

	h.Lock()
	h.ln = ln
	h.Unlock()

	done := make(chan struct{})

	go func() {
		<-h.quit
		h.logger.Info().Msg("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		h.server.SetKeepAlivesEnabled(false)

		err := h.server.Shutdown(ctx)
		if err != nil {
			h.logger.Err(err).Msg("could not gracefully shutdown the server")
		}

		close(done)
	}()

	h.logger.Info().Msgf("server is ready to handle requests at http://%s", ln.Addr())

	err = h.server.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		h.logger.Err(err).Msgf("failed to serve on %s", ln.Addr())
	}

	<-done
	h.logger.Info().Msg("server stopped")
}

// Stop implements proxy.Proxy. It must be called once per successful Listen.
func (h *HTTP) Stop() {
	h.quit <- struct{}{}
}

// RegisterHandler implements proxy.Proxy.
func (h *HTTP) RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request)) {
	h.mux.HandleFunc(path, handler)
}

// GetAddr implements proxy.Proxy.
func (h *HTTP) GetAddr() net.Addr {
	h.Lock()
	defer h.Unlock()

	if h.ln == nil {
		return nil
	}

	return h.ln.Addr()
}

// RequestID returns the identifier of the request, or "unknown" if the request
// did not go through the proxy.
func RequestID(r *http.Request) string {
	requestID, ok := r.Context().Value(requestIDKey).(string)
	if !ok {
		return "unknown"
	}

	return requestID
}

// logging is a utility function that logs the http server events
func logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			defer func() {
				logger.Info().Str("requestID", RequestID(r)).
					Str("method", r.Method).
					Str("url", r.URL.Path).
					Str("remoteAddr", r.RemoteAddr).
					Str("agent", r.UserAgent()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// tracing is a utility function that adds header tracing
func tracing(nextRequestID func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = nextRequestID()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
