package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/openapi"
)

const (
	maxEnvelopeSize = 4 << 20
	writeWait       = 10 * time.Second

	// unixHost is the host name the client uses over the unix socket.
	unixHost = "halbridge"
)

// Server exposes a router to the presentation process.
//
//	POST /dispatch      RequestEnvelope in, ResponseEnvelope out
//	GET  /events        websocket stream of events.Status
//	GET  /openapi.json  route surface document
//	GET  /metrics       prometheus exposition
type Server struct {
	router   *halbridge.Router
	events   *events.Channel
	gatherer prometheus.Gatherer
	log      logrus.FieldLogger
	mux      *chi.Mux
	upgrader websocket.Upgrader

	docOnce sync.Once
	doc     []byte
	docErr  error
}

type ServerOption func(*Server)

// WithEvents streams ch on /events. Without it /events answers 404.
func WithEvents(ch *events.Channel) ServerOption {
	return func(s *Server) {
		s.events = ch
	}
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithLogger(l logrus.FieldLogger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

func NewServer(r *halbridge.Router, opts ...ServerOption) *Server {
	s := &Server{
		router:   r,
		gatherer: prometheus.DefaultGatherer,
		log:      logrus.StandardLogger(),
		upgrader: websocket.Upgrader{
			// Browsers always send Origin on a handshake; the client never does.
			CheckOrigin: func(r *http.Request) bool { return r.Header.Get("Origin") == "" },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(requestLog(s.log))
	mux.Use(localOnly)

	mux.With(chimw.AllowContentType("application/json")).Post("/dispatch", s.dispatch)
	mux.Get("/events", s.streamEvents)
	mux.Get("/openapi.json", s.document)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Serve answers connections on ln until ctx is done, then shuts down
// gracefully. Open event streams end with ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("ipc server listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("ipc server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	var env RequestEnvelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnvelopeSize)).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, &ResponseEnvelope{
			Status: halbridge.StatusError,
			Error:  fmt.Sprintf("invalid request envelope: %v", err),
		})
		return
	}

	req := env.Request()
	resp := s.router.Dispatch(r.Context(), req)

	writeJSON(w, http.StatusOK, NewResponseEnvelope(req.ID, resp))
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "no event channel", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out, teardown, err := s.events.Subscribe(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer teardown()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("event stream upgrade failed")
		return
	}
	defer conn.Close()

	// The peer sends nothing; reading surfaces its close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for st := range out {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(st); err != nil {
			s.log.WithError(err).Debug("event stream closed")
			return
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// document renders the route surface once. Routes are fixed after startup.
func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	s.docOnce.Do(func() {
		s.doc, s.docErr = openapi.New(s.router, openapi.SkipLint(), openapi.WithLogger(s.log))
	})
	if s.docErr != nil {
		http.Error(w, s.docErr.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.doc)
}

// Listen opens the IPC listener: the unix socket when socket is set, a
// loopback TCP address otherwise. A stale socket file is replaced.
func Listen(socket, addr string) (net.Listener, error) {
	if socket != "" {
		if err := os.Remove(socket); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ipc.Listen: %w", err)
		}
		ln, err := net.Listen("unix", socket)
		if err != nil {
			return nil, fmt.Errorf("ipc.Listen: %w", err)
		}
		if err := os.Chmod(socket, 0o600); err != nil {
			ln.Close()
			return nil, fmt.Errorf("ipc.Listen: %w", err)
		}
		return ln, nil
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("ipc.Listen: %w", err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return nil, fmt.Errorf("ipc.Listen: %s is not a loopback address", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc.Listen: %w", err)
	}
	return ln, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// localOnly turns away browser traffic. A page on any site can reach a
// loopback port, so requests carrying an Origin, or a Host that does not name
// this machine (DNS rebinding), are refused before routing.
func localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != "" || !localHost(r.Host) {
			writeJSON(w, http.StatusForbidden, &ResponseEnvelope{
				Status: halbridge.StatusError,
				Error:  "cross-origin requests are not accepted",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func localHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	switch host {
	case "localhost", unixHost:
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func requestLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start),
			}).Debug("ipc request")
		})
	}
}
