package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sgostarter/i/l"

	"github.com/wildfunctions/lagrange/pkg/engine"
)

const (
	requestIDHeader   = "X-Request-Id"
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type requestIDKey struct{}

// RequestID returns the id attached to a request context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Server exposes an Engine over HTTP:
//
//	POST <BasePath>  JSON array of {x, y}     -> BuildReport
//	GET  <BasePath>  ?polynomialString&wishedX -> EvaluateReport
//	GET  /healthz                              -> liveness
//
// Every failure is answered with 500 and {"error": "..."}.
type Server struct {
	engine  *engine.Engine
	cfg     engine.Config
	logger  l.Wrapper
	handler http.Handler
}

func New(e *engine.Engine, logger l.Wrapper) *Server {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	s := &Server{
		engine: e,
		cfg:    e.Config(),
		logger: logger.WithFields(l.StringField(l.ClsKey, "server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.BasePath, s.handleLagrange)
	mux.HandleFunc("/healthz", s.handleHealth)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	s.handler = s.withRequestID(s.recoverer(corsHandler.Handler(mux)))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener, which it closes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.WithFields(l.StringField("addr", ln.Addr().String()), l.StringField("path", s.cfg.BasePath)).
		Info("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleLagrange(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleBuild(w, r)
	case http.MethodGet:
		s.handleEvaluate(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	}
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	points, err := DecodePoints(r.Body)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	report, err := s.engine.Build(points)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.requestLogger(r).WithFields(l.IntField("points", len(points)), l.IntField("degree", report.Degree)).
		Debug("built")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	src, x, err := ParseQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	report, err := s.engine.Evaluate(src, x)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).WithFields(l.ErrorField(err)).Warn("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func (s *Server) requestLogger(r *http.Request) l.Wrapper {
	return s.logger.WithFields(
		l.StringField("requestID", RequestID(r.Context())),
		l.StringField("method", r.Method),
		l.StringField("path", r.URL.Path),
	)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.requestLogger(r).WithFields(
					l.StringField("panic", fmt.Sprint(rec)),
					l.StringField("stack", string(debug.Stack())),
				).Error("panic in handler")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
