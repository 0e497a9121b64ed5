// Package server adapts JSON handlers to net/http and runs the HTTP listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vvangelov/brregservice/internal/logging"
)

// HandlerFunc returns a status code and a payload to be encoded as JSON.
type HandlerFunc func(r *http.Request) (int, interface{}, error)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorToResponse builds the standard error payload for err.
func ErrorToResponse(err error, status int) (int, interface{}, error) {
	return status, &ErrorResponse{Error: err.Error()}, err
}

func ToHTTPHandlerFunc(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, payload, _ := fn(r)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		if payload == nil {
			return
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logging.Error(r.Context(), err, logging.Data{"path": r.URL.Path}, "failed to encode response")
		}
	}
}

type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           RequestLogger(handler),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			// lookups may wait on the registry for up to 15s
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		shutdownTimeout: 10 * time.Second,
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info(ctx, logging.Data{"addr": s.srv.Addr}, "starting http server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info(context.Background(), nil, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
