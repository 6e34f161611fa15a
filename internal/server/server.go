// Package server runs the HTTP listeners under a suture supervisor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/thejerf/suture/v4"
)

// Listener is the lifecycle subset of *http.Server.
type Listener interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts a blocking Listener to suture.Service.
type HTTPService struct {
	name            string
	listener        Listener
	shutdownTimeout time.Duration
}

func NewHTTPService(name string, listener Listener, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{name: name, listener: listener, shutdownTimeout: shutdownTimeout}
}

// Serve blocks until ctx is cancelled or the listener fails. Cancellation
// triggers a graceful shutdown bounded by the shutdown timeout.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.listener.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.listener.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s shutdown: %w", s.name, err)
		}
		<-errCh
		logging.Info().Str("service", s.name).Msg("listener stopped")
		return ctx.Err()
	}
}

func (s *HTTPService) String() string {
	return s.name
}

// NewSupervisor builds the root supervisor with supervisor events routed
// to the structured logger.
func NewSupervisor(name string, shutdownTimeout time.Duration) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: func(ev suture.Event) {
			logging.Warn().Fields(ev.Map()).Msg(ev.String())
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	})
}

// Run supervises services until ctx is cancelled. A cancelled context is a
// clean exit and yields nil.
func Run(ctx context.Context, sup *suture.Supervisor, services ...suture.Service) error {
	for _, svc := range services {
		sup.Add(svc)
	}
	err := sup.Serve(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
