package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	pdhttp "github.com/aretw0/pushdown/pkg/adapters/http"
	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/adapters/redis"
	"github.com/aretw0/pushdown/pkg/observability"
	"github.com/aretw0/pushdown/pkg/persistence/middleware"
	"github.com/aretw0/pushdown/pkg/ports"
	"github.com/aretw0/pushdown/pkg/registry"
	"github.com/aretw0/pushdown/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

// ServeOptions holds the settings of the serve command.
type ServeOptions struct {
	Port int
	// Dir holds one definition file per automaton.
	Dir string
	// RedisURL selects Redis for sessions and locks, e.g. redis://localhost:6379/0.
	RedisURL   string
	SessionTTL time.Duration
	// SessionDir stores sessions as JSON files when RedisURL is empty.
	// With neither set, sessions live in memory.
	SessionDir string
	// SessionKey, when set, seals stored sessions with AES-256-GCM.
	SessionKey []byte
	MaxSteps   int
}

// Stack is the wired server: registry, sessions and HTTP handler.
type Stack struct {
	Registry *registry.Registry
	Sessions *session.Manager
	Handler  http.Handler
	closers  []func() error
}

// Close releases external connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewStack builds the registry over opts.Dir, the session manager over the
// selected store, and the HTTP handler with a private metrics registry.
func NewStack(opts ServeOptions, logger *slog.Logger) (*Stack, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry(file.NewLoader(opts.Dir),
		registry.WithLogger(logger),
		registry.WithAutomatonOptions(func(name string) []pushdown.Option {
			o := []pushdown.Option{
				pushdown.WithLogger(logger),
				pushdown.WithLifecycleHooks(observability.Chain(
					metrics.Hooks(name),
					observability.LoggingHooks(logger),
				)),
			}
			if opts.MaxSteps > 0 {
				o = append(o, pushdown.WithStepLimit(opts.MaxSteps))
			}
			return o
		}),
	)

	stack := &Stack{Registry: reg}
	store, locker, err := stack.sessionStore(opts, logger)
	if err != nil {
		return nil, err
	}
	if len(opts.SessionKey) > 0 {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: opts.SessionKey})
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("session key: %w", err)
		}
		store = middleware.Chain(store, seal)
	}

	mgrOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(locker))
	}
	if opts.MaxSteps > 0 {
		mgrOpts = append(mgrOpts, session.WithStepLimit(opts.MaxSteps))
	}
	stack.Sessions = session.NewManager(store, reg.Stepper, mgrOpts...)

	stack.Handler = pdhttp.NewHandler(reg,
		pdhttp.WithSessions(stack.Sessions),
		pdhttp.WithMetrics(promReg),
		pdhttp.WithLogger(logger),
	)
	return stack, nil
}

func (s *Stack) sessionStore(opts ServeOptions, logger *slog.Logger) (ports.SessionStore, ports.DistributedLocker, error) {
	switch {
	case opts.RedisURL != "":
		clientOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(clientOpts)
		store := redis.NewFromClient(client, redis.WithTTL(opts.SessionTTL))
		s.closers = append(s.closers, store.Close)
		logger.Info("sessions stored in redis", "addr", clientOpts.Addr, "ttl", opts.SessionTTL)
		return store, redis.NewLocker(client, "pushdown:"), nil
	case opts.SessionDir != "":
		logger.Info("sessions stored on disk", "dir", opts.SessionDir)
		return file.NewStore(opts.SessionDir), nil, nil
	}
	logger.Info("sessions stored in memory")
	return memory.NewStore(), nil, nil
}

// Serve listens on opts.Port until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, opts ServeOptions, logger *slog.Logger) error {
	stack, err := NewStack(opts, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           stack.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr, "dir", opts.Dir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	}
}
