package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"PortfolioSim/pkg/config"
	xhttp "PortfolioSim/pkg/http"
	"PortfolioSim/pkg/logger"
)

// Janitor sweeps expired state until its context ends.
type Janitor interface {
	RunJanitor(ctx context.Context, interval time.Duration)
}

// Worker is a background component with an explicit lifecycle.
type Worker interface {
	Start() error
	Stop(ctx context.Context) error
}

// Stopper drains in-flight work on shutdown.
type Stopper interface {
	Stop(ctx context.Context) error
}

type janitor struct {
	name     string
	j        Janitor
	interval time.Duration
}

type closer struct {
	name string
	c    io.Closer
}

// Option configures App.
type Option func(*App)

// WithQueue starts w before the HTTP server and stops it after.
func WithQueue(w Worker) Option {
	return func(a *App) { a.queue = w }
}

// WithDispatcher stops d on shutdown when it holds in-flight runs.
func WithDispatcher(d interface{}) Option {
	return func(a *App) {
		if s, ok := d.(Stopper); ok {
			a.dispatcher = s
		}
	}
}

// WithJanitor runs j every interval for the lifetime of the app.
func WithJanitor(name string, j Janitor, interval time.Duration) Option {
	return func(a *App) { a.janitors = append(a.janitors, janitor{name: name, j: j, interval: interval}) }
}

// WithCloser closes c on shutdown, in registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, closer{name: name, c: c}) }
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpServer *xhttp.Server
	queue      Worker
	dispatcher Stopper
	janitors   []janitor
	closers    []closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, lgr *logger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{cfg: cfg, logger: lgr, httpServer: httpServer}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve starts every component and blocks until ctx is done, then shuts down.
func (a *App) Serve(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, j := range a.janitors {
		wg.Add(1)
		go func(j janitor) {
			defer wg.Done()
			j.j.RunJanitor(bg, j.interval)
		}(j)
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			cancel()
			wg.Wait()
			return err
		}
		a.logger.Info("queue started", logger.String("backend", a.cfg.Queue.Backend))
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server start error", logger.Error(err))
			cancel()
			wg.Wait()
			return err
		}
	}
	a.logger.Info("portfolio simulator started",
		logger.String("env", a.cfg.Environment),
		logger.Bool("queue", a.queue != nil),
		logger.Bool("kafka", a.cfg.Kafka.Enabled))

	<-ctx.Done()
	a.logger.Info("shutdown signal received")

	err := a.shutdown()
	cancel()
	wg.Wait()
	return err
}

// shutdown stops intake first, then drains work, then closes clients.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Error("http shutdown error", logger.Error(err))
			keep(err)
		}
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.logger.Warn("queue stop error", logger.Error(err))
			keep(err)
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Stop(ctx); err != nil {
			a.logger.Warn("dispatcher stop error", logger.Error(err))
			keep(err)
		}
	}
	for _, c := range a.closers {
		if err := c.c.Close(); err != nil {
			a.logger.Warn("close error", logger.String("component", c.name), logger.Error(err))
			keep(err)
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
