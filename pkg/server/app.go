package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinMerge/internal/usecase"
	xhttp "FinMerge/pkg/http"
	applogger "FinMerge/pkg/logger"
)

// Runner is one batch pipeline.
type Runner interface {
	Run(ctx context.Context) (*usecase.Summary, error)
}

// App encapsulates the lifecycle of one command: a batch pipeline with an optional metrics
// listener, or the long-running results API.
type App struct {
	name    string
	log     *applogger.Logger
	runner  Runner
	http    *xhttp.Server
	closers []io.Closer
}

// NewBatch builds an App that runs r once. httpSrv may be nil.
func NewBatch(name string, l *applogger.Logger, r Runner, httpSrv *xhttp.Server, closers ...io.Closer) *App {
	return &App{name: name, log: l, runner: r, http: httpSrv, closers: closers}
}

// NewService builds an App that serves httpSrv until interrupted.
func NewService(name string, l *applogger.Logger, httpSrv *xhttp.Server, closers ...io.Closer) *App {
	return &App{name: name, log: l, http: httpSrv, closers: closers}
}

// Run blocks until the pipeline finishes or, for a service, until SIGINT/SIGTERM.
// An interrupted batch keeps what it already wrote and is not reported as an error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	var httpErr <-chan error
	if a.http != nil {
		httpErr = a.http.Start()
		defer a.stopHTTP()
	}

	if a.runner == nil {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received", applogger.String("app", a.name))
			return nil
		case err := <-httpErr:
			if err != nil {
				a.log.Error("http server error", applogger.Error(err))
			}
			return err
		}
	}

	a.log.Info("pipeline started", applogger.String("app", a.name))
	sum, err := a.runner.Run(ctx)
	if sum != nil {
		sum.Log(a.log)
	}
	if errors.Is(err, context.Canceled) {
		a.log.Warn("pipeline interrupted, partial results kept", applogger.String("app", a.name))
		return nil
	}
	return err
}

func (a *App) stopHTTP() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Stop(ctx); err != nil {
		a.log.Warn("http shutdown error", applogger.Error(err))
	}
}

// Close releases sinks and caches in reverse construction order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if a.closers[i] == nil {
			continue
		}
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.log.Info("shutdown complete", applogger.String("app", a.name))
	return errors.Join(errs...)
}
