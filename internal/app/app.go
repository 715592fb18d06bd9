// Package app wires the document router's components together and exposes
// them over HTTP.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/your-org/docrouter/internal/action"
	"github.com/your-org/docrouter/internal/actionlog"
	"github.com/your-org/docrouter/internal/config"
	"github.com/your-org/docrouter/internal/dispatch"
	"github.com/your-org/docrouter/internal/emailagent"
	"github.com/your-org/docrouter/internal/endpoint"
	"github.com/your-org/docrouter/internal/jsonagent"
	"github.com/your-org/docrouter/internal/metrics"
	"github.com/your-org/docrouter/internal/route"
	"github.com/your-org/docrouter/internal/trace"
)

// App holds the assembled runtime: agents producing results, the router
// consuming them, and the shared observability plumbing.
type App struct {
	Router    *route.Router
	Validator *jsonagent.Validator
	Email     *emailagent.Agent
	Store     *actionlog.MemoryStore
	Metrics   *metrics.InMemoryRecorder

	shutdowns []func(context.Context) error
}

// Build assembles an App from config. The returned App owns any background
// servers it started; release them with Close.
func Build(cfg config.Config) (*App, error) {
	registry := endpoint.Default()
	if cfg.EndpointsPath != "" {
		loaded, err := endpoint.LoadFile(cfg.EndpointsPath)
		if err != nil {
			return nil, fmt.Errorf("load endpoints: %w", err)
		}
		registry = loaded
	}

	var executor dispatch.Executor
	if cfg.DispatchMode == "live" {
		executor = dispatch.NewHTTPExecutor(nil)
	} else {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		executor = dispatch.NewSimulator(seed)
	}

	app := &App{Store: actionlog.NewMemoryStore()}

	sinks := []actionlog.Sink{app.Store}
	if cfg.ActionLogPath != "" {
		sinks = append(sinks, actionlog.NewJSONLSink(cfg.ActionLogPath))
	}
	if cfg.RedisURL != "" {
		redisSink, err := actionlog.NewRedisSink(cfg.RedisURL, "docrouter", 0)
		if err != nil {
			return nil, fmt.Errorf("connect redis action log: %w", err)
		}
		sinks = append(sinks, redisSink)
	}
	sink := actionlog.Sink(actionlog.NewMulti(sinks...))

	app.Metrics = metrics.NewInMemoryRecorder()
	recorder := metrics.Recorder(app.Metrics)
	if cfg.MetricsAddr != "" {
		promRegistry := prometheus.NewRegistry()
		promRecorder, err := metrics.NewPrometheusRecorder(promRegistry)
		if err != nil {
			return nil, fmt.Errorf("setup prometheus recorder: %w", err)
		}
		recorder = metrics.NewMultiRecorder(app.Metrics, promRecorder)
		metricsServer, err := metrics.StartPrometheusServer(cfg.MetricsAddr, promRegistry)
		if err != nil {
			return nil, fmt.Errorf("start metrics endpoint: %w", err)
		}
		app.shutdowns = append(app.shutdowns, func(ctx context.Context) error {
			return metrics.StopServer(ctx, metricsServer)
		})
	}

	otelRuntime, err := trace.SetupOTelFromEnv("docrouter")
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	app.shutdowns = append(app.shutdowns, otelRuntime.Shutdown)

	processorOpts := []action.Option{
		action.WithSink(sink),
		action.WithMetrics(recorder),
		action.WithTracer(otelRuntime.Tracer),
	}
	if cfg.Seed != 0 {
		processorOpts = append(processorOpts, action.WithSeed(cfg.Seed))
	}
	processor := action.NewProcessor(registry, executor, processorOpts...)

	app.Router = route.NewRouter(processor,
		route.WithSink(sink),
		route.WithMetrics(recorder),
		route.WithWorkers(cfg.Workers),
	)

	validatorOpts := []jsonagent.Option{}
	emailOpts := []emailagent.Option{}
	if cfg.Seed != 0 {
		validatorOpts = append(validatorOpts, jsonagent.WithSeed(cfg.Seed))
		emailOpts = append(emailOpts, emailagent.WithSeed(cfg.Seed))
	}
	app.Validator = jsonagent.NewValidator(validatorOpts...)
	app.Email = emailagent.NewAgent(emailOpts...)

	return app, nil
}

// Close releases background servers and flushes tracing.
func (a *App) Close(ctx context.Context) error {
	var first error
	for _, shutdown := range a.shutdowns {
		if err := shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// StartServer serves the app's HTTP API until ctx is canceled.
func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	return s.ListenAndServe()
}
