package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
)

// Config controls logger format and the metrics endpoint.
type Config struct {
	ServiceName    string
	Environment    string
	Version        string
	MetricsAddress string
	LogLevel       slog.Level
}

// Observability bundles the logger, tracer and metrics shared by every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  *metrics.PrometheusMetrics

	metricsServer *http.Server
}

// Init builds the observability stack. The tracer comes from the global otel provider,
// which is a no-op unless an exporter registered one.
func Init(cfg Config) *Observability {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
		slog.String("version", cfg.Version),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	obs := &Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(cfg.ServiceName),
		Registry: reg,
		Metrics:  metrics.NewPrometheusMetrics(reg, "bandeja", ""),
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		obs.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return obs
}

// StartMetricsServer serves /metrics until the server is shut down. It is a no-op
// when no metrics address is configured.
func (o *Observability) StartMetricsServer() {
	if o.metricsServer == nil {
		return
	}
	go func() {
		o.Logger.Info("Starting metrics server", slog.String("address", o.metricsServer.Addr))
		if err := o.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Logger.Error("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown stops the metrics server.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.metricsServer == nil {
		return nil
	}
	return o.metricsServer.Shutdown(ctx)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
