// Package telemetry wires OpenTelemetry tracing and metrics for the bot.
// Traces and metrics are exported to rotated files under ./logs so they can
// be inspected locally; an OTEL collector can still pick them up via the SDK.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "guildbot"

// Metrics bundles the instruments used by the bot handlers and AI client.
type Metrics struct {
	UpdatesHandled metric.Int64Counter
	RepliesSent    metric.Int64Counter
	AIFailures     metric.Int64Counter
	AILatency      metric.Float64Histogram
}

// Telemetry holds the configured providers and instruments.
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *Metrics

	shutdown func()
}

// Init sets up the OpenTelemetry tracer and meter providers with file-backed
// stdout exporters and returns the shared instruments. Call Shutdown on exit.
func Init(ctx context.Context) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	traceFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "guildbot_traces.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(traceFile),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricsFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "guildbot_metrics.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	metricExporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricsFile),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				metricExporter,
				sdkmetric.WithInterval(30*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	tracer := tp.Tracer(serviceName)
	meter := mp.Meter(serviceName)

	metrics, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}

	shutdown := func() {
		sdCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sdCtx); err != nil {
			slog.Error("failed to shutdown tracer provider", "error", err)
		}
		if err := mp.Shutdown(sdCtx); err != nil {
			slog.Error("failed to shutdown meter provider", "error", err)
		}
		if err := traceFile.Close(); err != nil {
			slog.Error("failed to close trace file", "error", err)
		}
		if err := metricsFile.Close(); err != nil {
			slog.Error("failed to close metrics file", "error", err)
		}
	}

	return &Telemetry{
		Tracer:   tracer,
		Meter:    meter,
		Metrics:  metrics,
		shutdown: shutdown,
	}, nil
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	updates, err := meter.Int64Counter("bot.updates_handled",
		metric.WithDescription("Telegram updates processed by the message handler"))
	if err != nil {
		return nil, fmt.Errorf("failed to create updates counter: %w", err)
	}
	replies, err := meter.Int64Counter("bot.replies_sent",
		metric.WithDescription("Replies sent back to Telegram chats"))
	if err != nil {
		return nil, fmt.Errorf("failed to create replies counter: %w", err)
	}
	failures, err := meter.Int64Counter("ai.failures",
		metric.WithDescription("Gemini API calls that returned an error"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	latency, err := meter.Float64Histogram("ai.call_duration_seconds",
		metric.WithDescription("Gemini API call latency in seconds"))
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}
	return &Metrics{
		UpdatesHandled: updates,
		RepliesSent:    replies,
		AIFailures:     failures,
		AILatency:      latency,
	}, nil
}

// Shutdown flushes and stops the telemetry providers.
func (t *Telemetry) Shutdown() {
	if t.shutdown != nil {
		t.shutdown()
	}
}
