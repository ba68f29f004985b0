package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/logger"
)

// Version попадает в атрибут service.version
const Version = "0.3.0"

// Tracer используется обработчиками инструментов; до InitTracing работает глобальный no-op провайдер
var Tracer trace.Tracer = otel.Tracer("mcp-realty")

// InitTracing поднимает провайдер трейсов по настройкам OTEL_* и возвращает функцию его остановки.
// Без OTEL_ENDPOINT спаны создаются, но никуда не отправляются.
func InitTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.OTELServiceName),
			semconv.ServiceVersionKey.String(Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("ресурс трейсинга: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.OTELSampleRatio)))),
	}

	if cfg.OTELEndpoint != "" {
		clientOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTELEndpoint)}
		if cfg.OTELInsecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("OTLP экспортер: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.L.Info("Трейсы отправляются по OTLP", "endpoint", cfg.OTELEndpoint, "insecure", cfg.OTELInsecure)
	} else {
		logger.L.Info("OTEL_ENDPOINT не задан, трейсы не экспортируются")
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(cfg.OTELServiceName)

	return tp.Shutdown, nil
}

func sampleRatio(r float64) float64 {
	if r <= 0 || r > 1 {
		return 1
	}
	return r
}
