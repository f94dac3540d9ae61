package otel

import (
	"context"
	"sync"

	eventbus "github.com/colgraph/colgraph/internal/eventbus"
	events "github.com/colgraph/colgraph/internal/events"
	runid "github.com/colgraph/colgraph/internal/runid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers that turn
// engine events into spans. If endpoint is empty, no telemetry is
// configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("colgraph")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer    trace.Tracer
	scanSpans sync.Map // run id -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.ScanStart) {
		rid, _ := runid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graph.scan")
		span.SetAttributes(
			attribute.Int64("scan.entries", e.Entries),
			attribute.Int("scan.slots", e.Slots),
			attribute.Int("scan.actions", e.Actions),
		)
		s.scanSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ScanFinish) {
		rid, _ := runid.FromContext(ctx)
		v, ok := s.scanSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ActionDone) {
		rid, _ := runid.FromContext(ctx)
		v, ok := s.scanSpans.Load(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.AddEvent("action.done", trace.WithAttributes(
			attribute.String("action.kind", e.Kind),
		))
	})
}
