package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

var tracer = otel.Tracer("favorites-repository")

// TracingStore wraps a key-value store with OpenTelemetry spans
type TracingStore struct {
	inner   domain.KeyValueStore
	backend string
}

// NewTracingStore decorates inner; backend names the store in span attributes
func NewTracingStore(inner domain.KeyValueStore, backend string) *TracingStore {
	return &TracingStore{inner: inner, backend: backend}
}

func (t *TracingStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kv."+op,
		trace.WithAttributes(
			attribute.String("kv.backend", t.backend),
			attribute.String("kv.key", key),
		),
	)
}

func recordErr(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (t *TracingStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := t.start(ctx, "Get", key)
	defer span.End()

	v, ok, err := t.inner.Get(ctx, key)
	recordErr(span, err)
	span.SetAttributes(
		attribute.Bool("kv.hit", ok),
		attribute.Int("kv.value_size", len(v)),
	)
	return v, ok, err
}

func (t *TracingStore) Set(ctx context.Context, key, value string) error {
	ctx, span := t.start(ctx, "Set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("kv.value_size", len(value)))
	err := t.inner.Set(ctx, key, value)
	recordErr(span, err)
	return err
}

func (t *TracingStore) Delete(ctx context.Context, key string) error {
	ctx, span := t.start(ctx, "Delete", key)
	defer span.End()

	err := t.inner.Delete(ctx, key)
	recordErr(span, err)
	return err
}

var _ domain.KeyValueStore = (*TracingStore)(nil)
