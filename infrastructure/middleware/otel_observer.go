package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

// TracingObserver implements ports.CountObserver with OpenTelemetry:
// one span per count with an event per round. The span is created in
// CountStarted and ended in CountCompleted via the threaded context.
type TracingObserver struct {
	tracer trace.Tracer
}

var _ ports.CountObserver = (*TracingObserver)(nil)

// NewTracingObserver creates a TracingObserver using the globally
// registered tracer provider.
func NewTracingObserver() *TracingObserver {
	return &TracingObserver{tracer: otel.Tracer("github.com/liamblake/hcvote")}
}

// CountStarted implements ports.CountObserver.
func (o *TracingObserver) CountStarted(ctx context.Context, info ports.CountInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, "hcvote.count",
		trace.WithAttributes(
			attribute.String("count.id", info.CountID),
			attribute.String("count.position", info.Position),
			attribute.Int("count.candidates", info.Candidates),
			attribute.Int("count.vacancies", info.Vacancies),
			attribute.Float64("count.total_weight", info.TotalWeight),
		))
	return ctx
}

// RoundCompleted implements ports.CountObserver.
func (o *TracingObserver) RoundCompleted(ctx context.Context, info ports.CountInfo, snap domain.RoundSnapshot) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("round",
		trace.WithAttributes(
			attribute.Int("round.number", snap.Round),
			attribute.String("round.action", string(snap.Action)),
			attribute.Int("round.affected", len(snap.Affected)),
			attribute.Float64("round.exhausted_weight", snap.ExhaustedWeight),
		))
}

// CountCompleted implements ports.CountObserver.
func (o *TracingObserver) CountCompleted(ctx context.Context, info ports.CountInfo, result *domain.Result, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("count.rounds", len(result.Rounds)),
		attribute.Int("count.elected", len(result.Elected)),
		attribute.Float64("count.exhausted_weight", result.ExhaustedWeight),
	)
}
