package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for client operations.
	TracerName = "vidscribe/client"
)

// Span attribute keys
const (
	AttrRequestID  = "request_id"
	AttrLanguage   = "language"
	AttrSourceKind = "source_kind"
)

// Span names
const (
	SpanSubmitAnalysis = "client.submit_analysis"
	SpanClassify       = "client.classify"
	SpanAnswerQuestion = "client.answer_question"
)

// Tracer provides distributed tracing for client operations.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new client tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(TracerName),
	}
}

// StartSubmitSpan starts a span for one analysis submission.
func (t *Tracer) StartSubmitSpan(ctx context.Context, requestID, sourceKind, lang string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanSubmitAnalysis,
		trace.WithAttributes(
			attribute.String(AttrRequestID, requestID),
			attribute.String(AttrSourceKind, sourceKind),
			attribute.String(AttrLanguage, lang),
		),
	)
}

// StartClassifySpan starts a span for an intent classification call.
func (t *Tracer) StartClassifySpan(ctx context.Context, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanClassify,
		trace.WithAttributes(
			attribute.String(AttrRequestID, requestID),
		),
	)
}

// StartAnswerSpan starts a span for a question-answering call.
func (t *Tracer) StartAnswerSpan(ctx context.Context, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanAnswerQuestion,
		trace.WithAttributes(
			attribute.String(AttrRequestID, requestID),
		),
	)
}

// RecordError records err on the span and marks it failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

// RecordSuccess marks the span as successful.
func RecordSuccess(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
