package client

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/vidscribe/vidscribe-cli/pkg/observability"
)

// Classification is the service's verdict on one chat utterance.
type Classification struct {
	// Intent is the intent label, e.g. "upload_video" or "ask_question".
	// Labels outside the known set are treated as unrecognized downstream.
	Intent string `json:"intent"`

	// Parameters carries intent-specific slots, e.g. "url", "page_name",
	// "section_name".
	Parameters map[string]string `json:"parameters"`
}

// Classify asks the service to classify a chat utterance into an intent.
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	requestID := newRequestID()

	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartClassifySpan(ctx, requestID)
		defer span.End()
	}

	req := struct {
		Text string `json:"text"`
	}{Text: text}

	var resp Classification
	if err := c.postJSON(ctx, endpointClassify, requestID, req, &resp); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.RecordSuccess(span)
	return &resp, nil
}

// AnswerQuestion asks the service to answer a question against the supplied
// transcript context.
func (c *Client) AnswerQuestion(ctx context.Context, question, transcript string) (string, error) {
	requestID := newRequestID()

	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartAnswerSpan(ctx, requestID)
		defer span.End()
	}

	req := struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}{Question: question, Context: transcript}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.postJSON(ctx, endpointAnswer, requestID, req, &resp); err != nil {
		observability.RecordError(span, err)
		return "", err
	}
	observability.RecordSuccess(span)
	return resp.Answer, nil
}
