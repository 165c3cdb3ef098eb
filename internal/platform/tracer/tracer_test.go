package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tickethub/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanVerifyCard, tracer.String(tracer.AttrRole, "user"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, 200))
	span.AddEvent("retry")
	span.End(errors.New("ignored"))
}

func TestOTelTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	tr := tracer.NewOTel(tracer.WithOTelTracer(provider.Tracer("test")))

	_, span := tr.Start(context.Background(), tracer.SpanSubmitPayment,
		tracer.Int64(tracer.AttrTicketID, 101),
		tracer.String(tracer.AttrMethod, "momo"),
	)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, "transport"))
	span.End(errors.New("connection reset"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, tracer.SpanSubmitPayment, got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.Int64(tracer.AttrTicketID, 101))
	assert.Contains(t, got.Attributes(), attribute.String(tracer.AttrOutcome, "transport"))
}

func TestHashCardNumber(t *testing.T) {
	assert.Empty(t, tracer.HashCardNumber(""))
	h := tracer.HashCardNumber("GHA-123456789-0")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tracer.HashCardNumber("GHA-123456789-0"))
	assert.NotEqual(t, h, tracer.HashCardNumber("GHA-987654321-0"))
}
