package tracing

import (
	"context"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan_ChildOfParent(t *testing.T) {
	tr := mocktracer.New()

	parent, ctx := StartSpan(context.Background(), tr, "parent")
	child, childCtx := StartSpan(ctx, tr, "child")
	child.Finish()
	parent.Finish()

	spans := tr.FinishedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].OperationName)
	assert.Equal(t, spans[1].SpanContext.SpanID, spans[0].ParentID)
	assert.Equal(t, child, opentracing.SpanFromContext(childCtx))

	// mocktracer не jaeger: id в контекст не попадают
	assert.Empty(t, TraceID(childCtx))
}

func TestStartSpan_NilTracerUsesGlobal(t *testing.T) {
	span, ctx := StartSpan(context.Background(), nil, "noop")
	defer span.Finish()
	assert.NotNil(t, opentracing.SpanFromContext(ctx))
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("riskcalc")
	defer SetServiceName(old)
	assert.Equal(t, "riskcalc", SetServiceName("riskcalc"))
}
