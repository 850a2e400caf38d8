package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_RoundTrip(t *testing.T) {
	trace := &TraceContext{TraceID: "t-1", SpanID: "s-1", RequestID: "r-1"}
	ctx := WithTrace(context.Background(), trace)

	got := GetTrace(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.TraceID)
	assert.Equal(t, "r-1", GetRequestID(ctx))
}

func TestTrace_AbsentOutsideRequest(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTrace(ctx))
	assert.Equal(t, "", GetRequestID(ctx))
}
