package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

type claims struct {
	id      uuid.UUID
	expires time.Time
}

func (c claims) GetUserID() uuid.UUID     { return c.id }
func (c claims) GetSessionID() *uuid.UUID { return nil }
func (c claims) GetTokenType() string     { return "access" }
func (c claims) GetRole() string          { return "doctor" }
func (c claims) IsExpired() bool          { return time.Now().After(c.expires) }

func TestClaims(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ClaimsFromContext(ctx))
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	id := uuid.New()
	ctx = WithClaims(ctx, claims{id: id, expires: time.Now().Add(time.Hour)})
	assert.Equal(t, "doctor", ClaimsFromContext(ctx).GetRole())

	got, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestIDFromContext(ctx))

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1"})
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	meta, ok := RequestMetaFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", meta.RequestID)
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))

	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceIDFromContext(ctx))
	assert.Equal(t, "00f067aa0ba902b7", SpanIDFromContext(ctx))
}
