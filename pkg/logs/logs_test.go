package logs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestLokiPushURL(t *testing.T) {
	assert.Equal(t, "http://loki:3100/loki/api/v1/push", lokiPushURL("http://loki:3100"))
	assert.Equal(t, "http://loki:3100/loki/api/v1/push", lokiPushURL("http://loki:3100/"))
	assert.Equal(t, "http://loki:3100/loki/api/v1/push", lokiPushURL("http://loki:3100/loki/api/v1/push"))
}

func TestMultiHandlerFanOut(t *testing.T) {
	var debugBuf, errBuf bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("service", "diamond")

	logger.Info("patient created")
	assert.Contains(t, debugBuf.String(), "patient created")
	assert.Contains(t, debugBuf.String(), "service=diamond")
	assert.Empty(t, errBuf.String())

	logger.Error("db down")
	assert.Contains(t, errBuf.String(), "db down")

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug-1))
}

type stubClaims struct{ id uuid.UUID }

func (s stubClaims) GetUserID() uuid.UUID     { return s.id }
func (s stubClaims) GetSessionID() *uuid.UUID { return nil }
func (s stubClaims) GetTokenType() string     { return "access" }
func (s stubClaims) GetRole() string          { return "admin" }
func (s stubClaims) IsExpired() bool          { return false }

func TestContextHandlerStampsRequestIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newContextHandler(slog.NewTextHandler(&buf, nil))).With("service", "diamond")

	logger.InfoContext(context.Background(), "no request")
	assert.NotContains(t, buf.String(), "request_id")
	buf.Reset()

	uid := uuid.New()
	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid}))
	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: "req-9"})
	ctx = reqctx.WithClaims(ctx, stubClaims{id: uid})

	logger.InfoContext(ctx, "patient created")
	out := buf.String()
	assert.Contains(t, out, "request_id=req-9")
	assert.Contains(t, out, "trace_id=4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Contains(t, out, "span_id=00f067aa0ba902b7")
	assert.Contains(t, out, "user_id="+uid.String())
	assert.Contains(t, out, "service=diamond")
}
