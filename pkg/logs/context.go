package logs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

// contextHandler stamps request, trace and caller ids from the record's
// context onto every record.
type contextHandler struct {
	slog.Handler
}

func newContextHandler(h slog.Handler) *contextHandler {
	return &contextHandler{Handler: h}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
			r.AddAttrs(slog.String("request_id", rid))
		}
		if tid := reqctx.TraceIDFromContext(ctx); tid != "" {
			r.AddAttrs(slog.String("trace_id", tid), slog.String("span_id", reqctx.SpanIDFromContext(ctx)))
		}
		if uid, ok := reqctx.UserIDFromContext(ctx); ok && uid != uuid.Nil {
			r.AddAttrs(slog.String("user_id", uid.String()))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
