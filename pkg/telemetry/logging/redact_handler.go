package logging

import (
	"context"
	"log/slog"
)

// redactHandler is a slog.Handler middleware that masks credentials in
// messages and attribute values before the wrapped handler formats them.
// Values bound with With pass through it too, so a logger obtained from
// Logger.Slog keeps redacting.
type redactHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

func newRedactHandler(inner slog.Handler, redactor *Redactor) slog.Handler {
	return &redactHandler{inner: inner, redactor: redactor}
}

func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, h.redactor.RedactString(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactAttr(attr)
	}
	return &redactHandler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

// redactAttr masks one attribute. String values under a sensitive key are
// masked wholesale; other strings go through the pattern set. Groups are
// walked recursively and non-string kinds pass untouched.
func (h *redactHandler) redactAttr(attr slog.Attr) slog.Attr {
	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		if isSensitiveKey(attr.Key) {
			return slog.String(attr.Key, h.redactor.redactValue(value.String()))
		}
		return slog.String(attr.Key, h.redactor.RedactString(value.String()))
	case slog.KindGroup:
		members := value.Group()
		out := make([]slog.Attr, len(members))
		for i, member := range members {
			out[i] = h.redactAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(out...)}
	default:
		return slog.Attr{Key: attr.Key, Value: value}
	}
}
