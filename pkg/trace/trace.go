package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// HeaderName 传递 trace_id 的 HTTP header
const HeaderName = "X-Trace-ID"

type ctxKey struct{}

// GenerateTraceID returns 16 random bytes, hex encoded.
func GenerateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// Ensure 确保 context 中有 trace_id，没有则生成
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := GenerateTraceID()
	return WithContext(ctx, id), id
}
