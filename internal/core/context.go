package core

import "context"

type contextKey string

const ctxKeyRequestMeta contextKey = "request_meta"

// RequestMeta identifies the client behind an operation for the audit log.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ContextWithRequestMeta attaches client details to ctx.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, ctxKeyRequestMeta, meta)
}

// RequestMetaFromContext returns the client details attached to ctx, if any.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(ctxKeyRequestMeta).(RequestMeta)
	return meta
}
