package querylog

import "context"

// contextKey is an unexported type for keys defined in this package.
type contextKey struct{}

// WithPanel returns a context whose statements are logged to p.
func WithPanel(parent context.Context, p *Panel) context.Context {
	return context.WithValue(parent, contextKey{}, p)
}

// FromContext returns the panel stored by WithPanel, or nil.
func FromContext(ctx context.Context) *Panel {
	p, _ := ctx.Value(contextKey{}).(*Panel)
	return p
}
