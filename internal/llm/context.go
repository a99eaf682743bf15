package llm

import "context"

type purposeKey struct{}

// DefaultPurpose labels requests made without WithPurpose.
const DefaultPurpose = "unknown"

// WithPurpose tags requests made with ctx, e.g. "explanation".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose tag or DefaultPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultPurpose
}
