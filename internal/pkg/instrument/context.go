package instrument

import "context"

type correlationIDKeyType struct{}

var correlationIDKey correlationIDKeyType

// invalidChainID is returned when the context carries no usable correlation ID.
const invalidChainID = "[invalid_chain_id]"

// SetCorrelationID stores the request correlation ID in the context.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, cID)
}

// GetCorrelationID returns the correlation ID stored in the context, or a
// sentinel value when none is present.
func GetCorrelationID(ctx context.Context) string {
	cID, ok := ctx.Value(correlationIDKey).(string)
	if !ok || cID == "" {
		return invalidChainID
	}
	return cID
}
