package goPortal

import "context"

type operatorContextKey struct{}
type clientIPContextKey struct{}

// Operator identifies who triggered a state-changing operation. It is stamped
// into every published portal event so downstream systems can attribute
// password changes and status flips.
type Operator struct {
	ID   string
	Name string
}

// WithOperator attaches the acting operator to ctx. State-changing engine
// methods read it when constructing portal events; an absent operator is
// recorded as the user acting on their own behalf.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// WithClientIP attaches the caller's IP address to ctx. The engine uses it
// for audit records on ticket and token operations.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func operatorFromContext(ctx context.Context) Operator {
	if ctx == nil {
		return Operator{}
	}

	op, _ := ctx.Value(operatorContextKey{}).(Operator)
	return op
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
