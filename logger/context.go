package logger

import (
	"context"
)

// ContextKey names a context value that is copied into every log record
// written through the *Context helpers.
type ContextKey string

const (
	ExecutionIDKey ContextKey = "execution_id"
	TableKey       ContextKey = "table"
	RequestIDKey   ContextKey = "request_id"
)

// order in which the keys appear on a record
var recordKeys = []ContextKey{RequestIDKey, TableKey, ExecutionIDKey}

func WithContextValue(ctx context.Context, key ContextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// ExtractContextValues returns the key/value pairs of every non-empty
// record key set on ctx.
func ExtractContextValues(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var args []any
	for _, key := range recordKeys {
		if v, _ := ctx.Value(key).(string); v != "" {
			args = append(args, string(key), v)
		}
	}
	return args
}
