// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// DataSetKey is the context key for the data set being imported.
type DataSetKey struct{}

// WithDataSetID returns a context carrying the ID of the data set in progress.
func WithDataSetID(ctx context.Context, dataSetID string) context.Context {
	return context.WithValue(ctx, DataSetKey{}, dataSetID)
}

// DataSetFromContext returns the data set ID from context, or empty string if not set.
func DataSetFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(DataSetKey{}).(string); ok {
		return v
	}
	return ""
}
