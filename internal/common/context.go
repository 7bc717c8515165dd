package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID contextKey = "run_id"
	ContextKeyDocID contextKey = "doc_id"
)

// WithRunID tags the context with the batch or daemon run it belongs to.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocID adds a document ID to the context
func WithDocID(ctx context.Context, docID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocID, docID)
}

// DocIDFromContext extracts the document ID from context
func DocIDFromContext(ctx context.Context) string {
	if docID, ok := ctx.Value(ContextKeyDocID).(string); ok {
		return docID
	}
	return ""
}
