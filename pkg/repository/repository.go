package repository

import (
	"context"

	"github.com/granary-dev/granary/pkg/model"
)

// Repository defines the interface for document persistence. One instance is
// acquired at process startup, shared across requests, and closed on
// shutdown.
type Repository interface {
	// PutDocument saves a document to the repository
	PutDocument(ctx context.Context, doc *model.Document) error

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// ListDocuments retrieves documents ordered most-recently-created first
	ListDocuments(ctx context.Context, limit int) ([]*model.Document, error)

	// ScanEmbedded retrieves all documents that carry an embedding. This is a
	// full collection scan; ranking happens in the caller.
	ScanEmbedded(ctx context.Context) ([]*model.Document, error)

	// Close releases the underlying store handle
	Close() error
}
