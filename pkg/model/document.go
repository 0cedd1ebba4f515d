package model

import (
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type DocumentID string

// NewDocumentID generates a new unique DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// Metadata is an open key-value mapping attached to a document. Values come
// from caller-supplied JSON: strings, numbers, booleans or nested mappings.
// The contents are not interpreted by this system.
type Metadata map[string]any

// Validate checks that the metadata is well-formed structured data
func (m Metadata) Validate() error {
	for key := range m {
		if key == "" {
			return goerr.Wrap(ErrInvalidMetadata, "metadata key is empty")
		}
	}
	return nil
}

// Document is a stored piece of text with its embedding vector. Documents are
// immutable after ingestion.
type Document struct {
	ID        DocumentID         `json:"id"`
	Content   string             `json:"content"`
	Metadata  Metadata           `json:"metadata,omitempty"`
	Embedding firestore.Vector32 `json:"embedding,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Validate checks the document against ingestion preconditions
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return goerr.Wrap(ErrEmptyContent, "document validation failed")
	}
	if err := d.Metadata.Validate(); err != nil {
		return err
	}
	return nil
}

// Searchable reports whether the document carries an embedding and is
// eligible as a ranking candidate
func (d *Document) Searchable() bool {
	return len(d.Embedding) > 0
}

// SearchResult pairs a document with its similarity score for one query.
// Score is the cosine similarity between the query embedding and the
// document embedding, in [-1, 1] for well-formed inputs.
type SearchResult struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}
