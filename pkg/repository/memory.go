package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Memory implements Repository with an in-process map. Used by tests and the
// `--repository memory` development mode.
type Memory struct {
	mu    sync.RWMutex
	docs  map[model.DocumentID]*model.Document
	order []model.DocumentID
}

// NewMemory creates a new in-memory repository
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[model.DocumentID]*model.Document),
	}
}

// cloneDocument copies a document so callers never share mutable state with
// the store
func cloneDocument(doc *model.Document) *model.Document {
	clone := *doc
	if doc.Metadata != nil {
		clone.Metadata = make(model.Metadata, len(doc.Metadata))
		for k, v := range doc.Metadata {
			clone.Metadata[k] = v
		}
	}
	if doc.Embedding != nil {
		clone.Embedding = append(clone.Embedding[:0:0], doc.Embedding...)
	}
	return &clone
}

func (r *Memory) PutDocument(ctx context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; !ok {
		r.order = append(r.order, doc.ID)
	}
	r.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *Memory) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrDocumentNotFound, "no such document", goerr.V("id", id))
	}
	return cloneDocument(doc), nil
}

func (r *Memory) ListDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*model.Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, cloneDocument(r.docs[id]))
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (r *Memory) ScanEmbedded(ctx context.Context) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*model.Document
	for _, id := range r.order {
		doc := r.docs[id]
		if !doc.Searchable() {
			continue
		}
		docs = append(docs, cloneDocument(doc))
	}
	return docs, nil
}

func (r *Memory) Close() error {
	return nil
}
