package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/m-mizutani/gt"
)

func TestMemoryPutAndGet(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	doc := &model.Document{
		ID:        model.NewDocumentID(),
		Content:   "stored content",
		Metadata:  model.Metadata{"source": "test"},
		Embedding: firestore.Vector32{0.1, 0.2},
		CreatedAt: time.Now(),
	}

	gt.NoError(t, repo.PutDocument(ctx, doc))

	retrieved, err := repo.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.ID, doc.ID)
	gt.Equal(t, retrieved.Content, doc.Content)
	gt.Equal(t, retrieved.Metadata["source"], "test")
}

func TestMemoryGetNotFound(t *testing.T) {
	repo := repository.NewMemory()

	_, err := repo.GetDocument(context.Background(), model.DocumentID("no-such-doc"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrDocumentNotFound))
}

func TestMemoryCloneIsolation(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	doc := &model.Document{
		ID:        model.NewDocumentID(),
		Content:   "original",
		Metadata:  model.Metadata{"key": "value"},
		Embedding: firestore.Vector32{1, 2},
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutDocument(ctx, doc))

	// mutating the caller's copy must not leak into the store
	doc.Metadata["key"] = "mutated"
	doc.Embedding[0] = 99

	retrieved, err := repo.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.Metadata["key"], "value")
	gt.Equal(t, retrieved.Embedding[0], float32(1))

	// and mutating a retrieved copy must not affect later reads
	retrieved.Metadata["key"] = "mutated again"
	again, err := repo.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, again.Metadata["key"], "value")
}

func TestMemoryListOrderingAndLimit(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	now := time.Now()

	ids := make([]model.DocumentID, 3)
	for i := 0; i < 3; i++ {
		ids[i] = model.NewDocumentID()
		gt.NoError(t, repo.PutDocument(ctx, &model.Document{
			ID:        ids[i],
			Content:   "doc",
			CreatedAt: now.Add(time.Duration(i) * time.Hour),
		}))
	}

	docs, err := repo.ListDocuments(ctx, 0)
	gt.NoError(t, err)
	gt.A(t, docs).Length(3)
	gt.Equal(t, docs[0].ID, ids[2])
	gt.Equal(t, docs[1].ID, ids[1])
	gt.Equal(t, docs[2].ID, ids[0])

	limited, err := repo.ListDocuments(ctx, 2)
	gt.NoError(t, err)
	gt.A(t, limited).Length(2)
	gt.Equal(t, limited[0].ID, ids[2])
}

func TestMemoryScanEmbeddedFilters(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	embedded := &model.Document{
		ID:        model.NewDocumentID(),
		Content:   "embedded",
		Embedding: firestore.Vector32{1, 0},
		CreatedAt: time.Now(),
	}
	bare := &model.Document{
		ID:        model.NewDocumentID(),
		Content:   "bare",
		CreatedAt: time.Now(),
	}

	gt.NoError(t, repo.PutDocument(ctx, embedded))
	gt.NoError(t, repo.PutDocument(ctx, bare))

	docs, err := repo.ScanEmbedded(ctx)
	gt.NoError(t, err)
	gt.A(t, docs).Length(1)
	gt.Equal(t, docs[0].ID, embedded.ID)
}

func TestMemoryPutOverwrites(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	id := model.NewDocumentID()
	gt.NoError(t, repo.PutDocument(ctx, &model.Document{ID: id, Content: "v1", CreatedAt: time.Now()}))
	gt.NoError(t, repo.PutDocument(ctx, &model.Document{ID: id, Content: "v2", CreatedAt: time.Now()}))

	retrieved, err := repo.GetDocument(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.Content, "v2")

	docs, err := repo.ListDocuments(ctx, 0)
	gt.NoError(t, err)
	gt.A(t, docs).Length(1)
}
