package search_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.embedFunc(ctx, text)
}

type failingRepo struct {
	repository.Repository
}

func (r *failingRepo) ScanEmbedded(ctx context.Context) ([]*model.Document, error) {
	return nil, goerr.New("connection refused")
}

func putDocument(t *testing.T, repo repository.Repository, id, content string, vec []float32) {
	t.Helper()
	doc := &model.Document{
		ID:        model.DocumentID(id),
		Content:   content,
		Embedding: firestore.Vector32(vec),
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutDocument(context.Background(), doc))
}

func TestSearchRanksAndRejoins(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	putDocument(t, repo, "cats", "a document about cats", []float32{1, 0})
	putDocument(t, repo, "dogs", "a document about dogs", []float32{0, 1})
	putDocument(t, repo, "pets", "a document about pets", []float32{0.9, 0.1})

	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	uc := search.New(repo, embedder)
	results, err := uc.Search(ctx, "tell me about cats", 2)
	gt.NoError(t, err)
	gt.A(t, results).Length(2)

	gt.Equal(t, results[0].Document.ID, model.DocumentID("cats"))
	gt.Equal(t, results[0].Document.Content, "a document about cats")
	gt.Equal(t, results[1].Document.ID, model.DocumentID("pets"))
	gt.True(t, results[0].Score >= results[1].Score)
}

func TestSearchDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		putDocument(t, repo, id, "content "+id, []float32{1, 0})
	}

	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	uc := search.New(repo, embedder)
	results, err := uc.Search(ctx, "anything", 0)
	gt.NoError(t, err)
	gt.A(t, results).Length(5)
}

func TestSearchNegativeLimit(t *testing.T) {
	uc := search.New(repository.NewMemory(), &mockEmbedder{})

	_, err := uc.Search(context.Background(), "query", -1)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
}

func TestSearchEmptyStore(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	uc := search.New(repository.NewMemory(), embedder)
	results, err := uc.Search(context.Background(), "query", 3)
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestSearchSkipsDocumentsWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	putDocument(t, repo, "embedded", "embedded content", []float32{1, 0})
	gt.NoError(t, repo.PutDocument(ctx, &model.Document{
		ID:        "bare",
		Content:   "never embedded",
		CreatedAt: time.Now(),
	}))

	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	uc := search.New(repo, embedder)
	results, err := uc.Search(ctx, "query", 10)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].Document.ID, model.DocumentID("embedded"))
}

func TestSearchEmbeddingFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, goerr.New("quota exceeded")
		},
	}

	uc := search.New(repository.NewMemory(), embedder)
	_, err := uc.Search(context.Background(), "query", 3)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagEmbedding))
}

func TestSearchStoreFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	uc := search.New(&failingRepo{}, embedder)
	_, err := uc.Search(context.Background(), "query", 3)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagStore))
}
