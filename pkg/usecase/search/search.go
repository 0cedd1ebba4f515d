package search

import (
	"context"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const defaultLimit = 5

// UseCase performs query-to-document similarity search
type UseCase struct {
	repo     repository.Repository
	embedder adapter.EmbeddingClient
}

// New creates a new search UseCase instance
func New(repo repository.Repository, embedder adapter.EmbeddingClient) *UseCase {
	return &UseCase{
		repo:     repo,
		embedder: embedder,
	}
}

// Search embeds the query, scans all embedded documents, and returns up to
// `limit` results ordered by descending cosine similarity. limit 0 means the
// default of 5. An empty result is a valid outcome and distinct from an
// error.
func (u *UseCase) Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	if limit < 0 {
		return nil, goerr.Wrap(model.ErrInvalidLimit, "invalid search limit", goerr.V("limit", limit))
	}
	if limit == 0 {
		limit = defaultLimit
	}

	queryVec, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.T(model.ErrTagEmbedding))
	}

	docs, err := u.repo.ScanEmbedded(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan documents", goerr.T(model.ErrTagStore))
	}

	candidates := make([]Candidate, 0, len(docs))
	byID := make(map[model.DocumentID]*model.Document, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, Candidate{ID: doc.ID, Vector: doc.Embedding})
		byID[doc.ID] = doc
	}

	ranked, err := Rank(queryVec, candidates, limit)
	if err != nil {
		return nil, err
	}

	// Rejoin ranked IDs with the full documents. The ranker's ordering is
	// final; no re-sorting here.
	results := make([]*model.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, &model.SearchResult{
			Document: byID[r.ID],
			Score:    r.Score,
		})
	}

	logging.From(ctx).Debug("similarity search completed",
		"candidates", len(candidates),
		"results", len(results),
		"limit", limit,
	)

	return results, nil
}
