package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// UseCase ingests documents: validate, embed, persist
type UseCase struct {
	repo     repository.Repository
	embedder adapter.EmbeddingClient
	policy   *Policy
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithPolicy installs an admission policy evaluated before embedding
func WithPolicy(p *Policy) Option {
	return func(uc *UseCase) {
		uc.policy = p
	}
}

// New creates a new ingest UseCase instance
func New(repo repository.Repository, embedder adapter.EmbeddingClient, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		embedder: embedder,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Add validates, embeds and stores a single document and returns its ID.
// Validation and policy admission run before the embedding call so a
// rejected document never reaches the provider.
func (u *UseCase) Add(ctx context.Context, content string, metadata model.Metadata) (model.DocumentID, error) {
	doc := &model.Document{
		ID:        model.NewDocumentID(),
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	if err := doc.Validate(); err != nil {
		return "", err
	}

	if err := u.policy.Admit(ctx, doc); err != nil {
		return "", err
	}

	vec, err := u.embedder.Embed(ctx, content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to embed document", goerr.T(model.ErrTagEmbedding))
	}
	doc.Embedding = firestore.Vector32(vec)

	if err := u.repo.PutDocument(ctx, doc); err != nil {
		return "", goerr.Wrap(err, "failed to store document", goerr.T(model.ErrTagStore), goerr.V("id", doc.ID))
	}

	return doc.ID, nil
}

// Item is one entry of a bulk ingestion request
type Item struct {
	Content  string         `json:"content"`
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// BulkResult reports per-item outcomes of a bulk ingestion as counts. Which
// item failed with what reason is not carried here; callers needing
// diagnostics must track failures separately.
type BulkResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// AddBulk ingests each item independently. A failing item never aborts its
// siblings and the batch itself never fails.
func (u *UseCase) AddBulk(ctx context.Context, items []Item) *BulkResult {
	result := &BulkResult{}
	for i, item := range items {
		if _, err := u.Add(ctx, item.Content, item.Metadata); err != nil {
			logging.From(ctx).Warn("bulk ingest item failed", "index", i, "error", err)
			result.Failed++
			continue
		}
		result.Successful++
	}
	return result
}

// AddFromReader ingests one JSON-encoded Item per line (JSONL) from r with
// the same per-item accounting as AddBulk. Malformed lines count as failed
// items.
func (u *UseCase) AddFromReader(ctx context.Context, r io.Reader) (*BulkResult, error) {
	result := &BulkResult{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			logging.From(ctx).Warn("skipping malformed ingest line", "line", lineNo, "error", err)
			result.Failed++
			continue
		}

		if _, err := u.Add(ctx, item.Content, item.Metadata); err != nil {
			logging.From(ctx).Warn("bulk ingest item failed", "line", lineNo, "error", err)
			result.Failed++
			continue
		}
		result.Successful++
	}

	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read ingest source")
	}

	return result, nil
}
