package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const documentCollection = "documents"

// Firestore implements Repository using Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project", projectID))
	}

	return &Firestore{
		client: client,
	}, nil
}

func (r *Firestore) PutDocument(ctx context.Context, doc *model.Document) error {
	ref := r.client.Collection(documentCollection).Doc(string(doc.ID))
	if _, err := ref.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put document", goerr.T(model.ErrTagStore), goerr.V("id", doc.ID))
	}
	return nil
}

func (r *Firestore) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	snap, err := r.client.Collection(documentCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrDocumentNotFound, "no such document", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.T(model.ErrTagStore), goerr.V("id", id))
	}

	var doc model.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", id))
	}

	return &doc, nil
}

func (r *Firestore) ListDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	query := r.client.Collection(documentCollection).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []*model.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list documents", goerr.T(model.ErrTagStore))
		}

		var doc model.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("ref", snap.Ref.ID))
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *Firestore) ScanEmbedded(ctx context.Context) ([]*model.Document, error) {
	iter := r.client.Collection(documentCollection).Documents(ctx)
	defer iter.Stop()

	var docs []*model.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan documents", goerr.T(model.ErrTagStore))
		}

		var doc model.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("ref", snap.Ref.ID))
		}

		// Documents without an embedding are not search candidates
		if !doc.Searchable() {
			continue
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *Firestore) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
