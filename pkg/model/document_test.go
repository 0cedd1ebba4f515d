package model_test

import (
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestDocumentValidate(t *testing.T) {
	doc := &model.Document{
		ID:      model.NewDocumentID(),
		Content: "some content",
	}
	gt.NoError(t, doc.Validate())
}

func TestDocumentValidateEmptyContent(t *testing.T) {
	for _, content := range []string{"", "  ", "\t\n"} {
		doc := &model.Document{ID: model.NewDocumentID(), Content: content}
		err := doc.Validate()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrEmptyContent))
		gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
	}
}

func TestDocumentValidateBadMetadata(t *testing.T) {
	doc := &model.Document{
		ID:       model.NewDocumentID(),
		Content:  "content",
		Metadata: model.Metadata{"": "empty key"},
	}
	err := doc.Validate()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidMetadata))
}

func TestDocumentSearchable(t *testing.T) {
	doc := &model.Document{ID: model.NewDocumentID(), Content: "x"}
	gt.False(t, doc.Searchable())

	doc.Embedding = firestore.Vector32{0.1}
	gt.True(t, doc.Searchable())
}

func TestNewDocumentIDUnique(t *testing.T) {
	seen := map[model.DocumentID]bool{}
	for i := 0; i < 100; i++ {
		id := model.NewDocumentID()
		gt.True(t, id != "")
		gt.False(t, seen[id])
		seen[id] = true
	}
}

func TestRoleValidate(t *testing.T) {
	gt.NoError(t, model.RoleUser.Validate())
	gt.NoError(t, model.RoleAssistant.Validate())

	err := model.Role("system").Validate()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidRole))
}
