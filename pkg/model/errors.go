package model

import "github.com/m-mizutani/goerr/v2"

// Error tags distinguish failure kinds across layer boundaries. The HTTP
// layer maps each tag to a response status.
var (
	ErrTagValidation = goerr.NewTag("validation")
	ErrTagEmbedding  = goerr.NewTag("embedding_unavailable")
	ErrTagGeneration = goerr.NewTag("generation_unavailable")
	ErrTagStore      = goerr.NewTag("store_unavailable")
)

var (
	ErrEmptyContent      = goerr.New("document content is empty", goerr.T(ErrTagValidation))
	ErrInvalidMetadata   = goerr.New("metadata is malformed", goerr.T(ErrTagValidation))
	ErrInvalidRole       = goerr.New("invalid message role", goerr.T(ErrTagValidation))
	ErrInvalidLimit      = goerr.New("limit must not be negative", goerr.T(ErrTagValidation))
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch", goerr.T(ErrTagValidation))
	ErrDocumentNotFound  = goerr.New("document not found")
)
