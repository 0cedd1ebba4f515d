package adapter

import (
	"context"
	_ "embed"

	"github.com/granary-dev/granary/pkg/model"
)

// Message is a single role-tagged turn passed to a generation backend
type Message struct {
	Role    model.Role
	Content string
}

// EmbeddingClient maps text to a fixed-length embedding vector
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationClient produces an answer from an ordered transcript. The
// implementation prepends its own system instruction built from contextText;
// an empty contextText yields an ungrounded instruction.
type GenerationClient interface {
	Generate(ctx context.Context, messages []Message, contextText string) (string, error)
}

// Returned when the backend produces no text at all
const generationPlaceholder = "No response generated"

//go:embed prompt/system.md
var systemPromptRaw string

// systemInstruction builds the system-level instruction for a generation
// call, embedding retrieved context when present
func systemInstruction(contextText string) string {
	if contextText == "" {
		return "You are a helpful assistant."
	}
	return systemPromptRaw + "\n\nContext:\n" + contextText
}
