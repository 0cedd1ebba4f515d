package adapter

import (
	"context"
	"strings"

	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// GeminiClient implements EmbeddingClient and GenerationClient using the
// Gemini API via Vertex AI
type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	embeddingModel  string
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.5-flash",
		embeddingModel:  "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content")
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("embedding response is empty")
	}

	return resp.Embeddings[0].Values, nil
}

func (g *GeminiClient) Generate(ctx context.Context, messages []Message, contextText string) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(contextText), ""),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return generationPlaceholder, nil
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}

	if answer.Len() == 0 {
		return generationPlaceholder, nil
	}

	return answer.String(), nil
}
