package adapter

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// ClaudeClient implements GenerationClient using the Anthropic API. Claude
// has no embedding endpoint, so embedding stays on Gemini even when Claude
// handles generation.
type ClaudeClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

type ClaudeOption func(*ClaudeClient)

func WithClaudeModel(m anthropic.Model) ClaudeOption {
	return func(c *ClaudeClient) {
		c.model = m
	}
}

// NewClaude creates a new Anthropic API client
func NewClaude(apiKey string, opts ...ClaudeOption) *ClaudeClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	c := &ClaudeClient{
		client: &client,
		model:  anthropic.ModelClaudeSonnet4_5,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *ClaudeClient) Generate(ctx context.Context, messages []Message, contextText string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction(contextText)},
		},
	}

	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create message")
	}

	var answer strings.Builder
	for _, content := range resp.Content {
		if content.Type == "text" {
			text := content.AsText()
			answer.WriteString(text.Text)
		}
	}

	if answer.Len() == 0 {
		return generationPlaceholder, nil
	}

	return answer.String(), nil
}
