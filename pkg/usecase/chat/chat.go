package chat

import (
	"context"
	"strings"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Number of documents retrieved to ground one chat turn
const retrievalLimit = 3

// Analytics answers structured queries from the sales dataset. Consulted
// only when the classifier routes a message away from retrieval.
type Analytics interface {
	Answer(ctx context.Context, query string) (string, error)
}

// UseCase drives one retrieve-then-generate chat turn. It keeps no state
// between calls; the conversation history is supplied by the caller.
type UseCase struct {
	retrieval  *search.UseCase
	llm        adapter.GenerationClient
	classifier Classifier
	analytics  Analytics
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClassifier installs an intent classifier consulted before retrieval
func WithClassifier(c Classifier) Option {
	return func(uc *UseCase) {
		uc.classifier = c
	}
}

// WithAnalytics installs the analytics backend for structured queries
func WithAnalytics(a Analytics) Option {
	return func(uc *UseCase) {
		uc.analytics = a
	}
}

// New creates a new chat UseCase instance
func New(retrieval *search.UseCase, llm adapter.GenerationClient, opts ...Option) *UseCase {
	uc := &UseCase{
		retrieval: retrieval,
		llm:       llm,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Chat answers a single user message grounded on retrieved documents. The
// history is an ordered transcript, oldest first; the current message is
// appended as the final user turn.
func (u *UseCase) Chat(ctx context.Context, message string, history []*model.ChatMessage) (*model.ChatResponse, error) {
	if u.classifier != nil && u.analytics != nil && u.classifier.Classify(message) == IntentStructuredQuery {
		logging.From(ctx).Debug("message routed to analytics")

		answer, err := u.analytics.Answer(ctx, message)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to answer structured query")
		}

		return &model.ChatResponse{
			Answer:    answer,
			Sources:   []*model.SearchResult{},
			MessageID: model.NewMessageID(),
		}, nil
	}

	sources, err := u.retrieval.Search(ctx, message, retrievalLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve context documents")
	}

	// Context is the retrieved contents in rank order. Empty context is
	// valid; the provider's prompt tells the model to say when it lacks
	// information.
	contents := make([]string, 0, len(sources))
	for _, src := range sources {
		contents = append(contents, src.Document.Content)
	}
	contextText := strings.Join(contents, "\n\n")

	messages := make([]adapter.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, adapter.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, adapter.Message{Role: model.RoleUser, Content: message})

	answer, err := u.llm.Generate(ctx, messages, contextText)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer", goerr.T(model.ErrTagGeneration))
	}

	if sources == nil {
		sources = []*model.SearchResult{}
	}

	return &model.ChatResponse{
		Answer:    answer,
		Sources:   sources,
		MessageID: model.NewMessageID(),
	}, nil
}
