package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

type stubEmbedder struct{}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type stubGeneration struct{}

func (g *stubGeneration) Generate(ctx context.Context, messages []adapter.Message, contextText string) (string, error) {
	return "ok", nil
}

type stubAnalytics struct{}

func (a *stubAnalytics) Answer(ctx context.Context, query string) (string, error) {
	return "report", nil
}

func TestNewChatWarnsOnUnusedClassifierRules(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("warn", buf))

	cfg := &config{classifierRules: "rules.yml"}
	retrieval := search.New(repository.NewMemory(), &stubEmbedder{})

	uc, err := cfg.newChat(ctx, retrieval, &stubGeneration{}, nil)
	gt.NoError(t, err)
	gt.V(t, uc).NotNil()

	gt.S(t, buf.String()).Contains("classifier-rules is set but analytics routing is disabled")
}

func TestNewChatNoWarningWithAnalytics(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("warn", buf))

	cfg := &config{}
	retrieval := search.New(repository.NewMemory(), &stubEmbedder{})

	uc, err := cfg.newChat(ctx, retrieval, &stubGeneration{}, &stubAnalytics{})
	gt.NoError(t, err)
	gt.V(t, uc).NotNil()

	gt.S(t, buf.String()).NotContains("classifier-rules")
}

func TestNewChatRejectsBadRulesFile(t *testing.T) {
	cfg := &config{classifierRules: "no-such-rules.yml"}
	retrieval := search.New(repository.NewMemory(), &stubEmbedder{})

	_, err := cfg.newChat(context.Background(), retrieval, &stubGeneration{}, &stubAnalytics{})
	gt.Error(t, err)
}
