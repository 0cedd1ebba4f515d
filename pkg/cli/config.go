package cli

import (
	"context"
	"os"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/usecase/chat"
	"github.com/granary-dev/granary/pkg/usecase/ingest"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	logLevel string

	// Repository
	repoType string
	project  string
	database string

	// Adapters
	geminiProject   string
	geminiLocation  string
	anthropicAPIKey string
	backend         string

	// Ingestion
	policyDir string

	// Analytics routing
	salesTable      string
	classifierRules string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("GRANARY_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "repository",
			Aliases:     []string{"r"},
			Usage:       "Repository backend (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("GRANARY_REPOSITORY"),
			Destination: &cfg.repoType,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for model backend configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key (enables the claude generation backend)",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "generation-backend",
			Usage:       "Generation backend (gemini or claude)",
			Value:       "gemini",
			Sources:     cli.EnvVars("GRANARY_GENERATION_BACKEND"),
			Destination: &cfg.backend,
		},
	}
}

// setupLogger configures the default logger from the log-level flag
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.repoType {
	case "memory":
		return repository.NewMemory(), nil

	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore repository")
		}
		if cfg.database == "" {
			return nil, goerr.New("database is required for the firestore repository")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown repository backend", goerr.V("repository", cfg.repoType))
	}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	project := cfg.geminiProject
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, project, cfg.geminiLocation)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return gemini, nil
}

// newGeneration picks the generation backend. Embedding always stays on
// Gemini.
func (cfg *config) newGeneration(gemini *adapter.GeminiClient) (adapter.GenerationClient, error) {
	switch cfg.backend {
	case "gemini", "":
		return gemini, nil
	case "claude":
		if cfg.anthropicAPIKey == "" {
			return nil, goerr.New("anthropic-api-key is required for the claude backend")
		}
		return adapter.NewClaude(cfg.anthropicAPIKey), nil
	default:
		return nil, goerr.New("unknown generation backend", goerr.V("backend", cfg.backend))
	}
}

// newIngest creates the ingest use case, loading the admission policy when
// configured
func (cfg *config) newIngest(ctx context.Context, repo repository.Repository, embedder adapter.EmbeddingClient) (*ingest.UseCase, error) {
	var opts []ingest.Option
	if cfg.policyDir != "" {
		policy, err := ingest.NewPolicy(ctx, cfg.policyDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load ingest policy")
		}
		opts = append(opts, ingest.WithPolicy(policy))
	}
	return ingest.New(repo, embedder, opts...), nil
}

// newChat creates the chat use case, wiring the analytics route when a sales
// table is configured
func (cfg *config) newChat(ctx context.Context, retrieval *search.UseCase, llm adapter.GenerationClient, analytics chat.Analytics) (*chat.UseCase, error) {
	var opts []chat.Option
	if analytics == nil && cfg.classifierRules != "" {
		logging.From(ctx).Warn("classifier-rules is set but analytics routing is disabled; set sales-table to enable it",
			"classifier_rules", cfg.classifierRules)
	}
	if analytics != nil {
		classifier := chat.NewKeywordClassifier()
		if cfg.classifierRules != "" {
			loaded, err := chat.LoadKeywordClassifier(cfg.classifierRules)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to load classifier rules")
			}
			classifier = loaded
		}
		opts = append(opts, chat.WithClassifier(classifier), chat.WithAnalytics(analytics))
	}
	return chat.New(retrieval, llm, opts...), nil
}
