package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/server"
	"github.com/granary-dev/granary/pkg/usecase/analytics"
	"github.com/granary-dev/granary/pkg/usecase/chat"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       "127.0.0.1:5000",
			Sources:     cli.EnvVars("GRANARY_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego ingest policies",
			Sources:     cli.EnvVars("GRANARY_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "sales-table",
			Usage:       "Fully qualified BigQuery sales table (enables analytics routing)",
			Sources:     cli.EnvVars("GRANARY_SALES_TABLE"),
			Destination: &cfg.salesTable,
		},
		&cli.StringFlag{
			Name:        "classifier-rules",
			Usage:       "YAML file with intent classifier keywords",
			Sources:     cli.EnvVars("GRANARY_CLASSIFIER_RULES"),
			Destination: &cfg.classifierRules,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()
			logger := logging.Default()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Warn("failed to close repository", "error", err)
				}
			}()

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			generation, err := cfg.newGeneration(gemini)
			if err != nil {
				return err
			}

			var analyticsUC chat.Analytics
			if cfg.salesTable != "" {
				bq, err := adapter.NewBigQuery(ctx, cfg.project)
				if err != nil {
					return goerr.Wrap(err, "failed to create bigquery client")
				}
				analyticsUC = analytics.New(bq, cfg.salesTable)
			}

			searchUC := search.New(repo, gemini)

			chatUC, err := cfg.newChat(ctx, searchUC, generation, analyticsUC)
			if err != nil {
				return err
			}

			ingestUC, err := cfg.newIngest(ctx, repo, gemini)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Input{
				Search: searchUC,
				Chat:   chatUC,
				Ingest: ingestUC,
				Repo:   repo,
				Logger: logger,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "server stopped unexpectedly")
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
