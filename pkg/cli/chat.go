package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/usecase/analytics"
	"github.com/granary-dev/granary/pkg/usecase/chat"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := []cli.Flag{
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
		Name:  "chat",
		Usage: "Interactive chat grounded on stored documents",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

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
			uc, err := cfg.newChat(ctx, searchUC, generation, analyticsUC)
			if err != nil {
				return err
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit.\n")

			var history []*model.ChatMessage
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				if message == "" {
					continue
				}
				if message == "exit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()
				resp, err := uc.Chat(ctx, message, history)
				sp.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to send message")
				}

				fmt.Fprintf(c.Root().Writer, "%s\n", resp.Answer)
				if len(resp.Sources) > 0 {
					fmt.Fprintf(c.Root().Writer, "\nSources:\n")
					for i, src := range resp.Sources {
						fmt.Fprintf(c.Root().Writer, "  %d. [%.4f] %s\n", i+1, src.Score, src.Document.ID)
					}
				}
				fmt.Fprintf(c.Root().Writer, "\n")

				now := time.Now()
				history = append(history,
					&model.ChatMessage{
						ID:        model.NewMessageID(),
						Role:      model.RoleUser,
						Content:   message,
						Timestamp: now,
					},
					&model.ChatMessage{
						ID:        resp.MessageID,
						Role:      model.RoleAssistant,
						Content:   resp.Answer,
						Timestamp: now,
					},
				)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
