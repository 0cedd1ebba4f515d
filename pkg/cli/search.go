package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg   config
		query string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query to search for similar documents",
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results to return",
			Value:       5,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search stored documents by semantic similarity",
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

			uc := search.New(repo, gemini)
			results, err := uc.Search(ctx, query, int(limit))
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "No matching documents found.\n")
				return nil
			}

			for i, result := range results {
				fmt.Fprintf(c.Root().Writer, "%d. [%.4f] %s\n", i+1, result.Score, result.Document.ID)
				fmt.Fprintf(c.Root().Writer, "   %s\n\n", excerpt(result.Document.Content, 120))
			}
			return nil
		},
	}
}

// excerpt shortens content to a single display line
func excerpt(content string, maxLen int) string {
	line := strings.Join(strings.Fields(content), " ")
	if len(line) <= maxLen {
		return line
	}
	return line[:maxLen] + "..."
}
