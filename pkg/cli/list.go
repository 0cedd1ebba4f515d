package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of documents to list",
			Value:       50,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List stored documents, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			docs, err := repo.ListDocuments(ctx, int(limit))
			if err != nil {
				return err
			}

			if len(docs) == 0 {
				fmt.Fprintf(c.Root().Writer, "No documents found.\n")
				return nil
			}

			for i, doc := range docs {
				fmt.Fprintf(c.Root().Writer, "%d. ID: %s\n", i+1, doc.ID)
				fmt.Fprintf(c.Root().Writer, "   Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(c.Root().Writer, "   %s\n\n", excerpt(doc.Content, 120))
			}
			return nil
		},
	}
}
