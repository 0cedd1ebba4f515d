package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	var (
		cfg    config
		input  string
		bucket string
		object string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a JSONL file of documents (\"-\" for stdin)",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket holding the JSONL source",
			Sources:     cli.EnvVars("GRANARY_INGEST_BUCKET"),
			Destination: &bucket,
		},
		&cli.StringFlag{
			Name:        "object",
			Usage:       "Object key of the JSONL source in the bucket",
			Destination: &object,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego ingest policies",
			Sources:     cli.EnvVars("GRANARY_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Ingest documents from a JSONL file or Cloud Storage object",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			source, err := openIngestSource(ctx, input, bucket, object)
			if err != nil {
				return err
			}
			defer source.Close()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			uc, err := cfg.newIngest(ctx, repo, gemini)
			if err != nil {
				return err
			}

			result, err := uc.AddFromReader(ctx, source)
			if err != nil {
				return goerr.Wrap(err, "ingestion failed")
			}

			fmt.Fprintf(c.Root().Writer, "Added %d documents, %d failed\n", result.Successful, result.Failed)
			return nil
		},
	}
}

func openIngestSource(ctx context.Context, input, bucket, object string) (io.ReadCloser, error) {
	switch {
	case bucket != "" && object != "":
		storage, err := adapter.NewStorage(ctx, bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}
		return storage.Get(ctx, object)

	case input == "-":
		return io.NopCloser(os.Stdin), nil

	case input != "":
		f, err := os.Open(input)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open input file", goerr.V("path", input))
		}
		return f, nil

	default:
		return nil, goerr.New("either --input or --bucket/--object is required")
	}
}
