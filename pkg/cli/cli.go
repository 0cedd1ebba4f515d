package cli

import (
	"context"

	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "granary",
		Usage: "Retrieval-augmented document chat service",
		Commands: []*cli.Command{
			serveCommand(),
			ingestCommand(),
			searchCommand(),
			chatCommand(),
			listCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
