package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	app := &cli.App{
		Name: "brainlog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Before: setupLogger,
		Action: func(*cli.Context) error { return nil },
	}

	t.Cleanup(func() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	t.Run("valid levels accepted", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			err := app.Run([]string{"brainlog", "--log-level", level})
			require.NoError(t, err, "level %q", level)
		}
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		err := app.Run([]string{"brainlog", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestImportCommitsRequiresFile(t *testing.T) {
	app := &cli.App{
		Name: "brainlog",
		Commands: []*cli.Command{
			{
				Name:   "import-commits",
				Action: importCommitsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"brainlog", "import-commits"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}
