// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/brainlog"
	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/config"
	"github.com/poiesic/brainlog/httpapi"
	"github.com/poiesic/brainlog/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadEnvFiles()

	app := &cli.App{
		Name:  "brainlog",
		Usage: "Ask questions about your own work log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: ./brainlog.yaml, then ~/.config/brainlog/config.yaml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about your work log",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Force a generative provider (deepseek, gemini, openai)",
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Add a log entry",
				ArgsUsage: "<entry text>",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.TimestampFlag{
						Name:   "time",
						Usage:  "Entry timestamp (default: now)",
						Layout: "2006-01-02T15:04",
					},
				},
			},
			{
				Name:   "summary",
				Usage:  "Generate a structured summary of one day's work",
				Action: summaryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Calendar date YYYY-MM-DD (default: today)",
					},
				},
			},
			{
				Name:   "blog",
				Usage:  "Generate a blog post from a range of log entries",
				Action: blogCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "from",
						Usage:    "First date of the period, YYYY-MM-DD",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Last date of the period, YYYY-MM-DD",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "period",
						Usage: "Period label for the post (default: the date range)",
					},
				},
			},
			{
				Name:   "import-commits",
				Usage:  "Import commits from a JSON file as log entries",
				Action: importCommitsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file with commits",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func openDatabase(c *cli.Context) (*brainlog.Database, *config.AppConfig, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	opts := []brainlog.DatabaseOption{
		brainlog.WithAIConfig(ai.NewConfig(cfg.AIOptions()...)),
	}
	if cfg.Storage.InMemory {
		opts = append(opts, brainlog.WithInMemory())
	}

	db, err := brainlog.NewDatabase(cfg.Storage.Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func serveCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Server.Addr
	if flagAddr := c.String("addr"); flagAddr != "" {
		addr = flagAddr
	}

	agents := func(ctx context.Context, providerOverride string) (httpapi.QueryAgent, error) {
		return db.NewAgent(ctx, providerOverride)
	}
	composers := func(ctx context.Context) (httpapi.ContentComposer, error) {
		return db.NewComposer(ctx)
	}
	server := httpapi.NewServer(agents, composers, db.ProviderName, db.LogRepository())
	return server.ListenAndServe(ctx, addr)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: brainlog ask <question>")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	queryAgent, err := db.NewAgent(c.Context, c.String("provider"))
	if err != nil {
		return err
	}

	stream := queryAgent.AskStream(c.Context, question, nil)
	for fragment, err := range stream.Fragments {
		if err != nil {
			return err
		}
		fmt.Print(fragment)
	}
	fmt.Println()

	if len(stream.RetrievedLogs) > 0 {
		fmt.Printf("\n(based on %d log entries)\n", len(stream.RetrievedLogs))
	}
	return nil
}

func addCommand(c *cli.Context) error {
	content := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if content == "" {
		return fmt.Errorf("usage: brainlog add <entry text>")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(c.Context)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	var timestamp time.Time
	if ts := c.Timestamp("time"); ts != nil {
		timestamp = *ts
	}

	record, err := pipeline.AddEntry(c.Context, content, timestamp)
	if err != nil {
		return err
	}

	fmt.Printf("added %s", record.Id)
	if len(record.Tags) > 0 {
		names := make([]string, len(record.Tags))
		for i, tag := range record.Tags {
			names[i] = tag.Name
		}
		fmt.Printf(" [%s]", strings.Join(names, ", "))
	}
	fmt.Println()
	return nil
}

func summaryCommand(c *cli.Context) error {
	date := c.String("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	composer, err := db.NewComposer(c.Context)
	if err != nil {
		return err
	}

	summary, err := composer.DailySummary(c.Context, date)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n%s\n", summary.Date, summary.Content)
	if len(summary.KeyAchievements) > 0 {
		fmt.Println("\nKey achievements:")
		for _, achievement := range summary.KeyAchievements {
			fmt.Printf("  - %s\n", achievement)
		}
	}
	if len(summary.TechStack) > 0 {
		fmt.Printf("\nTech stack: %s\n", strings.Join(summary.TechStack, ", "))
	}
	return nil
}

func blogCommand(c *cli.Context) error {
	from, to := c.String("from"), c.String("to")
	period := c.String("period")
	if period == "" {
		period = from + " to " + to
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	composer, err := db.NewComposer(c.Context)
	if err != nil {
		return err
	}

	post, err := composer.BlogPost(c.Context, from, to, period)
	if err != nil {
		return err
	}

	fmt.Printf("# %s\n\n%s\n", post.Title, post.Content)
	return nil
}

// commitPayload is one entry in the import-commits JSON file.
type commitPayload struct {
	Repository string    `json:"repository"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

func importCommitsCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}
	var payloads []commitPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return fmt.Errorf("parsing commits file: %w", err)
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(c.Context)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	commits := make([]ingestion.Commit, len(payloads))
	for i, p := range payloads {
		commits[i] = ingestion.Commit{
			Repository: p.Repository,
			Message:    p.Message,
			Timestamp:  p.Timestamp,
		}
	}

	stats, err := pipeline.ImportCommits(c.Context, commits)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d, skipped %d, failed %d\n", stats.Imported, stats.Skipped, stats.Failed)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
