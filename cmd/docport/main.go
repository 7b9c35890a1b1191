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
	"strings"

	"github.com/poiesic/docport"
	"github.com/poiesic/docport/core"
	"github.com/poiesic/docport/pipeline"
	"github.com/poiesic/docport/provider"
	"github.com/poiesic/docport/provider/ollama"
	"github.com/poiesic/docport/provider/openai"
	badgerstore "github.com/poiesic/docport/store/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docport",
		Usage: "Import documents into an embedded vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Embed and import a document from a JSON file",
				ArgsUsage: "<document.json>",
				Action:    importCommand,
				Flags:     append(storeFlags(), providerFlags()...),
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks",
				ArgsUsage: "<document-id>",
				Action:    deleteCommand,
				Flags:     append(storeFlags(), providerFlags()...),
			},
			{
				Name:      "status",
				Usage:     "Show the stored chunk count for a document",
				ArgsUsage: "<document-id>",
				Action:    statusCommand,
				Flags:     append(storeFlags(), providerFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
	}
}

func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Embedding provider (ollama, openai, upstage)",
			Value: "ollama",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for hosted providers",
			EnvVars: []string{"DOCPORT_API_KEY"},
		},
		&cli.Float64Flag{
			Name:  "failure-threshold",
			Usage: "Maximum tolerated share of failed embedding batches",
			Value: pipeline.DefaultFailureThreshold,
		},
		&cli.BoolFlag{
			Name:  "legacy-padding",
			Usage: "Pad short embedding results with zero vectors instead of failing",
		},
	}
}

// documentFile is the on-disk import format: the caller supplies the
// chunks, docport does not own chunking.
type documentFile struct {
	Title  string            `json:"title"`
	Labels []string          `json:"labels"`
	Meta   map[string]string `json:"meta"`
	Chunks []string          `json:"chunks"`
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document file argument")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("reading document file: %w", err)
	}

	var file documentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing document file: %w", err)
	}

	doc := &core.Document{
		Title:  file.Title,
		Labels: file.Labels,
		Meta:   file.Meta,
	}
	for i, content := range file.Chunks {
		doc.Chunks = append(doc.Chunks, &core.Chunk{Content: content, Seq: i})
	}

	svc, embedderName, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	id, err := svc.Ingest(context.Background(), doc, embedderName)
	if err != nil {
		return err
	}

	fmt.Printf("imported %q as %s (%d chunks)\n", doc.Title, id, len(doc.Chunks))
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document id argument")
	}
	id := core.ID(c.Args().First())

	svc, embedderName, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.DeleteDocument(context.Background(), id, embedderName); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", id)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document id argument")
	}
	id := core.ID(c.Args().First())

	svc, embedderName, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	count, err := svc.DocumentChunkCount(context.Background(), id, embedderName)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d chunks\n", id, count)
	return nil
}

// openService builds the store, embedder and service from CLI flags.
// Returns the registered embedder name to address it with.
func openService(c *cli.Context) (*docport.Service, string, error) {
	embedder, err := newEmbedder(c)
	if err != nil {
		return nil, "", err
	}

	registry, err := provider.NewRegistry(embedder)
	if err != nil {
		return nil, "", err
	}

	st, err := badgerstore.New(c.String("db"))
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithFailureThreshold(c.Float64("failure-threshold")),
		pipeline.WithMonitor(pipeline.NewProgressTracker(slog.Default())),
	}
	if c.Bool("legacy-padding") {
		pipelineOpts = append(pipelineOpts, pipeline.WithLegacyPadding())
	}

	svc := docport.NewService(st, registry, docport.WithPipelineOptions(pipelineOpts...))
	return svc, embedder.Name(), nil
}

func newEmbedder(c *cli.Context) (provider.Embedder, error) {
	config := provider.NewConfig(
		provider.WithHost(c.String("host")),
		provider.WithModel(c.String("model")),
		provider.WithAPIKey(c.String("api-key")),
	)

	switch strings.ToLower(c.String("provider")) {
	case "ollama":
		return ollama.NewEmbedder(config)
	case "openai":
		return openai.NewEmbedder(config)
	case "upstage":
		return openai.NewUpstageEmbedder(config)
	default:
		return nil, fmt.Errorf("unknown provider %q: must be one of ollama, openai, upstage", c.String("provider"))
	}
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
