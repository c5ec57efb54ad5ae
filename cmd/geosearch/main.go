package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/octobees/geosearch/internal/app"
	"github.com/octobees/geosearch/internal/config"
	"github.com/octobees/geosearch/internal/database"
	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
	"github.com/octobees/geosearch/internal/logging"
	"github.com/octobees/geosearch/internal/metrics"
	"github.com/octobees/geosearch/internal/repository"
	"github.com/octobees/geosearch/internal/service"
	"github.com/octobees/geosearch/internal/session"
)

func main() {
	cliApp := cli.App{
		Name:  "geosearch",
		Usage: "find local businesses from a natural language query",
		Commands: []*cli.Command{{
			Name:      "search",
			Usage:     "run a search and write the exports to disk",
			ArgsUsage: "\"<query>\"",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "directory receiving the exported files",
					Value: ".",
				},
				&cli.StringSliceFlag{
					Name:  "format",
					Usage: "formats to write: csv, excel, json",
					Value: cli.NewStringSlice("csv", "excel", "json"),
				},
				&cli.DurationFlag{
					Name:  "timeout",
					Usage: "upper bound for the whole search",
					Value: 2 * time.Minute,
				},
				&cli.BoolFlag{
					Name:  "quiet",
					Usage: "do not print the result table",
				},
			},
			Action: runSearch,
		}, {
			Name:  "schema",
			Usage: "create the place catalogue table if it doesn't already exist",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "database-url",
					Usage:    "postgres connection string",
					EnvVars:  []string{"DATABASE_URL"},
					Required: true,
				},
			},
			Action: func(ctx *cli.Context) error {
				pool, err := database.Connect(ctx.Context, ctx.String("database-url"))
				if err != nil {
					return err
				}
				defer pool.Close()
				return database.EnsureSchema(ctx.Context, pool)
			},
		}},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSearch(ctx *cli.Context) error {
	query := strings.Join(ctx.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.Exit(service.MessageMissingQuery, 2)
	}
	formats, err := parseFormats(ctx.StringSlice("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	runCtx, cancel := context.WithTimeout(ctx.Context, ctx.Duration("timeout"))
	defer cancel()

	var opts []service.OrchestratorOption
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(runCtx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		catalog := service.NewCatalogService(repository.NewPGXPlacesRepository(pool), cfg.PhoneRegion)
		opts = append(opts, service.WithCatalog(catalog))
	}

	orchestrator, err := app.NewOrchestrator(runCtx, cfg, logger, metrics.New(), opts...)
	if err != nil {
		return err
	}

	result, err := orchestrator.Run(runCtx, query)
	if err != nil {
		return cli.Exit(service.UserMessage(err), 1)
	}

	if !ctx.Bool("quiet") {
		if err := printResult(os.Stdout, result); err != nil {
			return err
		}
	}
	paths, err := writePayloads(ctx.String("out"), result.Payloads, formats)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}
	return nil
}

func parseFormats(values []string) ([]export.Format, error) {
	var formats []export.Format
	seen := make(map[export.Format]bool)
	for _, value := range values {
		// accept both repeated flags and comma lists
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			format, err := export.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[format] {
				seen[format] = true
				formats = append(formats, format)
			}
		}
	}
	if len(formats) == 0 {
		return export.Formats, nil
	}
	return formats, nil
}

func writePayloads(dir string, payloads export.Payloads, formats []export.Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		payload, ok := payloads.Get(format)
		if !ok {
			return nil, fmt.Errorf("no payload for format %s", format)
		}
		path := filepath.Join(dir, payload.Filename)
		if err := os.WriteFile(path, payload.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func printResult(w io.Writer, result *session.Result) error {
	if _, err := fmt.Fprintf(w, "Results for %s in %s, %s\n\n", result.BusinessType, result.City, result.Country); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(entity.Columns, "\t"))
	for _, row := range result.Table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Strings(), "\t"))
	}
	return tw.Flush()
}
