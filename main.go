package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"kaviar/models"
	"kaviar/models/constants/release"
	"kaviar/models/ingest"
	"kaviar/repositories/elasticsearch"
	"kaviar/services"
	"kaviar/utils"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var logFormats = []string{"console", "json"}

func main() {
	app := &cli.App{
		Name:            "kaviar",
		Usage:           "Convert the Kaviar 160204 hg19 release into merged variant documents",
		HideHelpCommand: true,
		Version:         "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data-folder",
				Aliases:  []string{"d"},
				Usage:    "Folder holding " + release.ArchiveName + "; also used for scratch files (env KAVIAR_DATA_FOLDER)",
				Category: "Input",
			},
			&cli.StringFlag{
				Name:     "env-file",
				Usage:    "Environment file loaded before reading KAVIAR_* variables",
				Value:    ".env",
				Category: "Configuration",
			},
			&cli.StringFlag{
				Name:     "known-exceptions",
				Usage:    "YAML table of descriptor values containing commas (env KAVIAR_KNOWN_EXCEPTIONS_PATH)",
				Category: "Configuration",
			},
			&cli.StringFlag{
				Name:     "sort-buffer-size",
				Usage:    "Main memory buffer size handed to sort -S, e.g. 2G (env KAVIAR_SORT_BUFFER_SIZE)",
				Category: "Configuration",
			},
			&cli.StringFlag{
				Name:     "log-level",
				Usage:    "One of debug, info, warn, error (env KAVIAR_LOG_LEVEL)",
				Category: "Logging",
			},
			&cli.StringFlag{
				Name:     "log-format",
				Usage:    "One of " + strings.Join(logFormats, ", ") + " (env KAVIAR_LOG_FORMAT)",
				Category: "Logging",
			},
			&cli.StringFlag{
				Name:     "metrics-textfile",
				Usage:    "Write run metrics to this file in Prometheus text format (env KAVIAR_METRICS_TEXTFILE)",
				Category: "Logging",
			},
			&cli.BoolFlag{
				Name:     "progress",
				Usage:    "Show a progress bar while decompressing (env KAVIAR_SHOW_PROGRESS)",
				Category: "Logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Write merged documents as JSON lines",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, defaults to stdout (env KAVIAR_OUTPUT_PATH)",
					},
				},
				Action: func(c *cli.Context) error {
					return run(c, writeDocuments)
				},
			},
			{
				Name:  "load",
				Usage: "Bulk-load merged documents into Elasticsearch",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "es-url",
						Usage: "Elasticsearch url (env KAVIAR_ES_URL)",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Target index, created with the Kaviar mapping when missing (env KAVIAR_ES_INDEX)",
					},
				},
				Action: func(c *cli.Context) error {
					return run(c, loadDocuments)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		log.New(os.Stderr, "", 0).Fatal(err)
	}
}

// sink consumes the merged documents and reports how many it handled.
type sink func(c *cli.Context, cfg *models.Config, docs models.DocumentIterator, metrics *utils.Metrics, logger *zap.SugaredLogger) (int, error)

func run(c *cli.Context, consume sink) error {
	cfg, err := newConfig(c.String("env-file"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if !utils.StringInSlice(cfg.Log.Format, logFormats) {
		return cli.Exit("Invalid log format '"+cfg.Log.Format+"', must be one of: "+strings.Join(logFormats, ", "), 1)
	}
	if cfg.Ingest.DataFolder == "" {
		return cli.Exit("No data folder given, use --data-folder or KAVIAR_DATA_FOLDER", 1)
	}

	zapLogger := utils.InitLogger(cfg)
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	printConfig(cfg)

	metrics := utils.NewMetrics()
	iz, err := services.NewIngestionService(cfg, metrics, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	count, err := consumeRun(c, cfg, iz, consume, metrics, logger)
	err = iz.Finish(err)

	if metricsErr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); metricsErr != nil {
		logger.Warnf("Could not write metrics: %s", metricsErr)
	}
	if err != nil {
		return err
	}

	summary := color.New(color.FgGreen, color.Bold)
	summary.Fprintf(os.Stderr, "Run %s %s: %d documents in %s\n",
		iz.Request.Id, ingest.Done, count, time.Since(start).Round(time.Millisecond))
	return nil
}

func consumeRun(c *cli.Context, cfg *models.Config, iz *services.IngestionService, consume sink,
	metrics *utils.Metrics, logger *zap.SugaredLogger) (int, error) {

	docs, err := iz.Run(c.Context)
	if err != nil {
		return 0, err
	}

	count, err := consume(c, cfg, docs, metrics, logger)
	if closeErr := docs.Close(); err == nil {
		err = closeErr
	}
	return count, err
}

func writeDocuments(c *cli.Context, cfg *models.Config, docs models.DocumentIterator, metrics *utils.Metrics, logger *zap.SugaredLogger) (int, error) {
	if cfg.Output.Path == "" {
		return utils.WriteJsonLines(os.Stdout, docs)
	}

	out, err := os.Create(cfg.Output.Path)
	if err != nil {
		return 0, errors.Wrapf(err, "creating %s", cfg.Output.Path)
	}

	count, err := utils.WriteJsonLines(out, docs)
	if closeErr := out.Close(); err == nil {
		err = errors.Wrapf(closeErr, "closing %s", cfg.Output.Path)
	}
	logger.Infof("Wrote %d documents to %s", count, cfg.Output.Path)
	return count, err
}

func loadDocuments(c *cli.Context, cfg *models.Config, docs models.DocumentIterator, metrics *utils.Metrics, logger *zap.SugaredLogger) (int, error) {
	es, err := utils.CreateEsConnection(cfg, logger)
	if err != nil {
		return 0, err
	}

	if err := elasticsearch.EnsureIndex(c.Context, es, cfg.Elasticsearch.Index); err != nil {
		return 0, err
	}

	stats, err := elasticsearch.BulkLoadDocuments(c.Context, cfg, es, docs, metrics, logger)
	return int(stats.NumIndexed), err
}

// newConfig reads KAVIAR_* variables, after loading envFile when it exists.
func newConfig(envFile string) (*models.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "loading %s", envFile)
		}
	}

	var cfg models.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	return &cfg, nil
}

// applyFlags lets explicitly set command line flags win over the environment.
func applyFlags(c *cli.Context, cfg *models.Config) {
	for flag, target := range map[string]*string{
		"data-folder":      &cfg.Ingest.DataFolder,
		"known-exceptions": &cfg.Ingest.KnownExceptionsPath,
		"sort-buffer-size": &cfg.Ingest.SortBufferSize,
		"log-level":        &cfg.Log.Level,
		"log-format":       &cfg.Log.Format,
		"metrics-textfile": &cfg.Metrics.TextfilePath,
		"output":           &cfg.Output.Path,
		"es-url":           &cfg.Elasticsearch.Url,
		"index":            &cfg.Elasticsearch.Index,
	} {
		if c.IsSet(flag) {
			*target = c.String(flag)
		}
	}
	if c.IsSet("progress") {
		cfg.Ingest.ShowProgress = c.Bool("progress")
	}
}

func printConfig(cfg *models.Config) {
	color.New(color.FgCyan).Fprintf(os.Stderr, "Using : \n"+
		"\tDebug : %t \n\n"+

		"\tData Folder : %s \n"+
		"\tKnown Exceptions : %s \n"+
		"\tSort Command : %s \n"+
		"\tSort Buffer Size : %s \n\n"+

		"\tOutput : %s \n"+
		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n"+
		"\tElasticsearch Index : %s\n\n"+

		"\tLog Level : %s \n"+
		"\tMetrics Textfile : %s \n\n",

		cfg.Debug,
		cfg.Ingest.DataFolder,
		orDefault(cfg.Ingest.KnownExceptionsPath, "built-in"),
		cfg.Ingest.SortCommand,
		orDefault(cfg.Ingest.SortBufferSize, "sort default"),
		orDefault(cfg.Output.Path, "stdout"),
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username, cfg.Elasticsearch.Index,
		cfg.Log.Level,
		cfg.Metrics.TextfilePath)
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
