package main

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harborlog/server/internal/app"
	"github.com/harborlog/server/internal/config"
	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

// cli carries the global flags shared by every subcommand.
type cli struct {
	store    string
	dbPath   string
	pgURL    string
	tz       string
	logLevel string

	logs io.Writer
	now  func() time.Time
}

// session is an opened backend plus the services built on it.
type session struct {
	cfg     config.Config
	logger  *log.Logger
	stores  *app.Stores
	words   vocab.Vocabulary
	reports *service.ReportService
}

func (s *session) Close() { s.stores.Close() }

func newRootCmd(logs io.Writer) *cobra.Command {
	c := &cli{logs: logs, now: time.Now}

	root := &cobra.Command{
		Use:           "harborlog",
		Short:         "Reports and exports for the relocation and harbor sign-in logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.store, "store", "", "record backend: memory, sqlite or postgres")
	flags.StringVar(&c.dbPath, "db", "", "sqlite database path")
	flags.StringVar(&c.pgURL, "pg-url", "", "postgres connection URL")
	flags.StringVar(&c.tz, "tz", "", "IANA time zone for day boundaries")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		c.reportCmd(),
		c.rosterCmd(),
		c.exportCmd(),
		c.seedCmd(),
		c.healthCmd(),
	)
	return root
}

// config reads the environment and applies flag overrides on top.
func (c *cli) config(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = c.store
	}
	if flags.Changed("db") {
		cfg.DBPath = c.dbPath
	}
	if flags.Changed("pg-url") {
		cfg.PGURL = c.pgURL
	}
	if flags.Changed("tz") {
		cfg.Location = config.ParseLocation(c.tz)
	}
	cfg.LogLevel = c.logLevel
	return cfg
}

func (c *cli) open(cmd *cobra.Command) (*session, error) {
	cfg := c.config(cmd)
	logger := app.NewLogger(c.logs, "harborlog", cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config", "problem", w)
	}

	words, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		stores: stores,
		words:  words,
		reports: service.NewReportService(stores.Records, service.ReportOptions{
			Location:   cfg.Location,
			RangeDays:  cfg.RangeDays,
			MaxBars:    cfg.MaxBars,
			Vocabulary: words,
			Now:        c.now,
		}),
	}, nil
}

func variantArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := types.ParseVariant(args[0])
	return err
}

func rangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "first day, YYYY-MM-DD")
	cmd.Flags().String("end", "", "last day, YYYY-MM-DD")
}
