package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/harborlog/server/internal/config"
	"github.com/harborlog/server/internal/grpcapi"
	"github.com/harborlog/server/internal/harborlog/render"
	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/types"
)

func (c *cli) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <relocation|harbor>",
		Short: "Print the dashboard for a date range",
		Args:  variantArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, _ := types.ParseVariant(args[0])
			maxBars, _ := cmd.Flags().GetInt("max-bars")

			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rng, err := s.selection(cmd)
			if err != nil {
				return err
			}
			rep, err := s.reports.Build(cmd.Context(), variant, rng, maxBars)
			if err != nil {
				return err
			}
			return render.Default().Report(cmd.OutOrStdout(), rep)
		},
	}
	rangeFlags(cmd)
	cmd.Flags().Int("max-bars", 0, "bars per breakdown, 0 uses the configured default")
	return cmd
}

func (c *cli) rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster <relocation|harbor>",
		Short: "Print who signed in on each day",
		Args:  variantArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, _ := types.ParseVariant(args[0])

			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rng, err := s.selection(cmd)
			if err != nil {
				return err
			}
			recs, err := s.reports.Snapshot(cmd.Context(), variant, rng)
			if err != nil {
				return err
			}
			days := report.GroupByDay(recs, rng.Loc).Roster(report.RosterPreviewLimit)
			return render.Default().Roster(cmd.OutOrStdout(), variant, days)
		},
	}
	rangeFlags(cmd)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <relocation|harbor>",
		Short: "Write the selected records to a CSV or XLSX file",
		Args:  variantArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, _ := types.ParseVariant(args[0])
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			format = strings.ToLower(strings.TrimSpace(format))
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("format must be csv or xlsx, got %q", format)
			}

			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rng, err := s.selection(cmd)
			if err != nil {
				return err
			}
			recs, err := s.reports.Snapshot(cmd.Context(), variant, rng)
			if err != nil {
				return err
			}

			var (
				buf   bytes.Buffer
				wrote bool
			)
			if format == "xlsx" {
				wrote, err = report.WriteXLSX(&buf, report.DefaultSheet, recs)
			} else {
				wrote, err = report.WriteCSV(&buf, recs)
			}
			if err != nil {
				return fmt.Errorf("encode %s: %w", format, err)
			}
			if !wrote {
				fmt.Fprintln(cmd.OutOrStdout(), "No rows in range")
				return nil
			}

			if out == "" {
				out = report.ExportFileName(variant, rng, format)
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(recs), out)
			return nil
		},
	}
	rangeFlags(cmd)
	cmd.Flags().String("format", "csv", "csv or xlsx")
	cmd.Flags().String("out", "", "output path, defaults to the standard export name")
	return cmd
}

func (c *cli) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample records into both logs (dev only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.cfg.Env != "dev" {
				return errors.New("seed is only available when HARBORLOG_ENV=dev")
			}
			if days <= 0 {
				days = s.cfg.RangeDays
			}

			recs := service.Samples(c.now(), s.cfg.Location, days, s.words)
			n, err := service.Seed(cmd.Context(), s.stores.Records, recs)
			if err != nil {
				return err
			}
			if s.cfg.Store == config.StoreMemory {
				s.logger.Warn("memory store is discarded when the command exits")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", n)
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "days of history, 0 uses the configured range")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the server's gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = c.config(cmd).GRPCAddr
			}
			if addr == "" {
				return errors.New("gRPC health is disabled")
			}
			if strings.HasPrefix(addr, ":") {
				addr = "127.0.0.1" + addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			status, err := grpcapi.Check(ctx, addr, grpcapi.ServiceName)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.String())
			if status != grpc_health_v1.HealthCheckResponse_SERVING {
				return fmt.Errorf("server is %s", status)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "health endpoint, defaults to HARBORLOG_GRPC_ADDR")
	return cmd
}

// selection reads --start/--end, defaulting to the configured range.
func (s *session) selection(cmd *cobra.Command) (report.DateRange, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	return s.reports.ParseRange(start, end)
}
