package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/ingest"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/staging"
)

var (
	configFile string
	envPath    string
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ingester",
	Short:         "Ingest 13F institutional holdings disclosures",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")

	runCmd.Flags().Bool("fresh", false, "truncate today's staging artifact instead of appending to it")
	pruneCmd.Flags().Int("days", 0, "retention window in days (default from config)")
	deleteReportCmd.Flags().String("cik", "", "company CIK of the filer")
	deleteReportCmd.Flags().String("report-date", "", "report period date (YYYY-MM-DD)")
	deleteReportCmd.Flags().String("filing-date", "", "filing date (YYYY-MM-DD)")
	_ = deleteReportCmd.MarkFlagRequired("cik")
	_ = deleteReportCmd.MarkFlagRequired("report-date")
	_ = deleteReportCmd.MarkFlagRequired("filing-date")

	rootCmd.AddCommand(runCmd, replayCmd, pruneCmd, deleteReportCmd, purgeStagingCmd)
}

// withApp runs fn with a wired app and a context cancelled on SIGINT/SIGTERM
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configFile, envPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(ctx, a); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("command", cmd.Name()))
		return err
	}
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass: discover, fetch, parse, stage, upsert and prune",
	RunE: func(cmd *cobra.Command, args []string) error {
		fresh, _ := cmd.Flags().GetBool("fresh")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			publisher := a.publisher(ctx)
			defer publisher.Close()

			_, err := a.ingester(publisher).Run(ctx, ingest.RunOptions{FreshStaging: fresh})
			return err
		})
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Commit the staging artifacts to the store without fetching the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			r := ingest.NewReplayer(staging.NewReader(a.fs), a.upserter)
			summary, err := r.Replay(ctx, a.cfg.Staging.Dir)
			logger.InfoCtx(ctx, "Replay finished",
				zap.Int("artifacts", summary.Artifacts),
				zap.Int("artifacts_skipped", summary.ArtifactsSkipped),
				zap.Int("records", summary.Records),
				zap.Int("malformed", summary.Malformed),
				zap.Int("inserted", summary.Inserted),
				zap.Int("overwritten", summary.Overwritten),
			)
			return err
		})
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete holdings filed before the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			p := a.pruner(days)
			_, err := p.Prune(ctx, p.Cutoff())
			return err
		})
	},
}

var deleteReportCmd = &cobra.Command{
	Use:   "delete-report",
	Short: "Delete every holding of one filer's report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cik, _ := cmd.Flags().GetString("cik")
		reportDate, err := parseDateFlag(cmd, "report-date")
		if err != nil {
			return err
		}
		filingDate, err := parseDateFlag(cmd, "filing-date")
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			_, err := ingest.NewReportDeleter(a.store).DeleteReport(ctx, cik, reportDate, filingDate)
			return err
		})
	},
}

var purgeStagingCmd = &cobra.Command{
	Use:   "purge-staging",
	Short: "Remove every staging artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			_, err := staging.NewPurger(a.fs).Purge(ctx, a.cfg.Staging.Dir)
			return err
		})
	},
}

func parseDateFlag(cmd *cobra.Command, name string) (date time.Time, err error) {
	value, _ := cmd.Flags().GetString(name)
	date, err = domain.ParseDate(value)
	if err != nil {
		return date, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return date, nil
}
