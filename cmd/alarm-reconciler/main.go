package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/planstore"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/reconcile"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/telemetry"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/version"
)

// Exit codes. A missing plan (or unusable configuration) aborts before any
// action and must be distinguishable from a run where actions were attempted
// and all failed.
const (
	exitOK            = 0
	exitActionFailure = 1
	exitPrecondition  = 2
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	rootCmd := &cobra.Command{
		Use:           "alarm-reconciler",
		Short:         "Reconciles CloudWatch alarms against SQS queues and DynamoDB tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(logger),
		newApplyCmd(logger),
		newRunCmd(logger),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if errors.Is(err, reconcile.ErrAllActionsFailed) {
		return exitActionFailure
	}
	return exitPrecondition
}

func newAnalyzeCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Snapshot resources and alarms, compute the plan, and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), logger, func(ctx context.Context, runner *reconcile.Runner) error {
				p, err := runner.Analyze(ctx)
				if err != nil {
					return err
				}
				logger.InfoContext(ctx, "analyze complete",
					slog.Int("creates", len(p.Creates)),
					slog.Int("deletes", len(p.Deletes)))
				return nil
			})
		},
	}
}

func newApplyCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Load the persisted plan and apply it against CloudWatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), logger, func(ctx context.Context, runner *reconcile.Runner) error {
				result, err := runner.Apply(ctx)
				if result != nil {
					logSummary(ctx, logger, result)
				}
				if errors.Is(err, planstore.ErrNotFound) {
					return fmt.Errorf("no plan to apply: %w", err)
				}
				return err
			})
		},
	}
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Analyze and apply in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), logger, func(ctx context.Context, runner *reconcile.Runner) error {
				result, err := runner.Run(ctx)
				if result != nil {
					logSummary(ctx, logger, result)
				}
				return err
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("alarm-reconciler %s (built %s)\n", version.Version, version.BuildDate)
		},
	}
}

func withRunner(ctx context.Context, logger *slog.Logger, fn func(context.Context, *reconcile.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("cannot load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	tp, err := telemetry.NewTracerProvider(ctx)
	if err != nil {
		return fmt.Errorf("cannot initialize tracer provider: %w", err)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
			}
		}()
	}

	runner, err := reconcile.NewFromAWS(awsCfg, cfg, logger)
	if err != nil {
		return err
	}

	return fn(ctx, runner)
}

func logSummary(ctx context.Context, logger *slog.Logger, result *executor.Result) {
	logger.InfoContext(ctx, "run summary",
		slog.String("region", result.Region),
		slog.Int("created", result.Created),
		slog.Int("deleted", result.Deleted),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped))
}
