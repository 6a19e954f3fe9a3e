package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/reconcile"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/telemetry"
)

// Scheduled entrypoint: an EventBridge schedule rule triggers a full
// analyze-and-apply cycle in one invocation.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	runner, err := reconcile.NewFromAWS(awsCfg, cfg, logger)
	if err != nil {
		logger.Error("cannot build runner", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tp, err := telemetry.NewLambdaTracerProvider(ctx)
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info("started reconciler", slog.String("region", cfg.AWSRegion))

	handler := func(ctx context.Context, event events.CloudWatchEvent) error {
		return handleRequest(ctx, runner, logger)
	}

	lambda.Start(
		otellambda.InstrumentHandler(
			handler,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}

func handleRequest(ctx context.Context, runner *reconcile.Runner, logger *slog.Logger) error {
	result, err := runner.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "reconciliation failed", slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "reconciliation complete",
		slog.Int("created", result.Created),
		slog.Int("deleted", result.Deleted),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped))

	return nil
}
