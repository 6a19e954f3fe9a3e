// Package reconcile wires the analyze and apply phases into runnable units
// shared by the CLI and Lambda entrypoints.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/diff"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/env"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/inventory"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/notify"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/planstore"
)

// ErrAllActionsFailed reports a run where every attempted action failed,
// usually a permissions problem rather than individual bad luck.
var ErrAllActionsFailed = errors.New("all actions failed")

// Runner executes the reconciliation phases.
type Runner struct {
	fetcher  *inventory.Fetcher
	executor *executor.Executor
	store    planstore.Store
	notifier notify.Notifier
	config   *config.Config
	logger   *slog.Logger
}

// NewRunner creates a Runner from already-built components. Used directly
// by tests; production callers use NewFromAWS.
func NewRunner(
	fetcher *inventory.Fetcher,
	exec *executor.Executor,
	store planstore.Store,
	notifier notify.Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		fetcher:  fetcher,
		executor: exec,
		store:    store,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
	}
}

// NewFromAWS creates a Runner with concrete AWS clients built from the
// given SDK configuration.
func NewFromAWS(awsCfg aws.Config, cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	fetcher := inventory.NewFetcher(
		sqs.NewFromConfig(awsCfg),
		dynamodb.NewFromConfig(awsCfg),
		cloudwatch.NewFromConfig(awsCfg),
		logger,
	)
	exec := executor.NewExecutor(cloudwatch.NewFromConfig(awsCfg), cfg, logger)

	var store planstore.Store
	if cfg.PlanS3Bucket != "" {
		store = planstore.NewS3Store(s3.NewFromConfig(awsCfg), cfg.PlanS3Bucket, cfg.PlanS3Key, logger)
	} else {
		store = planstore.NewFileStore(cfg.PlanPath, logger)
	}

	notifier, err := notify.NewNotifier(awsCfg, cfg)
	if err != nil {
		return nil, err
	}

	return NewRunner(fetcher, exec, store, notifier, cfg, logger), nil
}

// Analyze snapshots the world, computes the plan, and persists it.
func (r *Runner) Analyze(ctx context.Context) (*plan.Plan, error) {
	snap, err := r.fetcher.Snapshot(ctx, r.config.AlarmSuffix)
	if err != nil {
		return nil, err
	}

	p := diff.Compute(ctx, snap, diff.Params{
		Region:      r.config.AWSRegion,
		AlarmSuffix: r.config.AlarmSuffix,
		Thresholds:  r.config.Thresholds,
	}, r.logger)

	if err := r.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("cannot save plan: %w", err)
	}

	r.logger.InfoContext(ctx, "plan computed",
		slog.Int("creates", len(p.Creates)),
		slog.Int("deletes", len(p.Deletes)))

	return p, nil
}

// Apply loads the persisted plan and applies it. A missing plan is a fatal
// precondition failure, surfaced as planstore.ErrNotFound.
func (r *Runner) Apply(ctx context.Context) (*executor.Result, error) {
	p, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, p)
}

// Run performs both phases in one process. The plan is still persisted for
// the audit trail, but the in-memory value is applied directly.
func (r *Runner) Run(ctx context.Context) (*executor.Result, error) {
	p, err := r.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, p)
}

func (r *Runner) apply(ctx context.Context, p *plan.Plan) (*executor.Result, error) {
	// Every created alarm routes its state changes to this topic; an alarm
	// without it alerts nobody, so refuse the whole run up front.
	if r.config.AlarmActionsTopicARN == "" {
		return nil, &env.Error{Key: "ALARM_ACTIONS_TOPIC_ARN", Err: env.ErrMissing}
	}

	result := r.executor.Apply(ctx, p)

	// Best-effort: a failed notification is logged and never changes the
	// run outcome.
	if err := r.notifier.Notify(ctx, result); err != nil {
		r.logger.WarnContext(ctx, "cannot send run notification",
			slog.String("error", err.Error()))
	}

	if result.AllFailed() {
		return result, fmt.Errorf("%w: %d of %d", ErrAllActionsFailed, result.Failed, result.Attempted())
	}
	return result, nil
}
