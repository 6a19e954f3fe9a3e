// Package executor applies a reconciliation plan against CloudWatch,
// tracking per-action outcomes.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/policy"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor")

// CloudWatchAPI defines the CloudWatch operations required to apply a plan.
type CloudWatchAPI interface {
	PutMetricAlarm(
		ctx context.Context,
		input *cloudwatch.PutMetricAlarmInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricAlarmOutput, error)

	DeleteAlarms(
		ctx context.Context,
		input *cloudwatch.DeleteAlarmsInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.DeleteAlarmsOutput, error)
}

// Executor applies plans against CloudWatch.
type Executor struct {
	cw     CloudWatchAPI
	config *config.Config
	logger *slog.Logger
}

// NewExecutor creates an Executor over the given CloudWatch client.
func NewExecutor(cw CloudWatchAPI, config *config.Config, logger *slog.Logger) *Executor {
	return &Executor{
		cw:     cw,
		config: config,
		logger: logger,
	}
}

// Apply attempts every action in the plan and returns the aggregate result.
// Creates run before deletes so a resource being renamed across two runs is
// never left without coverage. Actions are independent: one failure is
// recorded and the run moves on, and outcomes accumulate as they happen so a
// stuck call loses nothing already done.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan) *Result {
	ctx, span := tracer.Start(ctx, "executor.apply")
	defer span.End()
	span.SetAttributes(
		attribute.Int("plan.creates", len(p.Creates)),
		attribute.Int("plan.deletes", len(p.Deletes)),
	)

	result := &Result{
		Region:    p.Region,
		StartedAt: time.Now(),
	}

	for _, c := range p.Creates {
		e.applyCreate(ctx, c, result)
	}
	for _, d := range p.Deletes {
		e.applyDelete(ctx, d, result)
	}

	span.SetAttributes(
		attribute.Int("result.created", result.Created),
		attribute.Int("result.deleted", result.Deleted),
		attribute.Int("result.failed", result.Failed),
		attribute.Int("result.skipped", result.Skipped),
	)

	return result
}

func (e *Executor) applyCreate(ctx context.Context, c plan.CreateAction, result *Result) {
	if !c.ResourceType.Known() {
		e.logger.WarnContext(ctx, "skipping create for unsupported resource type",
			slog.String("resourceType", string(c.ResourceType)),
			slog.String("alarmName", c.AlarmName))
		result.Skipped++
		return
	}

	_, err := e.cw.PutMetricAlarm(ctx, e.putInput(c))

	outcome := ActionOutcome{Action: "create", AlarmName: c.AlarmName, Succeeded: err == nil}
	if err != nil {
		outcome.Error = err.Error()
		result.Failed++
		e.logger.ErrorContext(ctx, "cannot create alarm",
			slog.String("alarmName", c.AlarmName),
			slog.String("error", err.Error()))
	} else {
		result.Created++
		e.logger.InfoContext(ctx, "created alarm",
			slog.String("alarmName", c.AlarmName),
			slog.Float64("threshold", c.Threshold))
	}
	result.Outcomes = append(result.Outcomes, outcome)
}

func (e *Executor) applyDelete(ctx context.Context, d plan.DeleteAction, result *Result) {
	// DeleteAlarms treats an already-absent alarm as success; we record
	// whatever the API reports rather than assuming that.
	_, err := e.cw.DeleteAlarms(ctx, &cloudwatch.DeleteAlarmsInput{
		AlarmNames: []string{d.AlarmName},
	})

	outcome := ActionOutcome{Action: "delete", AlarmName: d.AlarmName, Succeeded: err == nil}
	if err != nil {
		outcome.Error = err.Error()
		result.Failed++
		e.logger.ErrorContext(ctx, "cannot delete alarm",
			slog.String("alarmName", d.AlarmName),
			slog.String("error", err.Error()))
	} else {
		result.Deleted++
		e.logger.InfoContext(ctx, "deleted alarm", slog.String("alarmName", d.AlarmName))
	}
	result.Outcomes = append(result.Outcomes, outcome)
}

func (e *Executor) putInput(c plan.CreateAction) *cloudwatch.PutMetricAlarmInput {
	return &cloudwatch.PutMetricAlarmInput{
		AlarmName: aws.String(c.AlarmName),
		AlarmDescription: aws.String(fmt.Sprintf("Guards %s %q: %s > %s",
			c.ResourceType, c.ResourceName, c.MetricName, formatThreshold(c.Threshold))),
		Namespace:  aws.String(policy.NamespaceFor(c.ResourceType)),
		MetricName: aws.String(c.MetricName),
		Dimensions: []types.Dimension{{
			Name:  aws.String(policy.DimensionFor(c.ResourceType)),
			Value: aws.String(c.ResourceName),
		}},
		Statistic:          types.StatisticMaximum,
		Period:             aws.Int32(e.config.AlarmPeriodSeconds),
		EvaluationPeriods:  aws.Int32(e.config.AlarmEvalPeriods),
		Threshold:          aws.Float64(c.Threshold),
		ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		TreatMissingData:   aws.String("notBreaching"),
		AlarmActions:       []string{e.config.AlarmActionsTopicARN},
		OKActions:          []string{e.config.AlarmActionsTopicARN},
	}
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%g", v)
}
