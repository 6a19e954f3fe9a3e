// Package notify delivers run summaries to the configured target.
// Delivery is best-effort: callers log a failed notification and move on,
// it never changes the run outcome.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/notify")

// Notifier delivers a run result to a notification target.
type Notifier interface {
	// Notify sends the result summary to the configured target.
	Notify(ctx context.Context, result *executor.Result) error
}

// NewNotifier creates a Notifier implementation based on the configured
// notify target. Supported targets: sns, eventbridge, slack, none.
func NewNotifier(awsCfg aws.Config, cfg *config.Config) (Notifier, error) {
	switch cfg.NotifyTarget {
	case config.TargetSNS:
		client := sns.NewFromConfig(awsCfg)
		return NewSNSNotifier(client, cfg), nil

	case config.TargetEventBridge:
		client := eventbridge.NewFromConfig(awsCfg)
		return NewEventBridgeNotifier(client, cfg), nil

	case config.TargetSlack:
		return NewSlackNotifier(cfg.SlackWebhookURL), nil

	case config.TargetNone:
		return NopNotifier{}, nil

	default:
		return nil, fmt.Errorf("unknown notify target: %s", cfg.NotifyTarget)
	}
}

// NopNotifier discards results.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *executor.Result) error {
	return nil
}
