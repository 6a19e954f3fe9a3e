package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
)

// EventBridgeAPI defines the EventBridge operations required for sending events.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeNotifier sends run results to an EventBridge event bus.
type EventBridgeNotifier struct {
	client EventBridgeAPI
	config *config.Config
}

// NewEventBridgeNotifier creates a new EventBridgeNotifier instance.
func NewEventBridgeNotifier(client EventBridgeAPI, config *config.Config) *EventBridgeNotifier {
	return &EventBridgeNotifier{
		client: client,
		config: config,
	}
}

func (n *EventBridgeNotifier) Notify(ctx context.Context, result *executor.Result) error {
	ctx, span := tracer.Start(ctx, "notify.eventbridge")
	defer span.End()
	span.SetAttributes(attribute.String("event_bus.arn", n.config.EventBusARN))

	detail, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cannot marshal result: %w", err)
	}

	params := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(detail)),
			DetailType:   aws.String("Alarm Reconciliation Completed"),
			EventBusName: aws.String(n.config.EventBusARN),
			Source:       aws.String("cloudwatch.alarm.reconciler"),
		}},
	}

	out, err := n.client.PutEvents(ctx, params)
	if err != nil {
		return fmt.Errorf("cannot put event to %q: %w", n.config.EventBusARN, err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("cannot put event to %q: %s - %s",
			n.config.EventBusARN, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	return nil
}
