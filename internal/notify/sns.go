package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/config"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
)

// SNSAPI defines required SNS operations.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		input *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes run results to an SNS topic.
type SNSNotifier struct {
	client SNSAPI
	config *config.Config
}

// NewSNSNotifier creates a new SNSNotifier instance.
func NewSNSNotifier(client SNSAPI, config *config.Config) *SNSNotifier {
	return &SNSNotifier{
		client: client,
		config: config,
	}
}

func (n *SNSNotifier) Notify(ctx context.Context, result *executor.Result) error {
	ctx, span := tracer.Start(ctx, "notify.sns")
	defer span.End()
	span.SetAttributes(attribute.String("sns.topic_arn", n.config.SNSTopicARN))

	input := &sns.PublishInput{
		TopicArn: aws.String(n.config.SNSTopicARN),
		Subject:  aws.String("Alarm Reconciliation - " + result.Region),
		Message:  aws.String(FormatText(result)),
	}

	if _, err := n.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("cannot publish to SNS: %w", err)
	}
	return nil
}
