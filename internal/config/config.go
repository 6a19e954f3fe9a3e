// Package config loads the reconciler configuration from the environment.
package config

import (
	"fmt"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/env"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/policy"
)

// NotifyTarget selects where the run summary is delivered.
type NotifyTarget string

const (
	TargetSNS         NotifyTarget = "sns"
	TargetEventBridge NotifyTarget = "eventbridge"
	TargetSlack       NotifyTarget = "slack"
	TargetNone        NotifyTarget = "none"
)

// DefaultAlarmSuffix is the naming-convention suffix appended to a resource
// name to derive its alarm name.
const DefaultAlarmSuffix = "-cloudwatch-alarm"

type Config struct {
	AWSRegion   string
	AlarmSuffix string
	Thresholds  policy.Defaults

	// Alarm shape applied to every created alarm.
	AlarmPeriodSeconds   int32
	AlarmEvalPeriods     int32
	AlarmActionsTopicARN string

	NotifyTarget    NotifyTarget
	SNSTopicARN     string
	EventBusARN     string
	SlackWebhookURL string

	// Plan transport. PlanS3Bucket set means the plan lives in S3,
	// otherwise PlanPath names a local file.
	PlanPath     string
	PlanS3Bucket string
	PlanS3Key    string
}

func Load() (*Config, error) {
	cfg := &Config{}

	region, err := env.GetRequired("AWS_REGION", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.AWSRegion = region

	cfg.AlarmSuffix = env.Get("ALARM_SUFFIX", DefaultAlarmSuffix, env.ParseNonEmptyString)
	cfg.Thresholds = policy.Defaults{
		QueueDepth:    env.Get("QUEUE_DEPTH_THRESHOLD", 5, env.ParseFloat),
		TableThrottle: env.Get("TABLE_THROTTLE_THRESHOLD", 10, env.ParseFloat),
	}

	cfg.AlarmPeriodSeconds = int32(env.Get("ALARM_PERIOD_SECONDS", 300, env.ParseInt))
	cfg.AlarmEvalPeriods = int32(env.Get("ALARM_EVALUATION_PERIODS", 1, env.ParseInt))
	cfg.AlarmActionsTopicARN = env.Get("ALARM_ACTIONS_TOPIC_ARN", "", env.ParseString)

	cfg.PlanPath = env.Get("PLAN_PATH", "alarm-plan.txt", env.ParseNonEmptyString)
	cfg.PlanS3Bucket = env.Get("PLAN_S3_BUCKET", "", env.ParseString)
	if cfg.PlanS3Bucket != "" {
		cfg.PlanS3Key = env.Get("PLAN_S3_KEY", "alarm-plan.txt", env.ParseNonEmptyString)
	}

	target := env.Get("NOTIFY_TARGET", string(TargetSNS), env.ParseNonEmptyString)

	switch NotifyTarget(target) {
	case TargetSNS:
		topicARN, err := env.GetRequired("SNS_TOPIC_ARN", env.ParseNonEmptyString)
		if err != nil {
			return nil, err
		}
		cfg.NotifyTarget = TargetSNS
		cfg.SNSTopicARN = topicARN

	case TargetEventBridge:
		busARN, err := env.GetRequired("EVENT_BUS_ARN", env.ParseNonEmptyString)
		if err != nil {
			return nil, err
		}
		cfg.NotifyTarget = TargetEventBridge
		cfg.EventBusARN = busARN

	case TargetSlack:
		webhookURL, err := env.GetRequired("SLACK_WEBHOOK_URL", env.ParseNonEmptyString)
		if err != nil {
			return nil, err
		}
		cfg.NotifyTarget = TargetSlack
		cfg.SlackWebhookURL = webhookURL

	case TargetNone:
		cfg.NotifyTarget = TargetNone

	default:
		return nil, fmt.Errorf("invalid notify target: %s", target)
	}

	return cfg, nil
}
