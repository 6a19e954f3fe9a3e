// Package inventory fetches the point-in-time resource and alarm snapshots
// the diff is computed over.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

// SQSAPI defines the SQS operations required for queue discovery.
type SQSAPI interface {
	ListQueues(
		ctx context.Context,
		input *sqs.ListQueuesInput,
		optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// DynamoDBAPI defines the DynamoDB operations required for table discovery.
type DynamoDBAPI interface {
	ListTables(
		ctx context.Context,
		input *dynamodb.ListTablesInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// CloudWatchAPI defines the CloudWatch operations required for alarm discovery.
type CloudWatchAPI interface {
	DescribeAlarms(
		ctx context.Context,
		input *cloudwatch.DescribeAlarmsInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

// Snapshot is an immutable view of the world at fetch time. Resources holds
// every discovered resource across all supported types; Alarms holds every
// alarm name carrying the configured suffix.
type Snapshot struct {
	Resources []resource.Ref
	Alarms    []string
}

// Fetcher assembles snapshots from the AWS inventory APIs.
type Fetcher struct {
	sqs    SQSAPI
	ddb    DynamoDBAPI
	cw     CloudWatchAPI
	logger *slog.Logger
}

// NewFetcher creates a Fetcher over the given API clients.
func NewFetcher(sqsAPI SQSAPI, ddbAPI DynamoDBAPI, cwAPI CloudWatchAPI, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		sqs:    sqsAPI,
		ddb:    ddbAPI,
		cw:     cwAPI,
		logger: logger,
	}
}

// Snapshot fetches every supported resource type plus the suffixed alarm set.
//
// A failed resource listing contributes zero resources of that type instead
// of failing the run; since a missing resource only ever schedules an alarm
// deletion that a later run would undo, that is the safer degradation. It is
// logged loudly so operators can tell "truly zero" from "fetch failed". A
// failed alarm listing is a hard error: an empty alarm set would schedule a
// create for every resource in the fleet.
func (f *Fetcher) Snapshot(ctx context.Context, alarmSuffix string) (*Snapshot, error) {
	snap := &Snapshot{}

	queues, err := f.listQueues(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "cannot list queues, treating as zero resources",
			slog.String("resourceType", string(resource.TypeQueue)),
			slog.String("error", err.Error()))
	}
	for _, name := range queues {
		snap.Resources = append(snap.Resources, resource.Ref{Type: resource.TypeQueue, Name: name})
	}

	tables, err := f.listTables(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "cannot list tables, treating as zero resources",
			slog.String("resourceType", string(resource.TypeTable)),
			slog.String("error", err.Error()))
	}
	for _, name := range tables {
		snap.Resources = append(snap.Resources, resource.Ref{Type: resource.TypeTable, Name: name})
	}

	alarms, err := f.listAlarms(ctx, alarmSuffix)
	if err != nil {
		return nil, fmt.Errorf("cannot list alarms: %w", err)
	}
	snap.Alarms = alarms

	f.logger.InfoContext(ctx, "inventory snapshot complete",
		slog.Int("resources", len(snap.Resources)),
		slog.Int("alarms", len(snap.Alarms)))

	return snap, nil
}

func (f *Fetcher) listQueues(ctx context.Context) ([]string, error) {
	paginator := sqs.NewListQueuesPaginator(f.sqs, &sqs.ListQueuesInput{})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, url := range page.QueueUrls {
			names = append(names, resource.NameFromLocator(url))
		}
	}
	return names, nil
}

func (f *Fetcher) listTables(ctx context.Context) ([]string, error) {
	paginator := dynamodb.NewListTablesPaginator(f.ddb, &dynamodb.ListTablesInput{})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

// listAlarms fetches every metric alarm and keeps those carrying the suffix.
// CloudWatch can only filter by name prefix, so suffix filtering happens
// client-side.
func (f *Fetcher) listAlarms(ctx context.Context, suffix string) ([]string, error) {
	paginator := cloudwatch.NewDescribeAlarmsPaginator(f.cw, &cloudwatch.DescribeAlarmsInput{
		MaxRecords: aws.Int32(100),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range page.MetricAlarms {
			name := aws.ToString(a.AlarmName)
			if strings.HasSuffix(name, suffix) {
				names = append(names, name)
			}
		}
	}
	return names, nil
}
