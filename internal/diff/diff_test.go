package diff

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/inventory"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/policy"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

var testParams = Params{
	Region:      "eu-west-1",
	AlarmSuffix: "-cloudwatch-alarm",
	Thresholds:  policy.Defaults{QueueDepth: 5, TableThrottle: 10},
}

func compute(t *testing.T, snap *inventory.Snapshot) *plan.Plan {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Compute(context.Background(), snap, testParams, logger)
}

func queues(names ...string) []resource.Ref {
	refs := make([]resource.Ref, 0, len(names))
	for _, n := range names {
		refs = append(refs, resource.Ref{Type: resource.TypeQueue, Name: n})
	}
	return refs
}

func TestCompute_MissingAlarmIsCreated(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: queues("a", "b"),
		Alarms:    []string{"a-cloudwatch-alarm"},
	})

	require.Len(t, p.Creates, 1)
	assert.Empty(t, p.Deletes)

	c := p.Creates[0]
	assert.Equal(t, resource.TypeQueue, c.ResourceType)
	assert.Equal(t, "b", c.ResourceName)
	assert.Equal(t, "b-cloudwatch-alarm", c.AlarmName)
	assert.Equal(t, float64(5), c.Threshold)
	assert.Equal(t, "ApproximateNumberOfMessagesVisible", c.MetricName)
}

func TestCompute_OrphanedAlarmIsDeleted(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: queues("a"),
		Alarms:    []string{"a-cloudwatch-alarm", "z-cloudwatch-alarm"},
	})

	assert.Empty(t, p.Creates)
	require.Len(t, p.Deletes, 1)
	assert.Equal(t, "z-cloudwatch-alarm", p.Deletes[0].AlarmName)
}

func TestCompute_DeadLetterQueueGetsLowThreshold(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: queues("orders", "orders-dlq"),
	})

	require.Len(t, p.Creates, 2)
	assert.Equal(t, "orders", p.Creates[0].ResourceName)
	assert.Equal(t, float64(5), p.Creates[0].Threshold)
	assert.Equal(t, "orders-dlq", p.Creates[1].ResourceName)
	assert.Equal(t, float64(1), p.Creates[1].Threshold)
}

func TestCompute_TableMetricAndThreshold(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: []resource.Ref{{Type: resource.TypeTable, Name: "sessions"}},
	})

	require.Len(t, p.Creates, 1)
	assert.Equal(t, resource.TypeTable, p.Creates[0].ResourceType)
	assert.Equal(t, float64(10), p.Creates[0].Threshold)
	assert.Equal(t, "ThrottledRequests", p.Creates[0].MetricName)
}

func TestCompute_AlarmOwnedByAnyTypeIsNotOrphaned(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: []resource.Ref{{Type: resource.TypeTable, Name: "sessions"}},
		Alarms:    []string{"sessions-cloudwatch-alarm"},
	})

	assert.True(t, p.Empty())
}

func TestCompute_CrossTypeCollisionEmitsOneCreate(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: []resource.Ref{
			{Type: resource.TypeQueue, Name: "orders"},
			{Type: resource.TypeTable, Name: "orders"},
		},
	})

	// The naming convention cannot disambiguate the two; only one alarm
	// name exists, so only one create may be emitted.
	require.Len(t, p.Creates, 1)
	assert.Equal(t, resource.TypeQueue, p.Creates[0].ResourceType)
}

func TestCompute_EmptyWorldYieldsEmptyPlan(t *testing.T) {
	p := compute(t, &inventory.Snapshot{})

	assert.True(t, p.Empty())
	assert.Equal(t, "eu-west-1", p.Region)
	assert.Equal(t, "-cloudwatch-alarm", p.AlarmSuffix)
}

func TestCompute_Idempotent(t *testing.T) {
	snap := &inventory.Snapshot{
		Resources: queues("b", "a", "c"),
		Alarms:    []string{"zombie-cloudwatch-alarm", "a-cloudwatch-alarm"},
	}

	first := compute(t, snap)
	second := compute(t, snap)
	assert.Equal(t, first, second)

	// A world where every computed action has been applied diffs to empty.
	applied := &inventory.Snapshot{
		Resources: snap.Resources,
		Alarms: []string{
			"a-cloudwatch-alarm",
			"b-cloudwatch-alarm",
			"c-cloudwatch-alarm",
		},
	}
	assert.True(t, compute(t, applied).Empty())
}

func TestCompute_SortedOutput(t *testing.T) {
	p := compute(t, &inventory.Snapshot{
		Resources: queues("c", "a", "b"),
		Alarms:    []string{"y-cloudwatch-alarm", "x-cloudwatch-alarm"},
	})

	require.Len(t, p.Creates, 3)
	assert.Equal(t, "a", p.Creates[0].ResourceName)
	assert.Equal(t, "b", p.Creates[1].ResourceName)
	assert.Equal(t, "c", p.Creates[2].ResourceName)

	require.Len(t, p.Deletes, 2)
	assert.Equal(t, "x-cloudwatch-alarm", p.Deletes[0].AlarmName)
	assert.Equal(t, "y-cloudwatch-alarm", p.Deletes[1].AlarmName)
}
