// Package diff computes the reconciliation plan: which alarms to create for
// unguarded resources and which orphaned alarms to delete.
package diff

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/inventory"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/policy"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/diff")

// Params carries the run-scoped policy inputs the diff depends on.
type Params struct {
	Region      string
	AlarmSuffix string
	Thresholds  policy.Defaults
}

// Compute derives a plan from an inventory snapshot. It is a pure function
// of its inputs: running it twice over an unchanged world yields identical
// plans, and a world already in sync yields an empty one. Action lists are
// sorted so plans are comparable across runs.
func Compute(ctx context.Context, snap *inventory.Snapshot, params Params, logger *slog.Logger) *plan.Plan {
	_, span := tracer.Start(ctx, "diff.compute")
	defer span.End()

	// Bare names are assumed globally unique across resource types; the
	// alarm naming convention cannot tell a queue "orders" from a table
	// "orders". Collisions are surfaced but not resolved.
	owners := make(map[string]resource.Type, len(snap.Resources))
	for _, r := range snap.Resources {
		if prev, ok := owners[r.Name]; ok && prev != r.Type {
			logger.WarnContext(ctx, "resource name collides across types, alarm ownership is ambiguous",
				slog.String("resourceName", r.Name),
				slog.String("types", string(prev)+","+string(r.Type)))
			continue
		}
		owners[r.Name] = r.Type
	}

	existing := make(map[string]struct{}, len(snap.Alarms))
	for _, a := range snap.Alarms {
		existing[a] = struct{}{}
	}

	p := &plan.Plan{
		Region:      params.Region,
		AlarmSuffix: params.AlarmSuffix,
	}

	for _, r := range snap.Resources {
		if owners[r.Name] != r.Type {
			// Lost the name collision above; the first discovered type
			// owns the alarm name.
			continue
		}
		alarmName := policy.AlarmNameFor(r.Name, params.AlarmSuffix)
		if _, ok := existing[alarmName]; ok {
			continue
		}
		p.Creates = append(p.Creates, plan.CreateAction{
			ResourceType: r.Type,
			ResourceName: r.Name,
			AlarmName:    alarmName,
			Threshold:    policy.ThresholdFor(r.Type, r.Name, params.Thresholds),
			MetricName:   policy.MetricFor(r.Type),
		})
	}

	for _, alarmName := range snap.Alarms {
		name, ok := policy.ResourceNameFromAlarm(alarmName, params.AlarmSuffix)
		if !ok {
			continue
		}
		if _, live := owners[name]; live {
			continue
		}
		p.Deletes = append(p.Deletes, plan.DeleteAction{AlarmName: alarmName})
	}

	sort.Slice(p.Creates, func(i, j int) bool {
		return p.Creates[i].ResourceName < p.Creates[j].ResourceName
	})
	sort.Slice(p.Deletes, func(i, j int) bool {
		return p.Deletes[i].AlarmName < p.Deletes[j].AlarmName
	})

	span.SetAttributes(
		attribute.Int("plan.creates", len(p.Creates)),
		attribute.Int("plan.deletes", len(p.Deletes)),
	)

	return p
}
