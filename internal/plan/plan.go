// Package plan defines the reconciliation plan bridging the analyze and
// apply phases, and its line-oriented wire format.
package plan

import "github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"

// CreateAction describes one alarm to create.
type CreateAction struct {
	ResourceType resource.Type
	ResourceName string
	AlarmName    string
	Threshold    float64
	MetricName   string
}

// DeleteAction describes one orphaned alarm to delete.
type DeleteAction struct {
	AlarmName string
}

// Plan is a point-in-time set of alarm changes computed by the analyzer and
// consumed exactly once by the executor. It may be stale by the time it is
// applied; every action is safe to attempt against a moved-on world.
type Plan struct {
	Region      string
	AlarmSuffix string
	Creates     []CreateAction
	Deletes     []DeleteAction
}

// Empty reports whether the plan contains no actions.
func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Deletes) == 0
}
