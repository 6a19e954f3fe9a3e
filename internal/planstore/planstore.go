// Package planstore persists plans between the analyze and apply phases.
// The two phases usually run as separate pipeline stages, so the plan either
// lands on local disk or in an S3 object shared by both.
package planstore

import (
	"context"
	"errors"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
)

// ErrNotFound indicates no plan exists where the store looked. For the
// apply phase this is a fatal precondition failure, not an action failure.
var ErrNotFound = errors.New("plan not found")

// Store loads and saves plans.
type Store interface {
	Load(ctx context.Context) (*plan.Plan, error)
	Save(ctx context.Context, p *plan.Plan) error
}
