package family

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/rate"
)

// aggressiveFloor is the family rate below which the aggressive
// thresholded variant falls back to the filler again.
const aggressiveFloor = 0.75

// Options configures the family rate computation.
type Options struct {
	Simplified           bool
	FillIfNotAnySurvived bool
	UseFare              bool
	Filler               rate.Filler
}

// RateComputer groups families and computes FamilyRate.
type RateComputer struct {
	grouper *Grouper
	policy  rate.Policy
	filler  rate.Filler
}

// NewRateComputer creates a family rate computer.
func NewRateComputer(o Options) *RateComputer {
	return &RateComputer{
		grouper: NewGrouper(GrouperOptions{UseFare: o.UseFare}),
		policy:  rate.NewPolicy(o.Simplified, o.FillIfNotAnySurvived),
		filler:  o.Filler,
	}
}

// Apply returns the grouped copy of t with FamilyRate set on every row.
// Passengers outside a multi-member family get the filler value.
func (c *RateComputer) Apply(t *passenger.Table) (*Result, error) {
	res, err := c.grouper.Group(t)
	if err != nil {
		return nil, err
	}
	out := res.Table

	filler, err := c.filler.Resolve(out, c.policy)
	if err != nil {
		return nil, fmt.Errorf("resolving family filler: %w", err)
	}

	idx := rate.NewIndex(out, func(r *passenger.Row) (int, bool) {
		if r.FamilyID == nil {
			return 0, false
		}
		return *r.FamilyID, true
	})

	for _, r := range out.Rows {
		r.FamilyRate = nil
		if r.FamilyID == nil || idx.Count(*r.FamilyID) <= 1 {
			continue
		}
		if v, ok := c.policy.LeaveOneOut(idx.Outcomes(*r.FamilyID), r.Survived); ok {
			r.FamilyRate = &v
		}
	}

	filled := filler.Fill(out, func(r *passenger.Row) **float64 { return &r.FamilyRate })

	if c.policy.Mode == rate.Thresholded && c.policy.Aggressive {
		for i, r := range out.Rows {
			if *r.FamilyRate < aggressiveFloor {
				v := filler[i]
				r.FamilyRate = &v
			}
		}
	}

	slog.Debug("family rates computed",
		"families", len(idx.Keys()),
		"mode", c.policy.Mode.String(),
		"filled", filled)

	return res, nil
}
