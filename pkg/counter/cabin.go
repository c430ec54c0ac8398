package counter

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/rate"
)

// CabinOptions configures the cabin rate computation. Cabins only use the
// conservative thresholded rule when Simplified is set.
type CabinOptions struct {
	Simplified bool
	Filler     rate.Filler
}

// CabinCounter computes CabinCount and CabinRate.
type CabinCounter struct {
	policy rate.Policy
	filler rate.Filler
}

// NewCabinCounter creates a cabin counter.
func NewCabinCounter(o CabinOptions) *CabinCounter {
	return &CabinCounter{
		policy: rate.NewPolicy(o.Simplified, false),
		filler: o.Filler,
	}
}

// Apply returns a copy of t with CabinCount and CabinRate set on every row.
// Passengers without a cabin have a zero count and the filler rate.
func (c *CabinCounter) Apply(t *passenger.Table) (*passenger.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating table: %w", err)
	}

	out := t.Clone()
	filler, err := c.filler.Resolve(out, c.policy)
	if err != nil {
		return nil, fmt.Errorf("resolving cabin filler: %w", err)
	}

	idx := rate.NewIndex(out, cabinKey)

	for _, r := range out.Rows {
		r.CabinCount = 0
		r.CabinRate = nil

		cabin, ok := cabinKey(r)
		if !ok {
			continue
		}
		r.CabinCount = idx.Count(cabin)
		if v, ok := c.policy.LeaveOneOut(idx.Outcomes(cabin), r.Survived); ok {
			r.CabinRate = &v
		}
	}

	filled := filler.Fill(out, func(r *passenger.Row) **float64 { return &r.CabinRate })

	slog.Debug("cabin rates computed",
		"cabins", len(idx.Keys()),
		"mode", c.policy.Mode.String(),
		"filled", filled)

	return out, nil
}

func cabinKey(r *passenger.Row) (string, bool) {
	if r.Cabin == nil || *r.Cabin == "" {
		return "", false
	}
	return *r.Cabin, true
}
