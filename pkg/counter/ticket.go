// Package counter adds the ticket and cabin group features: the number of
// passengers sharing a ticket (or cabin) and their leave-one-out survival rate.
package counter

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/rate"
)

// TicketOptions configures the ticket rate computation.
type TicketOptions struct {
	// Simplified selects thresholded rates instead of the continuous mean.
	Simplified bool
	// FillIfNotAnySurvived selects the aggressive thresholded variant.
	FillIfNotAnySurvived bool
	// Filler overrides the default fallback series.
	Filler rate.Filler
}

// TicketCounter computes TicketCount and TicketRate.
type TicketCounter struct {
	policy rate.Policy
	filler rate.Filler
}

// NewTicketCounter creates a ticket counter.
func NewTicketCounter(o TicketOptions) *TicketCounter {
	return &TicketCounter{
		policy: rate.NewPolicy(o.Simplified, o.FillIfNotAnySurvived),
		filler: o.Filler,
	}
}

// Apply returns a copy of t with TicketCount and TicketRate set on every row.
func (c *TicketCounter) Apply(t *passenger.Table) (*passenger.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating table: %w", err)
	}

	out := t.Clone()
	filler, err := c.filler.Resolve(out, c.policy)
	if err != nil {
		return nil, fmt.Errorf("resolving ticket filler: %w", err)
	}

	idx := rate.NewIndex(out, func(r *passenger.Row) (string, bool) {
		return r.Ticket, true
	})

	for _, r := range out.Rows {
		r.TicketCount = idx.Count(r.Ticket)
		r.TicketRate = nil
		if v, ok := c.policy.LeaveOneOut(idx.Outcomes(r.Ticket), r.Survived); ok {
			r.TicketRate = &v
		}
	}

	filled := filler.Fill(out, func(r *passenger.Row) **float64 { return &r.TicketRate })

	slog.Debug("ticket rates computed",
		"tickets", len(idx.Keys()),
		"mode", c.policy.Mode.String(),
		"filled", filled)

	return out, nil
}
