// Package pipeline runs the feature engineering steps over a passenger
// table: names, titles, ticket and cabin rates, families and family rates.
package pipeline

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mchmarny/kinfeat/pkg/counter"
	"github.com/mchmarny/kinfeat/pkg/family"
	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/rate"
	"github.com/mchmarny/kinfeat/pkg/title"
)

const (
	// FillerDefault uses the policy default for the family fallback.
	FillerDefault = "default"
	// FillerTicket uses the computed ticket rate for the family fallback.
	FillerTicket = "ticket"
)

// FamilyFillers lists the supported family filler names.
var FamilyFillers = []string{FillerDefault, FillerTicket}

// Options are the engine switches shared by all steps.
type Options struct {
	Simplified           bool     `json:"simplified" yaml:"simplified"`
	FillIfNotAnySurvived bool     `json:"fill_if_not_any_survived" yaml:"fill_if_not_any_survived"`
	UseFare              bool     `json:"use_fare" yaml:"use_fare"`
	Titles               []string `json:"titles,omitempty" yaml:"titles,omitempty"`
	FamilyFiller         string   `json:"family_filler,omitempty" yaml:"family_filler,omitempty"`
}

// Validate checks the option values.
func (o Options) Validate() error {
	if o.FamilyFiller != "" && !slices.Contains(FamilyFillers, o.FamilyFiller) {
		return fmt.Errorf("%w: unknown family filler %q, expected one of %v",
			rate.ErrConfiguration, o.FamilyFiller, FamilyFillers)
	}
	return nil
}

// Result is the augmented table with its family groups and summary.
type Result struct {
	Table   *passenger.Table `json:"-" yaml:"-"`
	Groups  []family.Group   `json:"groups" yaml:"groups"`
	Summary *Summary         `json:"summary" yaml:"summary"`
}

// Run validates t and returns an augmented copy. Steps run in order and the
// input table is never modified.
func Run(t *passenger.Table, o Options) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating input: %w", err)
	}

	titles, err := title.NewMapper(o.Titles)
	if err != nil {
		return nil, fmt.Errorf("creating title mapper: %w", err)
	}

	out := t.Clone()
	out.DeriveNames()

	if out, err = titles.Apply(out); err != nil {
		return nil, fmt.Errorf("extracting titles: %w", err)
	}

	out, err = counter.NewTicketCounter(counter.TicketOptions{
		Simplified:           o.Simplified,
		FillIfNotAnySurvived: o.FillIfNotAnySurvived,
	}).Apply(out)
	if err != nil {
		return nil, fmt.Errorf("computing ticket rates: %w", err)
	}

	out, err = counter.NewCabinCounter(counter.CabinOptions{
		Simplified: o.Simplified,
	}).Apply(out)
	if err != nil {
		return nil, fmt.Errorf("computing cabin rates: %w", err)
	}

	var filler rate.Filler
	if o.FamilyFiller == FillerTicket {
		filler = ticketFiller(out)
	}

	fam, err := family.NewRateComputer(family.Options{
		Simplified:           o.Simplified,
		FillIfNotAnySurvived: o.FillIfNotAnySurvived,
		UseFare:              o.UseFare,
		Filler:               filler,
	}).Apply(out)
	if err != nil {
		return nil, fmt.Errorf("computing family rates: %w", err)
	}

	res := &Result{
		Table:   fam.Table,
		Groups:  fam.Groups,
		Summary: Summarize(fam.Table, fam.Groups, titles.Labels()),
	}

	slog.Debug("pipeline complete",
		"rows", res.Summary.Rows,
		"families", res.Summary.Families,
		"simplified", o.Simplified)

	return res, nil
}

func ticketFiller(t *passenger.Table) rate.Filler {
	f := make(rate.Filler, t.Len())
	for i, r := range t.Rows {
		if r.TicketRate != nil {
			f[i] = *r.TicketRate
			continue
		}
		f[i] = rate.Uncertain
	}
	return f
}
