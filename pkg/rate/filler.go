package rate

import (
	"fmt"
	"math"

	"github.com/mchmarny/kinfeat/pkg/passenger"
)

const (
	// Uncertain is the thresholded fallback and the last-resort class mean.
	Uncertain = 0.5
)

// Filler is a per-row series of fallback rates, aligned with table rows.
type Filler []float64

// ConstantFiller returns a filler holding v for every row.
func ConstantFiller(t *passenger.Table, v float64) Filler {
	f := make(Filler, t.Len())
	for i := range f {
		f[i] = v
	}
	return f
}

// ClassMeanFiller returns, for every row, the mean known outcome of its
// pclass. A class without known outcomes gets the overall mean, and a table
// without any known outcome gets Uncertain.
func ClassMeanFiller(t *passenger.Table) Filler {
	means := t.ClassMeans()
	overall, ok := t.OverallMean()
	if !ok {
		overall = Uncertain
	}

	f := make(Filler, t.Len())
	for i, r := range t.Rows {
		if m, ok := means[r.Pclass]; ok {
			f[i] = m
			continue
		}
		f[i] = overall
	}
	return f
}

// DefaultFiller returns the fallback series for a policy: class means for
// continuous rates and Uncertain for thresholded ones.
func DefaultFiller(t *passenger.Table, p Policy) Filler {
	if p.Mode == Thresholded {
		return ConstantFiller(t, Uncertain)
	}
	return ClassMeanFiller(t)
}

// Resolve returns f when set, after checking it fits the table, or the
// policy default otherwise.
func (f Filler) Resolve(t *passenger.Table, p Policy) (Filler, error) {
	if f == nil {
		return DefaultFiller(t, p), nil
	}
	if err := f.Validate(t); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks that the filler has one value in [0,1] per row.
func (f Filler) Validate(t *passenger.Table) error {
	if len(f) != t.Len() {
		return fmt.Errorf("%w: filler has %d values for %d rows", ErrConfiguration, len(f), t.Len())
	}
	for i, v := range f {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: filler value %v at row %d is outside [0,1]", ErrConfiguration, v, i)
		}
	}
	return nil
}

// Fill sets every nil rate returned by field to the row's filler value and
// returns the number of rows filled.
func (f Filler) Fill(t *passenger.Table, field func(*passenger.Row) **float64) int {
	n := 0
	for i, r := range t.Rows {
		p := field(r)
		if *p != nil {
			continue
		}
		v := f[i]
		*p = &v
		n++
	}
	return n
}
