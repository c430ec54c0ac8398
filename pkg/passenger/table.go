package passenger

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Table is an ordered set of passenger rows. The order is significant:
// it is the processing order of the family grouper.
type Table struct {
	Rows []*Row

	// ExtraColumns lists, in input order, the names of columns carried in
	// Row.Extra.
	ExtraColumns []string
}

// NewTable wraps rows in a table.
func NewTable(rows ...*Row) *Table {
	return &Table{Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Validate checks the input column contract.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: table is nil", ErrDataContract)
	}

	seen := make(map[int]int, len(t.Rows))
	for i, r := range t.Rows {
		if r == nil {
			return fmt.Errorf("%w: row %d is nil", ErrDataContract, i)
		}
		if prev, ok := seen[r.PassengerID]; ok {
			return fmt.Errorf("%w: duplicate passenger id %d (rows %d and %d)",
				ErrDataContract, r.PassengerID, prev, i)
		}
		seen[r.PassengerID] = i

		if err := r.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		Rows:         make([]*Row, len(t.Rows)),
		ExtraColumns: append([]string(nil), t.ExtraColumns...),
	}
	for i, r := range t.Rows {
		c.Rows[i] = r.clone()
	}
	return c
}

// DeriveNames fills Lastname and SecondaryLastname from Name for every row
// that does not have a Lastname yet.
func (t *Table) DeriveNames() {
	for _, r := range t.Rows {
		if r.Lastname != "" {
			continue
		}
		r.Lastname = ExtractLastname(r.Name)
		r.SecondaryLastname = ExtractSecondaryLastname(r.Name, r.Lastname)
	}
}

// ClassMeans returns the mean known outcome per pclass. Classes with no
// known outcome are absent from the map.
func (t *Table) ClassMeans() map[int]float64 {
	byClass := make(map[int][]float64)
	for _, r := range t.Rows {
		if v, ok := r.Outcome(); ok {
			byClass[r.Pclass] = append(byClass[r.Pclass], v)
		}
	}

	means := make(map[int]float64, len(byClass))
	for c, vals := range byClass {
		means[c] = stat.Mean(vals, nil)
	}
	return means
}

// OverallMean returns the mean of all known outcomes.
func (t *Table) OverallMean() (float64, bool) {
	vals := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if v, ok := r.Outcome(); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}
