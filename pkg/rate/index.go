package rate

import "github.com/mchmarny/kinfeat/pkg/passenger"

// Index maps group keys to the positions of their member rows. Keys are kept
// in first-seen order and members in table order.
type Index[K comparable] struct {
	keys     []K
	members  map[K][]int
	outcomes map[K]Outcomes
}

// NewIndex groups the table rows by key. Rows for which key returns false
// belong to no group.
func NewIndex[K comparable](t *passenger.Table, key func(*passenger.Row) (K, bool)) *Index[K] {
	idx := &Index[K]{
		members:  make(map[K][]int),
		outcomes: make(map[K]Outcomes),
	}

	for i, r := range t.Rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, seen := idx.members[k]; !seen {
			idx.keys = append(idx.keys, k)
		}
		idx.members[k] = append(idx.members[k], i)

		o := idx.outcomes[k]
		o.Add(r.Survived)
		idx.outcomes[k] = o
	}

	return idx
}

// Keys returns the group keys in first-seen order.
func (x *Index[K]) Keys() []K {
	return x.keys
}

// Members returns the row positions of a group.
func (x *Index[K]) Members(k K) []int {
	return x.members[k]
}

// Count returns the number of rows in a group.
func (x *Index[K]) Count(k K) int {
	return len(x.members[k])
}

// Outcomes returns the known outcomes of a group.
func (x *Index[K]) Outcomes(k K) Outcomes {
	return x.outcomes[k]
}
