// Package family groups passengers travelling together into families and
// computes the leave-one-out family survival rate.
package family

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/passenger"
)

// legacyMaleCode is the numeric sex code the sibling merge was written
// against. Validated tables never carry it, so the heuristic stays dormant
// unless a grouper is configured otherwise.
const legacyMaleCode passenger.Sex = "1"

// Group is a family group. Ids are assigned sequentially from 0 and never
// reused; a group absorbed by the merge pass keeps its id with Size 0.
type Group struct {
	ID       int            `json:"id" yaml:"id"`
	Pclass   int            `json:"pclass" yaml:"pclass"`
	Embarked passenger.Port `json:"embarked" yaml:"embarked"`
	Lastname string         `json:"lastname" yaml:"lastname"`
	Size     int            `json:"size" yaml:"size"`
}

// Result is the grouped table and its groups in creation order.
type Result struct {
	Table  *passenger.Table `json:"-" yaml:"-"`
	Groups []Group          `json:"groups" yaml:"groups"`
}

// Live returns the groups that still have members.
func (r *Result) Live() []Group {
	list := make([]Group, 0, len(r.Groups))
	for _, g := range r.Groups {
		if g.Size > 0 {
			list = append(list, g)
		}
	}
	return list
}

// GrouperOptions configures family grouping.
type GrouperOptions struct {
	// UseFare groups by identical (fare, lastname) instead of the
	// name/class/port scan.
	UseFare bool
}

// Grouper assigns FamilyID to passengers.
type Grouper struct {
	useFare    bool
	siblingSex passenger.Sex
}

// NewGrouper creates a family grouper.
func NewGrouper(o GrouperOptions) *Grouper {
	return &Grouper{
		useFare:    o.UseFare,
		siblingSex: legacyMaleCode,
	}
}

// Group returns a copy of t with FamilyID set on grouped rows, along with
// the groups. Rows without family aboard keep a nil FamilyID.
func (g *Grouper) Group(t *passenger.Table) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating table: %w", err)
	}

	out := t.Clone()
	out.DeriveNames()
	for _, r := range out.Rows {
		r.FamilyID = nil
	}

	p := newPartition(out)
	if g.useFare {
		p.groupByFare()
	} else {
		p.scan()
		p.mergeSingletons(g.siblingSex)
	}

	res := &Result{Table: out, Groups: p.snapshot()}

	slog.Debug("families grouped",
		"groups", len(res.Groups),
		"live", len(res.Live()),
		"use_fare", g.useFare)

	return res, nil
}

type familyKey struct {
	pclass   int
	embarked passenger.Port
	lastname string
}

type fareKey struct {
	fare     float64
	lastname string
}

// partition is the working state of one grouping run.
type partition struct {
	table   *passenger.Table
	groups  []*Group
	members [][]int
	// first group created for a (pclass, port, lastname)
	byFamily map[familyKey]*Group
	// groups by lastname in creation order, across classes and ports
	byLastname map[string][]*Group
}

func newPartition(t *passenger.Table) *partition {
	return &partition{
		table:      t,
		byFamily:   make(map[familyKey]*Group),
		byLastname: make(map[string][]*Group),
	}
}

func (p *partition) newGroup(r *passenger.Row) *Group {
	g := &Group{
		ID:       len(p.groups),
		Pclass:   r.Pclass,
		Embarked: r.Embarked,
		Lastname: r.Lastname,
	}
	p.groups = append(p.groups, g)
	p.members = append(p.members, nil)

	k := familyKey{g.Pclass, g.Embarked, g.Lastname}
	if _, ok := p.byFamily[k]; !ok {
		p.byFamily[k] = g
	}
	p.byLastname[g.Lastname] = append(p.byLastname[g.Lastname], g)
	return g
}

func (p *partition) assign(pos int, g *Group) {
	id := g.ID
	p.table.Rows[pos].FamilyID = &id
	p.members[g.ID] = append(p.members[g.ID], pos)
	g.Size++
}

// scan places every passenger with family aboard into the first group of
// the same class and port that matches the lastname, then the secondary
// lastname, or into a new group.
func (p *partition) scan() {
	for i, r := range p.table.Rows {
		if !r.HasFamily() {
			continue
		}

		g, ok := p.byFamily[familyKey{r.Pclass, r.Embarked, r.Lastname}]
		if !ok && r.SecondaryLastname != nil {
			g, ok = p.byFamily[familyKey{r.Pclass, r.Embarked, *r.SecondaryLastname}]
		}
		if !ok {
			g = p.newGroup(r)
		}
		p.assign(i, g)
	}
}

// groupByFare groups every passenger with a known fare by identical fare
// and lastname.
func (p *partition) groupByFare() {
	byFare := make(map[fareKey]*Group)
	for i, r := range p.table.Rows {
		if r.Fare == nil {
			continue
		}
		k := fareKey{*r.Fare, r.Lastname}
		g, ok := byFare[k]
		if !ok {
			g = p.newGroup(r)
			byFare[k] = g
		}
		p.assign(i, g)
	}
}

func (p *partition) snapshot() []Group {
	list := make([]Group, len(p.groups))
	for i, g := range p.groups {
		list[i] = *g
	}
	return list
}
