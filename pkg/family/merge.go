package family

import (
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/passenger"
)

// mergeSingletons folds single-member groups into a related family: first
// a live group named after the member's secondary lastname, then (when the
// sibling gate matches) the family of a sister sharing that lastname.
// Absorbed groups end with Size 0 and are never revisited, so a second
// pass changes nothing.
func (p *partition) mergeSingletons(siblingSex passenger.Sex) {
	var sisters map[string][]int

	for _, g := range p.groups {
		if g.Size != 1 {
			continue
		}

		lone := p.table.Rows[p.members[g.ID][0]]
		if lone.SecondaryLastname == nil {
			continue
		}
		second := *lone.SecondaryLastname

		if target := p.firstLive(second, g.ID); target != nil {
			p.absorb(g, target)
			continue
		}

		if lone.Sex != siblingSex || lone.SibSp == 0 {
			continue
		}
		if sisters == nil {
			sisters = p.indexSecondary()
		}
		if target := p.sisterFamily(lone, sisters[second], g.ID); target != nil {
			p.absorb(g, target)
		}
	}
}

// firstLive returns the first group, in creation order, with the lastname
// that still has members, skipping the group being merged. Unlike a scan of
// every group, absorbed groups never become targets again.
func (p *partition) firstLive(lastname string, skip int) *Group {
	for _, g := range p.byLastname[lastname] {
		if g.ID != skip && g.Size > 0 {
			return g
		}
	}
	return nil
}

func (p *partition) indexSecondary() map[string][]int {
	idx := make(map[string][]int)
	for i, r := range p.table.Rows {
		if r.SecondaryLastname != nil {
			idx[*r.SecondaryLastname] = append(idx[*r.SecondaryLastname], i)
		}
	}
	return idx
}

// sisterFamily returns the family of the first matching sister. Sisters
// without a family are passed over in favour of the next candidate.
func (p *partition) sisterFamily(lone *passenger.Row, candidates []int, skip int) *Group {
	for _, pos := range candidates {
		r := p.table.Rows[pos]
		if r == lone || r.Sex != passenger.Female || r.FamilyID == nil || *r.FamilyID == skip {
			continue
		}
		if r.Pclass != lone.Pclass || r.Embarked != lone.Embarked {
			continue
		}
		return p.groups[*r.FamilyID]
	}
	return nil
}

func (p *partition) absorb(from, to *Group) {
	slog.Debug("merging family",
		"from", from.ID,
		"to", to.ID,
		"lastname", to.Lastname,
		"members", from.Size)

	for _, pos := range p.members[from.ID] {
		id := to.ID
		p.table.Rows[pos].FamilyID = &id
	}
	p.members[to.ID] = append(p.members[to.ID], p.members[from.ID]...)
	to.Size += from.Size
	from.Size = 0
	p.members[from.ID] = nil
}
