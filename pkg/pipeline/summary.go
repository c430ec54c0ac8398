package pipeline

import (
	"github.com/mchmarny/kinfeat/pkg/family"
	"github.com/mchmarny/kinfeat/pkg/passenger"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a processed table.
type Summary struct {
	Rows           int            `json:"rows" yaml:"rows"`
	Labeled        int            `json:"labeled" yaml:"labeled"`
	Families       int            `json:"families" yaml:"families"`
	Grouped        int            `json:"grouped" yaml:"grouped"`
	LargestFamily  int            `json:"largest_family" yaml:"largestFamily"`
	MeanTicketRate float64        `json:"mean_ticket_rate" yaml:"meanTicketRate"`
	MeanCabinRate  float64        `json:"mean_cabin_rate" yaml:"meanCabinRate"`
	MeanFamilyRate float64        `json:"mean_family_rate" yaml:"meanFamilyRate"`
	Titles         map[string]int `json:"titles" yaml:"titles"`
}

// Summarize computes the summary of an augmented table.
func Summarize(t *passenger.Table, groups []family.Group, labels []string) *Summary {
	s := &Summary{
		Rows:   t.Len(),
		Titles: make(map[string]int, len(labels)),
	}

	ticket := make([]float64, 0, t.Len())
	cabin := make([]float64, 0, t.Len())
	fam := make([]float64, 0, t.Len())

	for _, r := range t.Rows {
		if r.Survived != nil {
			s.Labeled++
		}
		if r.FamilyID != nil {
			s.Grouped++
		}
		if r.Title >= 0 && r.Title < len(labels) {
			s.Titles[labels[r.Title]]++
		}
		ticket = appendRate(ticket, r.TicketRate)
		cabin = appendRate(cabin, r.CabinRate)
		fam = appendRate(fam, r.FamilyRate)
	}

	for _, g := range groups {
		if g.Size == 0 {
			continue
		}
		s.Families++
		s.LargestFamily = max(s.LargestFamily, g.Size)
	}

	s.MeanTicketRate = mean(ticket)
	s.MeanCabinRate = mean(cabin)
	s.MeanFamilyRate = mean(fam)

	return s
}

func appendRate(list []float64, v *float64) []float64 {
	if v == nil {
		return list
	}
	return append(list, *v)
}

func mean(list []float64) float64 {
	if len(list) == 0 {
		return 0
	}
	return stat.Mean(list, nil)
}
