// Package rate computes leave-one-out survival rates over groups of
// passengers and the fallback values used when a group rate is undefined.
package rate

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned for unsupported engine settings.
var ErrConfiguration = errors.New("configuration error")

// Mode selects how a group's outcomes are turned into a rate.
type Mode int

const (
	// Continuous is the mean outcome of the other known group members.
	Continuous Mode = iota
	// Thresholded yields 1 or 0 when the other members agree (or, in the
	// aggressive variant, when any of them survived).
	Thresholded
)

func (m Mode) String() string {
	switch m {
	case Continuous:
		return "continuous"
	case Thresholded:
		return "thresholded"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Outcomes is the multiset of known outcomes of a group.
type Outcomes struct {
	Survived int `json:"survived" yaml:"survived"`
	Died     int `json:"died" yaml:"died"`
}

// Known returns the number of members with a known outcome.
func (o Outcomes) Known() int {
	return o.Survived + o.Died
}

// Add records one outcome; unknown outcomes are ignored.
func (o *Outcomes) Add(survived *bool) {
	switch {
	case survived == nil:
	case *survived:
		o.Survived++
	default:
		o.Died++
	}
}

// Without returns the outcomes with a member's own outcome removed, which is
// what makes every rate leave-one-out.
func (o Outcomes) Without(survived *bool) Outcomes {
	switch {
	case survived == nil:
	case *survived:
		o.Survived--
	default:
		o.Died--
	}
	return o
}

// Policy is a rate rule.
type Policy struct {
	Mode Mode `json:"mode" yaml:"mode"`
	// Aggressive switches the thresholded rule from "all others agree" to
	// "any other survived". Ignored in continuous mode.
	Aggressive bool `json:"aggressive" yaml:"aggressive"`
}

// NewPolicy maps the simplified / fill-if-not-any-survived switches to a policy.
func NewPolicy(simplified, fillIfNotAnySurvived bool) Policy {
	if !simplified {
		return Policy{Mode: Continuous}
	}
	return Policy{Mode: Thresholded, Aggressive: fillIfNotAnySurvived}
}

// Rate computes the rate of a member given the outcomes of the other members.
// The second value is false when the rate is undefined and must be filled.
func (p Policy) Rate(others Outcomes) (float64, bool) {
	s, d := others.Survived, others.Died
	if s+d == 0 {
		return 0, false
	}

	if p.Mode == Continuous {
		return float64(s) / float64(s+d), true
	}

	if p.Aggressive {
		if s > 0 {
			return 1, true
		}
		return 0, true
	}

	switch {
	case d == 0:
		return 1, true
	case s == 0:
		return 0, true
	default:
		return 0, false
	}
}

// LeaveOneOut is Rate over the group outcomes minus the member's own outcome.
func (p Policy) LeaveOneOut(group Outcomes, own *bool) (float64, bool) {
	return p.Rate(group.Without(own))
}
