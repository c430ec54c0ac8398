package rate

import (
	"testing"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	yes = passenger.Ptr(true)
	no  = passenger.Ptr(false)
)

func TestPolicy_Rate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		others Outcomes
		want   float64
		ok     bool
	}{
		{"continuous mean", Policy{Mode: Continuous}, Outcomes{Survived: 1, Died: 3}, 0.25, true},
		{"continuous empty", Policy{Mode: Continuous}, Outcomes{}, 0, false},
		{"conservative all survived", Policy{Mode: Thresholded}, Outcomes{Survived: 2}, 1, true},
		{"conservative all died", Policy{Mode: Thresholded}, Outcomes{Died: 2}, 0, true},
		{"conservative mixed", Policy{Mode: Thresholded}, Outcomes{Survived: 1, Died: 1}, 0, false},
		{"conservative empty", Policy{Mode: Thresholded}, Outcomes{}, 0, false},
		{"aggressive any survived", Policy{Mode: Thresholded, Aggressive: true}, Outcomes{Survived: 1, Died: 4}, 1, true},
		{"aggressive none survived", Policy{Mode: Thresholded, Aggressive: true}, Outcomes{Died: 1}, 0, true},
		{"aggressive empty", Policy{Mode: Thresholded, Aggressive: true}, Outcomes{}, 0, false},
		{"aggressive ignored when continuous", Policy{Mode: Continuous, Aggressive: true}, Outcomes{Survived: 1, Died: 1}, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.Rate(tt.others)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestPolicy_LeaveOneOut(t *testing.T) {
	// survived = [1, 0, unknown]
	var group Outcomes
	group.Add(yes)
	group.Add(no)
	group.Add(nil)
	require.Equal(t, Outcomes{Survived: 1, Died: 1}, group)

	p := Policy{Mode: Continuous}

	r, ok := p.LeaveOneOut(group, yes)
	require.True(t, ok)
	assert.InDelta(t, 0.0, r, 1e-9)

	r, ok = p.LeaveOneOut(group, no)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	r, ok = p.LeaveOneOut(group, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.5, r, 1e-9)
}

func TestPolicy_LeaveOneOutPurity(t *testing.T) {
	// a pair with different outcomes: each member only sees the other one
	group := Outcomes{Survived: 1, Died: 1}
	for _, p := range []Policy{{Mode: Continuous}, {Mode: Thresholded}, {Mode: Thresholded, Aggressive: true}} {
		r, ok := p.LeaveOneOut(group, yes)
		require.True(t, ok, p.Mode.String())
		assert.Equal(t, 0.0, r)

		r, ok = p.LeaveOneOut(group, no)
		require.True(t, ok, p.Mode.String())
		assert.Equal(t, 1.0, r)
	}
}

func TestNewPolicy(t *testing.T) {
	assert.Equal(t, Policy{Mode: Continuous}, NewPolicy(false, true))
	assert.Equal(t, Policy{Mode: Thresholded}, NewPolicy(true, false))
	assert.Equal(t, Policy{Mode: Thresholded, Aggressive: true}, NewPolicy(true, true))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "continuous", Continuous.String())
	assert.Equal(t, "thresholded", Thresholded.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
