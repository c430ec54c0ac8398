// Package title maps the honorific in a passenger name to the index of a
// configurable label list.
package title

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/rate"
)

// Labels understood by the mapper.
const (
	Mr       = "Mr"
	Mrs      = "Mrs"
	Miss     = "Miss"
	Master   = "Master"
	Dr       = "Dr"
	Military = "Military"
	Royal    = "Royal"
	Rare     = "Rare"
)

var (
	// ErrConfiguration is returned for an unusable label list.
	ErrConfiguration = rate.ErrConfiguration

	// first word terminated by a dot: "Braund, Mr. Owen Harris"
	titleRegEx = regexp.MustCompile(`([A-Za-z]+)\.`)

	requiredLabels = []string{Mr, Mrs, Miss, Master}

	// honorific to label; the optional labels apply only when listed
	honorifics = map[string]string{
		"Mr":       Mr,
		"Mrs":      Mrs,
		"Mme":      Mrs,
		"Miss":     Miss,
		"Ms":       Miss,
		"Mlle":     Miss,
		"Master":   Master,
		"Dr":       Dr,
		"Capt":     Military,
		"Major":    Military,
		"Col":      Military,
		"Sir":      Royal,
		"Count":    Royal,
		"Countess": Royal,
	}
)

// DefaultLabels returns the default label list.
func DefaultLabels() []string {
	return []string{Mr, Mrs, Miss, Master, Rare}
}

// Mapper resolves names to label indexes.
type Mapper struct {
	labels []string
	index  map[string]int
}

// NewMapper creates a mapper over labels, or the default list when empty.
// The list must contain Mr, Mrs, Miss and Master.
func NewMapper(labels []string) (*Mapper, error) {
	if len(labels) == 0 {
		labels = DefaultLabels()
	}

	m := &Mapper{
		labels: slices.Clone(labels),
		index:  make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		if _, ok := m.index[l]; !ok {
			m.index[l] = i
		}
	}

	var missing []string
	for _, l := range requiredLabels {
		if _, ok := m.index[l]; !ok {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: title labels missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	return m, nil
}

// Labels returns the label list in index order.
func (m *Mapper) Labels() []string {
	return slices.Clone(m.labels)
}

// Extract returns the honorific of a name, or an empty string.
func Extract(name string) string {
	if match := titleRegEx.FindStringSubmatch(name); match != nil {
		return match[1]
	}
	return ""
}

// Map returns the label index for a name. Names without a recognised title
// map to Rare, which is an error when Rare is not listed.
func (m *Mapper) Map(name string) (int, error) {
	if label, ok := honorifics[Extract(name)]; ok {
		if i, ok := m.index[label]; ok {
			return i, nil
		}
	}

	i, ok := m.index[Rare]
	if !ok {
		return 0, fmt.Errorf("%w: no %s label for title of %q", ErrConfiguration, Rare, name)
	}
	return i, nil
}

// Apply returns a copy of t with Title set on every row.
func (m *Mapper) Apply(t *passenger.Table) (*passenger.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating table: %w", err)
	}

	out := t.Clone()
	counts := make(map[string]int, len(m.labels))
	for _, r := range out.Rows {
		i, err := m.Map(r.Name)
		if err != nil {
			return nil, fmt.Errorf("passenger %d: %w", r.PassengerID, err)
		}
		r.Title = i
		counts[m.labels[i]]++
	}

	slog.Debug("titles extracted", "labels", len(m.labels), "counts", counts)

	return out, nil
}
