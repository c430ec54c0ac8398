package title

import (
	"testing"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := map[string]string{
		"Braund, Mr. Owen Harris":                      "Mr",
		"Rothes, the Countess. of (Lucy Noel Martha)":  "Countess",
		"Cumings, Mrs. John Bradley (Florence Briggs)": "Mrs",
		"Nobody Special":                               "",
		"Aubart, Mme. Leontine Pauline":                "Mme",
	}
	for name, want := range tests {
		assert.Equal(t, want, Extract(name), name)
	}
}

func TestMapper_Default(t *testing.T) {
	m, err := NewMapper(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLabels(), m.Labels())

	tests := []struct {
		name string
		want int
	}{
		{"Braund, Mr. Owen Harris", 0},
		{"Cumings, Mrs. John", 1},
		{"Aubart, Mme. Leontine", 1},
		{"Heikkinen, Miss. Laina", 2},
		{"Reynaldo, Ms. Encarnacion", 2},
		{"Sagesser, Mlle. Emma", 2},
		{"Palsson, Master. Gosta", 3},
		{"Minahan, Dr. William", 4},
		{"Crosby, Capt. Edward", 4},
		{"Duff Gordon, Sir. Cosmo", 4},
		{"Uruchurtu, Don. Manuel", 4},
		{"No Title Here", 4},
	}
	for _, tt := range tests {
		got, err := m.Map(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestMapper_OptionalLabels(t *testing.T) {
	m, err := NewMapper([]string{Mr, Mrs, Miss, Master, Dr, Military, Royal, Rare})
	require.NoError(t, err)

	tests := map[string]int{
		"Minahan, Dr. William":     4,
		"Crosby, Capt. Edward":     5,
		"Peuchen, Major. Arthur":   5,
		"Simonius, Col. Oberst":    5,
		"Duff Gordon, Sir. Cosmo":  6,
		"Rothes, the Countess. of": 6,
		"Byles, Rev. Thomas":       7,
	}
	for name, want := range tests {
		got, err := m.Map(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestMapper_MissingRequired(t *testing.T) {
	_, err := NewMapper([]string{Mr, Mrs, Miss, Rare})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), Master)
}

func TestMapper_MissingRare(t *testing.T) {
	m, err := NewMapper([]string{Master, Miss, Mrs, Mr})
	require.NoError(t, err)

	got, err := m.Map("Braund, Mr. Owen")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = m.Map("Byles, Rev. Thomas")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestMapper_Apply(t *testing.T) {
	tbl := passenger.NewTable(
		&passenger.Row{PassengerID: 1, Pclass: 3, Sex: passenger.Male, Embarked: passenger.Southampton,
			Name: "Braund, Mr. Owen Harris", Ticket: "A/5 21171"},
		&passenger.Row{PassengerID: 2, Pclass: 1, Sex: passenger.Female, Embarked: passenger.Cherbourg,
			Name: "Cumings, Mrs. John Bradley", Ticket: "PC 17599"},
		&passenger.Row{PassengerID: 3, Pclass: 1, Sex: passenger.Male, Embarked: passenger.Southampton,
			Name: "Byles, Rev. Thomas", Ticket: "244310"},
	)

	m, err := NewMapper(nil)
	require.NoError(t, err)

	out, err := m.Apply(tbl)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows[0].Title)
	assert.Equal(t, 1, out.Rows[1].Title)
	assert.Equal(t, 4, out.Rows[2].Title)

	strict, err := NewMapper([]string{Mr, Mrs, Miss, Master})
	require.NoError(t, err)
	_, err = strict.Apply(tbl)
	assert.ErrorIs(t, err, ErrConfiguration)
}
