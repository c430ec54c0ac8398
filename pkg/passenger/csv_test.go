package passenger

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",female,38,1,0,PC 17599,71.2833,C85,C
3,,3,"Heikkinen, Miss. Laina",female,26,0,0,STON/O2. 3101282,,,
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV), ReadOptions{ImputeEmbarked: Southampton})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"Age"}, tbl.ExtraColumns)

	r := tbl.Rows[0]
	assert.Equal(t, 1, r.PassengerID)
	require.NotNil(t, r.Survived)
	assert.False(t, *r.Survived)
	assert.Equal(t, Male, r.Sex)
	assert.Equal(t, 1, r.SibSp)
	assert.Nil(t, r.Cabin)
	require.NotNil(t, r.Fare)
	assert.InDelta(t, 7.25, *r.Fare, 1e-9)
	assert.Equal(t, "22", r.Extra["Age"])

	r = tbl.Rows[1]
	require.NotNil(t, r.Cabin)
	assert.Equal(t, "C85", *r.Cabin)
	assert.Equal(t, Cherbourg, r.Embarked)

	r = tbl.Rows[2]
	assert.Nil(t, r.Survived)
	assert.Nil(t, r.Fare)
	assert.Equal(t, Southampton, r.Embarked)

	assert.NoError(t, tbl.Validate())
}

func TestReadCSV_MissingPortWithoutImputation(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV), ReadOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, tbl.Validate(), ErrDataContract)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("PassengerId,Name\n1,x\n"), ReadOptions{})
	assert.ErrorIs(t, err, ErrDataContract)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), ReadOptions{})
	assert.ErrorIs(t, err, ErrDataContract)
}

func TestReadCSV_BadValues(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad id", `x,0,3,"A, Mr. B",male,1,0,T,7.25,,S`},
		{"bad survived", `1,2,3,"A, Mr. B",male,1,0,T,7.25,,S`},
		{"bad fare", `1,0,3,"A, Mr. B",male,1,0,T,abc,,S`},
		{"missing class", `1,0,,"A, Mr. B",male,1,0,T,7.25,,S`},
	}

	header := "PassengerId,Survived,Pclass,Name,Sex,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(header+tt.row+"\n"), ReadOptions{})
			assert.ErrorIs(t, err, ErrDataContract)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV), ReadOptions{ImputeEmbarked: Southampton})
	require.NoError(t, err)
	tbl.DeriveNames()
	tbl.Rows[0].FamilyID = Ptr(0)
	tbl.Rows[0].FamilyRate = Ptr(0.5)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)

	col := make(map[string]int)
	for i, h := range recs[0] {
		col[h] = i
	}
	assert.Contains(t, col, "Age")
	assert.Equal(t, "Braund", recs[1][col[colLastname]])
	assert.Equal(t, "0", recs[1][col[colFamily]])
	assert.Equal(t, "0.5", recs[1][col[colFamilyRate]])
	assert.Equal(t, "Thayer", recs[2][col[colSecondaryLastname]])
	assert.Equal(t, "", recs[3][col[colSurvived]])
	assert.Equal(t, "", recs[3][col[colFamily]])
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")

	tbl, err := ReadCSV(strings.NewReader(testCSV), ReadOptions{ImputeEmbarked: Southampton})
	require.NoError(t, err)
	require.NoError(t, WriteFile(in, tbl))

	again, err := ReadFile(in, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), again.Len())
	require.NoError(t, WriteFile(out, again))

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), ReadOptions{})
	assert.Error(t, err)
}

func TestReadCSV_FeaturesFile(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV), ReadOptions{ImputeEmbarked: Southampton})
	require.NoError(t, err)
	tbl.DeriveNames()
	tbl.Rows[0].Lastname = "Braund-Smith"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	again, err := ReadCSV(&buf, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Age"}, again.ExtraColumns)
	assert.NotContains(t, again.Rows[0].Extra, colFamilyRate)

	assert.Equal(t, "Braund-Smith", again.Rows[0].Lastname)
	assert.Nil(t, again.Rows[0].SecondaryLastname)
	require.NotNil(t, again.Rows[1].SecondaryLastname)
	assert.Equal(t, "Thayer", *again.Rows[1].SecondaryLastname)

	// names read from the file win over re-derivation
	again.DeriveNames()
	assert.Equal(t, "Braund-Smith", again.Rows[0].Lastname)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"3.0", 3, true},
		{"-2", -2, true},
		{"3.5", 0, false},
		{"1e300", 0, false},
		{"-1e300", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInt(colPclass, tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrDataContract)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
