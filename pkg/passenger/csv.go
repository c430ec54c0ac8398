package passenger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	// largest magnitude below which every integer is exact in a float64
	maxExactFloatInt = 1 << 53

	colPassengerID = "PassengerId"
	colSurvived    = "Survived"
	colPclass      = "Pclass"
	colName        = "Name"
	colSex         = "Sex"
	colSibSp       = "SibSp"
	colParch       = "Parch"
	colTicket      = "Ticket"
	colFare        = "Fare"
	colCabin       = "Cabin"
	colEmbarked    = "Embarked"

	colLastname          = "Lastname"
	colSecondaryLastname = "SecondaryLastname"
	colFamily            = "Family"
	colTitle             = "Title"
	colTicketCount       = "TicketCount"
	colTicketRate        = "TicketRate"
	colCabinCount        = "CabinCount"
	colCabinRate         = "CabinRate"
	colFamilyRate        = "FamilyRate"
)

var (
	requiredColumns = []string{
		colPassengerID, colPclass, colName, colSex, colSibSp, colParch, colTicket, colEmbarked,
	}

	inputColumns = []string{
		colPassengerID, colSurvived, colPclass, colName, colSex,
		colSibSp, colParch, colTicket, colFare, colCabin, colEmbarked,
	}

	derivedColumns = []string{
		colLastname, colSecondaryLastname, colFamily, colTitle,
		colTicketCount, colTicketRate, colCabinCount, colCabinRate, colFamilyRate,
	}
)

// ReadOptions controls how raw CSV cells are turned into rows.
type ReadOptions struct {
	// ImputeEmbarked replaces an empty Embarked cell. Empty means no
	// imputation: a missing port is then a contract violation.
	ImputeEmbarked Port
}

// ReadFile reads a passenger CSV file.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a passenger table in the Kaggle Titanic layout. Columns may
// appear in any order; unknown columns are preserved in Row.Extra.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrDataContract)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrDataContract, c)
		}
	}

	t := &Table{}
	// derived columns of a features file are recomputed, not carried as extras
	known := make(map[string]bool, len(inputColumns)+len(derivedColumns))
	for _, c := range inputColumns {
		known[c] = true
	}
	for _, c := range derivedColumns {
		known[c] = true
	}
	for _, h := range header {
		if h = strings.TrimSpace(h); !known[h] {
			t.ExtraColumns = append(t.ExtraColumns, h)
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		row, err := parseRecord(rec, idx, t.ExtraColumns, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func parseRecord(rec []string, idx map[string]int, extra []string, opts ReadOptions) (*Row, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var err error
	r := &Row{
		Name:     cell(colName),
		Sex:      Sex(strings.ToLower(cell(colSex))),
		Embarked: Port(strings.ToUpper(cell(colEmbarked))),
		Ticket:   cell(colTicket),
	}

	if r.PassengerID, err = parseInt(colPassengerID, cell(colPassengerID)); err != nil {
		return nil, err
	}
	if r.Pclass, err = parseInt(colPclass, cell(colPclass)); err != nil {
		return nil, err
	}
	if r.SibSp, err = parseInt(colSibSp, cell(colSibSp)); err != nil {
		return nil, err
	}
	if r.Parch, err = parseInt(colParch, cell(colParch)); err != nil {
		return nil, err
	}

	if v := cell(colSurvived); v != "" {
		switch v {
		case "1", "1.0":
			r.Survived = Ptr(true)
		case "0", "0.0":
			r.Survived = Ptr(false)
		default:
			return nil, fmt.Errorf("%w: invalid %s value %q", ErrDataContract, colSurvived, v)
		}
	}

	if v := cell(colFare); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s value %q", ErrDataContract, colFare, v)
		}
		r.Fare = &f
	}

	if v := cell(colCabin); v != "" {
		r.Cabin = &v
	}

	// names already derived upstream are kept
	r.Lastname = cell(colLastname)
	if v := cell(colSecondaryLastname); v != "" && r.Lastname != "" {
		r.SecondaryLastname = &v
	}

	if r.Embarked == "" && opts.ImputeEmbarked != "" {
		r.Embarked = opts.ImputeEmbarked
	}

	if len(extra) > 0 {
		r.Extra = make(map[string]string, len(extra))
		for _, c := range extra {
			r.Extra[c] = cell(c)
		}
	}

	return r, nil
}

func parseInt(col, v string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrDataContract, col)
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	// integer columns are occasionally exported as floats ("3.0")
	if f, err := strconv.ParseFloat(v, 64); err == nil && math.Abs(f) <= maxExactFloatInt && f == math.Trunc(f) {
		return int(f), nil
	}
	return 0, fmt.Errorf("%w: invalid %s value %q", ErrDataContract, col, v)
}

// WriteFile writes the table, including derived columns, to path.
func WriteFile(path string, t *Table) (retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return WriteCSV(f, t)
}

// WriteCSV writes the input columns, any extra columns and the derived
// feature columns. Unknown values are written as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(inputColumns)+len(t.ExtraColumns)+len(derivedColumns))
	header = append(header, inputColumns...)
	header = append(header, t.ExtraColumns...)
	header = append(header, derivedColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range t.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec,
			strconv.Itoa(r.PassengerID),
			formatBool(r.Survived),
			strconv.Itoa(r.Pclass),
			r.Name,
			string(r.Sex),
			strconv.Itoa(r.SibSp),
			strconv.Itoa(r.Parch),
			r.Ticket,
			formatFloat(r.Fare),
			formatString(r.Cabin),
			string(r.Embarked),
		)
		for _, c := range t.ExtraColumns {
			rec = append(rec, r.Extra[c])
		}
		rec = append(rec,
			r.Lastname,
			formatString(r.SecondaryLastname),
			formatInt(r.FamilyID),
			strconv.Itoa(r.Title),
			strconv.Itoa(r.TicketCount),
			formatFloat(r.TicketRate),
			strconv.Itoa(r.CabinCount),
			formatFloat(r.CabinRate),
			formatFloat(r.FamilyRate),
		)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing passenger %d: %w", r.PassengerID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func formatBool(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "1"
	default:
		return "0"
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
