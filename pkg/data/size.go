package data

import (
	"database/sql"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

const (
	selectSizeSQL = `SELECT COALESCE(g.size, 1) AS family_size, f.survived, f.family_rate
		FROM passenger_feature f
		LEFT JOIN family_group g ON g.run_id = f.run_id AND g.family_id = f.family_id
		WHERE f.run_id = ?
		ORDER BY family_size, f.row_order
	`
)

// SizeSummary aggregates the passengers of a run by family size.
// Passengers without family aboard count as size 1.
type SizeSummary struct {
	Size             int      `json:"size" yaml:"size"`
	Passengers       int      `json:"passengers" yaml:"passengers"`
	Survived         int      `json:"survived" yaml:"survived"`
	Died             int      `json:"died" yaml:"died"`
	SurvivalRate     *float64 `json:"survival_rate,omitempty" yaml:"survivalRate,omitempty"`
	MeanFamilyRate   float64  `json:"mean_family_rate" yaml:"meanFamilyRate"`
	StdDevFamilyRate float64  `json:"stddev_family_rate" yaml:"stdDevFamilyRate"`
}

// GetSizeSummary returns per family size survival figures, smallest first.
func GetSizeSummary(db *sql.DB, runID string) ([]*SizeSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if _, err := GetRun(db, runID); err != nil {
		return nil, err
	}

	rows, err := db.Query(bind(db, selectSizeSQL), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family sizes: %w", err)
	}
	defer rows.Close()

	list := make([]*SizeSummary, 0)
	rates := make(map[int][]float64)

	var current *SizeSummary
	for rows.Next() {
		var (
			size       int
			survived   sql.NullInt64
			familyRate sql.NullFloat64
		)
		if err := rows.Scan(&size, &survived, &familyRate); err != nil {
			return nil, fmt.Errorf("failed to scan family size: %w", err)
		}

		if current == nil || current.Size != size {
			current = &SizeSummary{Size: size}
			list = append(list, current)
		}

		current.Passengers++
		if survived.Valid {
			if survived.Int64 == 1 {
				current.Survived++
			} else {
				current.Died++
			}
		}
		if familyRate.Valid {
			rates[size] = append(rates[size], familyRate.Float64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family sizes: %w", err)
	}

	for _, s := range list {
		if known := s.Survived + s.Died; known > 0 {
			v := float64(s.Survived) / float64(known)
			s.SurvivalRate = &v
		}

		switch r := rates[s.Size]; len(r) {
		case 0:
		case 1:
			s.MeanFamilyRate = r[0]
		default:
			s.MeanFamilyRate, s.StdDevFamilyRate = stat.MeanStdDev(r, nil)
		}
	}

	return list, nil
}
