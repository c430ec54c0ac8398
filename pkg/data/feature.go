package data

import (
	"database/sql"
	"fmt"

	"github.com/mchmarny/kinfeat/pkg/family"
	"github.com/mchmarny/kinfeat/pkg/passenger"
)

const (
	selectFeaturesSQL = `SELECT passenger_id, pclass, sex, embarked, name, ticket,
			fare, cabin, sibsp, parch, survived, lastname, secondary_lastname,
			family_id, title, ticket_count, ticket_rate, cabin_count, cabin_rate, family_rate
		FROM passenger_feature
		WHERE run_id = ?
		ORDER BY row_order
		LIMIT ?
	`

	selectFamiliesSQL = `SELECT family_id, pclass, embarked, lastname, size
		FROM family_group
		WHERE run_id = ?
		  AND size >= ?
		ORDER BY family_id
	`
)

// GetFeatures returns up to limit stored rows of a run in input order.
func GetFeatures(db *sql.DB, runID string, limit int) ([]*passenger.Row, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if _, err := GetRun(db, runID); err != nil {
		return nil, err
	}

	rows, err := db.Query(bind(db, selectFeaturesSQL), runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	list := make([]*passenger.Row, 0)
	for rows.Next() {
		var (
			r                     passenger.Row
			sex, embarked         string
			fare, ticketRate      sql.NullFloat64
			cabinRate, familyRate sql.NullFloat64
			cabin, secondary      sql.NullString
			survived, familyID    sql.NullInt64
		)

		if err := rows.Scan(&r.PassengerID, &r.Pclass, &sex, &embarked, &r.Name, &r.Ticket,
			&fare, &cabin, &r.SibSp, &r.Parch, &survived, &r.Lastname, &secondary,
			&familyID, &r.Title, &r.TicketCount, &ticketRate, &r.CabinCount, &cabinRate, &familyRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}

		r.Sex = passenger.Sex(sex)
		r.Embarked = passenger.Port(embarked)
		r.Fare = nullFloat(fare)
		r.Cabin = nullString(cabin)
		r.SecondaryLastname = nullString(secondary)
		r.TicketRate = nullFloat(ticketRate)
		r.CabinRate = nullFloat(cabinRate)
		r.FamilyRate = nullFloat(familyRate)
		if survived.Valid {
			r.Survived = passenger.Ptr(survived.Int64 == 1)
		}
		if familyID.Valid {
			r.FamilyID = passenger.Ptr(int(familyID.Int64))
		}

		list = append(list, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate features: %w", err)
	}

	return list, nil
}

// GetFamilies returns the family groups of a run. With live set, groups
// absorbed by the merge pass are left out.
func GetFamilies(db *sql.DB, runID string, live bool) ([]*family.Group, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if _, err := GetRun(db, runID); err != nil {
		return nil, err
	}

	minSize := 0
	if live {
		minSize = 1
	}

	rows, err := db.Query(bind(db, selectFamiliesSQL), runID, minSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	list := make([]*family.Group, 0)
	for rows.Next() {
		var (
			g        family.Group
			embarked string
		)
		if err := rows.Scan(&g.ID, &g.Pclass, &embarked, &g.Lastname, &g.Size); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		g.Embarked = passenger.Port(embarked)
		list = append(list, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate families: %w", err)
	}

	return list, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
