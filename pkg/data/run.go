package data

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/kinfeat/pkg/pipeline"
)

const (
	// fixed width so that stored values sort chronologically
	runTimeFormat = "2006-01-02T15:04:05.000000000Z"

	insertRunSQL = `INSERT INTO run (
			id, source, created_at, simplified, fill_if_not_any_survived,
			use_fare, family_filler, titles, row_count, family_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertFeatureSQL = `INSERT INTO passenger_feature (
			run_id, row_order, passenger_id, pclass, sex, embarked, name, ticket,
			fare, cabin, sibsp, parch, survived, lastname, secondary_lastname,
			family_id, title, ticket_count, ticket_rate, cabin_count, cabin_rate, family_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertFamilySQL = `INSERT INTO family_group (run_id, family_id, pclass, embarked, lastname, size)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectRunColumns = `SELECT id, source, created_at, simplified, fill_if_not_any_survived,
			use_fare, family_filler, titles, row_count, family_count
		FROM run
	`

	selectRunsSQL = selectRunColumns + ` ORDER BY created_at DESC LIMIT ?`
	selectRunSQL  = selectRunColumns + ` WHERE id = ?`

	deleteFeaturesSQL = `DELETE FROM passenger_feature WHERE run_id = ?`
	deleteFamiliesSQL = `DELETE FROM family_group WHERE run_id = ?`
	deleteRunSQL      = `DELETE FROM run WHERE id = ?`
)

// Run is a stored pipeline execution.
type Run struct {
	ID        string           `json:"id" yaml:"id"`
	Source    string           `json:"source" yaml:"source"`
	CreatedAt time.Time        `json:"created_at" yaml:"createdAt"`
	Options   pipeline.Options `json:"options" yaml:"options"`
	Rows      int              `json:"rows" yaml:"rows"`
	Families  int              `json:"families" yaml:"families"`
}

// SaveRun persists a pipeline result under a new run id.
func SaveRun(db *sql.DB, source string, o pipeline.Options, res *pipeline.Result) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if res == nil || res.Table == nil {
		return nil, errors.New("result required")
	}

	run := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Options:   o,
		Rows:      res.Table.Len(),
	}
	if res.Summary != nil {
		run.Families = res.Summary.Families
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting run tx: %w", err)
	}

	if _, err := tx.Exec(bind(db, insertRunSQL),
		run.ID, run.Source, run.CreatedAt.Format(runTimeFormat),
		boolToInt(o.Simplified), boolToInt(o.FillIfNotAnySurvived), boolToInt(o.UseFare),
		o.FamilyFiller, strings.Join(o.Titles, ","), run.Rows, run.Families,
	); err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error inserting run: %w", err)
	}

	featureStmt, err := tx.Prepare(bind(db, insertFeatureSQL))
	if err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error preparing feature insert: %w", err)
	}
	defer featureStmt.Close()

	for i, r := range res.Table.Rows {
		var survived *int
		if r.Survived != nil {
			v := boolToInt(*r.Survived)
			survived = &v
		}

		if _, err := featureStmt.Exec(
			run.ID, i, r.PassengerID, r.Pclass, string(r.Sex), string(r.Embarked), r.Name, r.Ticket,
			r.Fare, r.Cabin, r.SibSp, r.Parch, survived, r.Lastname, r.SecondaryLastname,
			r.FamilyID, r.Title, r.TicketCount, r.TicketRate, r.CabinCount, r.CabinRate, r.FamilyRate,
		); err != nil {
			rollbackTransaction(tx)
			return nil, fmt.Errorf("error inserting passenger %d: %w", r.PassengerID, err)
		}
	}

	familyStmt, err := tx.Prepare(bind(db, insertFamilySQL))
	if err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error preparing family insert: %w", err)
	}
	defer familyStmt.Close()

	for _, g := range res.Groups {
		if _, err := familyStmt.Exec(run.ID, g.ID, g.Pclass, string(g.Embarked), g.Lastname, g.Size); err != nil {
			rollbackTransaction(tx)
			return nil, fmt.Errorf("error inserting family %d: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing run tx: %w", err)
	}

	slog.Debug("run saved", "id", run.ID, "rows", run.Rows, "families", len(res.Groups))

	return run, nil
}

// ListRuns returns the most recent runs first.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(bind(db, selectRunsSQL), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return list, nil
}

// GetRun returns a run by id or ErrNotFound.
func GetRun(db *sql.DB, id string) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	r, err := scanRun(db.QueryRow(bind(db, selectRunSQL), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

// DeleteRun removes a run with its features and families.
func DeleteRun(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error starting delete tx: %w", err)
	}

	for _, q := range []string{deleteFeaturesSQL, deleteFamiliesSQL} {
		if _, err := tx.Exec(bind(db, q), id); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error deleting run %s data: %w", id, err)
		}
	}

	res, err := tx.Exec(bind(db, deleteRunSQL), id)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error deleting run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		rollbackTransaction(tx)
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing delete tx: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r                               Run
		created, titles                 string
		simplified, aggressive, useFare int
	)

	if err := s.Scan(&r.ID, &r.Source, &created, &simplified, &aggressive,
		&useFare, &r.Options.FamilyFiller, &titles, &r.Rows, &r.Families); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	t, err := time.Parse(runTimeFormat, created)
	if err != nil {
		return nil, fmt.Errorf("invalid run time %q: %w", created, err)
	}
	r.CreatedAt = t

	r.Options.Simplified = simplified == 1
	r.Options.FillIfNotAnySurvived = aggressive == 1
	r.Options.UseFare = useFare == 1
	if titles != "" {
		r.Options.Titles = strings.Split(titles, ",")
	}

	return &r, nil
}
