package passenger

import (
	"errors"
	"fmt"
	"math"
)

// Sex is the passenger sex as recorded in the dataset.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// Port is the port of embarkation.
type Port string

const (
	Cherbourg   Port = "C"
	Southampton Port = "S"
	Queenstown  Port = "Q"
)

var (
	// ErrDataContract is returned when the input table does not satisfy the
	// column contract (missing or malformed required values, duplicate ids).
	ErrDataContract = errors.New("data contract violation")

	validClasses = map[int]bool{1: true, 2: true, 3: true}
	validSexes   = map[Sex]bool{Male: true, Female: true}
	validPorts   = map[Port]bool{Cherbourg: true, Southampton: true, Queenstown: true}
)

// Row is a single passenger record with its derived features.
// Unknown values are nil pointers.
type Row struct {
	PassengerID int      `json:"passenger_id" yaml:"passengerId"`
	Pclass      int      `json:"pclass" yaml:"pclass"`
	Sex         Sex      `json:"sex" yaml:"sex"`
	Embarked    Port     `json:"embarked" yaml:"embarked"`
	Name        string   `json:"name" yaml:"name"`
	Fare        *float64 `json:"fare,omitempty" yaml:"fare,omitempty"`
	Ticket      string   `json:"ticket" yaml:"ticket"`
	Cabin       *string  `json:"cabin,omitempty" yaml:"cabin,omitempty"`
	SibSp       int      `json:"sibsp" yaml:"sibsp"`
	Parch       int      `json:"parch" yaml:"parch"`
	Survived    *bool    `json:"survived,omitempty" yaml:"survived,omitempty"`

	Lastname          string   `json:"lastname,omitempty" yaml:"lastname,omitempty"`
	SecondaryLastname *string  `json:"secondary_lastname,omitempty" yaml:"secondaryLastname,omitempty"`
	FamilyID          *int     `json:"family_id,omitempty" yaml:"familyId,omitempty"`
	Title             int      `json:"title" yaml:"title"`
	TicketCount       int      `json:"ticket_count" yaml:"ticketCount"`
	TicketRate        *float64 `json:"ticket_rate,omitempty" yaml:"ticketRate,omitempty"`
	CabinCount        int      `json:"cabin_count" yaml:"cabinCount"`
	CabinRate         *float64 `json:"cabin_rate,omitempty" yaml:"cabinRate,omitempty"`
	FamilyRate        *float64 `json:"family_rate,omitempty" yaml:"familyRate,omitempty"`

	// Extra holds input columns the engine does not interpret (e.g. Age),
	// keyed by header name, so they survive a read/write round trip.
	Extra map[string]string `json:"-" yaml:"-"`
}

// HasFamily reports whether the passenger travelled with siblings,
// a spouse, parents or children.
func (r *Row) HasFamily() bool {
	return r.SibSp+r.Parch > 0
}

// Outcome returns 1 or 0 for a known outcome and false when it is unknown.
func (r *Row) Outcome() (float64, bool) {
	if r.Survived == nil {
		return 0, false
	}
	if *r.Survived {
		return 1, true
	}
	return 0, true
}

func (r *Row) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: passenger %d: name is required", ErrDataContract, r.PassengerID)
	}
	if !validClasses[r.Pclass] {
		return fmt.Errorf("%w: passenger %d: invalid pclass %d", ErrDataContract, r.PassengerID, r.Pclass)
	}
	if !validSexes[r.Sex] {
		return fmt.Errorf("%w: passenger %d: invalid sex %q", ErrDataContract, r.PassengerID, r.Sex)
	}
	if !validPorts[r.Embarked] {
		return fmt.Errorf("%w: passenger %d: invalid embarked %q", ErrDataContract, r.PassengerID, r.Embarked)
	}
	if r.Ticket == "" {
		return fmt.Errorf("%w: passenger %d: ticket is required", ErrDataContract, r.PassengerID)
	}
	if r.SibSp < 0 || r.Parch < 0 {
		return fmt.Errorf("%w: passenger %d: negative sibsp/parch (%d/%d)",
			ErrDataContract, r.PassengerID, r.SibSp, r.Parch)
	}
	if r.Fare != nil && (math.IsNaN(*r.Fare) || *r.Fare < 0) {
		return fmt.Errorf("%w: passenger %d: invalid fare %f", ErrDataContract, r.PassengerID, *r.Fare)
	}
	return nil
}

func (r *Row) clone() *Row {
	c := *r
	c.Fare = clonePtr(r.Fare)
	c.Cabin = clonePtr(r.Cabin)
	c.Survived = clonePtr(r.Survived)
	c.SecondaryLastname = clonePtr(r.SecondaryLastname)
	c.FamilyID = clonePtr(r.FamilyID)
	c.TicketRate = clonePtr(r.TicketRate)
	c.CabinRate = clonePtr(r.CabinRate)
	c.FamilyRate = clonePtr(r.FamilyRate)
	if r.Extra != nil {
		c.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy for building rows in code and tests.
func Ptr[T any](v T) *T {
	return &v
}
