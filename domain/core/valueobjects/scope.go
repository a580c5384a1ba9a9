package valueobjects

import (
	"errors"
	"fmt"
)

// Scope identifies exactly one entity: a row within a partition of a table.
// Value objects are immutable and compared by value.
type Scope struct {
	Table     string `json:"table"`
	Partition string `json:"partition"`
	Row       string `json:"row"`
}

// NewScope creates a validated Scope
func NewScope(table, partition, row string) (Scope, error) {
	s := Scope{Table: table, Partition: partition, Row: row}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

// Validate checks that every coordinate is present
func (s Scope) Validate() error {
	switch {
	case s.Table == "":
		return errors.New("table name cannot be empty")
	case s.Partition == "":
		return errors.New("partition key cannot be empty")
	case s.Row == "":
		return errors.New("row key cannot be empty")
	}
	return nil
}

// Equals checks if two scopes name the same entity
func (s Scope) Equals(other Scope) bool {
	return s == other
}

// String returns table/partition/row
func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.Table, s.Partition, s.Row)
}
