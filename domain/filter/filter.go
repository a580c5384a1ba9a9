// Package filter evaluates property predicates over the entities of a table.
package filter

import (
	"context"
	"fmt"
	"sort"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
)

// Wildcard as an expected value matches any entity that has the property.
const Wildcard = "*"

// Predicate requires Property to equal Expected, compared in wire string
// form. Partition and Row match the entity keys.
type Predicate struct {
	Property string
	Expected string
}

// Scanner visits every entity of a table until visit returns false.
type Scanner interface {
	Scan(ctx context.Context, visit func(*entities.Entity) bool) error
}

// ParsePredicates converts a JSON request body of property=value pairs
// into predicates. Values must be scalars.
func ParsePredicates(body map[string]interface{}) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(body))
	for prop, v := range body {
		if prop == "" {
			return nil, fmt.Errorf("predicate property cannot be empty")
		}
		switch v.(type) {
		case string, bool, float64:
		default:
			return nil, fmt.Errorf("predicate %q must compare against a string, number or boolean", prop)
		}
		preds = append(preds, Predicate{Property: prop, Expected: entities.FormatValue(v)})
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].Property < preds[j].Property })
	return preds, nil
}

// PartitionEquals selects every entity of one partition
func PartitionEquals(partition string) Predicate {
	return Predicate{Property: entities.PartitionProperty, Expected: partition}
}

// Match reports whether e satisfies every predicate. No predicates match
// everything.
func Match(e *entities.Entity, preds []Predicate) bool {
	for _, p := range preds {
		if !matchOne(e, p) {
			return false
		}
	}
	return true
}

func matchOne(e *entities.Entity, p Predicate) bool {
	var (
		actual  string
		present bool
	)
	switch p.Property {
	case entities.PartitionProperty:
		actual, present = e.Partition, true
	case entities.RowProperty:
		actual, present = e.Row, true
	default:
		var v interface{}
		v, present = e.Get(p.Property)
		if present {
			actual = entities.FormatValue(v)
		}
	}

	if !present {
		return false
	}
	return p.Expected == Wildcard || actual == p.Expected
}

// Scan returns the entities of table matching preds, ordered by
// (partition, row) so results do not depend on scan order.
func Scan(ctx context.Context, table Scanner, preds []Predicate) ([]*entities.Entity, error) {
	matched := make([]*entities.Entity, 0)
	err := table.Scan(ctx, func(e *entities.Entity) bool {
		if Match(e, preds) {
			matched = append(matched, e)
		}
		return ctx.Err() == nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities.SortEntities(matched)
	return matched, nil
}
