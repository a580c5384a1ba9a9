package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceScanner struct {
	rows []*entities.Entity
	err  error
}

func (s sliceScanner) Scan(_ context.Context, visit func(*entities.Entity) bool) error {
	if s.err != nil {
		return s.err
	}
	for _, e := range s.rows {
		if !visit(e) {
			return nil
		}
	}
	return nil
}

func entity(partition, row string, props map[string]interface{}) *entities.Entity {
	e := entities.NewEntity(partition, row)
	e.Merge(props)
	return e
}

func fixture() sliceScanner {
	return sliceScanner{rows: []*entities.Entity{
		entity("USA", "Lamar,Kendrick", map[string]interface{}{"Song": "I"}),
		entity("Edmund", "Ottawa", map[string]interface{}{"Born": "1990", "art": "nothing"}),
		entity("USA", "Franklin,Aretha", map[string]interface{}{"Song": "RESPECT", "Year": float64(1967)}),
		entity("Miles,Desmond", "USA", map[string]interface{}{"Job": "Assassin"}),
	}}
}

func TestMatch(t *testing.T) {
	e := entity("USA", "Franklin,Aretha", map[string]interface{}{"Song": "RESPECT", "Year": float64(1967)})

	tests := []struct {
		name     string
		preds    []Predicate
		expected bool
	}{
		{"no predicates", nil, true},
		{"exact value", []Predicate{{"Song", "RESPECT"}}, true},
		{"wrong value", []Predicate{{"Song", "I"}}, false},
		{"wildcard present", []Predicate{{"Song", Wildcard}}, true},
		{"wildcard absent", []Predicate{{"Job", Wildcard}}, false},
		{"number compared as string", []Predicate{{"Year", "1967"}}, true},
		{"partition pseudo property", []Predicate{{"Partition", "USA"}}, true},
		{"row pseudo property", []Predicate{{"Row", "Other"}}, false},
		{"all must hold", []Predicate{{"Song", Wildcard}, {"Year", "1968"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(e, tt.preds))
		})
	}
}

func TestScan_WildcardProperty(t *testing.T) {
	got, err := Scan(context.Background(), fixture(), []Predicate{{"Song", Wildcard}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Franklin,Aretha", got[0].Row)
	assert.Equal(t, "Lamar,Kendrick", got[1].Row)
}

func TestScan_MultiplePredicates(t *testing.T) {
	got, err := Scan(context.Background(), fixture(), []Predicate{{"Born", Wildcard}, {"art", Wildcard}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Edmund", got[0].Partition)
}

func TestScan_UnknownPropertyIsEmpty(t *testing.T) {
	got, err := Scan(context.Background(), fixture(), []Predicate{{"Fake property", Wildcard}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestScan_PartitionEquals(t *testing.T) {
	got, err := Scan(context.Background(), fixture(), []Predicate{PartitionEquals("USA")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "USA", e.Partition)
	}
}

func TestScan_OrderIndependent(t *testing.T) {
	forward := fixture()
	reversed := sliceScanner{}
	for i := len(forward.rows) - 1; i >= 0; i-- {
		reversed.rows = append(reversed.rows, forward.rows[i])
	}

	a, err := Scan(context.Background(), forward, nil)
	require.NoError(t, err)
	b, err := Scan(context.Background(), reversed, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScan_PropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Scan(context.Background(), sliceScanner{err: boom}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestParsePredicates(t *testing.T) {
	preds, err := ParsePredicates(map[string]interface{}{"Song": "*", "Year": float64(1967)})
	require.NoError(t, err)
	assert.Equal(t, []Predicate{{"Song", "*"}, {"Year", "1967"}}, preds)

	_, err = ParsePredicates(map[string]interface{}{"Song": []interface{}{"a"}})
	assert.Error(t, err)

	preds, err = ParsePredicates(nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}
