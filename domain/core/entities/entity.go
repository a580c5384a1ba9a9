package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Property names that are part of an entity's identity in responses and in
// the backing store, and therefore cannot be set as ordinary properties.
const (
	PartitionProperty    = "Partition"
	RowProperty          = "Row"
	PartitionKeyProperty = "PartitionKey"
	RowKeyProperty       = "RowKey"
)

var reservedProperties = map[string]struct{}{
	PartitionProperty:    {},
	RowProperty:          {},
	PartitionKeyProperty: {},
	RowKeyProperty:       {},
}

// Entity is one row of a table: partition key, row key and a property map.
// Property values are strings, numbers, booleans or times.
type Entity struct {
	Partition  string
	Row        string
	Properties map[string]interface{}
}

// NewEntity creates an entity with no properties
func NewEntity(partition, row string) *Entity {
	return &Entity{
		Partition:  partition,
		Row:        row,
		Properties: make(map[string]interface{}),
	}
}

// Get returns a property value
func (e *Entity) Get(name string) (interface{}, bool) {
	v, ok := e.Properties[name]
	return v, ok
}

// StringProperty returns the wire form of a property, or "" when absent.
func (e *Entity) StringProperty(name string) string {
	v, ok := e.Properties[name]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Merge copies props over the existing properties. Properties not named in
// props are left untouched.
func (e *Entity) Merge(props map[string]interface{}) {
	if e.Properties == nil {
		e.Properties = make(map[string]interface{}, len(props))
	}
	for k, v := range props {
		e.Properties[k] = v
	}
}

// Clone returns a deep copy; property values are scalars so a map copy suffices.
func (e *Entity) Clone() *Entity {
	c := NewEntity(e.Partition, e.Row)
	c.Merge(e.Properties)
	return c
}

// PropertyNames returns the property names in sorted order
func (e *Entity) PropertyNames() []string {
	names := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// StringProperties returns every property normalized to its string form,
// the representation used by authenticated reads.
func (e *Entity) StringProperties() map[string]string {
	out := make(map[string]string, len(e.Properties))
	for k, v := range e.Properties {
		out[k] = FormatValue(v)
	}
	return out
}

// AdminView returns the entity as a JSON-ready object carrying its
// Partition and Row alongside the properties. Numbers and booleans keep
// their JSON type.
func (e *Entity) AdminView() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Properties)+2)
	for k, v := range e.Properties {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339)
			continue
		}
		out[k] = v
	}
	out[PartitionProperty] = e.Partition
	out[RowProperty] = e.Row
	return out
}

// Less orders entities by (partition, row)
func (e *Entity) Less(other *Entity) bool {
	if e.Partition != other.Partition {
		return e.Partition < other.Partition
	}
	return e.Row < other.Row
}

// SortEntities sorts in place by (partition, row)
func SortEntities(list []*Entity) {
	sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
}

// FormatValue renders a property value in its wire string form.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// ErrInvalidProperties is wrapped by ValidateProperties failures
var ErrInvalidProperties = errors.New("invalid properties")

// ValidateProperties checks a property map received from a caller. Names
// must be non-empty, not reserved and free of list index brackets; values
// must be scalars.
func ValidateProperties(props map[string]interface{}) error {
	for name, v := range props {
		if name == "" {
			return fmt.Errorf("%w: property name cannot be empty", ErrInvalidProperties)
		}
		if _, reserved := reservedProperties[name]; reserved {
			return fmt.Errorf("%w: property name %q is reserved", ErrInvalidProperties, name)
		}
		if strings.ContainsAny(name, "[]") {
			return fmt.Errorf("%w: property name %q cannot contain brackets", ErrInvalidProperties, name)
		}
		switch v.(type) {
		case string, bool, float64, float32, int, int32, int64, json.Number, time.Time:
		default:
			return fmt.Errorf("%w: property %q must be a string, number or boolean", ErrInvalidProperties, name)
		}
	}
	return nil
}

// StringMap converts wire-form properties into a property map
func StringMap(props map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
