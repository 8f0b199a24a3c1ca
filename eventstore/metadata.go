package eventstore

import (
	"fmt"
	"strconv"
	"time"
)

// MetadataPair is a single key/value tag, built with KV.
type MetadataPair struct {
	key string
	val string
}

// KV builds a MetadataPair, coercing the value to its string form.
func KV(key string, value any) MetadataPair {
	return MetadataPair{key: key, val: stringify(value)}
}

// Key returns the key of the pair.
func (p MetadataPair) Key() string {
	return p.key
}

// Val returns the string value of the pair.
func (p MetadataPair) Val() string {
	return p.val
}

// Metadata holds the key/value tags stored alongside an event.
//
// Iteration order is insertion order. This matters: the order of the keys of the first event of a stream
// determines the column order of the stream's table.
//
// Metadata is immutable, With and Merge return modified copies.
type Metadata struct {
	keys   []string
	values map[string]string
}

// BuildMetadata creates Metadata from the given pairs in the given order.
// A repeated key overwrites the earlier value and keeps the earlier position.
func BuildMetadata(pairs ...MetadataPair) Metadata {
	m := Metadata{}
	for _, p := range pairs {
		m = m.with(p.key, p.val)
	}

	return m
}

// With returns a copy with the key set to the coerced value.
func (m Metadata) With(key string, value any) Metadata {
	return m.with(key, stringify(value))
}

// Merge returns a copy with all entries of other applied on top, in other's order.
func (m Metadata) Merge(other Metadata) Metadata {
	merged := m
	for _, key := range other.keys {
		merged = merged.with(key, other.values[key])
	}

	return merged
}

// Get returns the value for the key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	val, ok := m.values[key]
	return val, ok
}

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)

	return keys
}

// Pairs returns the entries in insertion order.
func (m Metadata) Pairs() []MetadataPair {
	pairs := make([]MetadataPair, 0, len(m.keys))
	for _, key := range m.keys {
		pairs = append(pairs, MetadataPair{key: key, val: m.values[key]})
	}

	return pairs
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.keys)
}

// IsEmpty reports whether there are no entries.
func (m Metadata) IsEmpty() bool {
	return len(m.keys) == 0
}

// ToMap returns the entries as a plain map, dropping the order.
func (m Metadata) ToMap() map[string]string {
	out := make(map[string]string, len(m.keys))
	for key, val := range m.values {
		out[key] = val
	}

	return out
}

func (m Metadata) with(key string, val string) Metadata {
	keys := make([]string, len(m.keys), len(m.keys)+1)
	copy(keys, m.keys)

	values := make(map[string]string, len(m.values)+1)
	for k, v := range m.values {
		values[k] = v
	}

	if _, exists := values[key]; !exists {
		keys = append(keys, key)
	}
	values[key] = val

	return Metadata{keys: keys, values: values}
}

// stringify coerces metadata values to the string form they are stored with.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
