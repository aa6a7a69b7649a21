// Package rawvalue models the backend's dynamically-typed nested
// representation as a closed sum type and converts it to and from the
// native Go values the store clients produce.
package rawvalue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bantay-barangay/backend/internal/logger"
)

// Value is one node of the backend's map/sequence/scalar tree. The set
// of implementations is closed: Map, Sequence, String, Integer, Float,
// Bool and Null.
type Value interface {
	rawValue()
}

type Map map[string]Value

type Sequence []Value

type String string

type Integer int64

type Float float64

type Bool bool

type Null struct{}

func (Map) rawValue()      {}
func (Sequence) rawValue() {}
func (String) rawValue()   {}
func (Integer) rawValue()  {}
func (Float) rawValue()    {}
func (Bool) rawValue()     {}
func (Null) rawValue()     {}

// DictionaryAdapter is the wrapper shape some store clients hand back
// instead of a plain map: the entries are only reachable through
// enumeration. FromNative unwraps it identically to a native map.
type DictionaryAdapter interface {
	Entries() (map[string]interface{}, error)
}

// KeyedAdapter is the fallback enumeration strategy for adapters whose
// entry enumeration fails.
type KeyedAdapter interface {
	Keys() []string
	Lookup(key string) (interface{}, bool)
}

// FromNative recursively converts a native Go tree into a Value.
// Integers and floating-point numbers keep their distinct kinds; nil
// becomes Null. Unknown leaf types collapse to their string form
// rather than failing.
func FromNative(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case map[string]interface{}:
		m := make(Map, len(t))
		for k, child := range t {
			m[k] = FromNative(child)
		}
		return m
	case map[interface{}]interface{}:
		m := make(Map, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = FromNative(child)
		}
		return m
	case []interface{}:
		seq := make(Sequence, 0, len(t))
		for _, child := range t {
			seq = append(seq, FromNative(child))
		}
		return seq
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Integer(t)
	case int8:
		return Integer(t)
	case int16:
		return Integer(t)
	case int32:
		return Integer(t)
	case int64:
		return Integer(t)
	case uint:
		return Integer(t)
	case uint8:
		return Integer(t)
	case uint16:
		return Integer(t)
	case uint32:
		return Integer(t)
	case uint64:
		return Integer(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Integer(n)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return String(t.String())
	}

	if adapter, ok := v.(DictionaryAdapter); ok {
		return fromAdapter(adapter)
	}

	logger.Warn("unknown native value type, using string form", map[string]interface{}{
		"type": fmt.Sprintf("%T", v),
	})
	return String(fmt.Sprint(v))
}

// fromAdapter unwraps a dictionary-adapter wrapper. If direct entry
// enumeration fails, key-by-key lookup is tried before the subtree is
// abandoned as an empty map.
func fromAdapter(adapter DictionaryAdapter) Value {
	entries, err := adapter.Entries()
	if err == nil {
		m := make(Map, len(entries))
		for k, child := range entries {
			m[k] = FromNative(child)
		}
		return m
	}

	logger.Warn("dictionary adapter enumeration failed, trying keyed lookup", map[string]interface{}{
		"error": err.Error(),
	})

	if keyed, ok := adapter.(KeyedAdapter); ok {
		m := Map{}
		for _, k := range keyed.Keys() {
			if child, found := keyed.Lookup(k); found {
				m[k] = FromNative(child)
			}
		}
		return m
	}

	return Map{}
}

// ToNative converts a Value back into the boxing the store clients
// persist verbatim: int64 for integers, float64 for floats, strings
// and bools passed through.
func ToNative(v Value) interface{} {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Map:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = ToNative(child)
		}
		return out
	case Sequence:
		out := make([]interface{}, 0, len(t))
		for _, child := range t {
			out = append(out, ToNative(child))
		}
		return out
	case String:
		return string(t)
	case Integer:
		return int64(t)
	case Float:
		return float64(t)
	case Bool:
		return bool(t)
	}
	return nil
}

// ToJSON renders a Value as the neutral interchange form.
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(ToNative(v))
}

// FromJSON parses the neutral interchange form into a Value, keeping
// integers distinct from floats.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse raw value: %w", err)
	}
	return FromNative(raw), nil
}
