package rawvalue

import (
	"encoding/json"
	"fmt"

	"github.com/bantay-barangay/backend/internal/logger"
)

// normalizer lets domain records fill defaults for fields that were
// absent in the stored tree.
type normalizer interface {
	Normalize()
}

// Decode converts a raw tree into a typed record by re-serializing it
// through the neutral interchange form, so field-level decode rules
// (status defaulting, flexible user type) apply uniformly.
//
// Decode never fails on malformed content: anomalies are logged and
// the best-effort record is returned. An absent root (nil or Null)
// yields nil.
func Decode[T any](v Value) *T {
	if v == nil {
		return nil
	}
	if _, isNull := v.(Null); isNull {
		return nil
	}

	data, err := ToJSON(v)
	if err != nil {
		logger.Warn("raw value not serializable, dropping record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("stored record did not match expected shape", map[string]interface{}{
			"target": fmt.Sprintf("%T", out),
			"error":  err.Error(),
		})
		return nil
	}

	if n, ok := any(out).(normalizer); ok {
		n.Normalize()
	}
	return out
}

// Encode converts a typed record into the raw tree the store clients
// persist. Enum-valued fields come out in their canonical string
// spelling regardless of how they were read.
func Encode(v interface{}) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return out, nil
}
