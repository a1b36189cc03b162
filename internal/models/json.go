package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores loosely-structured metadata (gateway payload details and the
// like) in a jsonb column.
type JSON map[string]interface{}

// NewJSON wraps a plain map, returning nil for an empty one so the column
// stays NULL rather than holding "{}".
func NewJSON(m map[string]interface{}) JSON {
	if len(m) == 0 {
		return nil
	}
	return JSON(m)
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return json.Unmarshal(bytes, j)
}
