package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a list of strings stored as a JSON array.
type StringList []string

// Scan implements sql.Scanner
func (l *StringList) Scan(value any) error {
	raw, err := jsonBytes("StringList", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Document is an arbitrary JSON object.
type Document map[string]any

// Scan implements sql.Scanner
func (d *Document) Scan(value any) error {
	raw, err := jsonBytes("Document", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*d = Document{}
		return nil
	}
	return json.Unmarshal(raw, d)
}

// Value implements driver.Valuer
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonBytes(name string, value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("failed to scan %s: expected []byte or string, got %T", name, value)
	}
}
