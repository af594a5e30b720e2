package models

import (
	"bytes"
	"encoding/json"
)

// NullString is a patch field for nullable text. Set records that the key was
// present in the request; a present null leaves Value nil and clears the column.
type NullString struct {
	Set   bool
	Value *string
}

// NewNullString returns a set field holding v
func NewNullString(v string) NullString {
	return NullString{Set: true, Value: &v}
}

// Null returns a set field that clears the column
func Null() NullString {
	return NullString{Set: true}
}

func (n *NullString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// column returns the value to write for a set field
func (n NullString) column() interface{} {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}
