package types

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes a JSON field that was omitted from one that was
// sent as null or as a string.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked for keys present in the document, so Set
// records presence; a JSON null leaves Value nil.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// MarshalJSON writes null when unset or null.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// SomeString is a convenience constructor for a present, non-null value.
func SomeString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// NullString is a present JSON null.
func NullString() OptionalString {
	return OptionalString{Set: true}
}
