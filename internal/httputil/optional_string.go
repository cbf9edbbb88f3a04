package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a string field of a PATCH-style body where absent and
// null mean different things:
//   - absent: leave the stored value alone
//   - null: clear it, e.g. remove a course thumbnail
//   - "" or "text": store the given value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the key is in the body
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
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

// Patch returns the update to apply: nil when the key was absent, a pointer
// to "" when it was null, the value otherwise
func (o OptionalString) Patch() *string {
	if !o.Present {
		return nil
	}
	if o.Value == nil {
		cleared := ""
		return &cleared
	}
	v := *o.Value
	return &v
}
