package types

import "encoding/json"

/*
A column's default value is a tri-state:

    k1 INT NOT NULL DEFAULT "10"   -> value default
    k1 INT NULL                    -> no default
    k1 INT NULL DEFAULT NULL       -> explicit null default

The stored payload for "no default" and "explicit null" is the same (null),
so the two states are distinguished by the set flag, never by the payload.
Consumers that need to detect "no default configured" test IsSet, not the
payload.
*/

// EmptySentinel is the payload substituted as the default for HLL and BITMAP
// columns: a single zero byte meaning the empty aggregate state. Both types
// deliberately share the identical encoding; downstream consumers depend on
// the literal byte value.
const EmptySentinel = "\x00"

// DefaultValue is the tri-state default-value clause of a column.
// The zero value is "no default".
type DefaultValue struct {
	set   bool
	valid bool // payload present; false means a null payload
	value string
}

// NoDefault returns the unset state (no DEFAULT clause).
func NoDefault() DefaultValue {
	return DefaultValue{}
}

// NullDefault returns the explicit DEFAULT NULL state.
func NullDefault() DefaultValue {
	return DefaultValue{set: true}
}

// ValueDefault returns the DEFAULT "v" state.
func ValueDefault(v string) DefaultValue {
	return DefaultValue{set: true, valid: true, value: v}
}

// HLLEmptyDefault is the forced default for HLL columns.
func HLLEmptyDefault() DefaultValue {
	return ValueDefault(EmptySentinel)
}

// BitmapEmptyDefault is the forced default for BITMAP columns.
func BitmapEmptyDefault() DefaultValue {
	return ValueDefault(EmptySentinel)
}

// IsSet reports whether a DEFAULT clause is configured, including
// DEFAULT NULL.
func (d DefaultValue) IsSet() bool {
	return d.set
}

// IsNull reports whether the clause is an explicit DEFAULT NULL.
func (d DefaultValue) IsNull() bool {
	return d.set && !d.valid
}

// Value returns the default payload and whether it is non-null.
func (d DefaultValue) Value() (string, bool) {
	return d.value, d.valid
}

// defaultValueJSON is the wire form. A null payload with set=true is the
// explicit DEFAULT NULL state; set=false is the unset state.
type defaultValueJSON struct {
	Set   bool    `json:"set"`
	Value *string `json:"value,omitempty"`
}

func (d DefaultValue) MarshalJSON() ([]byte, error) {
	w := defaultValueJSON{Set: d.set}
	if d.valid {
		v := d.value
		w.Value = &v
	}
	return json.Marshal(w)
}

func (d *DefaultValue) UnmarshalJSON(data []byte) error {
	var w defaultValueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.set = w.Set
	d.valid = w.Value != nil
	if w.Value != nil {
		d.value = *w.Value
	} else {
		d.value = ""
	}
	return nil
}
