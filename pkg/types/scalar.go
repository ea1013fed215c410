package types

import "fmt"

// Limits for declared type parameters.
const (
	// MaxCharLength is the maximum declared length of a CHAR column.
	MaxCharLength = 255

	// MaxVarcharLength is the maximum declared length of a VARCHAR or HLL column.
	MaxVarcharLength = 65533

	// MaxDecimalPrecision is the maximum precision of a DECIMAL column.
	MaxDecimalPrecision = 27

	// MaxDecimalScale is the maximum scale of a DECIMAL column.
	MaxDecimalScale = 9

	// DefaultDecimalPrecision is used when a DECIMAL column omits precision.
	DefaultDecimalPrecision = 27

	// DefaultDecimalScale is used when a DECIMAL column omits scale.
	DefaultDecimalScale = 9
)

// ScalarType describes a scalar column type: a primitive type plus optional
// declared length (string family) or precision/scale (decimal family).
type ScalarType struct {
	Type PrimitiveType `json:"type"`

	// Len is the declared length for CHAR, VARCHAR, and HLL.
	Len int `json:"len,omitempty"`

	// Precision and Scale apply to the DECIMAL family.
	Precision int `json:"precision,omitempty"`
	Scale     int `json:"scale,omitempty"`

	// LenAssigned records whether a length was written in the column
	// definition syntax. Unassigned string lengths are defaulted during
	// column analysis, before any length-based checks run.
	LenAssigned bool `json:"len_assigned,omitempty"`
}

// NewScalarType creates a scalar type with no declared parameters.
func NewScalarType(p PrimitiveType) *ScalarType {
	return &ScalarType{Type: p}
}

// NewStringType creates a CHAR/VARCHAR/HLL type with an explicit length.
func NewStringType(p PrimitiveType, length int) *ScalarType {
	return &ScalarType{Type: p, Len: length, LenAssigned: true}
}

// NewDecimalType creates a DECIMAL type with explicit precision and scale.
func NewDecimalType(p PrimitiveType, precision, scale int) *ScalarType {
	return &ScalarType{Type: p, Precision: precision, Scale: scale}
}

// Finalize resolves the type descriptor: it fills family defaults and
// range-checks the declared parameters. It must be called before the type
// is used for default-value validation or persisted.
func (t *ScalarType) Finalize() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("unknown type: %s", t.Type)
	}

	switch {
	case t.Type.IsStringType():
		if t.Len < 1 {
			return fmt.Errorf("%s length must be at least 1, got %d", t.Type, t.Len)
		}
		max := MaxVarcharLength
		if t.Type == TypeChar {
			max = MaxCharLength
		}
		if t.Len > max {
			return fmt.Errorf("%s length must not exceed %d, got %d", t.Type, max, t.Len)
		}
	case t.Type.IsDecimalType():
		if t.Precision == 0 && t.Scale == 0 {
			t.Precision = DefaultDecimalPrecision
			t.Scale = DefaultDecimalScale
		}
		if t.Precision < 1 || t.Precision > MaxDecimalPrecision {
			return fmt.Errorf("decimal precision must be between 1 and %d, got %d",
				MaxDecimalPrecision, t.Precision)
		}
		if t.Scale < 0 || t.Scale > MaxDecimalScale {
			return fmt.Errorf("decimal scale must be between 0 and %d, got %d",
				MaxDecimalScale, t.Scale)
		}
		if t.Scale > t.Precision {
			return fmt.Errorf("decimal scale (%d) must not exceed precision (%d)",
				t.Scale, t.Precision)
		}
	}

	return nil
}

// ToSQL renders the canonical SQL text of the type.
func (t *ScalarType) ToSQL() string {
	switch t.Type {
	case TypeChar, TypeVarchar:
		return fmt.Sprintf("%s(%d)", t.Type, t.Len)
	case TypeDecimal, TypeDecimalV2:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	default:
		return t.Type.String()
	}
}

// Clone returns a copy of the type descriptor.
func (t *ScalarType) Clone() *ScalarType {
	cp := *t
	return &cp
}
