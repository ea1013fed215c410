package types

import (
	"strings"
	"testing"
)

func TestParsePrimitiveType(t *testing.T) {
	tests := []struct {
		name string
		want PrimitiveType
	}{
		{"BIGINT", TypeBigInt},
		{"bigint", TypeBigInt},
		{"Integer", TypeInt},
		{"INT", TypeInt},
		{"bool", TypeBoolean},
		{"BOOLEAN", TypeBoolean},
		{"decimalv2", TypeDecimalV2},
		{"HLL", TypeHLL},
		{"bitmap", TypeBitmap},
		{"TEXT", InvalidType},
		{"", InvalidType},
	}

	for _, tt := range tests {
		if got := ParsePrimitiveType(tt.name); got != tt.want {
			t.Errorf("ParsePrimitiveType(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrimitiveTypePredicates(t *testing.T) {
	if !TypeVarchar.IsStringType() || !TypeChar.IsStringType() || !TypeHLL.IsStringType() {
		t.Error("expected CHAR, VARCHAR and HLL to be string types")
	}
	if TypeBitmap.IsStringType() {
		t.Error("BITMAP is not a string type")
	}
	if !TypeDecimal.IsDecimalType() || !TypeDecimalV2.IsDecimalType() {
		t.Error("expected DECIMAL and DECIMALV2 to be decimal types")
	}
	if TypeLargeInt.IsIntegerType() {
		t.Error("LARGEINT does not fit in 64 bits and is not a 64-bit integer type")
	}
	if !TypeLargeInt.IsNumeric() || !TypeFloat.IsNumeric() {
		t.Error("expected LARGEINT and FLOAT to be numeric")
	}
	if TypeDate.IsNumeric() || TypeBoolean.IsNumeric() {
		t.Error("DATE and BOOLEAN are not numeric")
	}
	if InvalidType.IsValid() {
		t.Error("InvalidType must not be valid")
	}
	if !TypeBoolean.IsValid() {
		t.Error("BOOLEAN must be valid")
	}
}

func TestScalarTypeFinalize(t *testing.T) {
	tests := []struct {
		name    string
		typ     *ScalarType
		wantErr string
	}{
		{"bare bigint", NewScalarType(TypeBigInt), ""},
		{"varchar in range", NewStringType(TypeVarchar, MaxVarcharLength), ""},
		{"varchar too long", NewStringType(TypeVarchar, MaxVarcharLength+1), "must not exceed"},
		{"char too long", NewStringType(TypeChar, MaxCharLength+1), "must not exceed"},
		{"char at limit", NewStringType(TypeChar, MaxCharLength), ""},
		{"string zero length", NewStringType(TypeVarchar, 0), "length must be at least 1"},
		{"decimal in range", NewDecimalType(TypeDecimal, 10, 4), ""},
		{"decimal precision too high", NewDecimalType(TypeDecimal, MaxDecimalPrecision+1, 0), "precision must be between"},
		{"decimal scale too high", NewDecimalType(TypeDecimal, 27, MaxDecimalScale+1), "scale must be between"},
		{"decimal scale over precision", NewDecimalType(TypeDecimal, 3, 4), "must not exceed precision"},
		{"invalid type", NewScalarType(InvalidType), "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Finalize()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Finalize() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Finalize() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestScalarTypeFinalizeDecimalDefaults(t *testing.T) {
	typ := NewScalarType(TypeDecimal)
	if err := typ.Finalize(); err != nil {
		t.Fatalf("Finalize() = %v", err)
	}
	if typ.Precision != DefaultDecimalPrecision || typ.Scale != DefaultDecimalScale {
		t.Errorf("expected defaults (%d,%d), got (%d,%d)",
			DefaultDecimalPrecision, DefaultDecimalScale, typ.Precision, typ.Scale)
	}
	if typ.ToSQL() != "DECIMAL(27,9)" {
		t.Errorf("ToSQL() = %q, want DECIMAL(27,9)", typ.ToSQL())
	}
}

func TestScalarTypeToSQL(t *testing.T) {
	tests := []struct {
		typ  *ScalarType
		want string
	}{
		{NewScalarType(TypeBigInt), "BIGINT"},
		{NewStringType(TypeChar, 10), "CHAR(10)"},
		{NewStringType(TypeVarchar, 65533), "VARCHAR(65533)"},
		{NewDecimalType(TypeDecimalV2, 12, 3), "DECIMAL(12,3)"},
		{NewStringType(TypeHLL, 1), "HLL"},
		{NewScalarType(TypeBitmap), "BITMAP"},
	}

	for _, tt := range tests {
		if got := tt.typ.ToSQL(); got != tt.want {
			t.Errorf("ToSQL() = %q, want %q", got, tt.want)
		}
	}
}

func TestScalarTypeClone(t *testing.T) {
	orig := NewStringType(TypeVarchar, 16)
	cp := orig.Clone()
	cp.Len = 99

	if orig.Len != 16 {
		t.Errorf("mutating clone changed original: Len = %d", orig.Len)
	}
}
