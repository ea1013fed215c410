package types

import "strings"

// PrimitiveType identifies a scalar column type.
type PrimitiveType int

const (
	InvalidType PrimitiveType = iota
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeLargeInt
	TypeFloat
	TypeDouble
	TypeDecimal
	TypeDecimalV2
	TypeDate
	TypeDateTime
	TypeChar
	TypeVarchar
	TypeHLL
	TypeBitmap
	TypeBoolean
)

// String returns the SQL name of the primitive type.
func (p PrimitiveType) String() string {
	switch p {
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInt:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeLargeInt:
		return "LARGEINT"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeDecimal:
		return "DECIMAL"
	case TypeDecimalV2:
		return "DECIMALV2"
	case TypeDate:
		return "DATE"
	case TypeDateTime:
		return "DATETIME"
	case TypeChar:
		return "CHAR"
	case TypeVarchar:
		return "VARCHAR"
	case TypeHLL:
		return "HLL"
	case TypeBitmap:
		return "BITMAP"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "INVALID"
	}
}

// primitiveNames maps SQL type keywords to primitive types.
var primitiveNames = map[string]PrimitiveType{
	"TINYINT":   TypeTinyInt,
	"SMALLINT":  TypeSmallInt,
	"INT":       TypeInt,
	"INTEGER":   TypeInt,
	"BIGINT":    TypeBigInt,
	"LARGEINT":  TypeLargeInt,
	"FLOAT":     TypeFloat,
	"DOUBLE":    TypeDouble,
	"DECIMAL":   TypeDecimal,
	"DECIMALV2": TypeDecimalV2,
	"DATE":      TypeDate,
	"DATETIME":  TypeDateTime,
	"CHAR":      TypeChar,
	"VARCHAR":   TypeVarchar,
	"HLL":       TypeHLL,
	"BITMAP":    TypeBitmap,
	"BOOLEAN":   TypeBoolean,
	"BOOL":      TypeBoolean,
}

// ParsePrimitiveType maps a SQL type keyword to its primitive type.
// Returns InvalidType if the keyword is not a known type.
func ParsePrimitiveType(name string) PrimitiveType {
	if p, ok := primitiveNames[strings.ToUpper(name)]; ok {
		return p
	}
	return InvalidType
}

// IsStringType reports whether the type carries a declared length.
func (p PrimitiveType) IsStringType() bool {
	return p == TypeChar || p == TypeVarchar || p == TypeHLL
}

// IsDecimalType reports whether the type carries precision and scale.
func (p PrimitiveType) IsDecimalType() bool {
	return p == TypeDecimal || p == TypeDecimalV2
}

// IsIntegerType reports whether the type is a fixed-point integer type
// representable in 64 bits.
func (p PrimitiveType) IsIntegerType() bool {
	switch p {
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		return true
	}
	return false
}

// IsNumeric reports whether the type is numeric (integer, floating, or
// decimal).
func (p PrimitiveType) IsNumeric() bool {
	switch p {
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeLargeInt,
		TypeFloat, TypeDouble, TypeDecimal, TypeDecimalV2:
		return true
	}
	return false
}

// IsValid reports whether the type is a known primitive type.
func (p PrimitiveType) IsValid() bool {
	return p > InvalidType && p <= TypeBoolean
}
