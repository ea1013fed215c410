package types

import "strings"

// AggregateType is the merge function applied to a value column for rows
// sharing the same key.
type AggregateType int

const (
	AggNone AggregateType = iota
	AggSum
	AggMin
	AggMax
	AggReplace
	AggReplaceIfNotNull
	AggHLLUnion
	AggBitmapUnion
)

// String returns the SQL name of the aggregate type.
func (a AggregateType) String() string {
	switch a {
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggReplace:
		return "REPLACE"
	case AggReplaceIfNotNull:
		return "REPLACE_IF_NOT_NULL"
	case AggHLLUnion:
		return "HLL_UNION"
	case AggBitmapUnion:
		return "BITMAP_UNION"
	default:
		return "NONE"
	}
}

// aggregateNames maps SQL keywords to aggregate types.
var aggregateNames = map[string]AggregateType{
	"SUM":                 AggSum,
	"MIN":                 AggMin,
	"MAX":                 AggMax,
	"REPLACE":             AggReplace,
	"REPLACE_IF_NOT_NULL": AggReplaceIfNotNull,
	"HLL_UNION":           AggHLLUnion,
	"BITMAP_UNION":        AggBitmapUnion,
}

// ParseAggregateType maps a SQL keyword to its aggregate type.
// Returns AggNone if the keyword is not a known aggregate function.
func ParseAggregateType(name string) AggregateType {
	if a, ok := aggregateNames[strings.ToUpper(name)]; ok {
		return a
	}
	return AggNone
}

// aggCompatibility is the fixed aggregate/primitive compatibility table.
// It is built once at process start and never mutated afterwards.
var aggCompatibility map[AggregateType]map[PrimitiveType]bool

func init() {
	numeric := []PrimitiveType{
		TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeLargeInt,
		TypeFloat, TypeDouble, TypeDecimal, TypeDecimalV2,
	}
	ordered := append([]PrimitiveType{
		TypeDate, TypeDateTime, TypeChar, TypeVarchar,
	}, numeric...)
	all := append([]PrimitiveType{
		TypeHLL, TypeBitmap, TypeBoolean,
	}, ordered...)

	aggCompatibility = map[AggregateType]map[PrimitiveType]bool{
		AggSum:              typeSet(numeric),
		AggMin:              typeSet(ordered),
		AggMax:              typeSet(ordered),
		AggReplace:          typeSet(all),
		AggReplaceIfNotNull: typeSet(all),
		AggHLLUnion:         typeSet([]PrimitiveType{TypeHLL}),
		AggBitmapUnion:      typeSet([]PrimitiveType{TypeBitmap}),
	}
}

func typeSet(ps []PrimitiveType) map[PrimitiveType]bool {
	m := make(map[PrimitiveType]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}

// CompatibleWith reports whether the aggregate function can be applied to a
// column of the given primitive type.
func (a AggregateType) CompatibleWith(p PrimitiveType) bool {
	set, ok := aggCompatibility[a]
	if !ok {
		return false
	}
	return set[p]
}
