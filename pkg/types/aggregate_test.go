package types

import "testing"

func TestParseAggregateType(t *testing.T) {
	tests := []struct {
		name string
		want AggregateType
	}{
		{"SUM", AggSum},
		{"sum", AggSum},
		{"replace_if_not_null", AggReplaceIfNotNull},
		{"HLL_UNION", AggHLLUnion},
		{"bitmap_union", AggBitmapUnion},
		{"COUNT", AggNone},
		{"", AggNone},
	}

	for _, tt := range tests {
		if got := ParseAggregateType(tt.name); got != tt.want {
			t.Errorf("ParseAggregateType(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAggregateCompatibility(t *testing.T) {
	tests := []struct {
		agg  AggregateType
		typ  PrimitiveType
		want bool
	}{
		{AggSum, TypeBigInt, true},
		{AggSum, TypeDecimal, true},
		{AggSum, TypeVarchar, false},
		{AggSum, TypeDate, false},
		{AggMin, TypeDate, true},
		{AggMax, TypeVarchar, true},
		{AggMin, TypeHLL, false},
		{AggReplace, TypeBoolean, true},
		{AggReplace, TypeHLL, true},
		{AggReplaceIfNotNull, TypeBitmap, true},
		{AggHLLUnion, TypeHLL, true},
		{AggHLLUnion, TypeVarchar, false},
		{AggBitmapUnion, TypeBitmap, true},
		{AggBitmapUnion, TypeBigInt, false},
		{AggNone, TypeBigInt, false},
	}

	for _, tt := range tests {
		if got := tt.agg.CompatibleWith(tt.typ); got != tt.want {
			t.Errorf("%s.CompatibleWith(%s) = %v, want %v", tt.agg, tt.typ, got, tt.want)
		}
	}
}
