package types

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_DefaultValueJSONRoundTrip checks that the tri-state default
// survives serialization for any payload, including payloads that collide
// with the textual "null" rendering and the zero-byte sentinel.
func TestProperty_DefaultValueJSONRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("value defaults round trip byte-exactly", prop.ForAll(
		func(payload string) bool {
			d := ValueDefault(payload)
			data, err := json.Marshal(d)
			if err != nil {
				return false
			}
			var got DefaultValue
			if err := json.Unmarshal(data, &got); err != nil {
				return false
			}
			return got == d
		},
		gen.AnyString(),
	))

	properties.Property("a value default is never confused with DEFAULT NULL", prop.ForAll(
		func(payload string) bool {
			return !ValueDefault(payload).IsNull() && NullDefault().IsNull()
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestProperty_ColumnRendering checks that the canonical clause text is
// deterministic and stable across a JSON round trip for arbitrary columns.
func TestProperty_ColumnRendering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	colGen := gopter.CombineGens(
		gen.Identifier(),
		gen.OneConstOf(TypeTinyInt, TypeInt, TypeBigInt, TypeLargeInt, TypeDouble, TypeDate, TypeDateTime, TypeBoolean),
		gen.Bool(),
		gen.Bool(),
		gen.AlphaString(),
	).Map(func(vs []interface{}) Column {
		col := Column{
			Name:     vs[0].(string),
			Type:     ScalarType{Type: vs[1].(PrimitiveType)},
			IsKey:    vs[2].(bool),
			Nullable: vs[3].(bool),
			Comment:  vs[4].(string),
		}
		if !col.IsKey && !vs[3].(bool) {
			col.Default = ValueDefault("0")
		}
		return col
	})

	properties.Property("rendering is deterministic", prop.ForAll(
		func(col Column) bool {
			return col.ToSQL() == col.ToSQL()
		},
		colGen,
	))

	properties.Property("JSON round trip preserves the clause text", prop.ForAll(
		func(col Column) bool {
			data, err := json.Marshal(&col)
			if err != nil {
				return false
			}
			var got Column
			if err := json.Unmarshal(data, &got); err != nil {
				return false
			}
			return got.ToSQL() == col.ToSQL()
		},
		colGen,
	))

	properties.TestingRun(t)
}
