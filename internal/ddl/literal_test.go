package ddl

import (
	"testing"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

func TestValidateDefaultValue(t *testing.T) {
	tests := []struct {
		name     string
		typ      *types.ScalarType
		value    string
		wantCode string
	}{
		{"tinyint max", types.NewScalarType(types.TypeTinyInt), "127", ""},
		{"tinyint overflow", types.NewScalarType(types.TypeTinyInt), "128", errors.CodeInvalidInt},
		{"smallint min", types.NewScalarType(types.TypeSmallInt), "-32768", ""},
		{"smallint underflow", types.NewScalarType(types.TypeSmallInt), "-32769", errors.CodeInvalidInt},
		{"int overflow", types.NewScalarType(types.TypeInt), "2147483648", errors.CodeInvalidInt},
		{"bigint max", types.NewScalarType(types.TypeBigInt), "9223372036854775807", ""},
		{"bigint not a number", types.NewScalarType(types.TypeBigInt), "12x", errors.CodeInvalidInt},

		{"largeint max", types.NewScalarType(types.TypeLargeInt), "170141183460469231731687303715884105727", ""},
		{"largeint min", types.NewScalarType(types.TypeLargeInt), "-170141183460469231731687303715884105728", ""},
		{"largeint overflow", types.NewScalarType(types.TypeLargeInt), "170141183460469231731687303715884105728", errors.CodeInvalidLargeInt},
		{"largeint garbage", types.NewScalarType(types.TypeLargeInt), "ten", errors.CodeInvalidLargeInt},

		{"float exact", types.NewScalarType(types.TypeFloat), "1.5", ""},
		{"float precision loss", types.NewScalarType(types.TypeFloat), "0.1", errors.CodePrecisionLoss},
		{"float garbage", types.NewScalarType(types.TypeFloat), "abc", errors.CodeInvalidFloat},
		{"double", types.NewScalarType(types.TypeDouble), "0.1", ""},
		{"double garbage", types.NewScalarType(types.TypeDouble), "--1", errors.CodeInvalidFloat},

		{"decimal fits", types.NewDecimalType(types.TypeDecimal, 10, 2), "12345678.99", ""},
		{"decimal precision overflow", types.NewDecimalType(types.TypeDecimal, 5, 2), "123456", errors.CodeDecimalOverflow},
		{"decimal scale overflow", types.NewDecimalType(types.TypeDecimal, 10, 2), "1.234", errors.CodeDecimalOverflow},
		{"decimal negative fits", types.NewDecimalType(types.TypeDecimal, 5, 2), "-123.45", ""},
		{"decimal garbage", types.NewDecimalType(types.TypeDecimal, 10, 2), "1.2.3", errors.CodeInvalidDecimal},

		{"date", types.NewScalarType(types.TypeDate), "2026-02-28", ""},
		{"date bad layout", types.NewScalarType(types.TypeDate), "2026/02/28", errors.CodeInvalidDate},
		{"date impossible", types.NewScalarType(types.TypeDate), "2026-02-30", errors.CodeInvalidDate},
		{"datetime", types.NewScalarType(types.TypeDateTime), "2026-02-28 23:59:59", ""},
		{"datetime missing time", types.NewScalarType(types.TypeDateTime), "2026-02-28", errors.CodeInvalidDate},

		{"char fits", types.NewStringType(types.TypeChar, 4), "abcd", ""},
		{"varchar too long", types.NewStringType(types.TypeVarchar, 3), "abcd", errors.CodeValueTooLong},

		{"bool true", types.NewScalarType(types.TypeBoolean), "true", ""},
		{"bool mixed case", types.NewScalarType(types.TypeBoolean), "False", ""},
		{"bool numeric", types.NewScalarType(types.TypeBoolean), "1", ""},
		{"bool garbage", types.NewScalarType(types.TypeBoolean), "yes", errors.CodeInvalidBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDefaultValue(tt.typ, tt.value)
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateDefaultValue(%s, %q) code = %q, want %q",
					tt.typ.ToSQL(), tt.value, got, tt.wantCode)
			}
		})
	}
}

func TestValidateDefaultValue_PrecisionLossMessage(t *testing.T) {
	err := ValidateDefaultValue(types.NewScalarType(types.TypeFloat), "3.14159265358979")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := errors.UserMessage(err); got != "Default value will loose precision: 3.14159265358979" {
		t.Errorf("message = %q", got)
	}
}

func TestValidateDefaultValue_NilTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a nil type")
		}
	}()
	_ = ValidateDefaultValue(nil, "1")
}
