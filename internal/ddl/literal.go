package ddl

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

// Date layouts accepted for DATE and DATETIME default values.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Integer bounds per fixed-point type.
var intBounds = map[types.PrimitiveType][2]int64{
	types.TypeTinyInt:  {math.MinInt8, math.MaxInt8},
	types.TypeSmallInt: {math.MinInt16, math.MaxInt16},
	types.TypeInt:      {math.MinInt32, math.MaxInt32},
	types.TypeBigInt:   {math.MinInt64, math.MaxInt64},
}

// largeIntMax is 2^127 - 1; LARGEINT is a signed 128-bit integer.
var largeIntMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
var largeIntMin = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

// ValidateDefaultValue checks that a raw default-value literal is valid for
// the given resolved scalar type. The type must already be finalized; a nil
// type is a programming error, not a user error.
func ValidateDefaultValue(t *types.ScalarType, value string) error {
	if t == nil {
		panic("ddl: ValidateDefaultValue called with nil type")
	}

	switch t.Type {
	case types.TypeTinyInt, types.TypeSmallInt, types.TypeInt, types.TypeBigInt:
		return validateIntLiteral(t.Type, value)

	case types.TypeLargeInt:
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return errors.NewLiteralError(errors.CodeInvalidLargeInt,
				fmt.Sprintf("Invalid LARGEINT default value: %q", value))
		}
		if n.Cmp(largeIntMin) < 0 || n.Cmp(largeIntMax) > 0 {
			return errors.NewLiteralError(errors.CodeInvalidLargeInt,
				fmt.Sprintf("LARGEINT default value out of range: %q", value))
		}
		return nil

	case types.TypeFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.NewLiteralError(errors.CodeInvalidFloat,
				fmt.Sprintf("Invalid FLOAT default value: %q", value))
		}
		// A literal whose natural type is DOUBLE cannot be stored in a
		// FLOAT column without loss. Parsing success is otherwise
		// sufficient; no further float-specific bound check runs.
		if float64(float32(v)) != v {
			return errors.NewLiteralError(errors.CodePrecisionLoss,
				"Default value will loose precision: "+value)
		}
		return nil

	case types.TypeDouble:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return errors.NewLiteralError(errors.CodeInvalidFloat,
				fmt.Sprintf("Invalid DOUBLE default value: %q", value))
		}
		return nil

	case types.TypeDecimal, types.TypeDecimalV2:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return errors.NewLiteralError(errors.CodeInvalidDecimal,
				fmt.Sprintf("Invalid DECIMAL default value: %q", value))
		}
		if err := checkPrecisionAndScale(d, t.Precision, t.Scale); err != nil {
			return err
		}
		return nil

	case types.TypeDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return errors.NewLiteralError(errors.CodeInvalidDate,
				fmt.Sprintf("Invalid DATE default value: %q", value))
		}
		return nil

	case types.TypeDateTime:
		if _, err := time.Parse(dateTimeLayout, value); err != nil {
			return errors.NewLiteralError(errors.CodeInvalidDate,
				fmt.Sprintf("Invalid DATETIME default value: %q", value))
		}
		return nil

	case types.TypeChar, types.TypeVarchar, types.TypeHLL:
		if len(value) > t.Len {
			return errors.NewLiteralError(errors.CodeValueTooLong,
				"Default value is too long: "+value)
		}
		return nil

	case types.TypeBitmap:
		// The value is never used: bitmap defaults are always replaced with
		// the empty sentinel before this point.
		return nil

	case types.TypeBoolean:
		switch strings.ToLower(value) {
		case "true", "false", "0", "1":
			return nil
		}
		return errors.NewLiteralError(errors.CodeInvalidBool,
			fmt.Sprintf("Invalid BOOLEAN default value: %q", value))

	default:
		return errors.NewLiteralError(errors.CodeUnsupportedType,
			"Unsupported type: "+t.ToSQL())
	}
}

// validateIntLiteral parses an integer literal bounded by the target type.
func validateIntLiteral(p types.PrimitiveType, value string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return errors.NewLiteralError(errors.CodeInvalidInt,
			fmt.Sprintf("Invalid %s default value: %q", p, value))
	}
	bounds := intBounds[p]
	if n < bounds[0] || n > bounds[1] {
		return errors.NewLiteralError(errors.CodeInvalidInt,
			fmt.Sprintf("%s default value out of range: %q", p, value))
	}
	return nil
}

// checkPrecisionAndScale verifies a decimal literal against the declared
// precision and scale. Precision counts significant digits of the
// coefficient; scale counts fractional digits.
func checkPrecisionAndScale(d decimal.Decimal, precision, scale int) error {
	lScale := 0
	if d.Exponent() < 0 {
		lScale = int(-d.Exponent())
	}

	coeff := d.Coefficient().String()
	coeff = strings.TrimPrefix(coeff, "-")
	lPrecision := len(coeff)

	if lPrecision > precision || lScale > scale {
		return errors.NewLiteralError(errors.CodeDecimalOverflow, fmt.Sprintf(
			"Invalid DECIMAL default value (exceeds precision %d or scale %d): %q",
			precision, scale, d.String()))
	}
	return nil
}
