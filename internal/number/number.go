package number

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ToDecimal converts supported numeric values to an exact decimal.
// Integers keep every digit, so uint64 and int64 values beyond 2^53 compare correctly.
func ToDecimal(value any) (decimal.Decimal, bool) {
	switch current := value.(type) {
	case int:
		return decimal.NewFromInt(int64(current)), true
	case int8:
		return decimal.NewFromInt(int64(current)), true
	case int16:
		return decimal.NewFromInt(int64(current)), true
	case int32:
		return decimal.NewFromInt(int64(current)), true
	case int64:
		return decimal.NewFromInt(current), true
	case uint:
		return fromUnsigned(uint64(current))
	case uint8:
		return decimal.NewFromInt(int64(current)), true
	case uint16:
		return decimal.NewFromInt(int64(current)), true
	case uint32:
		return decimal.NewFromInt(int64(current)), true
	case uint64:
		return fromUnsigned(current)
	case float32:
		return fromFloat(float64(current))
	case float64:
		return fromFloat(current)
	case json.Number:
		parsed, err := decimal.NewFromString(string(current))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return parsed, true
	default:
		return decimal.Decimal{}, false
	}
}

// fromFloat rejects NaN and infinities, which have no decimal representation.
func fromFloat(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(v), true
}

func fromUnsigned(v uint64) (decimal.Decimal, bool) {
	parsed, err := decimal.NewFromString(strconv.FormatUint(v, 10))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return parsed, true
}

// IsNumber reports whether value is one of the numeric types understood by this package.
func IsNumber(value any) bool {
	_, ok := ToDecimal(value)
	return ok
}

// Compare returns -1, 0 or +1 as left is less than, equal to or greater than right.
// The second result is false when either side is not a number.
func Compare(left, right any) (int, bool) {
	l, ok := ToDecimal(left)
	if !ok {
		return 0, false
	}
	r, ok := ToDecimal(right)
	if !ok {
		return 0, false
	}
	return l.Cmp(r), true
}

// ToInt converts integral values, including integral floats and json.Number, into int.
func ToInt(value any) (int, bool) {
	d, ok := ToDecimal(value)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
