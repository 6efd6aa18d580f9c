package templify

import (
	"math/big"
	"strings"
)

// Decimal is an arbitrary-precision, scale-exact decimal number. Unlike
// float64, it remembers the number of digits after the decimal point as it
// was spelled in source data, so "1250.50" round-trips as "1250.50" rather
// than collapsing to "1250.5".
type Decimal struct {
	unscaled *big.Int // value * 10^scale
	scale    int32    // number of digits after the decimal point
}

// DecimalFromInt64 builds a zero-scale Decimal from an integer.
func DecimalFromInt64(i int64) Decimal {
	return Decimal{unscaled: big.NewInt(i), scale: 0}
}

// ParseDecimal parses a base-10 literal such as "1250.50" or "-3", keeping
// the exact number of fractional digits present in s as the Decimal's
// scale. Returns false if s is not a valid decimal literal.
func ParseDecimal(s string) (Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	intPart, fracPart, hasFrac := s, "", false
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
		hasFrac = true
	}
	if intPart == "" && fracPart == "" {
		return Decimal{}, false
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart
	if digits == "" {
		return Decimal{}, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Decimal{}, false
		}
	}
	unscaled := new(big.Int)
	if _, ok := unscaled.SetString(digits, 10); !ok {
		return Decimal{}, false
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	scale := int32(0)
	if hasFrac {
		scale = int32(len(fracPart))
	}
	return Decimal{unscaled: unscaled, scale: scale}, true
}

func (d Decimal) IsZero() bool {
	return d.unscaled == nil || d.unscaled.Sign() == 0
}

func (d Decimal) Sign() int {
	if d.unscaled == nil {
		return 0
	}
	return d.unscaled.Sign()
}

// Int64 truncates toward zero, reporting false if the truncated value
// does not fit in an int64 (the zero Decimal{} truncates to (0, true)).
func (d Decimal) Int64() (int64, bool) {
	if d.unscaled == nil {
		return 0, true
	}
	if d.scale <= 0 {
		v := new(big.Int).Set(d.unscaled)
		for i := int32(0); i < -d.scale; i++ {
			v.Mul(v, big.NewInt(10))
		}
		return v.Int64(), v.IsInt64()
	}
	div := pow10(d.scale)
	q := new(big.Int)
	q.Quo(d.unscaled, div)
	return q.Int64(), q.IsInt64()
}

// String renders the Decimal preserving its exact scale, e.g. a Decimal
// parsed from "1250.50" always prints "1250.50".
func (d Decimal) String() string {
	if d.unscaled == nil {
		return "0"
	}
	if d.scale <= 0 {
		v := new(big.Int).Set(d.unscaled)
		for i := int32(0); i < -d.scale; i++ {
			v.Mul(v, big.NewInt(10))
		}
		return v.String()
	}
	neg := d.unscaled.Sign() < 0
	abs := new(big.Int).Abs(d.unscaled)
	digits := abs.String()
	for int32(len(digits)) <= d.scale {
		digits = "0" + digits
	}
	split := int32(len(digits)) - d.scale
	out := digits[:split] + "." + digits[split:]
	if neg {
		out = "-" + out
	}
	return out
}

func pow10(n int32) *big.Int {
	v := big.NewInt(1)
	ten := big.NewInt(10)
	for i := int32(0); i < n; i++ {
		v.Mul(v, ten)
	}
	return v
}

// aligned returns both decimals' unscaled big.Int values widened to the
// larger of the two scales, so they can be compared or combined digit for
// digit.
func aligned(a, b Decimal) (*big.Int, *big.Int) {
	au, bu := a.unscaled, b.unscaled
	if au == nil {
		au = big.NewInt(0)
	}
	if bu == nil {
		bu = big.NewInt(0)
	}
	if a.scale == b.scale {
		return new(big.Int).Set(au), new(big.Int).Set(bu)
	}
	if a.scale < b.scale {
		au = new(big.Int).Mul(au, pow10(b.scale-a.scale))
		bu = new(big.Int).Set(bu)
	} else {
		bu = new(big.Int).Mul(bu, pow10(a.scale-b.scale))
		au = new(big.Int).Set(au)
	}
	return au, bu
}

// Compare returns -1/0/1 comparing a to b at their widened scale.
func (d Decimal) Compare(other Decimal) int {
	au, bu := aligned(d, other)
	return au.Cmp(bu)
}

// numericCompare widens Integer/Decimal operands to a common Decimal
// representation and compares them, implementing the numeric-widening
// rule for comparisons and equality across Integer and Decimal.
func numericCompare(a, b *Value) (int, bool) {
	if a == nil || b == nil || !a.IsNumeric() || !b.IsNumeric() {
		return 0, false
	}
	da := a.Decimal()
	db := b.Decimal()
	return da.Compare(db), true
}

// coerceToDecimalPair implements the "cross-type comparisons coerce to a
// common numeric form when unambiguous" rule for a
// Numeric-vs-String pair: the string side must parse cleanly as a decimal
// literal, otherwise the coercion is ambiguous and the caller should treat
// the comparison as false.
func coerceToDecimalPair(a, b *Value) (Decimal, Decimal, bool) {
	if a.IsNumeric() && b.IsNumeric() {
		return a.Decimal(), b.Decimal(), true
	}
	if a.IsNumeric() && b.IsString() {
		if db, ok := ParseDecimal(b.AsString()); ok {
			return a.Decimal(), db, true
		}
	}
	if a.IsString() && b.IsNumeric() {
		if da, ok := ParseDecimal(a.AsString()); ok {
			return da, b.Decimal(), true
		}
	}
	return Decimal{}, Decimal{}, false
}
