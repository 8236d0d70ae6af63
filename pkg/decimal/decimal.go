package decimal

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"

	dec "github.com/shopspring/decimal"
)

// MaxScale bounds the target scale accepted by Div.
const MaxScale = 16384

var (
	// ErrMalformed indicates input that is not a plain decimal literal.
	ErrMalformed = errors.New("decimal: malformed decimal")

	// ErrDivisionByZero indicates a division with a zero divisor.
	ErrDivisionByZero = errors.New("decimal: division by zero")

	// ErrInvalidScale indicates a division scale outside [0, MaxScale].
	ErrInvalidScale = errors.New("decimal: division scale out of range")
)

// literalPattern is the accepted grammar: an optional minus sign, one or more
// digits, and an optional fractional part. No exponents, no leading plus,
// no bare "." forms, no surrounding whitespace.
var literalPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Decimal is an exact arbitrary-precision decimal number with an explicit
// scale (count of fractional digits). The zero value is 0 at scale 0.
//
// Decimals are immutable and safe to share between goroutines.
type Decimal struct {
	d dec.Decimal
}

// Parse converts a decimal literal into a Decimal. The literal must match
// [-]?digits[.digits] exactly; anything else fails with ErrMalformed.
// The scale of the result is the number of digits after the point, so
// trailing zeros are significant: Parse("1.50") has scale 2.
func Parse(s string) (Decimal, error) {
	if !literalPattern.MatchString(s) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	d, err := dec.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	return Decimal{d: d}, nil
}

// MustParse is like Parse but panics on malformed input.
// It simplifies tests and fixtures with known-good literals.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the decimal with exactly Scale fractional digits, so the
// scale survives a round trip through Parse.
func (d Decimal) String() string {
	return d.d.StringFixed(d.Scale())
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() int32 {
	if e := d.d.Exponent(); e < 0 {
		return -e
	}
	return 0
}

// Add returns d + o exactly. The result scale is the larger operand scale.
func (d Decimal) Add(o Decimal) Decimal {
	return Decimal{d: d.d.Add(o.d)}
}

// Sub returns d - o exactly. The result scale is the larger operand scale.
func (d Decimal) Sub(o Decimal) Decimal {
	return Decimal{d: d.d.Sub(o.d)}
}

// Mul returns d * o exactly. The result scale is the sum of operand scales.
func (d Decimal) Mul(o Decimal) Decimal {
	return Decimal{d: d.d.Mul(o.d)}
}

// Div returns d / o rounded half to even at the target scale. The result
// scale is exactly scale, trailing zeros included. A zero divisor fails with
// ErrDivisionByZero and a scale outside [0, MaxScale] with ErrInvalidScale.
func (d Decimal) Div(o Decimal, scale int32) (Decimal, error) {
	if o.d.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	if scale < 0 || scale > MaxScale {
		return Decimal{}, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}

	// Truncated quotient plus remainder: d = o*q + r with q a multiple of
	// 10^-scale and r carrying the sign of d.
	q, r := d.d.QuoRem(o.d, scale)

	// The quotient in units of 10^-scale; forcing the exponent here pins the
	// result scale even when the division is exact.
	units := q.Shift(scale).BigInt()

	if !r.IsZero() {
		// Compare twice the remainder against one quotient step: above the
		// midpoint rounds away from zero, the midpoint itself rounds to even.
		twice := r.Abs().Add(r.Abs())
		step := o.d.Abs().Mul(dec.New(1, -scale))

		away := false
		switch twice.Cmp(step) {
		case +1:
			away = true
		case 0:
			away = units.Bit(0) == 1
		}

		if away {
			if (d.d.Sign() < 0) != (o.d.Sign() < 0) {
				units.Sub(units, big.NewInt(1))
			} else {
				units.Add(units, big.NewInt(1))
			}
		}
	}

	return Decimal{d: dec.NewFromBigInt(units, -scale)}, nil
}

// Cmp compares numeric values, ignoring scale:
// -1 if d < o, 0 if equal, +1 if d > o.
func (d Decimal) Cmp(o Decimal) int {
	return d.d.Cmp(o.d)
}

// Equal reports numeric equality, ignoring scale: 1.5 equals 1.50.
// Stored values additionally distinguish scale; compare String output when
// that matters.
func (d Decimal) Equal(o Decimal) bool {
	return d.d.Equal(o.d)
}

// Sign returns -1 for negative, 0 for zero, +1 for positive values.
func (d Decimal) Sign() int {
	return d.d.Sign()
}

// IsZero reports whether the value is numerically zero at any scale.
func (d Decimal) IsZero() bool {
	return d.d.IsZero()
}
