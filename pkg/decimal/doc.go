// Package decimal implements exact decimal arithmetic for decikv values.
//
// Values are arbitrary-precision decimals with an explicit scale, the count
// of fractional digits. Scale is significant everywhere: "1.5" and "1.50"
// compare equal numerically but render differently and round-trip through
// Parse and String without losing their scale.
//
// # Literals
//
// Parse accepts exactly the grammar
//
//	[-]?digits[.digits]
//
// and nothing else. Scientific notation, leading plus signs, bare "." forms,
// whitespace and non-ASCII digits are all rejected with ErrMalformed. This is
// deliberately stricter than most decimal parsers so that stored values have
// a single canonical spelling.
//
// # Arithmetic
//
// Add, Sub and Mul are exact and never fail. Result scales are fixed rules,
// not minimal representations:
//
//	add/sub: max(scale(a), scale(b))
//	mul:     scale(a) + scale(b)
//
// Division cannot stay exact, so Div takes an explicit target scale and
// rounds half to even (banker's rounding): Div(1, 3, 4) is "0.3333" and
// Div(1, 8, 2) is "0.12". The result always carries exactly the target
// scale. A zero divisor fails with ErrDivisionByZero.
//
// The package does no I/O and holds no state; every operation is pure.
package decimal
