package cart

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Decimal is a fixed point amount in ten-thousandths.
type Decimal int64

const (
	decimalPlaces = 4
	decimalScale  = 10000
)

// ParseDecimal parses a decimal number, with or without exponent, rounding
// half away from zero to four fractional digits.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '/') {
		return 0, fmt.Errorf("unable to parse %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("unable to parse %q", s)
	}
	r.Mul(r, big.NewRat(decimalScale, 1))

	num := r.Num()
	den := r.Denom()
	q, m := new(big.Int).QuoRem(num, den, new(big.Int))
	m.Abs(m).Lsh(m, 1)
	if m.Cmp(den) >= 0 {
		q.Add(q, big.NewInt(int64(num.Sign())))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return Decimal(q.Int64()), nil
}

func (d Decimal) Mul(n int) Decimal {
	return d * Decimal(n)
}

func (d Decimal) Float64() float64 {
	return float64(d) / decimalScale
}

// Round rounds half away from zero to the given number of fractional
// digits, which must be between zero and four.
func (d Decimal) Round(places int) Decimal {
	if places >= decimalPlaces {
		return d
	}
	if places < 0 {
		places = 0
	}
	unit := Decimal(math.Pow10(decimalPlaces - places))
	q, rem := d/unit, d%unit
	switch {
	case rem*2 >= unit:
		q++
	case rem*2 <= -unit:
		q--
	}
	return q * unit
}

func (d Decimal) String() string {
	return d.StringFixed(decimalPlaces)
}

// StringFixed formats the value rounded to the given number of fractional
// digits.
func (d Decimal) StringFixed(places int) string {
	if places > decimalPlaces {
		places = decimalPlaces
	}
	if places < 0 {
		places = 0
	}
	r := d.Round(places)
	sign := ""
	if r < 0 {
		sign = "-"
		r = -r
	}
	whole := int64(r) / decimalScale
	if places == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	frac := (int64(r) % decimalScale) / int64(math.Pow10(decimalPlaces-places))
	return fmt.Sprintf("%s%d.%0*d", sign, whole, places, frac)
}
