package recipeview

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ScaleAmount multiplies amount by factor and formats it for display.
// Integers print without a fraction; anything else is rounded to two
// places and trailing fractional zeros are removed. Rounding is half away
// from zero on the exact binary value of the product, so 1.005 gives "1".
// A nil or non-finite amount yields "".
func ScaleAmount(amount *float64, factor float64) string {
	if amount == nil || !isFinite(*amount) {
		return ""
	}
	scaled := *amount * factor
	if !isFinite(scaled) {
		return ""
	}
	if scaled == math.Trunc(scaled) {
		if scaled == 0 {
			return "0"
		}
		return strconv.FormatFloat(scaled, 'f', -1, 64)
	}

	s := toFixed2(scaled)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// toFixed2 rounds the exact binary value of v to two decimals, ties away
// from zero. strconv rounds ties to even, which differs on values such as
// 0.125.
func toFixed2(v float64) string {
	r := new(big.Rat).SetFloat64(math.Abs(v))
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	whole, frac := new(big.Int).QuoRem(n, big.NewInt(100), new(big.Int))
	s := fmt.Sprintf("%s.%02d", whole.String(), frac.Int64())
	if v < 0 {
		s = "-" + s
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
