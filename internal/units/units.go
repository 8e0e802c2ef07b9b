// Package units converts token amounts between the human-readable decimal
// form and the on-chain base-unit integer form.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point precision of the token (10^18 base units per token).
const Decimals = 18

// ErrInvalidAmount is returned when an amount string cannot be represented in base units.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	amountPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
	maxUint256    = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// ToBaseUnits parses a non-negative decimal amount such as "1.5" and scales it
// by 10^18. Exponents, signs and precision beyond 18 fractional digits are rejected.
func ToBaseUnits(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q is not a non-negative decimal number", ErrInvalidAmount, amount)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, amount, Decimals)
	}

	wei := scaled.BigInt()
	if wei.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %q overflows uint256", ErrInvalidAmount, amount)
	}
	return wei, nil
}

// ToDecimal renders base units as a decimal string. Trailing fractional zeros
// are trimmed but at least one fractional digit is kept: 9e19 → "90.0".
func ToDecimal(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(wei, -Decimals).StringFixed(Decimals)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// Equal reports whether two decimal amount strings denote the same quantity.
// Unparseable inputs are never equal.
func Equal(a, b string) bool {
	x, err := ToBaseUnits(a)
	if err != nil {
		return false
	}
	y, err := ToBaseUnits(b)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}
