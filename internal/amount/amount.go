// =================================
// File: internal/amount/amount.go
// =================================
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits shown for human amounts.
const DisplayPlaces = 2

var (
	// ErrInvalidAmount is returned for quantities that cannot be parsed as a
	// non-negative amount at the requested precision.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverflow is part of the error taxonomy for targets with bounded
	// integers. Arbitrary precision arithmetic never returns it.
	ErrOverflow = errors.New("amount overflow")
)

// ParseRaw parses a ledger integer (U128 JSON encoding) into a big.Int.
func ParseRaw(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidAmount, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return v, nil
}

// ToHuman converts a fixed-point amount into a decimal string with exactly
// two fractional digits. Halves round away from zero.
func ToHuman(raw *big.Int, decimals uint) string {
	if raw == nil {
		raw = new(big.Int)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).StringFixed(DisplayPlaces)
}

// ToContract converts a human amount into the ledger's smallest unit using
// exact decimal arithmetic. The result is a base-10 integer string.
func ToContract(human string, decimals uint) (string, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return "", fmt.Errorf("%w: empty quantity", ErrInvalidAmount)
	}
	if strings.ContainsAny(s, "eE") {
		return "", fmt.Errorf("%w: %q uses exponent notation", ErrInvalidAmount, human)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	if d.Sign() < 0 {
		return "", fmt.Errorf("%w: %q is negative", ErrInvalidAmount, human)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return "", fmt.Errorf("%w: %q exceeds %d decimal places", ErrInvalidAmount, human, decimals)
	}
	return scaled.BigInt().String(), nil
}

// ComputeTotalCost returns quantity * pricePerShare. Nil operands count as zero.
func ComputeTotalCost(quantity, pricePerShare *big.Int) (*big.Int, error) {
	if quantity == nil || pricePerShare == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Mul(quantity, pricePerShare), nil
}

// ComputeSharePercent returns the share of totalSupply held as balance, in
// percent, clamped to [0, 100]. A zero supply yields 0.
func ComputeSharePercent(balance, totalSupply *big.Int) float64 {
	if balance == nil || totalSupply == nil || totalSupply.Sign() <= 0 || balance.Sign() <= 0 {
		return 0
	}

	scaled := new(big.Int).Mul(balance, big.NewInt(100))
	pct, _ := new(big.Rat).SetFrac(scaled, totalSupply).Float64()

	if pct > 100 {
		return 100
	}
	return pct
}

// FormatPercent renders a percentage rounded to two decimals, e.g. "25.00%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(DisplayPlaces) + "%"
}

// FormatQuote renders a fixed-point quote amount with its symbol, e.g. "4.50 USDT".
func FormatQuote(raw *big.Int, decimals uint, symbol string) string {
	if symbol == "" {
		return ToHuman(raw, decimals)
	}
	return ToHuman(raw, decimals) + " " + symbol
}
