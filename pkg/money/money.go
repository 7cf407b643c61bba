// Package money holds the arbitrary-precision integer helpers the fee
// calculator, token processor and intent handler use for wei-scale and
// raw token amounts. Floating
// point is reserved for USD-denominated display values (spec.md §9).
package money

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var hexAmountPattern = regexp.MustCompile(`^0x?[0-9a-fA-F]+$`)

// ParseRawAmountHex validates and parses a raw token amount expressed as
// hex, matching spec.md §3's rawAmountHex invariant.
func ParseRawAmountHex(raw string) (*big.Int, error) {
	if !hexAmountPattern.MatchString(raw) {
		return nil, fmt.Errorf("raw amount %q does not match ^0x?[0-9a-fA-F]+$", raw)
	}
	trimmed := strings.TrimPrefix(raw, "0x")
	value, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("raw amount %q is not valid hex", raw)
	}
	return value, nil
}

// Pow10 returns 10^n as a big.Int, the same Exp-based idiom the teacher
// and the NimaZeighami atomic executor use for decimal-scale conversion.
func Pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// FloorMulDivInt computes floor(value * numerator / denominator) using
// only integer arithmetic, for the fee split, where floating point would
// lose precision at wei scale.
func FloorMulDivInt(value *big.Int, numerator, denominator int64) *big.Int {
	n := new(big.Int).Mul(value, big.NewInt(numerator))
	return new(big.Int).Div(n, big.NewInt(denominator))
}

// WeiToHuman renders a wei-scale integer as a human-readable decimal
// string with the given number of fractional digits, following the
// NimaZeighami atomic executor's formatTokenAmount pattern (big.Float
// division for *display only*; never used for amounts that cross a
// transaction boundary).
func WeiToHuman(amount *big.Int, decimals int, precision int) string {
	divisor := Pow10(decimals)
	f := new(big.Float).Quo(new(big.Float).SetInt(amount), new(big.Float).SetInt(divisor))
	return f.Text('f', precision)
}

// USDToWei converts a USD amount into wei given an ETH/native price in
// USD, flooring to the nearest wei: floor((usd/ethPriceUSD) * 10^18).
func USDToWei(usd, ethPriceUSD float64) *big.Int {
	if ethPriceUSD <= 0 {
		return big.NewInt(0)
	}
	scaled := new(big.Float).Mul(big.NewFloat(usd/ethPriceUSD), new(big.Float).SetInt(Pow10(18)))
	wei, _ := scaled.Int(nil)
	return wei
}

// RoundUSD rounds a USD display value to 6 decimal places using
// shopspring/decimal, the same way DimaJoyti-go-coffee's arbitrage
// detector cleans up USD math before it reaches a client, so stream
// events never carry raw float64 rounding noise (e.g. 0.1+0.2).
func RoundUSD(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return rounded
}
