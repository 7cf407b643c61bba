// Package fee splits the platform fee between a referrer and the
// treasury using integer wei math, per spec.md §4.5. Grounded on
// blackhole.go's wei-scale big.Int arithmetic (Mint/Stake accumulate gas
// cost the same way) — no floating point ever touches a wei amount here.
package fee

import (
	"math/big"

	"github.com/zappilot/dustzap/pkg/money"
	"github.com/zappilot/dustzap/pkg/types"
)

// Config holds the engine-wide fee configuration, loaded from
// PLATFORM_FEE_RATE / REFERRER_FEE_SHARE / TREASURY_ADDRESS.
type Config struct {
	PlatformFeeRate float64
	ReferrerShare   float64
	TreasuryAddress string
}

// Split is the computed fee outcome for one batch.
type Split struct {
	TotalFeeUSD     float64
	TotalFeeWei     *big.Int
	ReferrerWei     *big.Int // nil when there is no referral address
	TreasuryWei     *big.Int
	ReferralPresent bool
}

// Calculate implements spec.md §4.5 exactly:
//
//	totalFeeUSD = totalValueUSD * platformFeeRate
//	totalFeeWei = floor((totalFeeUSD / ethPriceUSD) * 10^18)
//	referrerWei = totalFeeWei * floor(referrerShare*100) / 100   (integer math)
//	treasuryWei = totalFeeWei - referrerWei
func (c Config) Calculate(totalValueUSD, ethPriceUSD float64, referralAddress string) Split {
	rawFeeUSD := totalValueUSD * c.PlatformFeeRate
	totalFeeUSD := money.RoundUSD(rawFeeUSD)
	totalFeeWei := money.USDToWei(rawFeeUSD, ethPriceUSD)

	if referralAddress == "" {
		return Split{
			TotalFeeUSD:     totalFeeUSD,
			TotalFeeWei:     totalFeeWei,
			TreasuryWei:     new(big.Int).Set(totalFeeWei),
			ReferralPresent: false,
		}
	}

	shareBps := int64(c.ReferrerShare * 100)
	referrerWei := money.FloorMulDivInt(totalFeeWei, shareBps, 100)
	treasuryWei := new(big.Int).Sub(totalFeeWei, referrerWei)

	return Split{
		TotalFeeUSD:     totalFeeUSD,
		TotalFeeWei:     totalFeeWei,
		ReferrerWei:     referrerWei,
		TreasuryWei:     treasuryWei,
		ReferralPresent: true,
	}
}

// Apply appends one or two native transfers to b for this split and
// returns client-facing FeeInfo. Never exposes the transaction index
// range the transfers landed at (spec.md §4.5's deliberate omission) —
// only feeTransactionCount.
func (c Config) Apply(b interface {
	AddNativeTransfer(to string, rawWei *big.Int, description string) int
}, referralAddress string, split Split, ethPriceUSD float64) types.FeeInfo {
	if split.ReferralPresent {
		b.AddNativeTransfer(referralAddress, split.ReferrerWei, "referrer fee")
		b.AddNativeTransfer(c.TreasuryAddress, split.TreasuryWei, "treasury fee")
		return types.FeeInfo{
			TotalFeeUSD:         split.TotalFeeUSD,
			ReferrerFeeUSD:      weiToUSD(split.ReferrerWei, ethPriceUSD),
			TreasuryFeeUSD:      weiToUSD(split.TreasuryWei, ethPriceUSD),
			FeeTransactionCount: 2,
		}
	}
	b.AddNativeTransfer(c.TreasuryAddress, split.TreasuryWei, "treasury fee")
	return types.FeeInfo{
		TotalFeeUSD:         split.TotalFeeUSD,
		TreasuryFeeUSD:      weiToUSD(split.TreasuryWei, ethPriceUSD),
		FeeTransactionCount: 1,
	}
}

func weiToUSD(wei *big.Int, ethPriceUSD float64) float64 {
	ethFloat := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt(money.Pow10(18)))
	usd, _ := new(big.Float).Mul(ethFloat, big.NewFloat(ethPriceUSD)).Float64()
	return money.RoundUSD(usd)
}
