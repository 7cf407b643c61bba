package fee

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCalculate_S1NoReferral mirrors spec.md scenario S1: totalValueUSD
// = 0.02, platformFeeRate = 0.0001, no referral present.
func TestCalculate_S1NoReferral(t *testing.T) {
	cfg := Config{PlatformFeeRate: 0.0001, ReferrerShare: 0.7, TreasuryAddress: "0xTREASURY"}
	split := cfg.Calculate(0.02, 3000, "")

	assert.False(t, split.ReferralPresent)
	assert.InDelta(t, 2e-6, split.TotalFeeUSD, 1e-12)
	assert.Equal(t, big.NewInt(666666666), split.TotalFeeWei)
	assert.Equal(t, split.TotalFeeWei, split.TreasuryWei)
}

// TestCalculate_S2Referrer mirrors spec.md scenario S2: same inputs plus
// a referral address with a 70% share.
func TestCalculate_S2Referrer(t *testing.T) {
	cfg := Config{PlatformFeeRate: 0.0001, ReferrerShare: 0.7, TreasuryAddress: "0xTREASURY"}
	split := cfg.Calculate(0.02, 3000, "0x2222222222222222222222222222222222222222")

	assert.True(t, split.ReferralPresent)
	assert.Equal(t, big.NewInt(666666666), split.TotalFeeWei)
	assert.Equal(t, big.NewInt(466666666), split.ReferrerWei)
	assert.Equal(t, big.NewInt(200000000), split.TreasuryWei)

	sum := new(big.Int).Add(split.ReferrerWei, split.TreasuryWei)
	assert.Equal(t, split.TotalFeeWei, sum)
}

type fakeBuilder struct {
	transfers []struct {
		to  string
		wei *big.Int
	}
}

func (f *fakeBuilder) AddNativeTransfer(to string, rawWei *big.Int, description string) int {
	f.transfers = append(f.transfers, struct {
		to  string
		wei *big.Int
	}{to, rawWei})
	return len(f.transfers) - 1
}

func TestApply_NoReferralOneTransfer(t *testing.T) {
	cfg := Config{PlatformFeeRate: 0.0001, ReferrerShare: 0.7, TreasuryAddress: "0xTREASURY"}
	split := cfg.Calculate(0.02, 3000, "")
	b := &fakeBuilder{}

	info := cfg.Apply(b, "", split, 3000)

	assert.Equal(t, 1, info.FeeTransactionCount)
	assert.Len(t, b.transfers, 1)
	assert.Equal(t, "0xTREASURY", b.transfers[0].to)
}

func TestApply_ReferralTwoTransfers(t *testing.T) {
	cfg := Config{PlatformFeeRate: 0.0001, ReferrerShare: 0.7, TreasuryAddress: "0xTREASURY"}
	referral := "0x2222222222222222222222222222222222222222"
	split := cfg.Calculate(0.02, 3000, referral)
	b := &fakeBuilder{}

	info := cfg.Apply(b, referral, split, 3000)

	assert.Equal(t, 2, info.FeeTransactionCount)
	assert.Len(t, b.transfers, 2)
	assert.Equal(t, referral, b.transfers[0].to)
	assert.Equal(t, "0xTREASURY", b.transfers[1].to)
}
