package engagement

import "math/big"

const (
	creatorShareBps  = 7_000
	treasuryShareBps = 2_000
	likerShareBps    = 1_000
	bpsDenominator   = 10_000
)

// DefaultMinLikeFee is the process-wide default fee floor: 0.0001 of the
// native unit, in wei.
var DefaultMinLikeFee = big.NewInt(100_000_000_000_000)

// CalculateFeeDistribution splits a paid-like fee 70/20/10 between creator,
// treasury and liker using floor division. Any rounding remainder goes to the
// treasury so the three shares always sum exactly to amount. The function is
// pure; callers use it to preview splits before paying.
func CalculateFeeDistribution(amount *big.Int) (creatorShare, treasuryShare, likerShare *big.Int) {
	creatorShare = big.NewInt(0)
	treasuryShare = big.NewInt(0)
	likerShare = big.NewInt(0)
	if amount == nil || amount.Sign() <= 0 {
		return creatorShare, treasuryShare, likerShare
	}
	denom := big.NewInt(bpsDenominator)
	creatorShare = new(big.Int).Mul(amount, big.NewInt(creatorShareBps))
	creatorShare = creatorShare.Div(creatorShare, denom)
	likerShare = new(big.Int).Mul(amount, big.NewInt(likerShareBps))
	likerShare = likerShare.Div(likerShare, denom)
	treasuryShare = new(big.Int).Sub(amount, creatorShare)
	treasuryShare = treasuryShare.Sub(treasuryShare, likerShare)
	return creatorShare, treasuryShare, likerShare
}
