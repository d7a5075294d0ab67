package engagement

import (
	"math/big"
	"testing"
)

func TestCalculateFeeDistributionExactSplit(t *testing.T) {
	creator, treasury, liker := CalculateFeeDistribution(big.NewInt(100))
	if creator.Int64() != 70 || treasury.Int64() != 20 || liker.Int64() != 10 {
		t.Fatalf("expected 70/20/10, got %s/%s/%s", creator, treasury, liker)
	}
}

func TestCalculateFeeDistributionRemainderToTreasury(t *testing.T) {
	// 101: creator floor(101*0.70)=70, liker floor(101*0.10)=10,
	// treasury takes the rest including the remainder.
	creator, treasury, liker := CalculateFeeDistribution(big.NewInt(101))
	if creator.Int64() != 70 || liker.Int64() != 10 {
		t.Fatalf("unexpected floors: creator=%s liker=%s", creator, liker)
	}
	if treasury.Int64() != 21 {
		t.Fatalf("expected treasury 21, got %s", treasury)
	}
}

func TestCalculateFeeDistributionSumsExactly(t *testing.T) {
	amounts := []int64{1, 2, 3, 7, 9, 10, 99, 100, 101, 12345, 1_000_000_007}
	for _, raw := range amounts {
		amount := big.NewInt(raw)
		creator, treasury, liker := CalculateFeeDistribution(amount)
		if creator.Sign() < 0 || treasury.Sign() < 0 || liker.Sign() < 0 {
			t.Fatalf("amount %d: negative share %s/%s/%s", raw, creator, treasury, liker)
		}
		sum := new(big.Int).Add(creator, treasury)
		sum = sum.Add(sum, liker)
		if sum.Cmp(amount) != 0 {
			t.Fatalf("amount %d: shares sum to %s", raw, sum)
		}
	}
}

func TestCalculateFeeDistributionLargeAmount(t *testing.T) {
	// 1000 ETH in wei exercises values past int64.
	amount, _ := new(big.Int).SetString("1000000000000000000000", 10)
	creator, treasury, liker := CalculateFeeDistribution(amount)
	sum := new(big.Int).Add(creator, treasury)
	sum = sum.Add(sum, liker)
	if sum.Cmp(amount) != 0 {
		t.Fatalf("shares sum to %s, want %s", sum, amount)
	}
	wantCreator, _ := new(big.Int).SetString("700000000000000000000", 10)
	if creator.Cmp(wantCreator) != 0 {
		t.Fatalf("creator share %s, want %s", creator, wantCreator)
	}
}

func TestCalculateFeeDistributionDegenerateInputs(t *testing.T) {
	for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		creator, treasury, liker := CalculateFeeDistribution(amount)
		if creator.Sign() != 0 || treasury.Sign() != 0 || liker.Sign() != 0 {
			t.Fatalf("expected zero shares for %v", amount)
		}
	}
}

func TestCalculateFeeDistributionIsPure(t *testing.T) {
	amount := big.NewInt(100)
	CalculateFeeDistribution(amount)
	if amount.Int64() != 100 {
		t.Fatalf("input mutated: %s", amount)
	}
}
