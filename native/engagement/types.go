package engagement

import "math/big"

// LikeKind tags a like-membership entry. Free and paid likes share one
// namespace, so an address can hold at most one kind per post.
type LikeKind uint8

const (
	// LikeKindNone means the address never liked the post.
	LikeKindNone LikeKind = iota
	// LikeKindFree is a plain like; reversible.
	LikeKindFree
	// LikeKindPaid is a paid like; irreversible because funds have moved.
	LikeKindPaid
)

// UserStats accumulates per-address engagement accounting. TotalEarnings
// covers both creator shares and liker rebates.
type UserStats struct {
	LikesGiven    uint64   `json:"likesGiven"`
	LikesReceived uint64   `json:"likesReceived"`
	TotalEarnings *big.Int `json:"totalEarnings"`
}

// NewUserStats returns zeroed stats.
func NewUserStats() *UserStats {
	return &UserStats{TotalEarnings: big.NewInt(0)}
}

// Normalize replaces nil big.Int fields.
func (s *UserStats) Normalize() *UserStats {
	if s == nil {
		return NewUserStats()
	}
	if s.TotalEarnings == nil {
		s.TotalEarnings = big.NewInt(0)
	}
	return s
}

// Clone returns a deep copy of the stats.
func (s *UserStats) Clone() *UserStats {
	if s == nil {
		return NewUserStats()
	}
	clone := &UserStats{LikesGiven: s.LikesGiven, LikesReceived: s.LikesReceived, TotalEarnings: big.NewInt(0)}
	if s.TotalEarnings != nil {
		clone.TotalEarnings = new(big.Int).Set(s.TotalEarnings)
	}
	return clone
}

// PlatformStats accumulates ledger-wide paid-like accounting. The treasury's
// running take is the complement: fees - creator rewards - liker rewards.
type PlatformStats struct {
	TotalFeesCollected  *big.Int `json:"totalFeesCollected"`
	TotalCreatorRewards *big.Int `json:"totalCreatorRewards"`
	TotalLikerRewards   *big.Int `json:"totalLikerRewards"`
}

// NewPlatformStats returns zeroed platform totals.
func NewPlatformStats() *PlatformStats {
	return &PlatformStats{
		TotalFeesCollected:  big.NewInt(0),
		TotalCreatorRewards: big.NewInt(0),
		TotalLikerRewards:   big.NewInt(0),
	}
}

// Normalize replaces nil big.Int fields.
func (s *PlatformStats) Normalize() *PlatformStats {
	if s == nil {
		return NewPlatformStats()
	}
	if s.TotalFeesCollected == nil {
		s.TotalFeesCollected = big.NewInt(0)
	}
	if s.TotalCreatorRewards == nil {
		s.TotalCreatorRewards = big.NewInt(0)
	}
	if s.TotalLikerRewards == nil {
		s.TotalLikerRewards = big.NewInt(0)
	}
	return s
}

// Clone returns a deep copy of the platform totals.
func (s *PlatformStats) Clone() *PlatformStats {
	if s == nil {
		return NewPlatformStats()
	}
	clone := NewPlatformStats()
	if s.TotalFeesCollected != nil {
		clone.TotalFeesCollected = new(big.Int).Set(s.TotalFeesCollected)
	}
	if s.TotalCreatorRewards != nil {
		clone.TotalCreatorRewards = new(big.Int).Set(s.TotalCreatorRewards)
	}
	if s.TotalLikerRewards != nil {
		clone.TotalLikerRewards = new(big.Int).Set(s.TotalLikerRewards)
	}
	return clone
}
