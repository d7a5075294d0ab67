package engagement

import (
	"fmt"

	"basepulse/core/types"
)

const (
	// EventTypeLiked is emitted for free likes.
	EventTypeLiked = "engagement.liked"
	// EventTypeUnliked is emitted when a free like is reversed.
	EventTypeUnliked = "engagement.unliked"
	// EventTypePaidLike is emitted for settled paid likes.
	EventTypePaidLike = "engagement.paid_like"
)

// LikedEvent returns the structured payload for free likes.
func LikedEvent(postID uint64, liker, creator string, likeCount uint64, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeLiked,
		Attributes: map[string]string{
			"postId":    fmt.Sprintf("%d", postID),
			"liker":     liker,
			"creator":   creator,
			"likeCount": fmt.Sprintf("%d", likeCount),
			"timestamp": fmt.Sprintf("%d", timestamp),
		},
	}
}

// UnlikedEvent returns the structured payload for reversed free likes.
func UnlikedEvent(postID uint64, liker, creator string, likeCount uint64, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeUnliked,
		Attributes: map[string]string{
			"postId":    fmt.Sprintf("%d", postID),
			"liker":     liker,
			"creator":   creator,
			"likeCount": fmt.Sprintf("%d", likeCount),
			"timestamp": fmt.Sprintf("%d", timestamp),
		},
	}
}

// PaidLikeEvent returns the structured payload for a settled paid like.
func PaidLikeEvent(receipt *Receipt) *types.Event {
	if receipt == nil {
		return &types.Event{Type: EventTypePaidLike, Attributes: map[string]string{}}
	}
	return &types.Event{
		Type: EventTypePaidLike,
		Attributes: map[string]string{
			"postId":        fmt.Sprintf("%d", receipt.PostID),
			"liker":         receipt.Liker.Hex(),
			"creator":       receipt.Creator.Hex(),
			"totalFee":      receipt.TotalFee.String(),
			"creatorReward": receipt.CreatorReward.String(),
			"likerReward":   receipt.LikerReward.String(),
			"treasuryFee":   receipt.TreasuryFee.String(),
			"timestamp":     fmt.Sprintf("%d", receipt.Timestamp),
		},
	}
}
