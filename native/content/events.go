package content

import (
	"fmt"

	"basepulse/core/types"
)

const (
	// EventTypePostCreated is emitted when a post is registered.
	EventTypePostCreated = "content.post_created"
	// EventTypeCommentAdded is emitted when a comment lands on a post.
	EventTypeCommentAdded = "content.comment_added"
	// EventTypeReposted is emitted when a post is reposted.
	EventTypeReposted = "content.reposted"
)

// PostCreatedEvent returns the structured payload for post registrations.
func PostCreatedEvent(postID uint64, author string, contentURI string, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypePostCreated,
		Attributes: map[string]string{
			"postId":     fmt.Sprintf("%d", postID),
			"author":     author,
			"contentUri": contentURI,
			"timestamp":  fmt.Sprintf("%d", timestamp),
		},
	}
}

// CommentAddedEvent returns the structured payload for new comments.
func CommentAddedEvent(commentID, postID uint64, author string, contentURI string, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeCommentAdded,
		Attributes: map[string]string{
			"commentId":  fmt.Sprintf("%d", commentID),
			"postId":     fmt.Sprintf("%d", postID),
			"author":     author,
			"contentUri": contentURI,
			"timestamp":  fmt.Sprintf("%d", timestamp),
		},
	}
}

// RepostedEvent returns the structured payload for reposts.
func RepostedEvent(postID uint64, reposter string, repostCount uint64, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeReposted,
		Attributes: map[string]string{
			"postId":      fmt.Sprintf("%d", postID),
			"reposter":    reposter,
			"repostCount": fmt.Sprintf("%d", repostCount),
			"timestamp":   fmt.Sprintf("%d", timestamp),
		},
	}
}
