package content

import "github.com/ethereum/go-ethereum/common"

// Post is an immutable published item with mutable engagement counters.
// Author, ContentURI and CreatedAt never change after creation.
type Post struct {
	ID           uint64         `json:"id"`
	Author       common.Address `json:"author"`
	ContentURI   string         `json:"contentUri"`
	CreatedAt    int64          `json:"createdAt"`
	LikeCount    uint64         `json:"likeCount"`
	CommentCount uint64         `json:"commentCount"`
	RepostCount  uint64         `json:"repostCount"`
}

// Clone returns a copy of the post.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Comment references a parent post. Comments share one global monotonic
// counter, separate from post ids.
type Comment struct {
	ID         uint64         `json:"id"`
	PostID     uint64         `json:"postId"`
	Author     common.Address `json:"author"`
	ContentURI string         `json:"contentUri"`
	CreatedAt  int64          `json:"createdAt"`
}

// Clone returns a copy of the comment.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
