package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
)

var (
	// ErrPostNotFound marks lookups for unallocated post ids.
	ErrPostNotFound = errors.New("content: post not found")
	// ErrCommentNotFound marks lookups for unallocated comment ids.
	ErrCommentNotFound = errors.New("content: comment not found")
	errNilState        = errors.New("content: state not configured")
	errEmptyURI        = errors.New("content: content uri required")
)

var (
	postPrefix      = []byte("content/post/")
	commentPrefix   = []byte("content/comment/")
	authorPrefix    = []byte("content/author/")
	postTotalKey    = []byte("content/post_total")
	commentTotalKey = []byte("content/comment_total")
)

// PostKey returns the state key holding the post record for id. The
// engagement ledger shares post records through this key.
func PostKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", postPrefix, id))
}

func commentKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", commentPrefix, id))
}

func authorKey(addr common.Address) []byte {
	return append(append([]byte(nil), authorPrefix...), addr.Bytes()...)
}

// registryState abstracts the subset of state manager functionality required
// by the content registry.
type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Registry stores immutable posts and comments and their engagement counters.
type Registry struct {
	state   registryState
	emitter events.Emitter
	nowFn   func() int64
}

// NewRegistry constructs a registry with default dependencies.
func NewRegistry() *Registry {
	return &Registry{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state registryState) { r.state = state }

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (r *Registry) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

func (r *Registry) emit(evt events.Event) {
	if r == nil || evt == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}

func (r *Registry) now() int64 {
	if r == nil || r.nowFn == nil {
		return time.Now().Unix()
	}
	return r.nowFn()
}

// CreatePost registers a new immutable post. Ids are global, sequential from
// 1, and gap-free. A profile is deliberately not required; gating posting on
// profile existence is caller policy.
func (r *Registry) CreatePost(caller common.Address, contentURI string) (*Post, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(contentURI)
	if trimmed == "" {
		return nil, errEmptyURI
	}
	var total uint64
	if _, err := r.state.KVGet(postTotalKey, &total); err != nil {
		return nil, err
	}
	post := &Post{
		ID:         total + 1,
		Author:     caller,
		ContentURI: trimmed,
		CreatedAt:  r.now(),
	}
	if err := r.state.KVPut(PostKey(post.ID), post); err != nil {
		return nil, err
	}
	if err := r.state.KVPut(postTotalKey, post.ID); err != nil {
		return nil, err
	}
	var authored []uint64
	if _, err := r.state.KVGet(authorKey(caller), &authored); err != nil {
		return nil, err
	}
	authored = append(authored, post.ID)
	if err := r.state.KVPut(authorKey(caller), authored); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(PostCreatedEvent(post.ID, caller.Hex(), post.ContentURI, post.CreatedAt)))
	return post.Clone(), nil
}

// GetPost returns the post stored under id.
func (r *Registry) GetPost(id uint64) (*Post, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	post := new(Post)
	ok, err := r.state.KVGet(PostKey(id), post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// TotalPosts returns the number of created posts.
func (r *Registry) TotalPosts() (uint64, error) {
	if r == nil || r.state == nil {
		return 0, errNilState
	}
	var total uint64
	if _, err := r.state.KVGet(postTotalKey, &total); err != nil {
		return 0, err
	}
	return total, nil
}

// LatestPosts returns up to count post ids, most recent first. Ids are
// gap-free so the feed walks the counter backwards.
func (r *Registry) LatestPosts(count int) ([]uint64, error) {
	total, err := r.TotalPosts()
	if err != nil {
		return nil, err
	}
	if count <= 0 || total == 0 {
		return nil, nil
	}
	if uint64(count) > total {
		count = int(total)
	}
	ids := make([]uint64, 0, count)
	for id := total; id > total-uint64(count); id-- {
		ids = append(ids, id)
	}
	return ids, nil
}

// UserPosts returns the post ids authored by addr in insertion order.
func (r *Registry) UserPosts(addr common.Address) ([]uint64, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	var authored []uint64
	if _, err := r.state.KVGet(authorKey(addr), &authored); err != nil {
		return nil, err
	}
	return authored, nil
}

// AddComment attaches a comment to an existing post and bumps its counter.
func (r *Registry) AddComment(caller common.Address, postID uint64, contentURI string) (*Comment, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(contentURI)
	if trimmed == "" {
		return nil, errEmptyURI
	}
	post, err := r.GetPost(postID)
	if err != nil {
		return nil, err
	}
	var total uint64
	if _, err := r.state.KVGet(commentTotalKey, &total); err != nil {
		return nil, err
	}
	comment := &Comment{
		ID:         total + 1,
		PostID:     postID,
		Author:     caller,
		ContentURI: trimmed,
		CreatedAt:  r.now(),
	}
	if err := r.state.KVPut(commentKey(comment.ID), comment); err != nil {
		return nil, err
	}
	if err := r.state.KVPut(commentTotalKey, comment.ID); err != nil {
		return nil, err
	}
	post.CommentCount++
	if err := r.state.KVPut(PostKey(postID), post); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(CommentAddedEvent(comment.ID, postID, caller.Hex(), comment.ContentURI, comment.CreatedAt)))
	return comment.Clone(), nil
}

// GetComment returns the comment stored under id.
func (r *Registry) GetComment(id uint64) (*Comment, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	comment := new(Comment)
	ok, err := r.state.KVGet(commentKey(id), comment)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// Repost bumps the repost counter. Reposting the same post repeatedly is
// allowed, unlike likes.
func (r *Registry) Repost(caller common.Address, postID uint64) (*Post, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	post, err := r.GetPost(postID)
	if err != nil {
		return nil, err
	}
	post.RepostCount++
	if err := r.state.KVPut(PostKey(postID), post); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(RepostedEvent(postID, caller.Hex(), post.RepostCount, r.now())))
	return post.Clone(), nil
}
