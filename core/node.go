package core

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
	"basepulse/core/state"
	"basepulse/core/types"
	"basepulse/native/content"
	"basepulse/native/engagement"
	"basepulse/native/profile"
	"basepulse/observability/metrics"
	"basepulse/storage"
)

// Node is the single entry point into the ledger. Every mutating operation
// runs under one writer lock inside one state transaction: either all of its
// effects and events commit, or none do. Reads go straight to committed
// state.
type Node struct {
	mu       sync.Mutex
	state    *state.Manager
	recorder *events.Recorder
	metrics  *metrics.SocialMetrics

	treasury   common.Address
	minLikeFee *big.Int
	nowFn      func() int64
}

// Option customises node construction.
type Option func(*Node)

// WithTreasury routes treasury shares to addr.
func WithTreasury(addr common.Address) Option {
	return func(n *Node) { n.treasury = addr }
}

// WithMinLikeFee overrides the paid-like fee floor.
func WithMinLikeFee(fee *big.Int) Option {
	return func(n *Node) {
		if fee != nil && fee.Sign() > 0 {
			n.minLikeFee = new(big.Int).Set(fee)
		}
	}
}

// WithNowFunc overrides the time source for deterministic testing.
func WithNowFunc(now func() int64) Option {
	return func(n *Node) {
		if now != nil {
			n.nowFn = now
		}
	}
}

// NewNode wires the ledger on top of the provided database.
func NewNode(db storage.Database, opts ...Option) *Node {
	n := &Node{
		state:      state.NewManager(db),
		recorder:   events.NewRecorder(),
		metrics:    metrics.Social(),
		minLikeFee: new(big.Int).Set(engagement.DefaultMinLikeFee),
		nowFn:      func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Events returns up to count most recent committed events, oldest first.
func (n *Node) Events(count int) []*types.Event {
	return n.recorder.Tail(count)
}

// MinLikeFee returns the configured paid-like fee floor.
func (n *Node) MinLikeFee() *big.Int {
	return new(big.Int).Set(n.minLikeFee)
}

// Treasury returns the configured treasury address.
func (n *Node) Treasury() common.Address { return n.treasury }

func (n *Node) profileRegistry(s state.KV, emitter events.Emitter) *profile.Registry {
	registry := profile.NewRegistry()
	registry.SetState(s)
	registry.SetEmitter(emitter)
	registry.SetNowFunc(n.nowFn)
	return registry
}

func (n *Node) contentRegistry(s state.KV, emitter events.Emitter) *content.Registry {
	registry := content.NewRegistry()
	registry.SetState(s)
	registry.SetEmitter(emitter)
	registry.SetNowFunc(n.nowFn)
	return registry
}

func (n *Node) engagementEngine(s state.KV, emitter events.Emitter) *engagement.Engine {
	engine := engagement.NewEngine()
	engine.SetState(s)
	engine.SetEmitter(emitter)
	engine.SetNowFunc(n.nowFn)
	engine.SetTreasury(n.treasury)
	engine.SetMinLikeFee(n.minLikeFee)
	return engine
}

// write runs fn inside the writer lock and a fresh transaction. Events
// emitted by fn stay buffered until the transaction commits.
func (n *Node) write(fn func(txn *state.Txn, buf *events.Buffer) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	txn := n.state.Begin()
	buf := &events.Buffer{}
	if err := fn(txn, buf); err != nil {
		txn.Discard()
		buf.Discard()
		return err
	}
	if err := txn.Commit(); err != nil {
		buf.Discard()
		return err
	}
	buf.Flush(n.recorder)
	return nil
}

// --- profiles ---

// CreateProfile mints the caller's soulbound profile.
func (n *Node) CreateProfile(caller common.Address, metadataURI string) (*profile.Record, error) {
	var record *profile.Record
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		record, err = n.profileRegistry(txn, buf).CreateProfile(caller, metadataURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.ProfileCreated()
	return record, nil
}

// UpdateProfile replaces the caller's profile metadata.
func (n *Node) UpdateProfile(caller common.Address, metadataURI string) (*profile.Record, error) {
	var record *profile.Record
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		record, err = n.profileRegistry(txn, buf).UpdateProfile(caller, metadataURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LinkFarcaster binds a Farcaster id to the caller's profile.
func (n *Node) LinkFarcaster(caller common.Address, fid uint64) (*profile.Record, error) {
	var record *profile.Record
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		record, err = n.profileRegistry(txn, buf).LinkFarcaster(caller, fid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// TransferProfile always fails: profiles are soulbound.
func (n *Node) TransferProfile(from, to common.Address, id uint64) error {
	return profile.NewRegistry().Transfer(from, to, id)
}

// GetProfile returns the profile record for addr.
func (n *Node) GetProfile(addr common.Address) (*profile.Record, error) {
	return n.profileRegistry(n.state, nil).Get(addr)
}

// HasProfile reports whether addr owns a profile.
func (n *Node) HasProfile(addr common.Address) (bool, error) {
	return n.profileRegistry(n.state, nil).HasProfile(addr)
}

// ProfileOwnerByFid resolves a linked Farcaster id.
func (n *Node) ProfileOwnerByFid(fid uint64) (common.Address, bool, error) {
	return n.profileRegistry(n.state, nil).OwnerByFid(fid)
}

// TotalProfiles returns the number of minted profiles.
func (n *Node) TotalProfiles() (uint64, error) {
	return n.profileRegistry(n.state, nil).TotalProfiles()
}

// --- content ---

// CreatePost registers a new immutable post.
func (n *Node) CreatePost(caller common.Address, contentURI string) (*content.Post, error) {
	var post *content.Post
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		post, err = n.contentRegistry(txn, buf).CreatePost(caller, contentURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.PostCreated()
	return post, nil
}

// AddComment attaches a comment to an existing post.
func (n *Node) AddComment(caller common.Address, postID uint64, contentURI string) (*content.Comment, error) {
	var comment *content.Comment
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		comment, err = n.contentRegistry(txn, buf).AddComment(caller, postID, contentURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Repost bumps the repost counter of an existing post.
func (n *Node) Repost(caller common.Address, postID uint64) (*content.Post, error) {
	var post *content.Post
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		post, err = n.contentRegistry(txn, buf).Repost(caller, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns the post stored under id.
func (n *Node) GetPost(id uint64) (*content.Post, error) {
	return n.contentRegistry(n.state, nil).GetPost(id)
}

// GetComment returns the comment stored under id.
func (n *Node) GetComment(id uint64) (*content.Comment, error) {
	return n.contentRegistry(n.state, nil).GetComment(id)
}

// LatestPosts returns up to count post ids, most recent first.
func (n *Node) LatestPosts(count int) ([]uint64, error) {
	return n.contentRegistry(n.state, nil).LatestPosts(count)
}

// UserPosts returns the post ids authored by addr in insertion order.
func (n *Node) UserPosts(addr common.Address) ([]uint64, error) {
	return n.contentRegistry(n.state, nil).UserPosts(addr)
}

// TotalPosts returns the number of created posts.
func (n *Node) TotalPosts() (uint64, error) {
	return n.contentRegistry(n.state, nil).TotalPosts()
}

// --- engagement ---

// Like records a free like on a post.
func (n *Node) Like(caller common.Address, postID uint64) (*content.Post, error) {
	var post *content.Post
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		post, err = n.engagementEngine(txn, buf).Like(caller, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.FreeLike()
	return post, nil
}

// Unlike reverses a free like.
func (n *Node) Unlike(caller common.Address, postID uint64) (*content.Post, error) {
	var post *content.Post
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		post, err = n.engagementEngine(txn, buf).Unlike(caller, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// PaidLike validates and settles a paid like atomically.
func (n *Node) PaidLike(caller common.Address, postID uint64, amount *big.Int) (*engagement.Receipt, error) {
	var receipt *engagement.Receipt
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		receipt, err = n.engagementEngine(txn, buf).PaidLike(caller, postID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.PaidLike(receipt.TotalFee)
	return receipt, nil
}

// BatchPaidLike settles one paid like per post id; the whole batch commits
// or none of it does.
func (n *Node) BatchPaidLike(caller common.Address, postIDs []uint64, amountPerPost, totalPaid *big.Int) ([]*engagement.Receipt, error) {
	var receipts []*engagement.Receipt
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		var err error
		receipts, err = n.engagementEngine(txn, buf).BatchPaidLike(caller, postIDs, amountPerPost, totalPaid)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, receipt := range receipts {
		n.metrics.PaidLike(receipt.TotalFee)
	}
	return receipts, nil
}

// HasLiked reports whether addr is in the post's like-membership set.
func (n *Node) HasLiked(postID uint64, addr common.Address) (bool, error) {
	return n.engagementEngine(n.state, nil).HasLiked(postID, addr)
}

// UserStats returns the accumulated engagement accounting for addr.
func (n *Node) UserStats(addr common.Address) (*engagement.UserStats, error) {
	return n.engagementEngine(n.state, nil).UserStats(addr)
}

// PlatformStats returns the ledger-wide paid-like totals.
func (n *Node) PlatformStats() (*engagement.PlatformStats, error) {
	return n.engagementEngine(n.state, nil).PlatformStats()
}

// GetBalance returns the spendable balance held by addr.
func (n *Node) GetBalance(addr common.Address) (*big.Int, error) {
	account, err := n.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(account.Balance), nil
}
