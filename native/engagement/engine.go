package engagement

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
	"basepulse/core/types"
	"basepulse/native/content"
)

var (
	// ErrAlreadyLiked marks duplicate like attempts, free or paid.
	ErrAlreadyLiked = errors.New("engagement: already liked")
	// ErrNotLiked marks unlike attempts without a prior like.
	ErrNotLiked = errors.New("engagement: not liked")
	// ErrCannotLikeOwnPost rejects paid self-engagement.
	ErrCannotLikeOwnPost = errors.New("engagement: cannot like own post")
	// ErrInsufficientFee marks payments below the configured floor.
	ErrInsufficientFee = errors.New("engagement: insufficient fee")
	// ErrInsufficientFunds marks callers whose balance cannot cover the fee.
	ErrInsufficientFunds = errors.New("engagement: insufficient balance")
	// ErrPaidLikeIrreversible rejects unliking a paid like; funds already moved.
	ErrPaidLikeIrreversible = errors.New("engagement: paid like cannot be reversed")
	// ErrBatchFailed wraps the first failure inside a batch paid like.
	ErrBatchFailed = errors.New("engagement: batch operation failed")
	errNilState    = errors.New("engagement: state not configured")
	errNoTreasury  = errors.New("engagement: treasury not configured")
	errEmptyBatch  = errors.New("engagement: batch requires at least one post")
)

// BatchError reports which member of a batch paid like failed and why.
type BatchError struct {
	Index  int
	PostID uint64
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("engagement: batch operation failed at index %d (post %d): %v", e.Index, e.PostID, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Is lets callers match a BatchError against ErrBatchFailed.
func (e *BatchError) Is(target error) bool { return target == ErrBatchFailed }

var (
	likePrefix  = []byte("engagement/like/")
	statsPrefix = []byte("engagement/stats/")
	platformKey = []byte("engagement/platform")
)

func likeKey(postID uint64, addr common.Address) []byte {
	return []byte(fmt.Sprintf("%s%d/%x", likePrefix, postID, addr.Bytes()))
}

func statsKey(addr common.Address) []byte {
	return append(append([]byte(nil), statsPrefix...), addr.Bytes()...)
}

// engineState is the slice of state manager functionality the ledger needs.
// Post records are shared with the content registry through content.PostKey.
type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	GetAccount(addr common.Address) (*types.Account, error)
	PutAccount(addr common.Address, account *types.Account) error
}

// Engine validates likes and executes the paid-like fee distribution. It owns
// the like-membership set, so free and paid likes stay mutually exclusive per
// (post, address). Callers are expected to run each operation inside one
// state transaction; the engine never leaves a checked failure half-applied.
type Engine struct {
	state      engineState
	emitter    events.Emitter
	nowFn      func() int64
	treasury   common.Address
	minLikeFee *big.Int
}

// NewEngine constructs an engagement engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:    events.NoopEmitter{},
		nowFn:      func() int64 { return time.Now().Unix() },
		minLikeFee: new(big.Int).Set(DefaultMinLikeFee),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetTreasury configures the account receiving the treasury share.
func (e *Engine) SetTreasury(addr common.Address) { e.treasury = addr }

// SetMinLikeFee overrides the fee floor. Nil or non-positive values restore
// the default.
func (e *Engine) SetMinLikeFee(fee *big.Int) {
	if fee == nil || fee.Sign() <= 0 {
		e.minLikeFee = new(big.Int).Set(DefaultMinLikeFee)
		return
	}
	e.minLikeFee = new(big.Int).Set(fee)
}

// MinLikeFee returns the configured fee floor.
func (e *Engine) MinLikeFee() *big.Int {
	if e == nil || e.minLikeFee == nil {
		return new(big.Int).Set(DefaultMinLikeFee)
	}
	return new(big.Int).Set(e.minLikeFee)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) getPost(postID uint64) (*content.Post, error) {
	post := new(content.Post)
	ok, err := e.state.KVGet(content.PostKey(postID), post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, content.ErrPostNotFound
	}
	return post, nil
}

func (e *Engine) putPost(post *content.Post) error {
	return e.state.KVPut(content.PostKey(post.ID), post)
}

// LikeKindOf reports how addr engaged the post, if at all.
func (e *Engine) LikeKindOf(postID uint64, addr common.Address) (LikeKind, error) {
	if e == nil || e.state == nil {
		return LikeKindNone, errNilState
	}
	var kind LikeKind
	ok, err := e.state.KVGet(likeKey(postID, addr), &kind)
	if err != nil {
		return LikeKindNone, err
	}
	if !ok {
		return LikeKindNone, nil
	}
	return kind, nil
}

// HasLiked reports whether addr is in the post's like-membership set.
func (e *Engine) HasLiked(postID uint64, addr common.Address) (bool, error) {
	kind, err := e.LikeKindOf(postID, addr)
	if err != nil {
		return false, err
	}
	return kind != LikeKindNone, nil
}

func (e *Engine) getStats(addr common.Address) (*UserStats, error) {
	stats := new(UserStats)
	ok, err := e.state.KVGet(statsKey(addr), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewUserStats(), nil
	}
	return stats.Normalize(), nil
}

func (e *Engine) putStats(addr common.Address, stats *UserStats) error {
	return e.state.KVPut(statsKey(addr), stats.Normalize())
}

func (e *Engine) getPlatform() (*PlatformStats, error) {
	stats := new(PlatformStats)
	ok, err := e.state.KVGet(platformKey, stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewPlatformStats(), nil
	}
	return stats.Normalize(), nil
}

// UserStats returns the accumulated engagement accounting for addr.
func (e *Engine) UserStats(addr common.Address) (*UserStats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	stats, err := e.getStats(addr)
	if err != nil {
		return nil, err
	}
	return stats.Clone(), nil
}

// PlatformStats returns the ledger-wide paid-like totals.
func (e *Engine) PlatformStats() (*PlatformStats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	stats, err := e.getPlatform()
	if err != nil {
		return nil, err
	}
	return stats.Clone(), nil
}

// Like records a free like. Free and paid likes share one membership set, so
// a post already paid-liked by caller rejects with ErrAlreadyLiked.
func (e *Engine) Like(caller common.Address, postID uint64) (*content.Post, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	post, err := e.getPost(postID)
	if err != nil {
		return nil, err
	}
	kind, err := e.LikeKindOf(postID, caller)
	if err != nil {
		return nil, err
	}
	if kind != LikeKindNone {
		return nil, ErrAlreadyLiked
	}
	if err := e.state.KVPut(likeKey(postID, caller), LikeKindFree); err != nil {
		return nil, err
	}
	post.LikeCount++
	if err := e.putPost(post); err != nil {
		return nil, err
	}
	callerStats, err := e.getStats(caller)
	if err != nil {
		return nil, err
	}
	callerStats.LikesGiven++
	if err := e.putStats(caller, callerStats); err != nil {
		return nil, err
	}
	authorStats, err := e.getStats(post.Author)
	if err != nil {
		return nil, err
	}
	authorStats.LikesReceived++
	if err := e.putStats(post.Author, authorStats); err != nil {
		return nil, err
	}
	e.emit(events.Wrap(LikedEvent(postID, caller.Hex(), post.Author.Hex(), post.LikeCount, e.now())))
	return post.Clone(), nil
}

// Unlike reverses a free like. Paid likes are final: the fee has already been
// distributed.
func (e *Engine) Unlike(caller common.Address, postID uint64) (*content.Post, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	post, err := e.getPost(postID)
	if err != nil {
		return nil, err
	}
	kind, err := e.LikeKindOf(postID, caller)
	if err != nil {
		return nil, err
	}
	switch kind {
	case LikeKindNone:
		return nil, ErrNotLiked
	case LikeKindPaid:
		return nil, ErrPaidLikeIrreversible
	}
	if err := e.state.KVDelete(likeKey(postID, caller)); err != nil {
		return nil, err
	}
	if post.LikeCount > 0 {
		post.LikeCount--
	}
	if err := e.putPost(post); err != nil {
		return nil, err
	}
	callerStats, err := e.getStats(caller)
	if err != nil {
		return nil, err
	}
	if callerStats.LikesGiven > 0 {
		callerStats.LikesGiven--
	}
	if err := e.putStats(caller, callerStats); err != nil {
		return nil, err
	}
	authorStats, err := e.getStats(post.Author)
	if err != nil {
		return nil, err
	}
	if authorStats.LikesReceived > 0 {
		authorStats.LikesReceived--
	}
	if err := e.putStats(post.Author, authorStats); err != nil {
		return nil, err
	}
	e.emit(events.Wrap(UnlikedEvent(postID, caller.Hex(), post.Author.Hex(), post.LikeCount, e.now())))
	return post.Clone(), nil
}

// Receipt summarises a settled paid like.
type Receipt struct {
	PostID        uint64         `json:"postId"`
	Liker         common.Address `json:"liker"`
	Creator       common.Address `json:"creator"`
	TotalFee      *big.Int       `json:"totalFee"`
	CreatorReward *big.Int       `json:"creatorReward"`
	LikerReward   *big.Int       `json:"likerReward"`
	TreasuryFee   *big.Int       `json:"treasuryFee"`
	Timestamp     int64          `json:"timestamp"`
}

// PaidLike validates and settles a paid like: membership, counters, the
// 70/20/10 balance transfers, per-user stats and platform totals. The checks
// run in order: existence, self-like, duplicate, fee floor, funds.
func (e *Engine) PaidLike(caller common.Address, postID uint64, amount *big.Int) (*Receipt, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(e.treasury) {
		return nil, errNoTreasury
	}
	post, err := e.getPost(postID)
	if err != nil {
		return nil, err
	}
	if post.Author == caller {
		return nil, ErrCannotLikeOwnPost
	}
	kind, err := e.LikeKindOf(postID, caller)
	if err != nil {
		return nil, err
	}
	if kind != LikeKindNone {
		return nil, ErrAlreadyLiked
	}
	if amount == nil || amount.Cmp(e.minLikeFee) < 0 {
		return nil, ErrInsufficientFee
	}

	creatorShare, treasuryShare, likerShare := CalculateFeeDistribution(amount)

	callerAccount, err := e.state.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if callerAccount.Balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}
	callerAccount.Balance = new(big.Int).Sub(callerAccount.Balance, amount)
	if err := e.state.PutAccount(caller, callerAccount); err != nil {
		return nil, err
	}
	if err := e.credit(post.Author, creatorShare); err != nil {
		return nil, err
	}
	if err := e.credit(e.treasury, treasuryShare); err != nil {
		return nil, err
	}
	if err := e.credit(caller, likerShare); err != nil {
		return nil, err
	}

	if err := e.state.KVPut(likeKey(postID, caller), LikeKindPaid); err != nil {
		return nil, err
	}
	post.LikeCount++
	if err := e.putPost(post); err != nil {
		return nil, err
	}

	authorStats, err := e.getStats(post.Author)
	if err != nil {
		return nil, err
	}
	authorStats.LikesReceived++
	authorStats.TotalEarnings = new(big.Int).Add(authorStats.TotalEarnings, creatorShare)
	if err := e.putStats(post.Author, authorStats); err != nil {
		return nil, err
	}
	callerStats, err := e.getStats(caller)
	if err != nil {
		return nil, err
	}
	callerStats.LikesGiven++
	callerStats.TotalEarnings = new(big.Int).Add(callerStats.TotalEarnings, likerShare)
	if err := e.putStats(caller, callerStats); err != nil {
		return nil, err
	}

	platform, err := e.getPlatform()
	if err != nil {
		return nil, err
	}
	platform.TotalFeesCollected = new(big.Int).Add(platform.TotalFeesCollected, amount)
	platform.TotalCreatorRewards = new(big.Int).Add(platform.TotalCreatorRewards, creatorShare)
	platform.TotalLikerRewards = new(big.Int).Add(platform.TotalLikerRewards, likerShare)
	if err := e.state.KVPut(platformKey, platform); err != nil {
		return nil, err
	}

	receipt := &Receipt{
		PostID:        postID,
		Liker:         caller,
		Creator:       post.Author,
		TotalFee:      new(big.Int).Set(amount),
		CreatorReward: creatorShare,
		LikerReward:   likerShare,
		TreasuryFee:   treasuryShare,
		Timestamp:     e.now(),
	}
	e.emit(events.Wrap(PaidLikeEvent(receipt)))
	return receipt, nil
}

// BatchPaidLike settles one paid like per post id, in order. totalPaid must
// cover amountPerPost times the batch size exactly; any member failure aborts
// the whole batch with a BatchError before the caller commits.
func (e *Engine) BatchPaidLike(caller common.Address, postIDs []uint64, amountPerPost, totalPaid *big.Int) ([]*Receipt, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if len(postIDs) == 0 {
		return nil, errEmptyBatch
	}
	if amountPerPost == nil || totalPaid == nil {
		return nil, ErrInsufficientFee
	}
	required := new(big.Int).Mul(amountPerPost, big.NewInt(int64(len(postIDs))))
	if totalPaid.Cmp(required) != 0 {
		return nil, ErrInsufficientFee
	}
	receipts := make([]*Receipt, 0, len(postIDs))
	for i, postID := range postIDs {
		receipt, err := e.PaidLike(caller, postID, amountPerPost)
		if err != nil {
			return nil, &BatchError{Index: i, PostID: postID, Err: err}
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (e *Engine) credit(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	account, err := e.state.GetAccount(addr)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	return e.state.PutAccount(addr, account)
}

func isZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
