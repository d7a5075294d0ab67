package engagement

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/types"
	"basepulse/native/content"
)

type mockState struct {
	data     map[string][]byte
	accounts map[common.Address]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		data:     make(map[string][]byte),
		accounts: make(map[common.Address]*types.Account),
	}
}

func (m *mockState) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok := m.data[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	return true, json.Unmarshal(data, out)
}

func (m *mockState) KVPut(key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[string(key)] = data
	return nil
}

func (m *mockState) KVDelete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *mockState) GetAccount(addr common.Address) (*types.Account, error) {
	account, ok := m.accounts[addr]
	if !ok {
		return types.NewAccount(), nil
	}
	return account.Clone(), nil
}

func (m *mockState) PutAccount(addr common.Address, account *types.Account) error {
	m.accounts[addr] = account.Clone()
	return nil
}

func (m *mockState) balance(addr common.Address) *big.Int {
	account, ok := m.accounts[addr]
	if !ok || account.Balance == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(account.Balance)
}

func (m *mockState) fund(addr common.Address, amount int64) {
	m.accounts[addr] = &types.Account{Balance: big.NewInt(amount)}
}

var (
	creatorAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	likerAddr    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	otherAddr    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	treasuryAddr = common.HexToAddress("0x00000000000000000000000000000000000000fe")
)

func newTestEngine(t *testing.T) (*Engine, *mockState) {
	t.Helper()
	state := newMockState()
	engine := NewEngine()
	engine.SetState(state)
	engine.SetTreasury(treasuryAddr)
	engine.SetMinLikeFee(big.NewInt(100))
	engine.SetNowFunc(func() int64 { return 1700000000 })
	return engine, state
}

func seedPost(t *testing.T, state *mockState, author common.Address) uint64 {
	t.Helper()
	registry := content.NewRegistry()
	registry.SetState(state)
	registry.SetNowFunc(func() int64 { return 1700000000 })
	post, err := registry.CreatePost(author, "ipfs://post")
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post.ID
}

func postOf(t *testing.T, engine *Engine, id uint64) *content.Post {
	t.Helper()
	post, err := engine.getPost(id)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	return post
}

func TestPaidLikeDistributesFee(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 1_000)

	receipt, err := engine.PaidLike(likerAddr, postID, big.NewInt(100))
	if err != nil {
		t.Fatalf("paid like: %v", err)
	}
	if receipt.CreatorReward.Int64() != 70 || receipt.TreasuryFee.Int64() != 20 || receipt.LikerReward.Int64() != 10 {
		t.Fatalf("unexpected split: %+v", receipt)
	}

	if got := state.balance(creatorAddr); got.Int64() != 70 {
		t.Fatalf("creator balance %s, want 70", got)
	}
	if got := state.balance(treasuryAddr); got.Int64() != 20 {
		t.Fatalf("treasury balance %s, want 20", got)
	}
	// Liker paid 100, got 10 back.
	if got := state.balance(likerAddr); got.Int64() != 910 {
		t.Fatalf("liker balance %s, want 910", got)
	}

	post := postOf(t, engine, postID)
	if post.LikeCount != 1 {
		t.Fatalf("likeCount %d, want 1", post.LikeCount)
	}
	kind, err := engine.LikeKindOf(postID, likerAddr)
	if err != nil || kind != LikeKindPaid {
		t.Fatalf("membership kind %v err %v", kind, err)
	}

	authorStats, err := engine.UserStats(creatorAddr)
	if err != nil {
		t.Fatal(err)
	}
	if authorStats.LikesGiven != 0 || authorStats.LikesReceived != 1 || authorStats.TotalEarnings.Int64() != 70 {
		t.Fatalf("author stats %+v", authorStats)
	}
	likerStats, err := engine.UserStats(likerAddr)
	if err != nil {
		t.Fatal(err)
	}
	if likerStats.LikesGiven != 1 || likerStats.LikesReceived != 0 || likerStats.TotalEarnings.Int64() != 10 {
		t.Fatalf("liker stats %+v", likerStats)
	}
	platform, err := engine.PlatformStats()
	if err != nil {
		t.Fatal(err)
	}
	if platform.TotalFeesCollected.Int64() != 100 || platform.TotalCreatorRewards.Int64() != 70 || platform.TotalLikerRewards.Int64() != 10 {
		t.Fatalf("platform stats %+v", platform)
	}
}

func TestPaidLikeConservesValue(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 5_000)
	state.fund(creatorAddr, 300)

	before := new(big.Int).Add(state.balance(likerAddr), state.balance(creatorAddr))
	before.Add(before, state.balance(treasuryAddr))

	// 333 leaves a floor-division remainder for the treasury.
	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(333)); err != nil {
		t.Fatalf("paid like: %v", err)
	}

	after := new(big.Int).Add(state.balance(likerAddr), state.balance(creatorAddr))
	after.Add(after, state.balance(treasuryAddr))
	if before.Cmp(after) != 0 {
		t.Fatalf("value not conserved: before=%s after=%s", before, after)
	}
}

func TestPaidLikeRejectsDuplicate(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 1_000)

	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); err != nil {
		t.Fatalf("first paid like: %v", err)
	}
	balanceBefore := state.balance(likerAddr)

	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	if state.balance(likerAddr).Cmp(balanceBefore) != 0 {
		t.Fatal("balance changed on rejected like")
	}
	if post := postOf(t, engine, postID); post.LikeCount != 1 {
		t.Fatalf("likeCount %d, want 1", post.LikeCount)
	}
	platform, _ := engine.PlatformStats()
	if platform.TotalFeesCollected.Int64() != 100 {
		t.Fatalf("platform fees %s, want 100", platform.TotalFeesCollected)
	}
}

func TestPaidLikeRejectsOwnPost(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(creatorAddr, 1_000)

	if _, err := engine.PaidLike(creatorAddr, postID, big.NewInt(100)); !errors.Is(err, ErrCannotLikeOwnPost) {
		t.Fatalf("expected ErrCannotLikeOwnPost, got %v", err)
	}
	if post := postOf(t, engine, postID); post.LikeCount != 0 {
		t.Fatal("likeCount changed")
	}
}

func TestPaidLikeRejectsLowFee(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(otherAddr, 1_000)

	if _, err := engine.PaidLike(otherAddr, postID, big.NewInt(50)); !errors.Is(err, ErrInsufficientFee) {
		t.Fatalf("expected ErrInsufficientFee, got %v", err)
	}
	if _, err := engine.PaidLike(otherAddr, postID, nil); !errors.Is(err, ErrInsufficientFee) {
		t.Fatalf("expected ErrInsufficientFee for nil amount, got %v", err)
	}
	if state.balance(otherAddr).Int64() != 1_000 {
		t.Fatal("balance changed on rejected like")
	}
	stats, _ := engine.UserStats(otherAddr)
	if stats.LikesGiven != 0 {
		t.Fatal("stats changed on rejected like")
	}
}

func TestPaidLikeRejectsUnfundedCaller(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 99)

	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestPaidLikeUnknownPost(t *testing.T) {
	engine, state := newTestEngine(t)
	state.fund(likerAddr, 1_000)
	if _, err := engine.PaidLike(likerAddr, 42, big.NewInt(100)); !errors.Is(err, content.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPaidLikeRequiresTreasury(t *testing.T) {
	engine, state := newTestEngine(t)
	engine.SetTreasury(common.Address{})
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 1_000)
	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); err == nil {
		t.Fatal("expected error with unset treasury")
	}
}

func TestFreeAndPaidLikesShareMembership(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 1_000)

	if _, err := engine.Like(likerAddr, postID); err != nil {
		t.Fatalf("free like: %v", err)
	}
	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("paid after free: expected ErrAlreadyLiked, got %v", err)
	}

	secondPost := seedPost(t, state, creatorAddr)
	if _, err := engine.PaidLike(likerAddr, secondPost, big.NewInt(100)); err != nil {
		t.Fatalf("paid like: %v", err)
	}
	if _, err := engine.Like(likerAddr, secondPost); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("free after paid: expected ErrAlreadyLiked, got %v", err)
	}
}

func TestFreeLikeCountsWithoutMoney(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)

	post, err := engine.Like(likerAddr, postID)
	if err != nil {
		t.Fatalf("free like: %v", err)
	}
	if post.LikeCount != 1 {
		t.Fatalf("likeCount %d, want 1", post.LikeCount)
	}
	likerStats, _ := engine.UserStats(likerAddr)
	authorStats, _ := engine.UserStats(creatorAddr)
	if likerStats.LikesGiven != 1 || authorStats.LikesReceived != 1 {
		t.Fatalf("stats not updated: liker=%+v author=%+v", likerStats, authorStats)
	}
	if likerStats.TotalEarnings.Sign() != 0 || authorStats.TotalEarnings.Sign() != 0 {
		t.Fatal("free like moved value")
	}
	if state.balance(likerAddr).Sign() != 0 || state.balance(creatorAddr).Sign() != 0 {
		t.Fatal("free like touched balances")
	}
}

func TestUnlikeReversesFreeLikeOnly(t *testing.T) {
	engine, state := newTestEngine(t)
	postID := seedPost(t, state, creatorAddr)
	state.fund(likerAddr, 1_000)

	if _, err := engine.Unlike(likerAddr, postID); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}

	if _, err := engine.Like(likerAddr, postID); err != nil {
		t.Fatal(err)
	}
	post, err := engine.Unlike(likerAddr, postID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if post.LikeCount != 0 {
		t.Fatalf("likeCount %d, want 0", post.LikeCount)
	}
	kind, _ := engine.LikeKindOf(postID, likerAddr)
	if kind != LikeKindNone {
		t.Fatalf("membership kind %v, want none", kind)
	}
	likerStats, _ := engine.UserStats(likerAddr)
	authorStats, _ := engine.UserStats(creatorAddr)
	if likerStats.LikesGiven != 0 || authorStats.LikesReceived != 0 {
		t.Fatalf("stats not reversed: liker=%+v author=%+v", likerStats, authorStats)
	}

	// A paid like is final.
	if _, err := engine.PaidLike(likerAddr, postID, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Unlike(likerAddr, postID); !errors.Is(err, ErrPaidLikeIrreversible) {
		t.Fatalf("expected ErrPaidLikeIrreversible, got %v", err)
	}
}

func TestBatchPaidLikeSettlesAllPosts(t *testing.T) {
	engine, state := newTestEngine(t)
	first := seedPost(t, state, creatorAddr)
	second := seedPost(t, state, otherAddr)
	state.fund(likerAddr, 1_000)

	receipts, err := engine.BatchPaidLike(likerAddr, []uint64{first, second}, big.NewInt(100), big.NewInt(200))
	if err != nil {
		t.Fatalf("batch paid like: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	platform, _ := engine.PlatformStats()
	if platform.TotalFeesCollected.Int64() != 200 {
		t.Fatalf("platform fees %s, want 200", platform.TotalFeesCollected)
	}
	// 100 paid per post, 10 back per post.
	if state.balance(likerAddr).Int64() != 820 {
		t.Fatalf("liker balance %s, want 820", state.balance(likerAddr))
	}
}

func TestBatchPaidLikeRequiresExactTotal(t *testing.T) {
	engine, state := newTestEngine(t)
	first := seedPost(t, state, creatorAddr)
	second := seedPost(t, state, otherAddr)
	state.fund(likerAddr, 1_000)

	for _, total := range []int64{150, 250} {
		_, err := engine.BatchPaidLike(likerAddr, []uint64{first, second}, big.NewInt(100), big.NewInt(total))
		if !errors.Is(err, ErrInsufficientFee) {
			t.Fatalf("total %d: expected ErrInsufficientFee, got %v", total, err)
		}
	}
	if state.balance(likerAddr).Int64() != 1_000 {
		t.Fatal("balance changed before batch validation")
	}
	if post := postOf(t, engine, first); post.LikeCount != 0 {
		t.Fatal("likes applied despite rejected batch")
	}
}

func TestBatchPaidLikeReportsFailingIndex(t *testing.T) {
	engine, state := newTestEngine(t)
	first := seedPost(t, state, creatorAddr)
	ownPost := seedPost(t, state, likerAddr)
	state.fund(likerAddr, 1_000)

	_, err := engine.BatchPaidLike(likerAddr, []uint64{first, ownPost}, big.NewInt(100), big.NewInt(200))
	if !errors.Is(err, ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
	if !errors.Is(err, ErrCannotLikeOwnPost) {
		t.Fatalf("expected wrapped ErrCannotLikeOwnPost, got %v", err)
	}
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %T", err)
	}
	if batchErr.Index != 1 || batchErr.PostID != ownPost {
		t.Fatalf("unexpected failure location: %+v", batchErr)
	}
}

func TestMinLikeFeeDefaults(t *testing.T) {
	engine := NewEngine()
	if engine.MinLikeFee().Cmp(DefaultMinLikeFee) != 0 {
		t.Fatalf("default fee %s", engine.MinLikeFee())
	}
	engine.SetMinLikeFee(big.NewInt(0))
	if engine.MinLikeFee().Cmp(DefaultMinLikeFee) != 0 {
		t.Fatal("zero fee should restore default")
	}
	engine.SetMinLikeFee(big.NewInt(42))
	if engine.MinLikeFee().Int64() != 42 {
		t.Fatalf("fee %s, want 42", engine.MinLikeFee())
	}
}
