package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"basepulse/core/types"
	"basepulse/storage"
)

func TestManagerKVRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	type record struct {
		Name  string `json:"name"`
		Count uint64 `json:"count"`
	}

	ok, err := m.KVGet([]byte("missing"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.KVPut([]byte("rec"), record{Name: "a", Count: 3}))
	var got record
	ok, err = m.KVGet([]byte("rec"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record{Name: "a", Count: 3}, got)

	require.NoError(t, m.KVDelete([]byte("rec")))
	ok, err = m.KVGet([]byte("rec"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerAccountsDefaultToZero(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	account, err := m.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, account.Balance.Sign())

	account.Balance = big.NewInt(500)
	require.NoError(t, m.PutAccount(addr, account))

	reloaded, err := m.GetAccount(addr)
	require.NoError(t, err)
	require.Equal(t, int64(500), reloaded.Balance.Int64())
}

func TestManagerRejectsNegativeBalance(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	err := m.PutAccount(addr, &types.Account{Balance: big.NewInt(-1)})
	require.Error(t, err)
}

func TestTxnIsolationAndCommit(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	require.NoError(t, m.KVPut([]byte("k"), "committed"))

	txn := m.Begin()
	require.NoError(t, txn.KVPut([]byte("k"), "staged"))
	require.NoError(t, txn.KVPut([]byte("k2"), "new"))

	// The transaction sees its own writes.
	var inTxn string
	ok, err := txn.KVGet([]byte("k"), &inTxn)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "staged", inTxn)

	// Committed state is untouched until Commit.
	var outside string
	ok, err = m.KVGet([]byte("k"), &outside)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "committed", outside)
	ok, err = m.KVGet([]byte("k2"), &outside)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, txn.Commit())

	ok, err = m.KVGet([]byte("k"), &outside)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "staged", outside)
	ok, err = m.KVGet([]byte("k2"), &outside)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTxnDiscardLeavesStateIntact(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	txn := m.Begin()
	require.NoError(t, txn.KVPut([]byte("k"), "staged"))
	require.NoError(t, txn.KVDelete([]byte("other")))
	txn.Discard()

	ok, err := m.KVGet([]byte("k"), nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Error(t, txn.KVPut([]byte("k"), "late"))
}

func TestTxnDeleteShadowsCommittedValue(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	require.NoError(t, m.KVPut([]byte("k"), "committed"))

	txn := m.Begin()
	require.NoError(t, txn.KVDelete([]byte("k")))
	ok, err := txn.KVGet([]byte("k"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, txn.Commit())
	ok, err = m.KVGet([]byte("k"), nil)
	require.NoError(t, err)
	require.False(t, ok)
}
