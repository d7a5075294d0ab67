package state

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/types"
	"basepulse/storage"
)

var accountPrefix = []byte("account/")

// KV is the mutable view handed to the ledger engines. Both the Manager and
// an in-flight Txn satisfy it, so engines stay agnostic of transaction
// boundaries.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	GetAccount(addr common.Address) (*types.Account, error)
	PutAccount(addr common.Address, account *types.Account) error
}

// Manager mediates all ledger state access over a storage.Database, encoding
// records as JSON.
type Manager struct {
	db storage.Database
}

// NewManager wraps the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func accountKey(addr common.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), addr.Bytes()...)
}

func encode(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("state: encode: %w", err)
	}
	return data, nil
}

func decode(data []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("state: decode: %w", err)
	}
	return nil
}

// KVGet retrieves the value stored under key into out. The boolean reports
// whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("state: key must not be empty")
	}
	data, ok, err := m.db.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return true, decode(data, out)
}

// KVPut stores value under key as JSON.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, data)
}

// KVDelete removes the value stored under key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	return m.db.Delete(key)
}

// GetAccount loads the account for addr, returning a zero-balance account for
// addresses that never held value.
func (m *Manager) GetAccount(addr common.Address) (*types.Account, error) {
	return getAccount(m, addr)
}

// PutAccount persists the account record for addr.
func (m *Manager) PutAccount(addr common.Address, account *types.Account) error {
	return putAccount(m, addr, account)
}

func getAccount(kv KV, addr common.Address) (*types.Account, error) {
	account := new(types.Account)
	ok, err := kv.KVGet(accountKey(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	return account.Normalize(), nil
}

func putAccount(kv KV, addr common.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	if account.Balance != nil && account.Balance.Sign() < 0 {
		return fmt.Errorf("state: negative balance for %s", addr.Hex())
	}
	return kv.KVPut(accountKey(addr), account.Normalize())
}

// Begin opens a transaction whose writes stay invisible until Commit.
func (m *Manager) Begin() *Txn {
	return &Txn{manager: m, batch: storage.NewBatch()}
}

// Txn overlays staged writes on top of committed state. Reads observe the
// transaction's own writes; nothing reaches the database before Commit.
type Txn struct {
	manager *Manager
	batch   *storage.Batch
	done    bool
}

// KVGet reads through the staged overlay into committed state.
func (t *Txn) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("state: key must not be empty")
	}
	if data, staged, deleted := t.batch.Get(key); staged {
		if deleted {
			return false, nil
		}
		return true, decode(data, out)
	}
	return t.manager.KVGet(key, out)
}

// KVPut stages a write visible to later reads in this transaction.
func (t *Txn) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	t.batch.Put(key, data)
	return nil
}

// KVDelete stages a removal.
func (t *Txn) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	t.batch.Delete(key)
	return nil
}

// GetAccount implements KV within the transaction overlay.
func (t *Txn) GetAccount(addr common.Address) (*types.Account, error) {
	return getAccount(t, addr)
}

// PutAccount implements KV within the transaction overlay.
func (t *Txn) PutAccount(addr common.Address, account *types.Account) error {
	return putAccount(t, addr, account)
}

// Commit applies every staged mutation atomically.
func (t *Txn) Commit() error {
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	t.done = true
	if t.batch.Len() == 0 {
		return nil
	}
	return t.manager.db.Write(t.batch)
}

// Discard drops all staged mutations.
func (t *Txn) Discard() {
	if t == nil {
		return
	}
	t.done = true
	t.batch = storage.NewBatch()
}
