package storage

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// Database is a generic interface for a key-value store. It allows the ledger
// to run against any backend (in-memory for tests, persistent for a node).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, bool, error)
	Delete(key []byte) error
	// Write applies the batch atomically: either every staged mutation
	// lands or none does.
	Write(batch *Batch) error
	Close() error
}

// Batch stages a set of mutations that must be applied together.
type Batch struct {
	puts    map[string][]byte
	deletes map[string]struct{}
}

// NewBatch returns an empty mutation batch.
func NewBatch() *Batch {
	return &Batch{
		puts:    make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// Put stages a key-value write. A later Put for the same key wins.
func (b *Batch) Put(key, value []byte) {
	delete(b.deletes, string(key))
	b.puts[string(key)] = append([]byte(nil), value...)
}

// Delete stages a key removal.
func (b *Batch) Delete(key []byte) {
	delete(b.puts, string(key))
	b.deletes[string(key)] = struct{}{}
}

// Get reports the staged value for key, if any. The boolean pair tells the
// caller whether the batch has an opinion about the key at all and whether
// that opinion is a deletion.
func (b *Batch) Get(key []byte) (value []byte, staged bool, deleted bool) {
	k := string(key)
	if _, ok := b.deletes[k]; ok {
		return nil, true, true
	}
	if v, ok := b.puts[k]; ok {
		return v, true, false
	}
	return nil, false, false
}

// Len returns the number of staged mutations.
func (b *Batch) Len() int { return len(b.puts) + len(b.deletes) }

// --- In-memory DB (for testing) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{data: make(map[string][]byte)}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

func (db *MemDB) Write(batch *Batch) error {
	if batch == nil {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range batch.puts {
		db.data[k] = append([]byte(nil), v...)
	}
	for k := range batch.deletes {
		delete(db.data, k)
	}
	return nil
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() error { return nil }

// --- Persistent DB ---

// LevelDB is a persistent key-value store backed by goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, bool, error) {
	value, err := ldb.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

func (ldb *LevelDB) Write(batch *Batch) error {
	if batch == nil {
		return nil
	}
	b := new(leveldb.Batch)
	for k, v := range batch.puts {
		b.Put([]byte(k), v)
	}
	for k := range batch.deletes {
		b.Delete([]byte(k))
	}
	return ldb.db.Write(b, nil)
}

func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}
