// Package mempool maintains the durable pool of admitted signed
// transactions, keyed by transaction hash and bounded by the genesis
// capacity. The pool persists under one aggregate key so pending
// transactions survive a restart.
package mempool

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
)

// DefaultMaxSize bounds the pool when the configuration does not.
const DefaultMaxSize = 5000

// ErrFull is returned when the pool is at capacity.
var ErrFull = fmt.Errorf("mempool is full")

// Mempool represents the pool of pending transactions organized by
// transaction hash.
type Mempool struct {
	mu      sync.RWMutex
	pool    map[database.TxHash]database.SignedTransaction
	maxSize int
	netID   uint32
	db      *database.Database
}

// New constructs a mempool and reloads any transactions persisted by a
// previous run.
func New(db *database.Database, netID uint32, maxSize int) (*Mempool, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	mp := Mempool{
		pool:    make(map[database.TxHash]database.SignedTransaction),
		maxSize: maxSize,
		netID:   netID,
		db:      db,
	}

	txs, err := db.LoadMempool()
	if err != nil {
		return nil, fmt.Errorf("loading persisted mempool: %w", err)
	}
	for _, tx := range txs {
		mp.pool[tx.Hash()] = tx
	}

	return &mp, nil
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Contains reports whether the hash is pending in the pool.
func (mp *Mempool) Contains(hash database.TxHash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[hash]
	return exists
}

// Add admits a transaction after checking its signature and syntactic
// validity, then persists the pool. Re-adding a known hash is a no-op
// upsert; a full pool rejects.
func (mp *Mempool) Add(tx database.SignedTransaction) error {
	if err := tx.Validate(mp.netID, time.Now().UTC()); err != nil {
		return fmt.Errorf("rejecting transaction: %w", err)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	hash := tx.Hash()
	if _, exists := mp.pool[hash]; !exists && len(mp.pool) >= mp.maxSize {
		return ErrFull
	}

	mp.pool[hash] = tx

	return mp.persist()
}

// Remove drops a transaction from the pool by hash and persists the pool.
func (mp *Mempool) Remove(hash database.TxHash) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[hash]; !exists {
		return nil
	}

	delete(mp.pool, hash)

	return mp.persist()
}

// RemoveOnChain drops every pooled transaction whose hash is already in
// the transactions column family and returns how many were evicted.
func (mp *Mempool) RemoveOnChain() (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var evicted int
	for hash := range mp.pool {
		onChain, err := mp.db.HasTx(hash)
		if err != nil {
			return evicted, err
		}
		if onChain {
			delete(mp.pool, hash)
			evicted++
		}
	}

	if evicted == 0 {
		return 0, nil
	}

	return evicted, mp.persist()
}

// Snapshot returns the pooled transactions ordered by hash. The producer
// iterates this order so block content is deterministic.
func (mp *Mempool) Snapshot() []database.SignedTransaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	hashes := make([]database.TxHash, 0, len(mp.pool))
	for hash := range mp.pool {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})

	txs := make([]database.SignedTransaction, 0, len(hashes))
	for _, hash := range hashes {
		txs = append(txs, mp.pool[hash])
	}

	return txs
}

// =============================================================================

// persist writes the pool under its aggregate key. Callers hold the lock.
func (mp *Mempool) persist() error {
	txs := make([]database.SignedTransaction, 0, len(mp.pool))

	hashes := make([]database.TxHash, 0, len(mp.pool))
	for hash := range mp.pool {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
	for _, hash := range hashes {
		txs = append(txs, mp.pool[hash])
	}

	return mp.db.SaveMempool(txs)
}
