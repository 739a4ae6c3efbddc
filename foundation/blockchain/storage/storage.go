// Package storage provides the column family key/value store the ledger is
// built on. Values carry an absolute expiry header so entries can be given a
// TTL without a background process per key.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Column families used by the ledger. Each family is a key prefix inside a
// single LevelDB instance.
const (
	CFUsers             = "users"
	CFUserNames         = "user-names"
	CFMobileNumbers     = "mobile-numbers"
	CFTransactions      = "transactions"
	CFTxsByAccount      = "transactions-by-account"
	CFTxEvents          = "transactions-events"
	CFBlocks            = "blocks"
	CFBlockEvents       = "block-events"
	CFLeaderboard       = "leaderboard"
	CFMempool           = "mempool"
	CFBlockchainData    = "blockchain-data"
	CFVerificationCodes = "verification-codes"
	CFSmsInvites        = "sms-invites"
	CFNetSettings       = "net-settings"
	CFTests             = "tests"
)

// expiryHeaderLen is the number of bytes reserved at the front of every
// stored value for the absolute expiry in unix seconds. Zero means the
// entry never expires.
const expiryHeaderLen = 8

// ErrCorrupted is returned when a stored value is structurally broken. Per
// the failure model this is fatal for the node.
var ErrCorrupted = errors.New("storage corrupted")

// Entry represents a single key/value pair returned from a scan.
type Entry struct {
	Key   []byte
	Value []byte
	TTL   time.Duration
}

// Storage manages the underlying LevelDB database and the column family
// key layout.
type Storage struct {
	db   *leveldb.DB
	path string
	now  func() time.Time
}

// New opens (or creates) the database under the specified path.
func New(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	options := opt.Options{
		ErrorIfMissing: false,
		NoSync:         false,
	}

	db, err := leveldb.OpenFile(path, &options)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	strg := Storage{
		db:   db,
		path: path,
		now:  time.Now,
	}

	return &strg, nil
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Drop closes the database and removes its files from disk. Used by test
// networks configured to drop state on exit.
func (s *Storage) Drop() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	return os.RemoveAll(s.path)
}

// Put writes a value into the specified column family. A zero ttl stores
// the value without expiry; any other ttl sets an absolute expiry, so a
// negative ttl writes an entry that already reads as absent.
func (s *Storage) Put(cf string, key []byte, value []byte, ttl time.Duration) error {
	var expiry uint64
	if ttl != 0 {
		expiry = uint64(s.now().Add(ttl).Unix())
	}

	data := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(data, expiry)
	copy(data[expiryHeaderLen:], value)

	if err := s.db.Put(cfKey(cf, key), data, nil); err != nil {
		return fmt.Errorf("put %s: %w", cf, err)
	}

	return nil
}

// Get reads a value from the specified column family. The returned bool
// reports whether a live entry exists. An expired entry reads as absent.
func (s *Storage) Get(cf string, key []byte) ([]byte, time.Duration, bool, error) {
	data, err := s.db.Get(cfKey(cf, key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, 0, false, nil
		}
		return nil, 0, false, fmt.Errorf("get %s: %w", cf, err)
	}

	value, ttl, live, err := s.unpack(data)
	if err != nil {
		return nil, 0, false, fmt.Errorf("get %s: %w", cf, err)
	}
	if !live {
		return nil, 0, false, nil
	}

	return value, ttl, true, nil
}

// Delete removes a key from the specified column family. Deleting an absent
// key is not an error.
func (s *Storage) Delete(cf string, key []byte) error {
	if err := s.db.Delete(cfKey(cf, key), nil); err != nil {
		return fmt.Errorf("delete %s: %w", cf, err)
	}
	return nil
}

// Scan walks a column family in key order starting at from (or the first
// key when from is nil) and returns up to max live entries. Keys come back
// without the column family prefix.
func (s *Storage) Scan(cf string, from []byte, max int) ([]Entry, error) {
	prefix := cfKey(cf, nil)

	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	if from != nil {
		iter.Seek(cfKey(cf, from))
	} else {
		iter.First()
	}

	var entries []Entry
	for ; iter.Valid(); iter.Next() {
		if max > 0 && len(entries) >= max {
			break
		}

		value, ttl, live, err := s.unpack(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", cf, err)
		}
		if !live {
			continue
		}

		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])

		val := make([]byte, len(value))
		copy(val, value)

		entries = append(entries, Entry{Key: key, Value: val, TTL: ttl})
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", cf, err)
	}

	return entries, nil
}

// Compact walks a column family and deletes every entry whose expiry has
// passed. This takes the place of a per-family compaction filter.
func (s *Storage) Compact(cf string) error {
	prefix := cfKey(cf, nil)

	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		_, _, live, err := s.unpack(iter.Value())
		if err != nil {
			return fmt.Errorf("compact %s: %w", cf, err)
		}
		if !live {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("compact %s: %w", cf, err)
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("compact %s: %w", cf, err)
	}

	return nil
}

// =============================================================================

// unpack splits a stored value into payload and remaining TTL. The second
// bool reports whether the entry is still live.
func (s *Storage) unpack(data []byte) ([]byte, time.Duration, bool, error) {
	if len(data) < expiryHeaderLen {
		return nil, 0, false, ErrCorrupted
	}

	expiry := binary.BigEndian.Uint64(data)
	if expiry == 0 {
		return data[expiryHeaderLen:], 0, true, nil
	}

	remaining := time.Unix(int64(expiry), 0).Sub(s.now())
	if remaining <= 0 {
		return nil, 0, false, nil
	}

	return data[expiryHeaderLen:], remaining, true, nil
}

// cfKey builds the full key for a column family entry.
func cfKey(cf string, key []byte) []byte {
	full := make([]byte, 0, len(cf)+1+len(key))
	full = append(full, cf...)
	full = append(full, '/')
	full = append(full, key...)
	return full
}
