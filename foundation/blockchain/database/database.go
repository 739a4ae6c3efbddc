// Package database implements the data model and the typed ledger access
// for the chain: users with their unique name and number indexes,
// transactions, execution events, blocks and the aggregate statistics. All
// state lives in the column family store; only the block producer writes.
package database

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/storage"
	"google.golang.org/protobuf/encoding/protowire"
)

// Well known keys inside their column families.
var (
	statsKey   = []byte("stats")
	mempoolKey = []byte("mempool")
	netIDKey   = []byte("net-id")
)

// Verification codes expire after this TTL.
const VerificationCodeTTL = 24 * time.Hour

// Sentinel errors for ledger lookups and writes.
var (
	ErrNotFound        = errors.New("not found")
	ErrUserNameTaken   = errors.New("user name belongs to another account")
	ErrNumberTaken     = errors.New("mobile number belongs to another account")
	ErrNetIDMismatch   = errors.New("database belongs to a different network")
)

// Database provides typed access to the chain state over the column family
// store.
type Database struct {
	store *storage.Storage
}

// New constructs the ledger over an open store and verifies the database
// belongs to the configured network.
func New(store *storage.Storage, netID uint32) (*Database, error) {
	db := Database{store: store}

	if err := db.ensureNetID(netID); err != nil {
		return nil, err
	}

	return &db, nil
}

// ensureNetID pins the network id into the net-settings family the first
// time and rejects reuse of the database by another network after that.
func (db *Database) ensureNetID(netID uint32) error {
	value, _, found, err := db.store.Get(storage.CFNetSettings, netIDKey)
	if err != nil {
		return err
	}

	if !found {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], netID)
		return db.store.Put(storage.CFNetSettings, netIDKey, buf[:], 0)
	}

	if len(value) != 4 || binary.BigEndian.Uint32(value) != netID {
		return fmt.Errorf("%w: got net id %v, exp %d", ErrNetIDMismatch, value, netID)
	}

	return nil
}

// =============================================================================
// Users and indexes

// GetUserByAccountID returns the user owning the account id.
func (db *Database) GetUserByAccountID(id AccountID) (User, error) {
	value, _, found, err := db.store.Get(storage.CFUsers, id[:])
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}
	return DecodeUser(value)
}

// GetUserByUserName resolves a user through the user-names index.
func (db *Database) GetUserByUserName(userName string) (User, error) {
	value, _, found, err := db.store.Get(storage.CFUserNames, []byte(userName))
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}

	id, err := ToAccountID(value)
	if err != nil {
		return User{}, err
	}
	return db.GetUserByAccountID(id)
}

// GetUserByMobileNumber resolves a user through the mobile-numbers index.
func (db *Database) GetUserByMobileNumber(number string) (User, error) {
	value, _, found, err := db.store.Get(storage.CFMobileNumbers, []byte(number))
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}

	id, err := ToAccountID(value)
	if err != nil {
		return User{}, err
	}
	return db.GetUserByAccountID(id)
}

// SaveUser writes the user record and maintains both unique indexes. It
// fails without touching state when another account owns the requested
// user name or mobile number. Index entries are written before the user
// record so the record is never admitted without its indexes; on a record
// write failure the fresh index entries are cleaned up again.
func (db *Database) SaveUser(u User) error {
	nameOwned, err := db.indexOwner(storage.CFUserNames, []byte(u.UserName))
	if err != nil {
		return err
	}
	if nameOwned != nil && *nameOwned != u.AccountID {
		return ErrUserNameTaken
	}

	numberOwned, err := db.indexOwner(storage.CFMobileNumbers, []byte(u.MobileNumber))
	if err != nil {
		return err
	}
	if numberOwned != nil && *numberOwned != u.AccountID {
		return ErrNumberTaken
	}

	newNameEntry := nameOwned == nil
	newNumberEntry := numberOwned == nil

	if newNameEntry {
		if err := db.store.Put(storage.CFUserNames, []byte(u.UserName), u.AccountID[:], 0); err != nil {
			return err
		}
	}
	if newNumberEntry {
		if err := db.store.Put(storage.CFMobileNumbers, []byte(u.MobileNumber), u.AccountID[:], 0); err != nil {
			if newNameEntry {
				db.store.Delete(storage.CFUserNames, []byte(u.UserName))
			}
			return err
		}
	}

	if err := db.store.Put(storage.CFUsers, u.AccountID[:], EncodeUser(u), 0); err != nil {
		if newNameEntry {
			db.store.Delete(storage.CFUserNames, []byte(u.UserName))
		}
		if newNumberEntry {
			db.store.Delete(storage.CFMobileNumbers, []byte(u.MobileNumber))
		}
		return err
	}

	return nil
}

// RenameUser moves the user to a new unique user name, tombstoning the
// prior index key.
func (db *Database) RenameUser(u User, newUserName string) (User, error) {
	owner, err := db.indexOwner(storage.CFUserNames, []byte(newUserName))
	if err != nil {
		return User{}, err
	}
	if owner != nil && *owner != u.AccountID {
		return User{}, ErrUserNameTaken
	}

	oldName := u.UserName
	u.UserName = newUserName

	if err := db.store.Put(storage.CFUserNames, []byte(newUserName), u.AccountID[:], 0); err != nil {
		return User{}, err
	}
	if err := db.store.Put(storage.CFUsers, u.AccountID[:], EncodeUser(u), 0); err != nil {
		db.store.Delete(storage.CFUserNames, []byte(newUserName))
		return User{}, err
	}
	if oldName != newUserName {
		if err := db.store.Delete(storage.CFUserNames, []byte(oldName)); err != nil {
			return User{}, err
		}
	}

	return u, nil
}

// RebindNumber moves the user to a new unique mobile number, tombstoning
// the prior index key.
func (db *Database) RebindNumber(u User, newNumber string) (User, error) {
	owner, err := db.indexOwner(storage.CFMobileNumbers, []byte(newNumber))
	if err != nil {
		return User{}, err
	}
	if owner != nil && *owner != u.AccountID {
		return User{}, ErrNumberTaken
	}

	oldNumber := u.MobileNumber
	u.MobileNumber = newNumber

	if err := db.store.Put(storage.CFMobileNumbers, []byte(newNumber), u.AccountID[:], 0); err != nil {
		return User{}, err
	}
	if err := db.store.Put(storage.CFUsers, u.AccountID[:], EncodeUser(u), 0); err != nil {
		db.store.Delete(storage.CFMobileNumbers, []byte(newNumber))
		return User{}, err
	}
	if oldNumber != newNumber {
		if err := db.store.Delete(storage.CFMobileNumbers, []byte(oldNumber)); err != nil {
			return User{}, err
		}
	}

	return u, nil
}

// DeleteUser tombstones the user record and clears both unique indexes.
func (db *Database) DeleteUser(u User) error {
	if err := db.store.Delete(storage.CFUserNames, []byte(u.UserName)); err != nil {
		return err
	}
	if err := db.store.Delete(storage.CFMobileNumbers, []byte(u.MobileNumber)); err != nil {
		return err
	}
	return db.store.Delete(storage.CFUsers, u.AccountID[:])
}

// ScanUsers walks all user records in account id order.
func (db *Database) ScanUsers() ([]User, error) {
	entries, err := db.store.Scan(storage.CFUsers, nil, 0)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(entries))
	for _, e := range entries {
		u, err := DecodeUser(e.Value)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

// ScanUserNames walks the user-names index in name order starting at the
// prefix and returns (name, account id) pairs whose names carry the prefix.
func (db *Database) ScanUserNames(prefix string, max int) ([]LeaderboardEntry, error) {
	entries, err := db.store.Scan(storage.CFUserNames, []byte(prefix), max)
	if err != nil {
		return nil, err
	}

	var out []LeaderboardEntry
	for _, e := range entries {
		name := string(e.Key)
		if prefix != "" && (len(name) < len(prefix) || name[:len(prefix)] != prefix) {
			break
		}

		id, err := ToAccountID(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, LeaderboardEntry{AccountID: id, UserName: name})
	}

	return out, nil
}

// indexOwner returns the account id occupying an index key, or nil when
// the key is free.
func (db *Database) indexOwner(cf string, key []byte) (*AccountID, error) {
	value, _, found, err := db.store.Get(cf, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	id, err := ToAccountID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// =============================================================================
// Transactions

// SaveTx persists a signed transaction under its hash.
func (db *Database) SaveTx(tx SignedTransaction) error {
	hash := tx.Hash()
	return db.store.Put(storage.CFTransactions, hash[:], EncodeSignedTransaction(tx), 0)
}

// GetTxByHash returns the on-chain transaction for the hash.
func (db *Database) GetTxByHash(hash TxHash) (SignedTransaction, error) {
	value, _, found, err := db.store.Get(storage.CFTransactions, hash[:])
	if err != nil {
		return SignedTransaction{}, err
	}
	if !found {
		return SignedTransaction{}, ErrNotFound
	}
	return DecodeSignedTransaction(value)
}

// HasTx reports whether the hash is already on chain.
func (db *Database) HasTx(hash TxHash) (bool, error) {
	_, _, found, err := db.store.Get(storage.CFTransactions, hash[:])
	return found, err
}

// IndexTxByAccount appends the hash to the account's ordered transaction
// list so a user's history is a single key lookup.
func (db *Database) IndexTxByAccount(id AccountID, hash TxHash) error {
	value, _, _, err := db.store.Get(storage.CFTxsByAccount, id[:])
	if err != nil {
		return err
	}

	value = append(value, hash[:]...)
	return db.store.Put(storage.CFTxsByAccount, id[:], value, 0)
}

// TxHashesByAccount returns the ordered transaction hashes for an account.
func (db *Database) TxHashesByAccount(id AccountID) ([]TxHash, error) {
	value, _, found, err := db.store.Get(storage.CFTxsByAccount, id[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if len(value)%32 != 0 {
		return nil, fmt.Errorf("%w: account tx index", ErrMalformed)
	}

	hashes := make([]TxHash, 0, len(value)/32)
	for off := 0; off < len(value); off += 32 {
		h, err := ToTxHash(value[off : off+32])
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}

	return hashes, nil
}

// =============================================================================
// Events

// AppendTxEvent adds an execution event to the per-hash event list.
func (db *Database) AppendTxEvent(ev TransactionEvent) error {
	events, err := db.GetTxEvents(ev.TxHash)
	if err != nil {
		return err
	}

	events = append(events, ev)
	return db.store.Put(storage.CFTxEvents, ev.TxHash[:], EncodeTransactionEvents(events), 0)
}

// GetTxEvents returns the execution events recorded for a hash.
func (db *Database) GetTxEvents(hash TxHash) ([]TransactionEvent, error) {
	value, _, found, err := db.store.Get(storage.CFTxEvents, hash[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return DecodeTransactionEvents(value)
}

// SaveBlockEvent persists the block event under its height.
func (db *Database) SaveBlockEvent(ev BlockEvent) error {
	return db.store.Put(storage.CFBlockEvents, heightKey(ev.Height), EncodeBlockEvent(ev), 0)
}

// GetBlockEvent returns the block event for a height.
func (db *Database) GetBlockEvent(height uint64) (BlockEvent, error) {
	value, _, found, err := db.store.Get(storage.CFBlockEvents, heightKey(height))
	if err != nil {
		return BlockEvent{}, err
	}
	if !found {
		return BlockEvent{}, ErrNotFound
	}
	return DecodeBlockEvent(value)
}

// =============================================================================
// Blocks

// SaveBlock persists the block under its big endian height key.
func (db *Database) SaveBlock(b Block) error {
	return db.store.Put(storage.CFBlocks, heightKey(b.Height), EncodeBlock(b), 0)
}

// GetBlockByHeight returns the block at a height.
func (db *Database) GetBlockByHeight(height uint64) (Block, error) {
	value, _, found, err := db.store.Get(storage.CFBlocks, heightKey(height))
	if err != nil {
		return Block{}, err
	}
	if !found {
		return Block{}, ErrNotFound
	}
	return DecodeBlock(value)
}

// =============================================================================
// Stats

// GetStats returns the aggregate statistics, zero valued before the first
// block.
func (db *Database) GetStats() (BlockchainStats, error) {
	value, _, found, err := db.store.Get(storage.CFBlockchainData, statsKey)
	if err != nil {
		return BlockchainStats{}, err
	}
	if !found {
		return BlockchainStats{}, nil
	}
	return DecodeStats(value)
}

// SaveStats persists the aggregate statistics.
func (db *Database) SaveStats(s BlockchainStats) error {
	return db.store.Put(storage.CFBlockchainData, statsKey, EncodeStats(s), 0)
}

// =============================================================================
// Leaderboard

// LeaderboardUpsert adds score to the account's leaderboard entry,
// recording the trait that earned it.
func (db *Database) LeaderboardUpsert(id AccountID, userName string, score uint32, traitID uint32) error {
	entry := LeaderboardEntry{AccountID: id, UserName: userName}

	value, _, found, err := db.store.Get(storage.CFLeaderboard, id[:])
	if err != nil {
		return err
	}
	if found {
		entry, err = DecodeLeaderboardEntry(value)
		if err != nil {
			return err
		}
	}

	entry.UserName = userName
	entry.Score += score
	if traitID != 0 {
		entry.TraitIDs = append(entry.TraitIDs, traitID)
	}

	return db.store.Put(storage.CFLeaderboard, id[:], EncodeLeaderboardEntry(entry), 0)
}

// LeaderboardScan returns all current leaderboard entries.
func (db *Database) LeaderboardScan() ([]LeaderboardEntry, error) {
	entries, err := db.store.Scan(storage.CFLeaderboard, nil, 0)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		entry, err := DecodeLeaderboardEntry(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}

	return out, nil
}

// LeaderboardClear drops every leaderboard entry.
func (db *Database) LeaderboardClear() error {
	entries, err := db.store.Scan(storage.CFLeaderboard, nil, 0)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := db.store.Delete(storage.CFLeaderboard, e.Key); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================
// Verification codes and SMS invites

// SaveVerificationCode binds a one time code to the requesting account for
// the code TTL.
func (db *Database) SaveVerificationCode(code string, id AccountID) error {
	return db.store.Put(storage.CFVerificationCodes, []byte(code), id[:], VerificationCodeTTL)
}

// GetVerificationCode returns the account bound to a live code.
func (db *Database) GetVerificationCode(code string) (AccountID, error) {
	value, _, found, err := db.store.Get(storage.CFVerificationCodes, []byte(code))
	if err != nil {
		return AccountID{}, err
	}
	if !found {
		return AccountID{}, ErrNotFound
	}
	return ToAccountID(value)
}

// DeleteVerificationCode removes a used code.
func (db *Database) DeleteVerificationCode(code string) error {
	return db.store.Delete(storage.CFVerificationCodes, []byte(code))
}

// MarkInvited records that an invite text went out to a number so the
// verifier does not text it again. Markers share the code TTL.
func (db *Database) MarkInvited(number string) error {
	return db.store.Put(storage.CFSmsInvites, []byte(number), []byte{1}, VerificationCodeTTL)
}

// WasInvited reports whether a live invite marker exists for the number.
func (db *Database) WasInvited(number string) (bool, error) {
	_, _, found, err := db.store.Get(storage.CFSmsInvites, []byte(number))
	return found, err
}

// CompactExpiring drops expired verification codes and invite markers.
func (db *Database) CompactExpiring() error {
	if err := db.store.Compact(storage.CFVerificationCodes); err != nil {
		return err
	}
	return db.store.Compact(storage.CFSmsInvites)
}

// =============================================================================
// Mempool blob

// SaveMempool persists the whole mempool under its aggregate key so
// pending transactions survive a restart.
func (db *Database) SaveMempool(txs []SignedTransaction) error {
	var b []byte
	for _, tx := range txs {
		b = appendMessage(b, 1, EncodeSignedTransaction(tx))
	}
	return db.store.Put(storage.CFMempool, mempoolKey, b, 0)
}

// LoadMempool reads the persisted mempool, empty when none was saved.
func (db *Database) LoadMempool() ([]SignedTransaction, error) {
	value, _, found, err := db.store.Get(storage.CFMempool, mempoolKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var txs []SignedTransaction
	err = walkFields(value, func(num protowire.Number, v fieldValue) error {
		if num == 1 {
			tx, err := DecodeSignedTransaction(v.bytes)
			if err != nil {
				return err
			}
			txs = append(txs, tx)
		}
		return nil
	})

	return txs, err
}

// =============================================================================

// heightKey builds the big endian u64 key for block and block event
// families.
func heightKey(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return buf[:]
}
