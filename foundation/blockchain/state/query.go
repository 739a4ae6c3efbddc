package state

import (
	"strings"

	"github.com/karmacoin/node/foundation/blockchain/database"
)

// Bounds on unpaged read queries.
const (
	maxBlockRange = 1000
	maxContacts   = 1000
)

// TxStatus reflects where a transaction stands in its lifecycle.
type TxStatus string

// The set of transaction statuses.
const (
	TxStatusUnknown  TxStatus = "unknown"
	TxStatusPending  TxStatus = "pending"
	TxStatusRejected TxStatus = "rejected"
	TxStatusOnChain  TxStatus = "on-chain"
)

// TransactionWithStatus pairs a signed transaction with its lifecycle
// status.
type TransactionWithStatus struct {
	Transaction database.SignedTransaction `json:"transaction"`
	Status      TxStatus                   `json:"status"`
}

// Contact is a directory entry resolved from the user-names index.
type Contact struct {
	AccountID    database.AccountID `json:"account_id"`
	UserName     string             `json:"user_name"`
	MobileNumber string             `json:"mobile_number"`
	KarmaScore   uint32             `json:"karma_score"`
}

// =============================================================================

// QueryUserByAccountID returns the user owning the account id.
func (s *State) QueryUserByAccountID(id database.AccountID) (database.User, error) {
	return s.db.GetUserByAccountID(id)
}

// QueryUserByUserName returns the user owning the name.
func (s *State) QueryUserByUserName(userName string) (database.User, error) {
	return s.db.GetUserByUserName(userName)
}

// QueryUserByMobileNumber returns the user owning the number.
func (s *State) QueryUserByMobileNumber(number string) (database.User, error) {
	return s.db.GetUserByMobileNumber(number)
}

// QueryStats returns the aggregate blockchain statistics.
func (s *State) QueryStats() (database.BlockchainStats, error) {
	return s.db.GetStats()
}

// =============================================================================

// TransactionStatus resolves the lifecycle status for a hash. On-chain
// wins over pending; a hash that only has invalid execution events is
// rejected.
func (s *State) TransactionStatus(hash database.TxHash) (TxStatus, error) {
	onChain, err := s.db.HasTx(hash)
	if err != nil {
		return TxStatusUnknown, err
	}
	if onChain {
		return TxStatusOnChain, nil
	}

	if s.mempool.Contains(hash) {
		return TxStatusPending, nil
	}

	events, err := s.db.GetTxEvents(hash)
	if err != nil {
		return TxStatusUnknown, err
	}
	for _, ev := range events {
		if ev.Result == database.TxResultInvalid {
			return TxStatusRejected, nil
		}
	}

	return TxStatusUnknown, nil
}

// QueryTransaction returns a transaction with its status and execution
// events. Unknown hashes return a zero transaction.
func (s *State) QueryTransaction(hash database.TxHash) (TransactionWithStatus, []database.TransactionEvent, error) {
	status, err := s.TransactionStatus(hash)
	if err != nil {
		return TransactionWithStatus{}, nil, err
	}

	events, err := s.db.GetTxEvents(hash)
	if err != nil {
		return TransactionWithStatus{}, nil, err
	}

	tws := TransactionWithStatus{Status: status}

	switch status {
	case TxStatusOnChain:
		tx, err := s.db.GetTxByHash(hash)
		if err != nil {
			return TransactionWithStatus{}, nil, err
		}
		tws.Transaction = tx

	case TxStatusPending:
		for _, tx := range s.mempool.Snapshot() {
			if tx.Hash() == hash {
				tws.Transaction = tx
				break
			}
		}

	default:
		if len(events) > 0 {
			tws.Transaction = events[len(events)-1].Transaction
		}
	}

	return tws, events, nil
}

// QueryAccountTransactions returns the account's transaction history with
// statuses and all recorded execution events.
func (s *State) QueryAccountTransactions(id database.AccountID) ([]TransactionWithStatus, []database.TransactionEvent, error) {
	hashes, err := s.db.TxHashesByAccount(id)
	if err != nil {
		return nil, nil, err
	}

	var txs []TransactionWithStatus
	var events []database.TransactionEvent

	for _, hash := range hashes {
		tws, evs, err := s.QueryTransaction(hash)
		if err != nil {
			return nil, nil, err
		}
		txs = append(txs, tws)
		events = append(events, evs...)
	}

	return txs, events, nil
}

// =============================================================================

// QueryBlocks returns the blocks in the inclusive height range, capped at
// maxBlockRange results. The chain starts at height 1, so a lower bound
// of 0 clamps to 1.
func (s *State) QueryBlocks(fromHeight uint64, toHeight uint64) ([]database.Block, error) {
	if fromHeight == 0 {
		fromHeight = 1
	}

	var blocks []database.Block

	for h := fromHeight; h <= toHeight && uint64(len(blocks)) < maxBlockRange; h++ {
		block, err := s.db.GetBlockByHeight(h)
		if err == database.ErrNotFound {
			break
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// QueryBlockEvents returns the block events in the inclusive height range,
// capped at maxBlockRange results. A lower bound of 0 clamps to 1.
func (s *State) QueryBlockEvents(fromHeight uint64, toHeight uint64) ([]database.BlockEvent, error) {
	if fromHeight == 0 {
		fromHeight = 1
	}

	var events []database.BlockEvent

	for h := fromHeight; h <= toHeight && uint64(len(events)) < maxBlockRange; h++ {
		ev, err := s.db.GetBlockEvent(h)
		if err == database.ErrNotFound {
			break
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

// QueryLeaderboard returns the current leaderboard entries.
func (s *State) QueryLeaderboard() ([]database.LeaderboardEntry, error) {
	return s.db.LeaderboardScan()
}

// QueryContacts scans the user-names index by prefix, optionally keeping
// only members of one community. Migrated-away records are skipped.
func (s *State) QueryContacts(prefix string, communityID uint32) ([]Contact, error) {
	entries, err := s.db.ScanUserNames(prefix, maxContacts)
	if err != nil {
		return nil, err
	}

	var contacts []Contact
	for _, entry := range entries {
		user, err := s.db.GetUserByAccountID(entry.AccountID)
		if err == database.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}

		if strings.HasSuffix(user.UserName, MigratedNameSuffix) {
			continue
		}
		if communityID != 0 {
			if _, ok := user.MembershipFor(communityID); !ok {
				continue
			}
		}

		contacts = append(contacts, Contact{
			AccountID:    user.AccountID,
			UserName:     user.UserName,
			MobileNumber: user.MobileNumber,
			KarmaScore:   user.KarmaScore,
		})
	}

	return contacts, nil
}
