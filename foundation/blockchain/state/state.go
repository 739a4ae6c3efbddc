// Package state is the core API for the appreciation coin blockchain. It
// owns block production, the karma rewards sweep, chain backups and the
// read side queries, on top of the ledger, mempool and tokenomics
// packages.
package state

import (
	"context"
	"sync"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/karmacoin/node/foundation/blockchain/mempool"
	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events occur in the
// processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for background production and the periodic
// chores.
type Worker interface {
	Shutdown()
	SignalBlockProduction()
}

// Inviter texts a mobile number that received a payment before owning an
// account. Optional; the verifier provides the node's implementation.
type Inviter interface {
	SendInvite(ctx context.Context, number string) error
}

// =============================================================================

// Config represents the configuration required to start the blockchain
// node.
type Config struct {
	Genesis   genesis.Genesis
	DB        *database.Database
	Keypair   signature.Keypair
	BackupDir string
	Inviter   Inviter
	EvHandler EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	db        *database.Database
	mempool   *mempool.Mempool
	keypair   signature.Keypair
	accountID database.AccountID
	backupDir string
	inviter   Inviter
	evHandler EventHandler

	// Worker is assigned after construction since the worker needs the
	// state to exist first.
	Worker Worker
}

// New constructs a new blockchain state for transaction and block
// processing.
func New(cfg Config) (*State, error) {
	accountID, err := database.ToAccountID(cfg.Keypair.PublicKey)
	if err != nil {
		return nil, err
	}

	mp, err := mempool.New(cfg.DB, cfg.Genesis.NetID, mempool.DefaultMaxSize)
	if err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {}
	if cfg.EvHandler != nil {
		ev = cfg.EvHandler
	}

	state := State{
		genesis:   cfg.Genesis,
		db:        cfg.DB,
		mempool:   mp,
		keypair:   cfg.Keypair,
		accountID: accountID,
		backupDir: cfg.BackupDir,
		inviter:   cfg.Inviter,
		evHandler: ev,
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}
}

// =============================================================================

// SubmitTransaction admits a signed transaction into the mempool and
// signals the producer that work exists.
func (s *State) SubmitTransaction(tx database.SignedTransaction) error {
	s.evHandler("state: SubmitTransaction: tx[%s]", tx)

	if err := s.mempool.Add(tx); err != nil {
		return err
	}

	if s.Worker != nil {
		s.Worker.SignalBlockProduction()
	}

	return nil
}

// MempoolCount returns the current number of pending transactions.
func (s *State) MempoolCount() int {
	return s.mempool.Count()
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// AccountID returns the producer's account id.
func (s *State) AccountID() database.AccountID {
	return s.accountID
}
