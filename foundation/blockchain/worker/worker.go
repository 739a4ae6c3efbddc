// Package worker implements block production and the periodic chores of
// the node: the karma rewards sweep and chain backups. It is the only
// package allowed to drive writes through the state API.
package worker

import (
	"sync"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/state"
)

// Default cadences when the configuration does not set them.
const (
	defaultProduceInterval = 10 * time.Second
	defaultKarmaInterval   = 30 * 24 * time.Hour
	defaultBackupInterval  = 24 * time.Hour
)

// Config tunes the worker cadences. Zero values take the defaults; a
// negative karma or backup interval disables that chore.
type Config struct {
	ProduceInterval time.Duration
	KarmaInterval   time.Duration
	BackupInterval  time.Duration
}

// Worker manages the background goroutines of the node.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	shut          chan struct{}
	produceSignal chan bool
	produceTicker *time.Ticker
	karmaTicker   *time.Ticker
	backupTicker  *time.Ticker
	evHandler     state.EventHandler
}

// New creates a worker, registers it with the state package, and starts
// the production and chore goroutines.
func New(st *state.State, cfg Config, evHandler state.EventHandler) *Worker {
	if cfg.ProduceInterval <= 0 {
		cfg.ProduceInterval = defaultProduceInterval
	}
	if cfg.KarmaInterval == 0 {
		cfg.KarmaInterval = defaultKarmaInterval
	}
	if cfg.BackupInterval == 0 {
		cfg.BackupInterval = defaultBackupInterval
	}

	w := Worker{
		state:         st,
		shut:          make(chan struct{}),
		produceSignal: make(chan bool, 1),
		produceTicker: time.NewTicker(cfg.ProduceInterval),
		evHandler:     evHandler,
	}

	st.Worker = &w

	operations := []func(){w.produceOperations}
	if cfg.KarmaInterval > 0 {
		w.karmaTicker = time.NewTicker(cfg.KarmaInterval)
		operations = append(operations, w.karmaOperations)
	}
	if cfg.BackupInterval > 0 {
		w.backupTicker = time.NewTicker(cfg.BackupInterval)
		operations = append(operations, w.backupOperations)
	}

	// Wait until every goroutine is running before returning.
	started := make(chan bool)
	w.wg.Add(len(operations))
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			started <- true
			op()
		}(op)
	}
	for range operations {
		<-started
	}

	return &w
}

// Shutdown terminates the goroutines performing the background work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.produceTicker.Stop()
	if w.karmaTicker != nil {
		w.karmaTicker.Stop()
	}
	if w.backupTicker != nil {
		w.backupTicker.Stop()
	}

	close(w.shut)
	w.wg.Wait()
}

// SignalBlockProduction nudges the producer without blocking the caller.
// A signal already in flight is enough.
func (w *Worker) SignalBlockProduction() {
	select {
	case w.produceSignal <- true:
	default:
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
