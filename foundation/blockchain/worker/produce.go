package worker

import (
	"errors"

	"github.com/karmacoin/node/foundation/blockchain/state"
)

// produceOperations runs block production on submission signals and on the
// production cadence.
func (w *Worker) produceOperations() {
	w.evHandler("worker: produceOperations: goroutine started")
	defer w.evHandler("worker: produceOperations: goroutine stopped")

	for {
		select {
		case <-w.produceSignal:
			if !w.isShutdown() {
				w.runProduction()
			}
		case <-w.produceTicker.C:
			if !w.isShutdown() {
				w.runProduction()
			}
		case <-w.shut:
			return
		}
	}
}

func (w *Worker) runProduction() {
	blockEvent, err := w.state.ProduceBlock()

	switch {
	case err == nil:
		w.evHandler("worker: runProduction: produced block: height[%d] signups[%d] payments[%d]",
			blockEvent.Height, blockEvent.SignupsCount, blockEvent.PaymentsCount)

	case errors.Is(err, state.ErrNoPendingTransactions):
		// Nothing to do this round.

	case errors.Is(err, state.ErrNoQualifiedTransactions):
		w.evHandler("worker: runProduction: round produced no block: pending[%d]", w.state.MempoolCount())

	default:
		w.evHandler("worker: runProduction: ERROR: %s", err)
	}
}

// karmaOperations runs the karma rewards sweep on its cadence.
func (w *Worker) karmaOperations() {
	w.evHandler("worker: karmaOperations: goroutine started")
	defer w.evHandler("worker: karmaOperations: goroutine stopped")

	for {
		select {
		case <-w.karmaTicker.C:
			if w.isShutdown() {
				return
			}
			paid, err := w.state.KarmaRewardsSweep()
			if err != nil {
				w.evHandler("worker: karmaOperations: ERROR: %s", err)
				continue
			}
			w.evHandler("worker: karmaOperations: sweep rewarded %d users", paid)

		case <-w.shut:
			return
		}
	}
}

// backupOperations writes a chain backup on its cadence.
func (w *Worker) backupOperations() {
	w.evHandler("worker: backupOperations: goroutine started")
	defer w.evHandler("worker: backupOperations: goroutine stopped")

	for {
		select {
		case <-w.backupTicker.C:
			if w.isShutdown() {
				return
			}
			path, err := w.state.Backup()
			if err != nil {
				w.evHandler("worker: backupOperations: ERROR: %s", err)
				continue
			}
			if path != "" {
				w.evHandler("worker: backupOperations: wrote %s", path)
			}

		case <-w.shut:
			return
		}
	}
}
