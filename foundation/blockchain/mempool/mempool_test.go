package mempool_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/mempool"
	"github.com/karmacoin/node/foundation/blockchain/signature"
	"github.com/karmacoin/node/foundation/blockchain/storage"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const testNetID uint32 = 7

func openDB(t *testing.T) *database.Database {
	t.Helper()

	strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("opening storage: %v", err)
	}
	t.Cleanup(func() { strg.Close() })

	db, err := database.New(strg, testNetID)
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}
	return db
}

func signedTx(t *testing.T, kp signature.Keypair, nonce uint64) database.SignedTransaction {
	t.Helper()

	body := database.TransactionBody{
		Timestamp: uint64(time.Now().UnixMilli()),
		Nonce:     nonce,
		Fee:       1,
		NetID:     testNetID,
		Payload:   database.PaymentV1{ToNumber: "+12025550002", Amount: 10},
	}
	tx, err := body.Sign(kp)
	if err != nil {
		t.Fatalf("signing transaction: %v", err)
	}
	return tx
}

// =============================================================================

func Test_AddRemove(t *testing.T) {
	t.Log("Given the need to pool admitted transactions by hash.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding and removing transactions.", testID)
		{
			db := openDB(t)
			mp, err := mempool.New(db, testNetID, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the mempool.", success, testID)

			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}
			tx := signedTx(t, kp, 2)

			if err := mp.Add(tx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a valid transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add a valid transaction.", success, testID)

			if !mp.Contains(tx.Hash()) || mp.Count() != 1 {
				t.Errorf("\t%s\tTest %d:\tShould contain the transaction, count %d.", failed, testID, mp.Count())
			} else {
				t.Logf("\t%s\tTest %d:\tShould contain the transaction.", success, testID)
			}

			// Re-adding the same hash is an upsert, not a duplicate.
			if err := mp.Add(tx); err != nil || mp.Count() != 1 {
				t.Errorf("\t%s\tTest %d:\tShould upsert a known hash: count %d err %v.", failed, testID, mp.Count(), err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould upsert a known hash.", success, testID)
			}

			if err := mp.Remove(tx.Hash()); err != nil || mp.Count() != 0 {
				t.Errorf("\t%s\tTest %d:\tShould remove the transaction: count %d err %v.", failed, testID, mp.Count(), err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould remove the transaction.", success, testID)
			}

			if err := mp.Remove(tx.Hash()); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould tolerate removing an absent hash: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould tolerate removing an absent hash.", success, testID)
			}
		}
	}
}

func Test_AdmissionChecks(t *testing.T) {
	t.Log("Given the need to reject syntactically invalid transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding transactions that break admission rules.", testID)
		{
			db := openDB(t)
			mp, err := mempool.New(db, testNetID, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}

			body := database.TransactionBody{
				Timestamp: uint64(time.Now().UnixMilli()),
				Nonce:     1,
				Fee:       0,
				NetID:     testNetID,
				Payload:   database.DeleteUserV1{},
			}
			tx, err := body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}
			if err := mp.Add(tx); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a zero fee transaction.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a zero fee transaction.", success, testID)
			}

			body.Fee = 1
			body.NetID = testNetID + 1
			tx, err = body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}
			if err := mp.Add(tx); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a wrong network id.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a wrong network id.", success, testID)
			}

			body.NetID = testNetID
			body.Timestamp = uint64(time.Now().Add(-database.TxTimestampWindow - time.Hour).UnixMilli())
			tx, err = body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}
			if err := mp.Add(tx); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a stale timestamp.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a stale timestamp.", success, testID)
			}

			body.Timestamp = uint64(time.Now().UnixMilli())
			tx, err = body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}
			tx.Body[0]++
			if err := mp.Add(tx); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a tampered body.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a tampered body.", success, testID)
			}

			if mp.Count() != 0 {
				t.Errorf("\t%s\tTest %d:\tShould keep the pool empty after rejections, count %d.", failed, testID, mp.Count())
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep the pool empty after rejections.", success, testID)
			}
		}
	}
}

func Test_CapacityBound(t *testing.T) {
	t.Log("Given the need to bound the pool size.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding past the capacity.", testID)
		{
			db := openDB(t)
			mp, err := mempool.New(db, testNetID, 2)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}

			first := signedTx(t, kp, 1)
			second := signedTx(t, kp, 2)
			for _, tx := range []database.SignedTransaction{first, second} {
				if err := mp.Add(tx); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to fill the pool: %v", failed, testID, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to fill the pool.", success, testID)

			if err := mp.Add(signedTx(t, kp, 3)); !errors.Is(err, mempool.ErrFull) {
				t.Errorf("\t%s\tTest %d:\tShould reject past capacity with ErrFull, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject past capacity with ErrFull.", success, testID)
			}

			// A known hash still upserts at capacity.
			if err := mp.Add(second); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould upsert a known hash at capacity: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould upsert a known hash at capacity.", success, testID)
			}
		}
	}
}

func Test_DurabilityAndEviction(t *testing.T) {
	t.Log("Given the need to survive restarts and evict on-chain hashes.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reloading the pool and evicting settled work.", testID)
		{
			db := openDB(t)
			mp, err := mempool.New(db, testNetID, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}

			first := signedTx(t, kp, 1)
			second := signedTx(t, kp, 2)
			for _, tx := range []database.SignedTransaction{first, second} {
				if err := mp.Add(tx); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
				}
			}

			// A second mempool over the same ledger sees the persisted pool.
			reloaded, err := mempool.New(db, testNetID, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reload the mempool: %v", failed, testID, err)
			}
			if reloaded.Count() != 2 {
				t.Errorf("\t%s\tTest %d:\tShould reload both transactions, count %d.", failed, testID, reloaded.Count())
			} else {
				t.Logf("\t%s\tTest %d:\tShould reload both transactions.", success, testID)
			}

			// Settle the first transaction on chain and evict.
			if err := db.SaveTx(first); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to settle a transaction: %v", failed, testID, err)
			}
			evicted, err := reloaded.RemoveOnChain()
			if err != nil || evicted != 1 {
				t.Errorf("\t%s\tTest %d:\tShould evict one settled transaction, got %d err %v.", failed, testID, evicted, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould evict one settled transaction.", success, testID)
			}
			if reloaded.Contains(first.Hash()) || !reloaded.Contains(second.Hash()) {
				t.Errorf("\t%s\tTest %d:\tShould keep only the pending transaction.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep only the pending transaction.", success, testID)
			}
		}
	}
}

func Test_SnapshotDeterminism(t *testing.T) {
	t.Log("Given the need for a deterministic processing order.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen snapshotting the pool.", testID)
		{
			db := openDB(t)
			mp, err := mempool.New(db, testNetID, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}

			for nonce := uint64(1); nonce <= 5; nonce++ {
				if err := mp.Add(signedTx(t, kp, nonce)); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
				}
			}

			snap := mp.Snapshot()
			if len(snap) != 5 {
				t.Fatalf("\t%s\tTest %d:\tShould snapshot all five transactions, got %d.", failed, testID, len(snap))
			}
			t.Logf("\t%s\tTest %d:\tShould snapshot all five transactions.", success, testID)

			for i := 1; i < len(snap); i++ {
				prev, cur := snap[i-1].Hash(), snap[i].Hash()
				if bytes.Compare(prev[:], cur[:]) >= 0 {
					t.Fatalf("\t%s\tTest %d:\tShould order the snapshot by ascending hash.", failed, testID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould order the snapshot by ascending hash.", success, testID)
		}
	}
}
