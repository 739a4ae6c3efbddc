package database_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
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

func newUser(t *testing.T, name string, number string) (database.User, signature.Keypair) {
	t.Helper()

	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	id, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		t.Fatalf("building account id: %v", err)
	}

	u := database.User{
		AccountID:    id,
		Nonce:        1,
		UserName:     name,
		MobileNumber: number,
		Balance:      100,
	}
	return u, kp
}

// =============================================================================

func Test_UserIndexes(t *testing.T) {
	t.Log("Given the need to keep user names and numbers unique.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen saving users sharing a name or a number.", testID)
		{
			db := openDB(t)

			alice, _ := newUser(t, "alice", "+12025550001")
			if err := db.SaveUser(alice); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save a user: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to save a user.", success, testID)

			got, err := db.GetUserByAccountID(alice.AccountID)
			if err != nil || got.UserName != "alice" {
				t.Fatalf("\t%s\tTest %d:\tShould resolve the user by account id: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve the user by account id.", success, testID)

			if got, err = db.GetUserByUserName("alice"); err != nil || got.AccountID != alice.AccountID {
				t.Errorf("\t%s\tTest %d:\tShould resolve the user by name: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould resolve the user by name.", success, testID)
			}

			if got, err = db.GetUserByMobileNumber("+12025550001"); err != nil || got.AccountID != alice.AccountID {
				t.Errorf("\t%s\tTest %d:\tShould resolve the user by number: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould resolve the user by number.", success, testID)
			}

			impostor, _ := newUser(t, "alice", "+12025550002")
			if err := db.SaveUser(impostor); !errors.Is(err, database.ErrUserNameTaken) {
				t.Errorf("\t%s\tTest %d:\tShould reject a taken user name, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a taken user name.", success, testID)
			}

			squatter, _ := newUser(t, "bob", "+12025550001")
			if err := db.SaveUser(squatter); !errors.Is(err, database.ErrNumberTaken) {
				t.Errorf("\t%s\tTest %d:\tShould reject a taken mobile number, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a taken mobile number.", success, testID)
			}

			// A failed save must not leave index entries behind.
			if _, err := db.GetUserByUserName("bob"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould not leak index entries from a failed save, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not leak index entries from a failed save.", success, testID)
			}

			// Re-saving the same user under its own keys is an update.
			alice.Balance = 42
			if err := db.SaveUser(alice); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould allow updating a user under its own keys: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould allow updating a user under its own keys.", success, testID)
			}
		}
	}
}

func Test_RenameAndRebind(t *testing.T) {
	t.Log("Given the need to move a user to a new name or number.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen renaming and rebinding a user.", testID)
		{
			db := openDB(t)

			alice, _ := newUser(t, "alice", "+12025550001")
			bob, _ := newUser(t, "bob", "+12025550002")
			for _, u := range []database.User{alice, bob} {
				if err := db.SaveUser(u); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to save user %q: %v", failed, testID, u.UserName, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to save two users.", success, testID)

			renamed, err := db.RenameUser(alice, "alicia")
			if err != nil || renamed.UserName != "alicia" {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rename the user: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to rename the user.", success, testID)

			if _, err := db.GetUserByUserName("alice"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould tombstone the old name index, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould tombstone the old name index.", success, testID)
			}

			if _, err := db.RenameUser(renamed, "bob"); !errors.Is(err, database.ErrUserNameTaken) {
				t.Errorf("\t%s\tTest %d:\tShould reject renaming onto a taken name, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject renaming onto a taken name.", success, testID)
			}

			rebound, err := db.RebindNumber(renamed, "+12025550009")
			if err != nil || rebound.MobileNumber != "+12025550009" {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rebind the number: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to rebind the number.", success, testID)

			if _, err := db.GetUserByMobileNumber("+12025550001"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould tombstone the old number index, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould tombstone the old number index.", success, testID)
			}

			if err := db.DeleteUser(rebound); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to delete the user: %v", failed, testID, err)
			}
			if _, err := db.GetUserByAccountID(rebound.AccountID); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould not find a deleted user, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not find a deleted user.", success, testID)
			}
			if _, err := db.GetUserByUserName("alicia"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould clear the name index on delete, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould clear the name index on delete.", success, testID)
			}
		}
	}
}

func Test_TransactionsAndEvents(t *testing.T) {
	t.Log("Given the need to persist transactions with their history.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen saving a signed transaction and its events.", testID)
		{
			db := openDB(t)

			_, kp := newUser(t, "alice", "+12025550001")
			body := database.TransactionBody{
				Timestamp: uint64(time.Now().UnixMilli()),
				Nonce:     2,
				Fee:       1,
				NetID:     testNetID,
				Payload:   database.PaymentV1{ToNumber: "+12025550002", Amount: 10},
			}
			tx, err := body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to sign a transaction.", success, testID)

			if err := tx.VerifySignature(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould verify the transaction signature: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the transaction signature.", success, testID)

			decoded, err := tx.DecodeBody()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould decode the canonical body: %v", failed, testID, err)
			}
			payment, ok := decoded.Payload.(database.PaymentV1)
			if !ok || payment.ToNumber != "+12025550002" || payment.Amount != 10 || decoded.Nonce != 2 {
				t.Errorf("\t%s\tTest %d:\tShould round trip the payment payload.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould round trip the payment payload.", success, testID)
			}

			hash := tx.Hash()
			if hash != tx.Hash() {
				t.Errorf("\t%s\tTest %d:\tShould compute a stable transaction hash.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould compute a stable transaction hash.", success, testID)
			}

			if err := db.SaveTx(tx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save the transaction: %v", failed, testID, err)
			}
			onChain, err := db.HasTx(hash)
			if err != nil || !onChain {
				t.Errorf("\t%s\tTest %d:\tShould report the hash as on chain: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report the hash as on chain.", success, testID)
			}

			stored, err := db.GetTxByHash(hash)
			if err != nil || stored.Hash() != hash {
				t.Errorf("\t%s\tTest %d:\tShould read the transaction back by hash: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the transaction back by hash.", success, testID)
			}

			if err := db.IndexTxByAccount(tx.Signer, hash); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to index the transaction: %v", failed, testID, err)
			}
			hashes, err := db.TxHashesByAccount(tx.Signer)
			if err != nil || len(hashes) != 1 || hashes[0] != hash {
				t.Errorf("\t%s\tTest %d:\tShould list the hash in the account index: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould list the hash in the account index.", success, testID)
			}

			ev := database.TransactionEvent{
				Timestamp:   uint64(time.Now().UnixMilli()),
				Height:      1,
				Transaction: tx,
				TxHash:      hash,
				Result:      database.TxResultExecuted,
				Info:        database.InfoPaymentConfirmed,
				Fee:         1,
				FeeType:     database.FeeTypeUser,
			}
			if err := db.AppendTxEvent(ev); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to append an event: %v", failed, testID, err)
			}
			events, err := db.GetTxEvents(hash)
			if err != nil || len(events) != 1 || events[0].Info != database.InfoPaymentConfirmed {
				t.Errorf("\t%s\tTest %d:\tShould read the event list back: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the event list back.", success, testID)
			}
		}
	}
}

func Test_StatsAndLeaderboard(t *testing.T) {
	t.Log("Given the need to track aggregates and the leaderboard.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing stats and leaderboard entries.", testID)
		{
			db := openDB(t)

			stats, err := db.GetStats()
			if err != nil || stats.TipHeight != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould read zero stats on a fresh chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould read zero stats on a fresh chain.", success, testID)

			stats.TipHeight = 3
			stats.MintedAmount = 30
			if err := db.SaveStats(stats); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save stats: %v", failed, testID, err)
			}
			stats, err = db.GetStats()
			if err != nil || stats.TipHeight != 3 || stats.MintedAmount != 30 {
				t.Errorf("\t%s\tTest %d:\tShould read the saved stats back: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the saved stats back.", success, testID)
			}

			alice, _ := newUser(t, "alice", "+12025550001")
			if err := db.LeaderboardUpsert(alice.AccountID, "alice", 2, 3); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to upsert a leaderboard entry: %v", failed, testID, err)
			}
			if err := db.LeaderboardUpsert(alice.AccountID, "alice", 1, 9); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to upsert again: %v", failed, testID, err)
			}

			entries, err := db.LeaderboardScan()
			if err != nil || len(entries) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould scan one leaderboard entry: %v", failed, testID, err)
			}
			if entries[0].Score != 3 || len(entries[0].TraitIDs) != 2 {
				t.Errorf("\t%s\tTest %d:\tShould accumulate score and traits, got score %d traits %v.", failed, testID, entries[0].Score, entries[0].TraitIDs)
			} else {
				t.Logf("\t%s\tTest %d:\tShould accumulate score and traits.", success, testID)
			}

			if err := db.LeaderboardClear(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to clear the leaderboard: %v", failed, testID, err)
			}
			entries, err = db.LeaderboardScan()
			if err != nil || len(entries) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould scan an empty leaderboard after clear: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould scan an empty leaderboard after clear.", success, testID)
			}
		}
	}
}

func Test_VerificationCodes(t *testing.T) {
	t.Log("Given the need to bind one time codes to accounts.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen saving, reading and consuming a code.", testID)
		{
			db := openDB(t)
			alice, _ := newUser(t, "alice", "+12025550001")

			if err := db.SaveVerificationCode("123456", alice.AccountID); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save a code: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to save a code.", success, testID)

			id, err := db.GetVerificationCode("123456")
			if err != nil || id != alice.AccountID {
				t.Errorf("\t%s\tTest %d:\tShould resolve the bound account: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould resolve the bound account.", success, testID)
			}

			if _, err := db.GetVerificationCode("000000"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould not resolve an unknown code, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not resolve an unknown code.", success, testID)
			}

			if err := db.DeleteVerificationCode("123456"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to consume the code: %v", failed, testID, err)
			}
			if _, err := db.GetVerificationCode("123456"); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould not resolve a consumed code, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not resolve a consumed code.", success, testID)
			}

			invited, err := db.WasInvited("+12025550009")
			if err != nil || invited {
				t.Errorf("\t%s\tTest %d:\tShould report an uninvited number: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report an uninvited number.", success, testID)
			}
			if err := db.MarkInvited("+12025550009"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mark an invite: %v", failed, testID, err)
			}
			invited, err = db.WasInvited("+12025550009")
			if err != nil || !invited {
				t.Errorf("\t%s\tTest %d:\tShould report the invited number: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report the invited number.", success, testID)
			}
		}
	}
}

func Test_NetIDPinning(t *testing.T) {
	t.Log("Given the need to bind a database to one network.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reopening the database under another net id.", testID)
		{
			strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			defer strg.Close()

			if _, err := database.New(strg, 1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to pin net id 1: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to pin net id 1.", success, testID)

			if _, err := database.New(strg, 1); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould reopen under the same net id: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reopen under the same net id.", success, testID)
			}

			if _, err := database.New(strg, 2); !errors.Is(err, database.ErrNetIDMismatch) {
				t.Errorf("\t%s\tTest %d:\tShould reject another net id, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject another net id.", success, testID)
			}
		}
	}
}

func Test_BlocksAndMempoolBlob(t *testing.T) {
	t.Log("Given the need to persist blocks and the pending pool.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen saving a block and the mempool blob.", testID)
		{
			db := openDB(t)

			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}
			author, err := database.ToAccountID(kp.PublicKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the author id: %v", failed, testID, err)
			}

			block := database.Block{
				TimeMS: uint64(time.Now().UnixMilli()),
				Author: author,
				Height: 1,
				Fees:   5,
			}
			block.Seal(kp)
			t.Logf("\t%s\tTest %d:\tShould be able to seal the block.", success, testID)

			if err := block.VerifySignature(); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould verify the block signature: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould verify the block signature.", success, testID)
			}

			if err := db.SaveBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save the block: %v", failed, testID, err)
			}
			stored, err := db.GetBlockByHeight(1)
			if err != nil || stored.Height != 1 || stored.Fees != 5 {
				t.Errorf("\t%s\tTest %d:\tShould read the block back by height: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the block back by height.", success, testID)
			}
			if _, err := db.GetBlockByHeight(2); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould not find an absent height, got %v.", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not find an absent height.", success, testID)
			}

			body := database.TransactionBody{
				Timestamp: uint64(time.Now().UnixMilli()),
				Nonce:     1,
				Fee:       1,
				NetID:     testNetID,
				Payload:   database.DeleteUserV1{},
			}
			tx, err := body.Sign(kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a transaction: %v", failed, testID, err)
			}

			if err := db.SaveMempool([]database.SignedTransaction{tx}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save the mempool blob: %v", failed, testID, err)
			}
			txs, err := db.LoadMempool()
			if err != nil || len(txs) != 1 || txs[0].Hash() != tx.Hash() {
				t.Errorf("\t%s\tTest %d:\tShould reload the pooled transaction: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reload the pooled transaction.", success, testID)
			}
		}
	}
}
