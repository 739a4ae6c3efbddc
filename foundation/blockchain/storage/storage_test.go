package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/storage"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_PutGetDelete(t *testing.T) {
	t.Log("Given the need to read and write column family entries.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a single entry without a TTL.", testID)
		{
			strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open storage.", success, testID)
			defer strg.Close()

			if err := strg.Put(storage.CFTests, []byte("key"), []byte("value"), 0); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put an entry: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to put an entry.", success, testID)

			value, ttl, found, err := strg.Get(storage.CFTests, []byte("key"))
			if err != nil || !found {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the entry back: found %v err %v", failed, testID, found, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to get the entry back.", success, testID)

			if string(value) != "value" {
				t.Errorf("\t%s\tTest %d:\tShould read back the stored value, got %q.", failed, testID, value)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read back the stored value.", success, testID)
			}

			if ttl != 0 {
				t.Errorf("\t%s\tTest %d:\tShould report no TTL for a permanent entry, got %v.", failed, testID, ttl)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report no TTL for a permanent entry.", success, testID)
			}

			if err := strg.Delete(storage.CFTests, []byte("key")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to delete the entry: %v", failed, testID, err)
			}
			if _, _, found, _ := strg.Get(storage.CFTests, []byte("key")); found {
				t.Errorf("\t%s\tTest %d:\tShould not find the entry after delete.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould not find the entry after delete.", success, testID)
			}

			if err := strg.Delete(storage.CFTests, []byte("absent")); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould tolerate deleting an absent key: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould tolerate deleting an absent key.", success, testID)
			}
		}
	}
}

func Test_ColumnFamilyIsolation(t *testing.T) {
	t.Log("Given the need to keep column families isolated under one store.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen using the same key in two families.", testID)
		{
			strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open storage.", success, testID)
			defer strg.Close()

			if err := strg.Put(storage.CFUsers, []byte("k"), []byte("u"), 0); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put into users: %v", failed, testID, err)
			}
			if err := strg.Put(storage.CFUserNames, []byte("k"), []byte("n"), 0); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put into user-names: %v", failed, testID, err)
			}

			value, _, _, err := strg.Get(storage.CFUsers, []byte("k"))
			if err != nil || string(value) != "u" {
				t.Errorf("\t%s\tTest %d:\tShould read the users value, got %q err %v.", failed, testID, value, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the users value.", success, testID)
			}

			if err := strg.Delete(storage.CFUsers, []byte("k")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to delete from users: %v", failed, testID, err)
			}

			if _, _, found, _ := strg.Get(storage.CFUserNames, []byte("k")); !found {
				t.Errorf("\t%s\tTest %d:\tShould keep the user-names entry after a users delete.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep the user-names entry after a users delete.", success, testID)
			}
		}
	}
}

func Test_TTLExpiry(t *testing.T) {
	t.Log("Given the need to expire entries with a TTL.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing an entry with a one hour TTL.", testID)
		{
			strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open storage.", success, testID)
			defer strg.Close()

			if err := strg.Put(storage.CFTests, []byte("code"), []byte("123456"), time.Hour); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put an expiring entry: %v", failed, testID, err)
			}

			_, ttl, found, err := strg.Get(storage.CFTests, []byte("code"))
			if err != nil || !found {
				t.Fatalf("\t%s\tTest %d:\tShould find the entry before expiry: found %v err %v", failed, testID, found, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the entry before expiry.", success, testID)

			if ttl <= 0 || ttl > time.Hour {
				t.Errorf("\t%s\tTest %d:\tShould report a remaining TTL inside the hour, got %v.", failed, testID, ttl)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report a remaining TTL inside the hour.", success, testID)
			}

			// A negative TTL produces an already expired entry.
			if err := strg.Put(storage.CFTests, []byte("old"), []byte("x"), -time.Second); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put an expired entry: %v", failed, testID, err)
			}
			if _, _, found, _ := strg.Get(storage.CFTests, []byte("old")); found {
				t.Errorf("\t%s\tTest %d:\tShould read an expired entry as absent.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read an expired entry as absent.", success, testID)
			}

			if err := strg.Compact(storage.CFTests); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to compact the family: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to compact the family.", success, testID)

			if _, _, found, _ := strg.Get(storage.CFTests, []byte("code")); !found {
				t.Errorf("\t%s\tTest %d:\tShould keep the live entry through compaction.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep the live entry through compaction.", success, testID)
			}
		}
	}
}

func Test_ScanOrderAndBounds(t *testing.T) {
	t.Log("Given the need to scan a column family in key order.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen scanning with a start key and a max.", testID)
		{
			strg, err := storage.New(filepath.Join(t.TempDir(), "db"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open storage.", success, testID)
			defer strg.Close()

			for _, key := range []string{"delta", "alpha", "charlie", "bravo"} {
				if err := strg.Put(storage.CFTests, []byte(key), []byte(key), 0); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to put %q: %v", failed, testID, key, err)
				}
			}

			entries, err := strg.Scan(storage.CFTests, nil, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to scan the family: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to scan the family.", success, testID)

			want := []string{"alpha", "bravo", "charlie", "delta"}
			if len(entries) != len(want) {
				t.Fatalf("\t%s\tTest %d:\tShould scan %d entries, got %d.", failed, testID, len(want), len(entries))
			}
			for i, e := range entries {
				if string(e.Key) != want[i] {
					t.Errorf("\t%s\tTest %d:\tShould see %q at position %d, got %q.", failed, testID, want[i], i, e.Key)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould scan the entries in key order.", success, testID)

			entries, err = strg.Scan(storage.CFTests, []byte("bravo"), 2)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to scan from a start key: %v", failed, testID, err)
			}
			if len(entries) != 2 || string(entries[0].Key) != "bravo" || string(entries[1].Key) != "charlie" {
				t.Errorf("\t%s\tTest %d:\tShould honor the start key and max, got %d entries.", failed, testID, len(entries))
			} else {
				t.Logf("\t%s\tTest %d:\tShould honor the start key and max.", success, testID)
			}
		}
	}
}

func Test_ReopenPersists(t *testing.T) {
	t.Log("Given the need to survive a close and reopen.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reopening the same path.", testID)
		{
			path := filepath.Join(t.TempDir(), "db")

			strg, err := storage.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			if err := strg.Put(storage.CFTests, []byte("key"), []byte("value"), 0); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to put an entry: %v", failed, testID, err)
			}
			if err := strg.Close(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to close storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to close storage.", success, testID)

			strg, err = storage.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reopen storage: %v", failed, testID, err)
			}
			defer strg.Close()
			t.Logf("\t%s\tTest %d:\tShould be able to reopen storage.", success, testID)

			value, _, found, err := strg.Get(storage.CFTests, []byte("key"))
			if err != nil || !found || string(value) != "value" {
				t.Errorf("\t%s\tTest %d:\tShould read the entry after reopen: found %v value %q err %v.", failed, testID, found, value, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould read the entry after reopen.", success, testID)
			}
		}
	}
}
