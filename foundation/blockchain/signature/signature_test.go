package signature_test

import (
	"testing"

	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_SignVerify(t *testing.T) {
	t.Log("Given the need to sign and verify messages.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen signing with a fresh keypair.", testID)
		{
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to generate a keypair.", success, testID)

			msg := []byte("the quick brown fox")
			sig := signature.Sign(kp, msg)

			if sig.Scheme != signature.SchemeEd25519 {
				t.Errorf("\t%s\tTest %d:\tShould tag the signature with scheme %d, got %d.", failed, testID, signature.SchemeEd25519, sig.Scheme)
			} else {
				t.Logf("\t%s\tTest %d:\tShould tag the signature with the Ed25519 scheme.", success, testID)
			}

			if err := signature.Verify(kp.PublicKey, msg, sig); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould verify the signature: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould verify the signature.", success, testID)
			}

			tampered := append([]byte(nil), msg...)
			tampered[0]++
			if err := signature.Verify(kp.PublicKey, tampered, sig); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a tampered message.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a tampered message.", success, testID)
			}

			other, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a second keypair: %v", failed, testID, err)
			}
			if err := signature.Verify(other.PublicKey, msg, sig); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a signature under the wrong key.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a signature under the wrong key.", success, testID)
			}

			badScheme := sig
			badScheme.Scheme = 7
			if err := signature.Verify(kp.PublicKey, msg, badScheme); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject an unknown signature scheme.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject an unknown signature scheme.", success, testID)
			}
		}
	}
}

func Test_SeedRoundTrip(t *testing.T) {
	t.Log("Given the need to persist keypairs as hex seeds.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reloading a keypair from its seed.", testID)
		{
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a keypair: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to generate a keypair.", success, testID)

			loaded, err := signature.LoadKeypair(kp.SeedHex())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the keypair from the seed: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the keypair from the seed.", success, testID)

			if string(loaded.PublicKey) != string(kp.PublicKey) {
				t.Errorf("\t%s\tTest %d:\tShould recover the same public key.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould recover the same public key.", success, testID)
			}

			// The seed loads with or without the 0x prefix.
			bare := kp.SeedHex()[2:]
			if _, err := signature.LoadKeypair(bare); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould load a seed without the 0x prefix: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould load a seed without the 0x prefix.", success, testID)
			}

			if _, err := signature.LoadKeypair("0xdeadbeef"); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a short seed.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a short seed.", success, testID)
			}
		}
	}
}

func Test_HashStability(t *testing.T) {
	t.Log("Given the need for stable content digests.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen hashing the same bytes twice.", testID)
		{
			a := signature.HashString([]byte("karma"))
			b := signature.HashString([]byte("karma"))
			if a != b {
				t.Errorf("\t%s\tTest %d:\tShould produce the same digest for the same bytes.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould produce the same digest for the same bytes.", success, testID)
			}

			if c := signature.HashString([]byte("coin")); c == a {
				t.Errorf("\t%s\tTest %d:\tShould produce different digests for different bytes.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould produce different digests for different bytes.", success, testID)
			}
		}
	}
}
