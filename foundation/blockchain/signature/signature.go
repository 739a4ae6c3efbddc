// Package signature provides helper functions for handling the blockchain
// signature needs. Scheme 0 is Ed25519 and every digest is SHA-256.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SchemeEd25519 is the only signature scheme currently on the wire.
const SchemeEd25519 uint32 = 0

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Signature is a scheme tag plus the raw signature bytes.
type Signature struct {
	Scheme uint32        `json:"scheme"`
	Bytes  hexutil.Bytes `json:"bytes"`
}

// IsZero reports whether the signature is unset.
func (sig Signature) IsZero() bool {
	return len(sig.Bytes) == 0
}

// String implements the fmt.Stringer interface for logging.
func (sig Signature) String() string {
	return hexutil.Encode(sig.Bytes)
}

// =============================================================================

// Keypair holds an Ed25519 private key and its public half.
type Keypair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Generate creates a new random keypair.
func Generate() (Keypair, error) {
	pub, prv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("generating keypair: %w", err)
	}
	return Keypair{PrivateKey: prv, PublicKey: pub}, nil
}

// LoadKeypair reconstructs a keypair from a hex encoded 32 byte seed.
func LoadKeypair(seedHex string) (Keypair, error) {
	seed, err := hexutil.Decode(seedHex)
	if err != nil {
		// Accept the seed with or without the 0x prefix.
		seed, err = hexutil.Decode("0x" + seedHex)
		if err != nil {
			return Keypair{}, fmt.Errorf("decoding key seed: %w", err)
		}
	}
	if len(seed) != ed25519.SeedSize {
		return Keypair{}, fmt.Errorf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	prv := ed25519.NewKeyFromSeed(seed)
	return Keypair{PrivateKey: prv, PublicKey: prv.Public().(ed25519.PublicKey)}, nil
}

// SeedHex returns the hex encoded seed for persisting the keypair.
func (kp Keypair) SeedHex() string {
	return hexutil.Encode(kp.PrivateKey.Seed())
}

// =============================================================================

// Sign signs the message with the keypair and returns a tagged signature.
func Sign(kp Keypair, message []byte) Signature {
	return Signature{
		Scheme: SchemeEd25519,
		Bytes:  ed25519.Sign(kp.PrivateKey, message),
	}
}

// Verify checks the signature over the message against the public key.
func Verify(publicKey []byte, message []byte, sig Signature) error {
	if sig.Scheme != SchemeEd25519 {
		return fmt.Errorf("unsupported signature scheme %d", sig.Scheme)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
	}
	if len(sig.Bytes) != ed25519.SignatureSize {
		return errors.New("malformed signature")
	}

	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, sig.Bytes) {
		return errors.New("invalid signature")
	}

	return nil
}

// Hash returns the SHA-256 digest of the data.
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HashString returns the hex representation of the SHA-256 digest.
func HashString(data []byte) string {
	h := Hash(data)
	return hexutil.Encode(h[:])
}
