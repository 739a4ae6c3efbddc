package database

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountID is the raw 32 byte Ed25519 public key of the account owner.
type AccountID [32]byte

// ToAccountID constructs an account id from raw public key bytes.
func ToAccountID(data []byte) (AccountID, error) {
	if len(data) != ed25519.PublicKeySize {
		return AccountID{}, fmt.Errorf("account id must be %d bytes, got %d", ed25519.PublicKeySize, len(data))
	}

	var id AccountID
	copy(id[:], data)
	return id, nil
}

// ParseAccountID constructs an account id from its hex representation.
func ParseAccountID(hexStr string) (AccountID, error) {
	data, err := hexutil.Decode(hexStr)
	if err != nil {
		data, err = hexutil.Decode("0x" + hexStr)
		if err != nil {
			return AccountID{}, fmt.Errorf("decoding account id: %w", err)
		}
	}
	return ToAccountID(data)
}

// IsZero reports whether the account id is unset.
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// String implements the fmt.Stringer interface.
func (id AccountID) String() string {
	return hexutil.Encode(id[:])
}

// MarshalText implements encoding.TextMarshaler so ids render as hex in
// JSON documents and map keys.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// =============================================================================

// TxHash is the SHA-256 digest identifying a signed transaction.
type TxHash [32]byte

// ToTxHash constructs a transaction hash from raw digest bytes.
func ToTxHash(data []byte) (TxHash, error) {
	if len(data) != 32 {
		return TxHash{}, fmt.Errorf("transaction hash must be 32 bytes, got %d", len(data))
	}

	var h TxHash
	copy(h[:], data)
	return h, nil
}

// ParseTxHash constructs a transaction hash from its hex representation.
func ParseTxHash(hexStr string) (TxHash, error) {
	data, err := hexutil.Decode(hexStr)
	if err != nil {
		data, err = hexutil.Decode("0x" + hexStr)
		if err != nil {
			return TxHash{}, fmt.Errorf("decoding transaction hash: %w", err)
		}
	}
	return ToTxHash(data)
}

// String implements the fmt.Stringer interface.
func (h TxHash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h TxHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *TxHash) UnmarshalText(text []byte) error {
	parsed, err := ParseTxHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
