package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// Transactions older or newer than this window relative to node time are
// rejected.
const TxTimestampWindow = 48 * time.Hour

// PayloadKind is the on-wire transaction payload discriminator.
type PayloadKind uint32

// The set of transaction payloads.
const (
	KindUnknown    PayloadKind = 0
	KindNewUser    PayloadKind = 1
	KindPayment    PayloadKind = 2
	KindUpdateUser PayloadKind = 3
	KindDeleteUser PayloadKind = 4
)

// String implements the fmt.Stringer interface.
func (k PayloadKind) String() string {
	switch k {
	case KindNewUser:
		return "new-user"
	case KindPayment:
		return "payment"
	case KindUpdateUser:
		return "update-user"
	case KindDeleteUser:
		return "delete-user"
	}
	return "unknown"
}

// Payload is the sum type over the transaction bodies. The wire format
// stays (kind, bytes) for compatibility.
type Payload interface {
	Kind() PayloadKind
}

// NewUserV1 creates an on-chain user from verifier evidence.
type NewUserV1 struct {
	Evidence VerificationEvidence `json:"evidence"`
}

// Kind implements the Payload interface.
func (NewUserV1) Kind() PayloadKind { return KindNewUser }

// PaymentV1 moves KCents to the user owning a mobile number, optionally
// carrying an appreciation trait.
type PaymentV1 struct {
	ToNumber    string `json:"to_number"`
	Amount      uint64 `json:"amount"`
	CharTraitID uint32 `json:"char_trait_id"`
}

// Kind implements the Payload interface.
func (PaymentV1) Kind() PayloadKind { return KindPayment }

// UpdateUserV1 renames a user and/or rebinds their mobile number. A number
// rebind requires fresh verifier evidence.
type UpdateUserV1 struct {
	NewUserName     string                `json:"new_user_name,omitempty"`
	NewMobileNumber string                `json:"new_mobile_number,omitempty"`
	Evidence        *VerificationEvidence `json:"evidence,omitempty"`
}

// Kind implements the Payload interface.
func (UpdateUserV1) Kind() PayloadKind { return KindUpdateUser }

// DeleteUserV1 tombstones the signer's user record.
type DeleteUserV1 struct{}

// Kind implements the Payload interface.
func (DeleteUserV1) Kind() PayloadKind { return KindDeleteUser }

// =============================================================================

// TransactionBody is the signed portion of a transaction.
type TransactionBody struct {
	Timestamp uint64  `json:"timestamp"` // Unix milliseconds at the client.
	Nonce     uint64  `json:"nonce"`
	Fee       uint64  `json:"fee"`
	NetID     uint32  `json:"net_id"`
	Payload   Payload `json:"payload"`
}

// Sign produces a signed transaction carrying the canonical body bytes and
// an Ed25519 signature over them.
func (body TransactionBody) Sign(kp signature.Keypair) (SignedTransaction, error) {
	data, err := EncodeTransactionBody(body)
	if err != nil {
		return SignedTransaction{}, err
	}

	signer, err := ToAccountID(kp.PublicKey)
	if err != nil {
		return SignedTransaction{}, err
	}

	tx := SignedTransaction{
		Signer:    signer,
		Signature: signature.Sign(kp, data),
		Body:      data,
	}

	return tx, nil
}

// =============================================================================

// SignedTransaction is how clients provide transactions for inclusion into
// the blockchain.
type SignedTransaction struct {
	Signer    AccountID           `json:"signer"`
	Signature signature.Signature `json:"signature"`
	Body      hexutil.Bytes       `json:"body"`
}

// Hash returns the SHA-256 digest of the canonical encoding of the whole
// record, signature included.
func (tx SignedTransaction) Hash() TxHash {
	return TxHash(signature.Hash(EncodeSignedTransaction(tx)))
}

// DecodeBody decodes the canonical body bytes.
func (tx SignedTransaction) DecodeBody() (TransactionBody, error) {
	return DecodeTransactionBody(tx.Body)
}

// VerifySignature checks the body bytes were signed by the signer account.
func (tx SignedTransaction) VerifySignature() error {
	return signature.Verify(tx.Signer[:], tx.Body, tx.Signature)
}

// Validate performs the syntactic admission checks: signature, decodable
// body, positive fee, network id and timestamp window.
func (tx SignedTransaction) Validate(netID uint32, now time.Time) error {
	if err := tx.VerifySignature(); err != nil {
		return err
	}

	body, err := tx.DecodeBody()
	if err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	if body.Fee == 0 {
		return errors.New("transaction fee must be positive")
	}

	if body.NetID != netID {
		return fmt.Errorf("wrong network id, got %d, exp %d", body.NetID, netID)
	}

	ts := time.UnixMilli(int64(body.Timestamp))
	if d := now.Sub(ts); d > TxTimestampWindow || d < -TxTimestampWindow {
		return fmt.Errorf("timestamp outside the %v window", TxTimestampWindow)
	}

	if body.Payload == nil {
		return errors.New("missing payload")
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTransaction) String() string {
	body, err := tx.DecodeBody()
	if err != nil {
		return fmt.Sprintf("%s:?", tx.Signer)
	}
	return fmt.Sprintf("%s:%d:%s", tx.Signer, body.Nonce, body.Payload.Kind())
}
