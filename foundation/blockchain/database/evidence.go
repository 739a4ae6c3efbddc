package database

import (
	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// VerificationResult is the verifier's position on an attestation request.
type VerificationResult uint32

// The set of verification results. Only Verified admits a NewUser
// transaction.
const (
	VerificationUnknown                   VerificationResult = 0
	VerificationNicknameTaken             VerificationResult = 1
	VerificationInvalidCode               VerificationResult = 2
	VerificationInvalidSignature          VerificationResult = 3
	VerificationNumberOtherAccountExists  VerificationResult = 4
	VerificationNumberThisAccountExists   VerificationResult = 5
	VerificationVerified                  VerificationResult = 6
)

// String implements the fmt.Stringer interface.
func (r VerificationResult) String() string {
	switch r {
	case VerificationNicknameTaken:
		return "nickname-taken"
	case VerificationInvalidCode:
		return "invalid-code"
	case VerificationInvalidSignature:
		return "invalid-signature"
	case VerificationNumberOtherAccountExists:
		return "number-already-registered-other-account"
	case VerificationNumberThisAccountExists:
		return "number-already-registered-this-account"
	case VerificationVerified:
		return "verified"
	}
	return "unknown"
}

// VerificationEvidence binds an account id to a mobile number and a
// requested user name, signed by a verifier.
type VerificationEvidence struct {
	AccountID         AccountID           `json:"account_id"`
	MobileNumber      string              `json:"mobile_number"`
	RequestedUserName string              `json:"requested_user_name"`
	VerifierAccountID AccountID           `json:"verifier_account_id"`
	Result            VerificationResult  `json:"result"`
	Timestamp         uint64              `json:"timestamp"`
	Signature         signature.Signature `json:"signature"`
}

// SignMessage returns the canonical encoding with the signature cleared.
func (ev VerificationEvidence) SignMessage() []byte {
	ev.Signature = signature.Signature{}
	return EncodeVerificationEvidence(ev)
}

// Sign signs the evidence with the verifier keypair.
func (ev *VerificationEvidence) Sign(kp signature.Keypair) {
	ev.Signature = signature.Sign(kp, ev.SignMessage())
}

// VerifySignature checks the evidence was signed by its verifier account.
func (ev VerificationEvidence) VerifySignature() error {
	return signature.Verify(ev.VerifierAccountID[:], ev.SignMessage(), ev.Signature)
}
