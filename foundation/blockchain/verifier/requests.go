package verifier

import (
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/signature"
	"google.golang.org/protobuf/encoding/protowire"
)

// RegisterNumberResult enumerates the outcomes of a RegisterNumber call.
type RegisterNumberResult uint32

// Set of RegisterNumber outcomes.
const (
	RegisterInvalidSignature        RegisterNumberResult = 1
	RegisterNumberAlreadyRegistered RegisterNumberResult = 2
	RegisterNumberAccountExists     RegisterNumberResult = 3
	RegisterCodeSent                RegisterNumberResult = 4
)

// =============================================================================

// RegisterNumberRequest asks the verifier to send a one time code to a
// mobile number. The signature is by the account's key over the canonical
// encoding with the signature field cleared.
//
// Canonical fields: 1:account_id 2:mobile_number 3:signature
type RegisterNumberRequest struct {
	AccountID    database.AccountID  `json:"account_id"`
	MobileNumber string              `json:"mobile_number"`
	Signature    signature.Signature `json:"signature"`
}

// SignMessage returns the canonical bytes the request signature covers.
func (req RegisterNumberRequest) SignMessage() []byte {
	cp := req
	cp.Signature = signature.Signature{}
	return encodeRegisterNumberRequest(cp)
}

// Sign signs the request with the account's keypair.
func (req *RegisterNumberRequest) Sign(kp signature.Keypair) {
	req.Signature = signature.Sign(kp, req.SignMessage())
}

// VerifySignature checks the request signature against the account id.
func (req RegisterNumberRequest) VerifySignature() error {
	return signature.Verify(req.AccountID[:], req.SignMessage(), req.Signature)
}

func encodeRegisterNumberRequest(req RegisterNumberRequest) []byte {
	var b []byte
	b = appendBytes(b, 1, req.AccountID[:])
	b = appendBytes(b, 2, []byte(req.MobileNumber))
	b = appendMessage(b, 3, encodeSignature(req.Signature))
	return b
}

// =============================================================================

// RegisterNumberResponse is the verifier's signed answer to a
// RegisterNumberRequest.
//
// Canonical fields: 1:result 2:account_id 3:mobile_number
// 4:verifier_account_id 5:timestamp 6:signature
type RegisterNumberResponse struct {
	Result            RegisterNumberResult `json:"result"`
	AccountID         database.AccountID   `json:"account_id"`
	MobileNumber      string               `json:"mobile_number"`
	VerifierAccountID database.AccountID   `json:"verifier_account_id"`
	Timestamp         uint64               `json:"timestamp"`
	Signature         signature.Signature  `json:"signature"`
}

// SignMessage returns the canonical bytes the verifier signature covers.
func (resp RegisterNumberResponse) SignMessage() []byte {
	cp := resp
	cp.Signature = signature.Signature{}
	return encodeRegisterNumberResponse(cp)
}

// Sign signs the response with the verifier's keypair.
func (resp *RegisterNumberResponse) Sign(kp signature.Keypair) {
	resp.Signature = signature.Sign(kp, resp.SignMessage())
}

// VerifySignature checks the response signature against the verifier
// account id it carries.
func (resp RegisterNumberResponse) VerifySignature() error {
	return signature.Verify(resp.VerifierAccountID[:], resp.SignMessage(), resp.Signature)
}

func encodeRegisterNumberResponse(resp RegisterNumberResponse) []byte {
	var b []byte
	b = appendUint(b, 1, uint64(resp.Result))
	b = appendBytes(b, 2, resp.AccountID[:])
	b = appendBytes(b, 3, []byte(resp.MobileNumber))
	b = appendBytes(b, 4, resp.VerifierAccountID[:])
	b = appendUint(b, 5, resp.Timestamp)
	b = appendMessage(b, 6, encodeSignature(resp.Signature))
	return b
}

// =============================================================================

// VerifyNumberRequest presents the received code and the requested user
// name. A successful call yields verification evidence a NewUser
// transaction can embed.
//
// Canonical fields: 1:account_id 2:mobile_number 3:code
// 4:requested_user_name 5:signature
type VerifyNumberRequest struct {
	AccountID         database.AccountID  `json:"account_id"`
	MobileNumber      string              `json:"mobile_number"`
	Code              string              `json:"code"`
	RequestedUserName string              `json:"requested_user_name"`
	Signature         signature.Signature `json:"signature"`
}

// SignMessage returns the canonical bytes the request signature covers.
func (req VerifyNumberRequest) SignMessage() []byte {
	cp := req
	cp.Signature = signature.Signature{}
	return encodeVerifyNumberRequest(cp)
}

// Sign signs the request with the account's keypair.
func (req *VerifyNumberRequest) Sign(kp signature.Keypair) {
	req.Signature = signature.Sign(kp, req.SignMessage())
}

// VerifySignature checks the request signature against the account id.
func (req VerifyNumberRequest) VerifySignature() error {
	return signature.Verify(req.AccountID[:], req.SignMessage(), req.Signature)
}

func encodeVerifyNumberRequest(req VerifyNumberRequest) []byte {
	var b []byte
	b = appendBytes(b, 1, req.AccountID[:])
	b = appendBytes(b, 2, []byte(req.MobileNumber))
	b = appendBytes(b, 3, []byte(req.Code))
	b = appendBytes(b, 4, []byte(req.RequestedUserName))
	b = appendMessage(b, 5, encodeSignature(req.Signature))
	return b
}

// =============================================================================
// Wire helpers, matching the ledger's canonical encoding conventions:
// ascending field order, zero values omitted.

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	if len(msg) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func encodeSignature(sig signature.Signature) []byte {
	var b []byte
	b = appendUint(b, 1, uint64(sig.Scheme))
	b = appendBytes(b, 2, sig.Bytes)
	return b
}
