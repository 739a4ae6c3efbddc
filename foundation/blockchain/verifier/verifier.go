// Package verifier implements the mobile number attestation protocol. It
// issues signed evidence binding an account id to a mobile number and a
// requested user name after an OTP round trip. Codes live in the
// verification-codes column family with a 24 hour TTL; delivery goes
// through an external provider behind the CodeSender interface.
package verifier

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// CodeSender delivers one time codes and invite texts to mobile numbers.
// Implementations wrap an SMS gateway; the node ships a logging stand-in.
type CodeSender interface {
	SendCode(ctx context.Context, number string, code string) error
	SendInvite(ctx context.Context, number string) error
}

// EventHandler defines a function that is called when events occur during
// verification.
type EventHandler func(v string, args ...any)

// Verifier issues signed attestations for the configured keypair.
type Verifier struct {
	db        *database.Database
	keypair   signature.Keypair
	accountID database.AccountID
	sender    CodeSender
	evHandler EventHandler
}

// New constructs a verifier from its signing keypair.
func New(db *database.Database, kp signature.Keypair, sender CodeSender, ev EventHandler) (*Verifier, error) {
	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return nil, err
	}

	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	v := Verifier{
		db:        db,
		keypair:   kp,
		accountID: accountID,
		sender:    sender,
		evHandler: ev,
	}

	return &v, nil
}

// AccountID returns the verifier's account id.
func (v *Verifier) AccountID() database.AccountID {
	return v.accountID
}

// =============================================================================

// RegisterNumber starts an attestation: it checks the request signature,
// rejects numbers that already have an on-chain owner, and otherwise sends
// a fresh one time code to the number. Every response is signed so the
// client can prove the verifier's position.
func (v *Verifier) RegisterNumber(ctx context.Context, req RegisterNumberRequest) (RegisterNumberResponse, error) {
	if err := req.VerifySignature(); err != nil {
		v.evHandler("verifier: RegisterNumber: invalid request signature: account[%s]", req.AccountID)
		return v.registerResponse(RegisterInvalidSignature, req), nil
	}

	existing, err := v.db.GetUserByMobileNumber(req.MobileNumber)
	switch {
	case err == nil:
		if existing.AccountID == req.AccountID {
			return v.registerResponse(RegisterNumberAlreadyRegistered, req), nil
		}
		return v.registerResponse(RegisterNumberAccountExists, req), nil

	case err != database.ErrNotFound:
		return RegisterNumberResponse{}, fmt.Errorf("resolving number: %w", err)
	}

	code, err := newVerificationCode()
	if err != nil {
		return RegisterNumberResponse{}, fmt.Errorf("generating code: %w", err)
	}

	if err := v.db.SaveVerificationCode(code, req.AccountID); err != nil {
		return RegisterNumberResponse{}, fmt.Errorf("persisting code: %w", err)
	}

	if err := v.sender.SendCode(ctx, req.MobileNumber, code); err != nil {
		return RegisterNumberResponse{}, fmt.Errorf("sending code: %w", err)
	}

	v.evHandler("verifier: RegisterNumber: code sent: account[%s] number[%s]", req.AccountID, req.MobileNumber)

	return v.registerResponse(RegisterCodeSent, req), nil
}

// VerifyNumber closes the attestation round trip. On success the returned
// evidence carries the Verified result and admits a NewUser transaction.
func (v *Verifier) VerifyNumber(ctx context.Context, req VerifyNumberRequest) (database.VerificationEvidence, error) {
	if err := req.VerifySignature(); err != nil {
		v.evHandler("verifier: VerifyNumber: invalid request signature: account[%s]", req.AccountID)
		return v.evidence(database.VerificationInvalidSignature, req), nil
	}

	boundAccount, err := v.db.GetVerificationCode(req.Code)
	switch {
	case err == database.ErrNotFound:
		return v.evidence(database.VerificationInvalidCode, req), nil
	case err != nil:
		return database.VerificationEvidence{}, fmt.Errorf("resolving code: %w", err)
	}
	if boundAccount != req.AccountID {
		return v.evidence(database.VerificationInvalidCode, req), nil
	}

	// The evidence result set is part of the signed wire format and has no
	// malformed-request value; a request without a name is not well formed
	// and answers as an invalid signature.
	if req.RequestedUserName == "" {
		return v.evidence(database.VerificationInvalidSignature, req), nil
	}

	// A taken name only blocks other accounts. A user re-verifying under
	// their own name is rebinding their number.
	owner, err := v.db.GetUserByUserName(req.RequestedUserName)
	switch {
	case err == nil && owner.AccountID != req.AccountID:
		return v.evidence(database.VerificationNicknameTaken, req), nil
	case err != nil && err != database.ErrNotFound:
		return database.VerificationEvidence{}, fmt.Errorf("resolving user name: %w", err)
	}

	if err := v.db.DeleteVerificationCode(req.Code); err != nil {
		return database.VerificationEvidence{}, fmt.Errorf("consuming code: %w", err)
	}

	v.evHandler("verifier: VerifyNumber: verified: account[%s] number[%s] name[%s]", req.AccountID, req.MobileNumber, req.RequestedUserName)

	return v.evidence(database.VerificationVerified, req), nil
}

// SendInvite texts a number that received a payment before owning an
// account, at most once per marker TTL.
func (v *Verifier) SendInvite(ctx context.Context, number string) error {
	invited, err := v.db.WasInvited(number)
	if err != nil {
		return err
	}
	if invited {
		return nil
	}

	if err := v.sender.SendInvite(ctx, number); err != nil {
		return fmt.Errorf("sending invite: %w", err)
	}

	v.evHandler("verifier: SendInvite: invited number[%s]", number)

	return v.db.MarkInvited(number)
}

// =============================================================================

func (v *Verifier) registerResponse(result RegisterNumberResult, req RegisterNumberRequest) RegisterNumberResponse {
	resp := RegisterNumberResponse{
		Result:            result,
		AccountID:         req.AccountID,
		MobileNumber:      req.MobileNumber,
		VerifierAccountID: v.accountID,
		Timestamp:         uint64(time.Now().UTC().UnixMilli()),
	}
	resp.Sign(v.keypair)
	return resp
}

func (v *Verifier) evidence(result database.VerificationResult, req VerifyNumberRequest) database.VerificationEvidence {
	ev := database.VerificationEvidence{
		AccountID:         req.AccountID,
		MobileNumber:      req.MobileNumber,
		RequestedUserName: req.RequestedUserName,
		VerifierAccountID: v.accountID,
		Result:            result,
		Timestamp:         uint64(time.Now().UTC().UnixMilli()),
	}
	ev.Sign(v.keypair)
	return ev
}

// LogSender is a CodeSender that only logs. It stands in when no SMS
// gateway is configured, which keeps local development and tests offline.
type LogSender struct {
	Log EventHandler
}

// SendCode logs the code instead of texting it.
func (s LogSender) SendCode(ctx context.Context, number string, code string) error {
	s.Log("verifier: sms stub: code[%s] number[%s]", code, number)
	return nil
}

// SendInvite logs the invite instead of texting it.
func (s LogSender) SendInvite(ctx context.Context, number string) error {
	s.Log("verifier: sms stub: invite number[%s]", number)
	return nil
}

// newVerificationCode draws a six digit code uniformly from a CSPRNG.
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100_000), nil
}
