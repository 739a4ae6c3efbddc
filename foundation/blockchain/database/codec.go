package database

import (
	"errors"
	"fmt"

	"github.com/karmacoin/node/foundation/blockchain/signature"
	"google.golang.org/protobuf/encoding/protowire"
)

// Canonical encoding is the protocol buffer wire encoding with the fields
// appended in ascending field number order and proto3 zero values omitted.
// Code generation is deliberately not used; every record hand encodes its
// schema here so the bytes that get hashed and signed are fully pinned by
// this file.
//
//	Signature            1:scheme 2:bytes
//	TraitScore           1:trait_id 2:score 3:community_id
//	CommunityMembership  1:community_id 2:karma_score 3:is_admin
//	User                 1:account_id 2:nonce 3:user_name 4:mobile_number
//	                     5:balance 6:trait_scores 7:memberships
//	                     8:karma_score 9:pre_keys
//	VerificationEvidence 1:account_id 2:mobile_number 3:requested_user_name
//	                     4:verifier_account_id 5:result 6:timestamp 7:signature
//	TransactionBody      1:timestamp 2:nonce 3:fee 4:net_id 5:kind 6:payload
//	NewUserV1            1:evidence
//	PaymentV1            1:to_number 2:amount 3:char_trait_id
//	UpdateUserV1         1:new_user_name 2:new_mobile_number 3:evidence
//	SignedTransaction    1:signer 2:signature 3:body
//	TransactionEvent     1:timestamp 2:height 3:transaction 4:tx_hash
//	                     5:result 6:info 7:fee 8:fee_type 9:signup_reward
//	                     10:referral_reward 11:error_message
//	TransactionEvents    1:events
//	Block                1:time 2:author 3:height 4:tx_hashes 5:fees
//	                     6:prev_block_digest 7:signature 8:digest
//	BlockEvent           1:timestamp 2:height 3:block_hash 4:signups_count
//	                     5:payments_count 6:fees_amount 7:signup_rewards_amount
//	                     8:referral_rewards_amount 9:referral_rewards_count
//	                     10:reward 11:transactions_events
//	BlockchainStats      1..17 in struct order
//	LeaderboardEntry     1:account_id 2:user_name 3:score 4:trait_ids

// ErrMalformed is returned when a stored or submitted record fails to
// decode.
var ErrMalformed = errors.New("malformed record")

// =============================================================================
// Append helpers.

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

// =============================================================================
// Signature

func encodeSignature(sig signature.Signature) []byte {
	var b []byte
	b = appendUint(b, 1, uint64(sig.Scheme))
	b = appendBytes(b, 2, sig.Bytes)
	return b
}

func decodeSignature(data []byte) (signature.Signature, error) {
	var sig signature.Signature

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			sig.Scheme = uint32(v.uint)
		case 2:
			sig.Bytes = v.bytes
		}
		return nil
	})

	return sig, err
}

// =============================================================================
// User

// EncodeUser returns the canonical encoding of a user record.
func EncodeUser(u User) []byte {
	var b []byte
	b = appendBytes(b, 1, u.AccountID[:])
	b = appendUint(b, 2, u.Nonce)
	b = appendBytes(b, 3, []byte(u.UserName))
	b = appendBytes(b, 4, []byte(u.MobileNumber))
	b = appendUint(b, 5, u.Balance)
	for _, ts := range u.TraitScores {
		b = appendMessage(b, 6, encodeTraitScore(ts))
	}
	for _, m := range u.Memberships {
		b = appendMessage(b, 7, encodeMembership(m))
	}
	b = appendUint(b, 8, uint64(u.KarmaScore))
	for _, pk := range u.PreKeys {
		b = appendBytes(b, 9, pk)
	}
	return b
}

// DecodeUser decodes a canonical user record.
func DecodeUser(data []byte) (User, error) {
	var u User

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			u.AccountID = id
		case 2:
			u.Nonce = v.uint
		case 3:
			u.UserName = string(v.bytes)
		case 4:
			u.MobileNumber = string(v.bytes)
		case 5:
			u.Balance = v.uint
		case 6:
			ts, err := decodeTraitScore(v.bytes)
			if err != nil {
				return err
			}
			u.TraitScores = append(u.TraitScores, ts)
		case 7:
			m, err := decodeMembership(v.bytes)
			if err != nil {
				return err
			}
			u.Memberships = append(u.Memberships, m)
		case 8:
			u.KarmaScore = uint32(v.uint)
		case 9:
			u.PreKeys = append(u.PreKeys, v.bytes)
		}
		return nil
	})

	return u, err
}

func encodeTraitScore(ts TraitScore) []byte {
	var b []byte
	b = appendUint(b, 1, uint64(ts.TraitID))
	b = appendUint(b, 2, uint64(ts.Score))
	b = appendUint(b, 3, uint64(ts.CommunityID))
	return b
}

func decodeTraitScore(data []byte) (TraitScore, error) {
	var ts TraitScore

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			ts.TraitID = uint32(v.uint)
		case 2:
			ts.Score = uint32(v.uint)
		case 3:
			ts.CommunityID = uint32(v.uint)
		}
		return nil
	})

	return ts, err
}

func encodeMembership(m CommunityMembership) []byte {
	var b []byte
	b = appendUint(b, 1, uint64(m.CommunityID))
	b = appendUint(b, 2, uint64(m.KarmaScore))
	if m.IsAdmin {
		b = appendUint(b, 3, 1)
	}
	return b
}

func decodeMembership(data []byte) (CommunityMembership, error) {
	var m CommunityMembership

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			m.CommunityID = uint32(v.uint)
		case 2:
			m.KarmaScore = uint32(v.uint)
		case 3:
			m.IsAdmin = v.uint != 0
		}
		return nil
	})

	return m, err
}

// =============================================================================
// VerificationEvidence

// EncodeVerificationEvidence returns the canonical encoding of the evidence.
func EncodeVerificationEvidence(ev VerificationEvidence) []byte {
	var b []byte
	b = appendBytes(b, 1, ev.AccountID[:])
	b = appendBytes(b, 2, []byte(ev.MobileNumber))
	b = appendBytes(b, 3, []byte(ev.RequestedUserName))
	b = appendBytes(b, 4, ev.VerifierAccountID[:])
	b = appendUint(b, 5, uint64(ev.Result))
	b = appendUint(b, 6, ev.Timestamp)
	b = appendMessage(b, 7, encodeSignature(ev.Signature))
	return b
}

// DecodeVerificationEvidence decodes canonical evidence bytes.
func DecodeVerificationEvidence(data []byte) (VerificationEvidence, error) {
	var ev VerificationEvidence

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			ev.AccountID = id
		case 2:
			ev.MobileNumber = string(v.bytes)
		case 3:
			ev.RequestedUserName = string(v.bytes)
		case 4:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			ev.VerifierAccountID = id
		case 5:
			ev.Result = VerificationResult(v.uint)
		case 6:
			ev.Timestamp = v.uint
		case 7:
			sig, err := decodeSignature(v.bytes)
			if err != nil {
				return err
			}
			ev.Signature = sig
		}
		return nil
	})

	return ev, err
}

// =============================================================================
// Transaction body and payloads

// EncodeTransactionBody returns the canonical encoding of the body. The
// payload goes on the wire as (kind, bytes).
func EncodeTransactionBody(body TransactionBody) ([]byte, error) {
	if body.Payload == nil {
		return nil, errors.New("missing payload")
	}

	payload, err := encodePayload(body.Payload)
	if err != nil {
		return nil, err
	}

	var b []byte
	b = appendUint(b, 1, body.Timestamp)
	b = appendUint(b, 2, body.Nonce)
	b = appendUint(b, 3, body.Fee)
	b = appendUint(b, 4, uint64(body.NetID))
	b = appendUint(b, 5, uint64(body.Payload.Kind()))
	b = appendBytes(b, 6, payload)

	return b, nil
}

// DecodeTransactionBody decodes canonical body bytes.
func DecodeTransactionBody(data []byte) (TransactionBody, error) {
	var body TransactionBody
	var kind PayloadKind
	var payload []byte

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			body.Timestamp = v.uint
		case 2:
			body.Nonce = v.uint
		case 3:
			body.Fee = v.uint
		case 4:
			body.NetID = uint32(v.uint)
		case 5:
			kind = PayloadKind(v.uint)
		case 6:
			payload = v.bytes
		}
		return nil
	})
	if err != nil {
		return TransactionBody{}, err
	}

	body.Payload, err = decodePayload(kind, payload)
	if err != nil {
		return TransactionBody{}, err
	}

	return body, nil
}

func encodePayload(p Payload) ([]byte, error) {
	switch pl := p.(type) {
	case NewUserV1:
		var b []byte
		b = appendMessage(b, 1, EncodeVerificationEvidence(pl.Evidence))
		return b, nil

	case PaymentV1:
		var b []byte
		b = appendBytes(b, 1, []byte(pl.ToNumber))
		b = appendUint(b, 2, pl.Amount)
		b = appendUint(b, 3, uint64(pl.CharTraitID))
		return b, nil

	case UpdateUserV1:
		var b []byte
		b = appendBytes(b, 1, []byte(pl.NewUserName))
		b = appendBytes(b, 2, []byte(pl.NewMobileNumber))
		if pl.Evidence != nil {
			b = appendMessage(b, 3, EncodeVerificationEvidence(*pl.Evidence))
		}
		return b, nil

	case DeleteUserV1:
		return nil, nil
	}

	return nil, fmt.Errorf("unknown payload type %T", p)
}

func decodePayload(kind PayloadKind, data []byte) (Payload, error) {
	switch kind {
	case KindNewUser:
		var pl NewUserV1
		err := walkFields(data, func(num protowire.Number, v fieldValue) error {
			if num == 1 {
				ev, err := DecodeVerificationEvidence(v.bytes)
				if err != nil {
					return err
				}
				pl.Evidence = ev
			}
			return nil
		})
		return pl, err

	case KindPayment:
		var pl PaymentV1
		err := walkFields(data, func(num protowire.Number, v fieldValue) error {
			switch num {
			case 1:
				pl.ToNumber = string(v.bytes)
			case 2:
				pl.Amount = v.uint
			case 3:
				pl.CharTraitID = uint32(v.uint)
			}
			return nil
		})
		return pl, err

	case KindUpdateUser:
		var pl UpdateUserV1
		err := walkFields(data, func(num protowire.Number, v fieldValue) error {
			switch num {
			case 1:
				pl.NewUserName = string(v.bytes)
			case 2:
				pl.NewMobileNumber = string(v.bytes)
			case 3:
				ev, err := DecodeVerificationEvidence(v.bytes)
				if err != nil {
					return err
				}
				pl.Evidence = &ev
			}
			return nil
		})
		return pl, err

	case KindDeleteUser:
		return DeleteUserV1{}, nil
	}

	return nil, fmt.Errorf("%w: unknown payload kind %d", ErrMalformed, kind)
}

// =============================================================================
// SignedTransaction

// EncodeSignedTransaction returns the canonical encoding of the whole
// record, signature included. Its SHA-256 is the transaction hash.
func EncodeSignedTransaction(tx SignedTransaction) []byte {
	var b []byte
	b = appendBytes(b, 1, tx.Signer[:])
	b = appendMessage(b, 2, encodeSignature(tx.Signature))
	b = appendBytes(b, 3, tx.Body)
	return b
}

// DecodeSignedTransaction decodes a canonical signed transaction.
func DecodeSignedTransaction(data []byte) (SignedTransaction, error) {
	var tx SignedTransaction

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			tx.Signer = id
		case 2:
			sig, err := decodeSignature(v.bytes)
			if err != nil {
				return err
			}
			tx.Signature = sig
		case 3:
			tx.Body = v.bytes
		}
		return nil
	})

	return tx, err
}

// =============================================================================
// Events

// EncodeTransactionEvent returns the canonical encoding of the event.
func EncodeTransactionEvent(ev TransactionEvent) []byte {
	var b []byte
	b = appendUint(b, 1, ev.Timestamp)
	b = appendUint(b, 2, ev.Height)
	b = appendMessage(b, 3, EncodeSignedTransaction(ev.Transaction))
	b = appendBytes(b, 4, ev.TxHash[:])
	b = appendUint(b, 5, uint64(ev.Result))
	b = appendUint(b, 6, uint64(ev.Info))
	b = appendUint(b, 7, ev.Fee)
	b = appendUint(b, 8, uint64(ev.FeeType))
	b = appendUint(b, 9, ev.SignupReward)
	b = appendUint(b, 10, ev.ReferralReward)
	b = appendBytes(b, 11, []byte(ev.ErrorMessage))
	return b
}

// DecodeTransactionEvent decodes a canonical transaction event.
func DecodeTransactionEvent(data []byte) (TransactionEvent, error) {
	var ev TransactionEvent

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			ev.Timestamp = v.uint
		case 2:
			ev.Height = v.uint
		case 3:
			tx, err := DecodeSignedTransaction(v.bytes)
			if err != nil {
				return err
			}
			ev.Transaction = tx
		case 4:
			h, err := ToTxHash(v.bytes)
			if err != nil {
				return err
			}
			ev.TxHash = h
		case 5:
			ev.Result = TxResult(v.uint)
		case 6:
			ev.Info = ExecutionInfo(v.uint)
		case 7:
			ev.Fee = v.uint
		case 8:
			ev.FeeType = FeeType(v.uint)
		case 9:
			ev.SignupReward = v.uint
		case 10:
			ev.ReferralReward = v.uint
		case 11:
			ev.ErrorMessage = string(v.bytes)
		}
		return nil
	})

	return ev, err
}

// EncodeTransactionEvents encodes the per-hash event list.
func EncodeTransactionEvents(events []TransactionEvent) []byte {
	var b []byte
	for _, ev := range events {
		b = appendMessage(b, 1, EncodeTransactionEvent(ev))
	}
	return b
}

// DecodeTransactionEvents decodes the per-hash event list.
func DecodeTransactionEvents(data []byte) ([]TransactionEvent, error) {
	var events []TransactionEvent

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		if num == 1 {
			ev, err := DecodeTransactionEvent(v.bytes)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})

	return events, err
}

// =============================================================================
// Block

// EncodeBlock returns the canonical encoding of a block.
func EncodeBlock(b Block) []byte {
	var buf []byte
	buf = appendUint(buf, 1, b.TimeMS)
	buf = appendBytes(buf, 2, b.Author[:])
	buf = appendUint(buf, 3, b.Height)
	for _, h := range b.TxHashes {
		buf = appendBytes(buf, 4, h[:])
	}
	buf = appendUint(buf, 5, b.Fees)
	buf = appendBytes(buf, 6, b.PrevBlockDigest)
	buf = appendMessage(buf, 7, encodeSignature(b.Signature))
	buf = appendBytes(buf, 8, b.Digest)
	return buf
}

// DecodeBlock decodes a canonical block.
func DecodeBlock(data []byte) (Block, error) {
	var b Block

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			b.TimeMS = v.uint
		case 2:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			b.Author = id
		case 3:
			b.Height = v.uint
		case 4:
			h, err := ToTxHash(v.bytes)
			if err != nil {
				return err
			}
			b.TxHashes = append(b.TxHashes, h)
		case 5:
			b.Fees = v.uint
		case 6:
			b.PrevBlockDigest = v.bytes
		case 7:
			sig, err := decodeSignature(v.bytes)
			if err != nil {
				return err
			}
			b.Signature = sig
		case 8:
			b.Digest = v.bytes
		}
		return nil
	})

	return b, err
}

// EncodeBlockEvent returns the canonical encoding of a block event.
func EncodeBlockEvent(ev BlockEvent) []byte {
	var b []byte
	b = appendUint(b, 1, ev.Timestamp)
	b = appendUint(b, 2, ev.Height)
	b = appendBytes(b, 3, ev.BlockHash)
	b = appendUint(b, 4, ev.SignupsCount)
	b = appendUint(b, 5, ev.PaymentsCount)
	b = appendUint(b, 6, ev.FeesAmount)
	b = appendUint(b, 7, ev.SignupRewardsAmount)
	b = appendUint(b, 8, ev.ReferralRewardsAmount)
	b = appendUint(b, 9, ev.ReferralRewardsCount)
	b = appendUint(b, 10, ev.Reward)
	for _, te := range ev.TransactionsEvents {
		b = appendMessage(b, 11, EncodeTransactionEvent(te))
	}
	return b
}

// DecodeBlockEvent decodes a canonical block event.
func DecodeBlockEvent(data []byte) (BlockEvent, error) {
	var ev BlockEvent

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			ev.Timestamp = v.uint
		case 2:
			ev.Height = v.uint
		case 3:
			ev.BlockHash = v.bytes
		case 4:
			ev.SignupsCount = v.uint
		case 5:
			ev.PaymentsCount = v.uint
		case 6:
			ev.FeesAmount = v.uint
		case 7:
			ev.SignupRewardsAmount = v.uint
		case 8:
			ev.ReferralRewardsAmount = v.uint
		case 9:
			ev.ReferralRewardsCount = v.uint
		case 10:
			ev.Reward = v.uint
		case 11:
			te, err := DecodeTransactionEvent(v.bytes)
			if err != nil {
				return err
			}
			ev.TransactionsEvents = append(ev.TransactionsEvents, te)
		}
		return nil
	})

	return ev, err
}

// =============================================================================
// Stats and leaderboard

// EncodeStats returns the canonical encoding of the aggregate statistics.
func EncodeStats(s BlockchainStats) []byte {
	var b []byte
	b = appendUint(b, 1, s.LastBlockTime)
	b = appendUint(b, 2, s.TipHeight)
	b = appendUint(b, 3, s.TransactionsCount)
	b = appendUint(b, 4, s.PaymentsCount)
	b = appendUint(b, 5, s.UsersCount)
	b = appendUint(b, 6, s.FeesAmount)
	b = appendUint(b, 7, s.MintedAmount)
	b = appendUint(b, 8, s.CirculationAmount)
	b = appendUint(b, 9, s.FeeSubsCount)
	b = appendUint(b, 10, s.FeeSubsAmount)
	b = appendUint(b, 11, s.SignupRewardsCount)
	b = appendUint(b, 12, s.SignupRewardsAmount)
	b = appendUint(b, 13, s.ReferralRewardsCount)
	b = appendUint(b, 14, s.ReferralRewardsAmount)
	b = appendUint(b, 15, s.ValidatorRewardsCount)
	b = appendUint(b, 16, s.ValidatorRewardsAmount)
	b = appendUint(b, 17, s.KarmaRewardsAmount)
	return b
}

// DecodeStats decodes canonical aggregate statistics.
func DecodeStats(data []byte) (BlockchainStats, error) {
	var s BlockchainStats

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			s.LastBlockTime = v.uint
		case 2:
			s.TipHeight = v.uint
		case 3:
			s.TransactionsCount = v.uint
		case 4:
			s.PaymentsCount = v.uint
		case 5:
			s.UsersCount = v.uint
		case 6:
			s.FeesAmount = v.uint
		case 7:
			s.MintedAmount = v.uint
		case 8:
			s.CirculationAmount = v.uint
		case 9:
			s.FeeSubsCount = v.uint
		case 10:
			s.FeeSubsAmount = v.uint
		case 11:
			s.SignupRewardsCount = v.uint
		case 12:
			s.SignupRewardsAmount = v.uint
		case 13:
			s.ReferralRewardsCount = v.uint
		case 14:
			s.ReferralRewardsAmount = v.uint
		case 15:
			s.ValidatorRewardsCount = v.uint
		case 16:
			s.ValidatorRewardsAmount = v.uint
		case 17:
			s.KarmaRewardsAmount = v.uint
		}
		return nil
	})

	return s, err
}

// EncodeLeaderboardEntry returns the canonical encoding of the entry.
func EncodeLeaderboardEntry(e LeaderboardEntry) []byte {
	var b []byte
	b = appendBytes(b, 1, e.AccountID[:])
	b = appendBytes(b, 2, []byte(e.UserName))
	b = appendUint(b, 3, uint64(e.Score))
	for _, id := range e.TraitIDs {
		b = appendUint(b, 4, uint64(id))
	}
	return b
}

// DecodeLeaderboardEntry decodes a canonical leaderboard entry.
func DecodeLeaderboardEntry(data []byte) (LeaderboardEntry, error) {
	var e LeaderboardEntry

	err := walkFields(data, func(num protowire.Number, v fieldValue) error {
		switch num {
		case 1:
			id, err := ToAccountID(v.bytes)
			if err != nil {
				return err
			}
			e.AccountID = id
		case 2:
			e.UserName = string(v.bytes)
		case 3:
			e.Score = uint32(v.uint)
		case 4:
			e.TraitIDs = append(e.TraitIDs, uint32(v.uint))
		}
		return nil
	})

	return e, err
}

// =============================================================================
// Wire walking

// fieldValue carries the decoded value of one wire field. Varint fields set
// uint; length delimited fields set bytes.
type fieldValue struct {
	uint  uint64
	bytes []byte
}

// walkFields iterates the top level fields of a wire message, invoking fn
// per field. Unknown field numbers are skipped by the callers' switches,
// unknown wire types are skipped here.
func walkFields(data []byte, fn func(num protowire.Number, v fieldValue) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrMalformed
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ErrMalformed
			}
			data = data[n:]
			if err := fn(num, fieldValue{uint: v}); err != nil {
				return err
			}

		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return ErrMalformed
			}
			data = data[n:]
			cp := make([]byte, len(v))
			copy(cp, v)
			if err := fn(num, fieldValue{bytes: cp}); err != nil {
				return err
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return ErrMalformed
			}
			data = data[n:]
		}
	}

	return nil
}
