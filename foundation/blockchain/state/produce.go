package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/karmacoin/node/foundation/blockchain/tokenomics"
)

// MigratedNameSuffix marks a user record whose state moved to a new
// account owning the same mobile number.
const MigratedNameSuffix = " [old account]"

// round carries the working set of one block production invocation.
type round struct {
	stats           database.BlockchainStats
	height          uint64
	now             uint64
	blockEvent      database.BlockEvent
	included        []database.TxHash
	fees            uint64
	userFees        uint64
	subsidisedFees  uint64
	signupsByNumber map[string]bool
}

// ProduceBlock drains the mempool in two passes, new users first so a
// signup always lands before any payment addressed to its number, then
// seals one block over everything that executed. Payments to numbers
// without an account stay in the pool for a future round.
func (s *State) ProduceBlock() (database.BlockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: produce: started: pending[%d]", s.mempool.Count())

	if _, err := s.mempool.RemoveOnChain(); err != nil {
		return database.BlockEvent{}, fmt.Errorf("evicting on-chain transactions: %w", err)
	}

	if s.mempool.Count() == 0 {
		return database.BlockEvent{}, ErrNoPendingTransactions
	}

	stats, err := s.db.GetStats()
	if err != nil {
		return database.BlockEvent{}, fmt.Errorf("loading stats: %w", err)
	}

	r := round{
		stats:           stats,
		height:          stats.TipHeight + 1,
		now:             uint64(time.Now().UTC().UnixMilli()),
		signupsByNumber: make(map[string]bool),
	}
	r.blockEvent = database.BlockEvent{
		Timestamp: r.now,
		Height:    r.height,
	}

	// Pass 1: signups only.
	for _, tx := range s.mempool.Snapshot() {
		if kindOf(tx) == database.KindNewUser {
			s.processNewUser(&r, tx)
		}
	}

	// Pass 2: everything else, against the post-signup state.
	for _, tx := range s.mempool.Snapshot() {
		if kindOf(tx) != database.KindNewUser {
			s.processFollowOn(&r, tx)
		}
	}

	if len(r.included) == 0 {
		return r.blockEvent, ErrNoQualifiedTransactions
	}

	return s.sealBlock(&r)
}

func kindOf(tx database.SignedTransaction) database.PayloadKind {
	body, err := tx.DecodeBody()
	if err != nil || body.Payload == nil {
		return database.KindUnknown
	}
	return body.Payload.Kind()
}

// =============================================================================
// Pass 1: new users.

func (s *State) processNewUser(r *round, tx database.SignedTransaction) {
	hash := tx.Hash()
	ev := database.TransactionEvent{
		Timestamp:   r.now,
		Height:      r.height,
		Transaction: tx,
		TxHash:      hash,
		Result:      database.TxResultInvalid,
	}

	// A signup is settled this round no matter the outcome.
	defer func() {
		if err := s.mempool.Remove(hash); err != nil {
			s.evHandler("state: produce: removing tx[%s]: ERROR: %s", tx, err)
		}
		s.emit(r, ev)
	}()

	if err := tx.VerifySignature(); err != nil {
		ev.Info = database.InfoInvalidSignature
		ev.ErrorMessage = err.Error()
		return
	}
	if err := tx.Validate(s.genesis.NetID, time.Now().UTC()); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	body, _ := tx.DecodeBody()
	ev.Fee = body.Fee
	evd := body.Payload.(database.NewUserV1).Evidence

	if body.Nonce != 1 {
		ev.Info = database.InfoNonceMismatch
		ev.ErrorMessage = fmt.Sprintf("signup nonce must be 1, got %d", body.Nonce)
		return
	}

	if evd.Result != database.VerificationVerified {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = "evidence does not carry a verified result"
		return
	}
	if !s.genesis.IsTrustedVerifier(evd.VerifierAccountID.String()) {
		ev.Info = database.InfoUntrustedVerifier
		ev.ErrorMessage = fmt.Sprintf("verifier %s is not trusted", evd.VerifierAccountID)
		return
	}
	if err := evd.VerifySignature(); err != nil {
		ev.Info = database.InfoInvalidSignature
		ev.ErrorMessage = fmt.Sprintf("evidence signature: %s", err)
		return
	}
	if evd.AccountID != tx.Signer {
		ev.Info = database.InfoInvalidSignature
		ev.ErrorMessage = "evidence is bound to another account"
		return
	}

	if _, err := s.db.GetUserByAccountID(tx.Signer); err == nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = "account already exists"
		return
	} else if err != database.ErrNotFound {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	// An existing owner of the number means this signup is a migration:
	// the old record's holdings move to the new account.
	var migrateFrom *database.User
	existing, err := s.db.GetUserByMobileNumber(evd.MobileNumber)
	switch {
	case err == nil:
		migrateFrom = &existing
	case err != database.ErrNotFound:
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	// The requested name may belong to the record being migrated away; any
	// other owner blocks the signup before a single index moves.
	owner, err := s.db.GetUserByUserName(evd.RequestedUserName)
	switch {
	case err == nil && owner.AccountID != tx.Signer && (migrateFrom == nil || owner.AccountID != migrateFrom.AccountID):
		ev.Info = database.InfoNicknameNotAvailable
		ev.ErrorMessage = fmt.Sprintf("user name %q is taken", evd.RequestedUserName)
		return
	case err != nil && err != database.ErrNotFound:
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	var signupReward uint64
	if migrateFrom == nil {
		signupReward = tokenomics.SignupReward(s.genesis, r.stats)
	}

	subsidised := tokenomics.ShouldSubsidizeFee(s.genesis, r.stats, body.Nonce, body.Fee, database.KindNewUser)
	if !subsidised && body.Fee >= signupReward {
		ev.Info = database.InfoTxFeeTooLow
		ev.ErrorMessage = fmt.Sprintf("fee %d exceeds signup reward %d and no subsidy applies", body.Fee, signupReward)
		return
	}

	user := database.User{
		AccountID:    tx.Signer,
		Nonce:        1,
		UserName:     evd.RequestedUserName,
		MobileNumber: evd.MobileNumber,
		Balance:      signupReward,
	}
	if !subsidised {
		user.Balance -= body.Fee
	}

	var parked *database.User
	if migrateFrom != nil {
		user.Balance += migrateFrom.Balance
		user.TraitScores = migrateFrom.TraitScores
		user.Memberships = migrateFrom.Memberships
		user.KarmaScore = migrateFrom.KarmaScore

		p, err := s.parkUser(*migrateFrom)
		if err != nil {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = fmt.Sprintf("migrating account: %s", err)
			return
		}
		parked = &p
	}
	user.ApplyTrait(genesis.TraitGrower, 0)

	// On failure the parked record still carries the migrated holdings,
	// so nothing is lost.
	if err := s.db.SaveUser(user); err != nil {
		switch {
		case errors.Is(err, database.ErrUserNameTaken):
			ev.Info = database.InfoNicknameNotAvailable
		case errors.Is(err, database.ErrNumberTaken):
			ev.Info = database.InfoNumberNotAvailable
		default:
			ev.Info = database.InfoInvalidData
		}
		ev.ErrorMessage = err.Error()
		return
	}

	if parked != nil {
		cleared := *parked
		cleared.Balance = 0
		cleared.TraitScores = nil
		cleared.Memberships = nil
		cleared.KarmaScore = 0
		if err := s.db.SaveUser(cleared); err != nil {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = fmt.Sprintf("clearing migrated record: %s", err)
			return
		}
	}

	if err := s.commitTx(tx, hash, tx.Signer); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}
	s.upsertLeaderboard(tx.Signer, user.UserName, genesis.TraitGrower)

	ev.Result = database.TxResultExecuted
	ev.Info = database.InfoAccountCreated
	ev.SignupReward = signupReward
	ev.FeeType = feeType(subsidised)

	r.included = append(r.included, hash)
	r.signupsByNumber[evd.MobileNumber] = true
	r.blockEvent.SignupsCount++
	r.blockEvent.SignupRewardsAmount += signupReward
	r.accountFee(body.Fee, subsidised)
	r.stats.TransactionsCount++
	r.stats.UsersCount++
	if signupReward > 0 {
		r.stats.SignupRewardsCount++
		r.stats.SignupRewardsAmount += signupReward
	}
}

// parkUser renames the migrated-away record and moves its number index
// under a synthetic key so the new account can claim both. Holdings stay
// on the parked record until the new account's write lands.
func (s *State) parkUser(old database.User) (database.User, error) {
	renamed, err := s.db.RenameUser(old, old.UserName+MigratedNameSuffix)
	if err != nil {
		return database.User{}, err
	}

	return s.db.RebindNumber(renamed, "migrated:"+renamed.AccountID.String())
}

// =============================================================================
// Pass 2: payments, updates, deletes.

func (s *State) processFollowOn(r *round, tx database.SignedTransaction) {
	hash := tx.Hash()
	ev := database.TransactionEvent{
		Timestamp:   r.now,
		Height:      r.height,
		Transaction: tx,
		TxHash:      hash,
		Result:      database.TxResultInvalid,
	}

	// retryLater keeps the transaction pooled without emitting an event;
	// used for payments whose payee has no account yet.
	retryLater := false

	defer func() {
		if retryLater {
			return
		}
		if err := s.mempool.Remove(hash); err != nil {
			s.evHandler("state: produce: removing tx[%s]: ERROR: %s", tx, err)
		}
		s.emit(r, ev)
	}()

	if err := tx.VerifySignature(); err != nil {
		ev.Info = database.InfoInvalidSignature
		ev.ErrorMessage = err.Error()
		return
	}
	if err := tx.Validate(s.genesis.NetID, time.Now().UTC()); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	body, _ := tx.DecodeBody()
	ev.Fee = body.Fee

	signer, err := s.db.GetUserByAccountID(tx.Signer)
	switch {
	case err == database.ErrNotFound:
		ev.Info = database.InfoAccountNotFound
		ev.ErrorMessage = "signer has no on-chain account"
		return
	case err != nil:
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	switch p := body.Payload.(type) {
	case database.PaymentV1:
		retryLater = s.executePayment(r, &ev, signer, body, p)
	case database.UpdateUserV1:
		s.executeUpdate(r, &ev, signer, body, p)
	case database.DeleteUserV1:
		s.executeDelete(r, &ev, signer, body)
	default:
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = "unsupported payload"
	}
}

func (s *State) executePayment(r *round, ev *database.TransactionEvent, signer database.User, body database.TransactionBody, p database.PaymentV1) bool {
	payee, err := s.db.GetUserByMobileNumber(p.ToNumber)
	switch {
	case err == database.ErrNotFound:
		// Nobody owns the number yet. The payment waits for a signup; an
		// invite nudges the receiver onto the chain.
		if s.inviter != nil {
			if err := s.inviter.SendInvite(context.Background(), p.ToNumber); err != nil {
				s.evHandler("state: produce: inviting number[%s]: ERROR: %s", p.ToNumber, err)
			}
		}
		s.evHandler("state: produce: payment waits for signup of number[%s]", p.ToNumber)
		return true

	case err != nil:
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return false
	}

	if payee.AccountID == signer.AccountID {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = "payment to self"
		return false
	}

	if body.Nonce != signer.Nonce+1 {
		ev.Info = database.InfoNonceMismatch
		ev.ErrorMessage = fmt.Sprintf("expected nonce %d, got %d", signer.Nonce+1, body.Nonce)
		return false
	}

	if p.CharTraitID != genesis.TraitNone {
		if _, ok := s.genesis.TraitByID(p.CharTraitID); !ok {
			ev.Info = database.InfoInvalidTrait
			ev.ErrorMessage = fmt.Sprintf("unknown trait id %d", p.CharTraitID)
			return false
		}
	}

	subsidised := tokenomics.ShouldSubsidizeFee(s.genesis, r.stats, body.Nonce, body.Fee, database.KindPayment)
	need := p.Amount
	if !subsidised {
		need += body.Fee
	}
	if signer.Balance < need {
		ev.Info = database.InfoInsufficientBalance
		ev.ErrorMessage = fmt.Sprintf("balance %d below required %d", signer.Balance, need)
		return false
	}

	signer.Balance -= need
	signer.Nonce = body.Nonce
	signer.ApplyTrait(genesis.TraitAppreciator, 0)

	payee.Balance += p.Amount
	if p.CharTraitID != genesis.TraitNone {
		payee.ApplyTrait(p.CharTraitID, 0)
	}

	// A payment addressed to a number that signed up in pass 1 of this
	// very round earns the payer a referral reward.
	var referral uint64
	if r.signupsByNumber[p.ToNumber] {
		referral = tokenomics.ReferralReward(s.genesis, r.stats)
		if referral > 0 {
			signer.Balance += referral
			signer.ApplyTrait(genesis.TraitAmbassador, 0)
		}
	}

	if err := s.db.SaveUser(signer); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return false
	}
	if err := s.db.SaveUser(payee); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return false
	}

	hash := ev.TxHash
	if err := s.commitTx(ev.Transaction, hash, signer.AccountID); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return false
	}
	if err := s.db.IndexTxByAccount(payee.AccountID, hash); err != nil {
		s.evHandler("state: produce: indexing payee tx: ERROR: %s", err)
	}

	s.upsertLeaderboard(signer.AccountID, signer.UserName, genesis.TraitAppreciator)
	if p.CharTraitID != genesis.TraitNone {
		s.upsertLeaderboard(payee.AccountID, payee.UserName, p.CharTraitID)
	}
	if referral > 0 {
		s.upsertLeaderboard(signer.AccountID, signer.UserName, genesis.TraitAmbassador)
	}

	ev.Result = database.TxResultExecuted
	ev.Info = database.InfoPaymentConfirmed
	ev.FeeType = feeType(subsidised)
	ev.ReferralReward = referral

	r.included = append(r.included, hash)
	r.blockEvent.PaymentsCount++
	r.accountFee(body.Fee, subsidised)
	r.stats.TransactionsCount++
	r.stats.PaymentsCount++
	if referral > 0 {
		r.blockEvent.ReferralRewardsAmount += referral
		r.blockEvent.ReferralRewardsCount++
		r.stats.ReferralRewardsCount++
		r.stats.ReferralRewardsAmount += referral
	}

	return false
}

func (s *State) executeUpdate(r *round, ev *database.TransactionEvent, signer database.User, body database.TransactionBody, p database.UpdateUserV1) {
	if body.Nonce != signer.Nonce+1 {
		ev.Info = database.InfoNonceMismatch
		ev.ErrorMessage = fmt.Sprintf("expected nonce %d, got %d", signer.Nonce+1, body.Nonce)
		return
	}

	subsidised := tokenomics.ShouldSubsidizeFee(s.genesis, r.stats, body.Nonce, body.Fee, database.KindUpdateUser)
	if !subsidised && signer.Balance < body.Fee {
		ev.Info = database.InfoInsufficientBalance
		ev.ErrorMessage = fmt.Sprintf("balance %d below fee %d", signer.Balance, body.Fee)
		return
	}

	// All validations run before any index write so a rejection leaves
	// the record untouched.
	if p.NewUserName != "" {
		owner, err := s.db.GetUserByUserName(p.NewUserName)
		switch {
		case err == nil && owner.AccountID != signer.AccountID:
			ev.Info = database.InfoNicknameNotAvailable
			ev.ErrorMessage = fmt.Sprintf("user name %q is taken", p.NewUserName)
			return
		case err != nil && err != database.ErrNotFound:
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = err.Error()
			return
		}
	}

	if p.NewMobileNumber != "" {
		evd := p.Evidence
		if evd == nil {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = "number rebind requires verifier evidence"
			return
		}
		if evd.Result != database.VerificationVerified || evd.AccountID != signer.AccountID || evd.MobileNumber != p.NewMobileNumber {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = "evidence does not cover the requested number"
			return
		}
		if !s.genesis.IsTrustedVerifier(evd.VerifierAccountID.String()) {
			ev.Info = database.InfoUntrustedVerifier
			ev.ErrorMessage = fmt.Sprintf("verifier %s is not trusted", evd.VerifierAccountID)
			return
		}
		if err := evd.VerifySignature(); err != nil {
			ev.Info = database.InfoInvalidSignature
			ev.ErrorMessage = fmt.Sprintf("evidence signature: %s", err)
			return
		}

		owner, err := s.db.GetUserByMobileNumber(p.NewMobileNumber)
		switch {
		case err == nil && owner.AccountID != signer.AccountID:
			ev.Info = database.InfoNumberNotAvailable
			ev.ErrorMessage = fmt.Sprintf("number %q is taken", p.NewMobileNumber)
			return
		case err != nil && err != database.ErrNotFound:
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = err.Error()
			return
		}
	}

	updated := signer
	if p.NewUserName != "" && p.NewUserName != updated.UserName {
		u, err := s.db.RenameUser(updated, p.NewUserName)
		if err != nil {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = err.Error()
			return
		}
		updated = u
	}
	if p.NewMobileNumber != "" && p.NewMobileNumber != updated.MobileNumber {
		u, err := s.db.RebindNumber(updated, p.NewMobileNumber)
		if err != nil {
			ev.Info = database.InfoInvalidData
			ev.ErrorMessage = err.Error()
			return
		}
		updated = u
	}

	updated.Nonce = body.Nonce
	if !subsidised {
		updated.Balance -= body.Fee
	}

	if err := s.db.SaveUser(updated); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	if err := s.commitTx(ev.Transaction, ev.TxHash, signer.AccountID); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	ev.Result = database.TxResultExecuted
	ev.Info = database.InfoUserUpdated
	ev.FeeType = feeType(subsidised)

	r.included = append(r.included, ev.TxHash)
	r.accountFee(body.Fee, subsidised)
	r.stats.TransactionsCount++
}

func (s *State) executeDelete(r *round, ev *database.TransactionEvent, signer database.User, body database.TransactionBody) {
	if body.Nonce != signer.Nonce+1 {
		ev.Info = database.InfoNonceMismatch
		ev.ErrorMessage = fmt.Sprintf("expected nonce %d, got %d", signer.Nonce+1, body.Nonce)
		return
	}

	// Account deletion is always protocol subsidised at a fee of one
	// KCent so a drained account can still leave.
	const deleteFee = 1

	if err := s.db.DeleteUser(signer); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	if err := s.commitTx(ev.Transaction, ev.TxHash, signer.AccountID); err != nil {
		ev.Info = database.InfoInvalidData
		ev.ErrorMessage = err.Error()
		return
	}

	ev.Result = database.TxResultExecuted
	ev.Info = database.InfoUserDeleted
	ev.Fee = deleteFee
	ev.FeeType = database.FeeTypeMint

	r.included = append(r.included, ev.TxHash)
	r.accountFee(deleteFee, true)
	r.stats.TransactionsCount++
	if r.stats.UsersCount > 0 {
		r.stats.UsersCount--
	}
}

// =============================================================================
// Sealing and bookkeeping.

func (s *State) sealBlock(r *round) (database.BlockEvent, error) {
	var prev hexutil.Bytes
	if r.height > 1 {
		prevBlock, err := s.db.GetBlockByHeight(r.height - 1)
		if err != nil {
			return r.blockEvent, fmt.Errorf("loading previous block: %w", err)
		}
		prev = prevBlock.Digest
	}

	block := database.Block{
		TimeMS:          r.now,
		Author:          s.accountID,
		Height:          r.height,
		TxHashes:        r.included,
		Fees:            r.fees,
		PrevBlockDigest: prev,
	}
	block.Seal(s.keypair)

	if err := s.db.SaveBlock(block); err != nil {
		return r.blockEvent, fmt.Errorf("persisting block: %w", err)
	}

	blockReward := tokenomics.BlockReward(s.genesis, r.height)

	r.blockEvent.BlockHash = block.Digest
	r.blockEvent.FeesAmount = r.fees
	r.blockEvent.Reward = blockReward
	if err := s.db.SaveBlockEvent(r.blockEvent); err != nil {
		return r.blockEvent, fmt.Errorf("persisting block event: %w", err)
	}

	stats := r.stats
	stats.LastBlockTime = r.now
	stats.TipHeight = r.height
	stats.FeesAmount += r.fees
	stats.MintedAmount += blockReward + r.blockEvent.SignupRewardsAmount + r.blockEvent.ReferralRewardsAmount + r.subsidisedFees

	circulation := stats.CirculationAmount + r.blockEvent.SignupRewardsAmount + r.blockEvent.ReferralRewardsAmount
	if r.userFees > circulation {
		circulation = 0
	} else {
		circulation -= r.userFees
	}
	stats.CirculationAmount = circulation

	if blockReward > 0 {
		stats.ValidatorRewardsCount++
		stats.ValidatorRewardsAmount += blockReward
	}

	if err := s.db.SaveStats(stats); err != nil {
		return r.blockEvent, fmt.Errorf("persisting stats: %w", err)
	}

	s.evHandler("state: produce: sealed block: height[%d] txs[%d] fees[%d]", r.height, len(r.included), r.fees)

	return r.blockEvent, nil
}

// commitTx persists a transaction and indexes it under an account.
func (s *State) commitTx(tx database.SignedTransaction, hash database.TxHash, id database.AccountID) error {
	if err := s.db.SaveTx(tx); err != nil {
		return fmt.Errorf("persisting transaction: %w", err)
	}
	if err := s.db.IndexTxByAccount(id, hash); err != nil {
		return fmt.Errorf("indexing transaction: %w", err)
	}
	return nil
}

// emit records a transaction event in the ledger and the block event.
func (s *State) emit(r *round, ev database.TransactionEvent) {
	if err := s.db.AppendTxEvent(ev); err != nil {
		s.evHandler("state: produce: appending tx event: ERROR: %s", err)
	}
	r.blockEvent.TransactionsEvents = append(r.blockEvent.TransactionsEvents, ev)

	s.evHandler("state: produce: tx[%s] result[%s] info[%s]", ev.Transaction, ev.Result, ev.Info)
}

func (s *State) upsertLeaderboard(id database.AccountID, userName string, traitID uint32) {
	if err := s.db.LeaderboardUpsert(id, userName, 1, traitID); err != nil {
		s.evHandler("state: produce: leaderboard upsert: ERROR: %s", err)
	}
}

// accountFee folds one included transaction's fee into the round totals.
func (r *round) accountFee(fee uint64, subsidised bool) {
	r.fees += fee
	if subsidised {
		r.subsidisedFees += fee
		r.stats.FeeSubsCount++
		r.stats.FeeSubsAmount += fee
	} else {
		r.userFees += fee
	}
}

func feeType(subsidised bool) database.FeeType {
	if subsidised {
		return database.FeeTypeMint
	}
	return database.FeeTypeUser
}
