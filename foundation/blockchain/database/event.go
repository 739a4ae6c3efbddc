package database

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxResult is the execution outcome recorded in a transaction event.
type TxResult uint32

// Execution outcomes.
const (
	TxResultExecuted TxResult = 1
	TxResultInvalid  TxResult = 2
)

// String implements the fmt.Stringer interface.
func (r TxResult) String() string {
	switch r {
	case TxResultExecuted:
		return "executed"
	case TxResultInvalid:
		return "invalid"
	}
	return "unknown"
}

// FeeType records who bore the transaction fee.
type FeeType uint32

// Fee types. Mint means the protocol subsidised the fee.
const (
	FeeTypeMint FeeType = 0
	FeeTypeUser FeeType = 1
)

// String implements the fmt.Stringer interface.
func (f FeeType) String() string {
	if f == FeeTypeMint {
		return "mint"
	}
	return "user"
}

// ExecutionInfo classifies why a transaction executed or failed.
type ExecutionInfo uint32

// Execution info codes.
const (
	InfoUnknown              ExecutionInfo = 0
	InfoAccountCreated       ExecutionInfo = 1
	InfoPaymentConfirmed     ExecutionInfo = 2
	InfoUserUpdated          ExecutionInfo = 3
	InfoUserDeleted          ExecutionInfo = 4
	InfoNicknameNotAvailable ExecutionInfo = 5
	InfoNumberNotAvailable   ExecutionInfo = 6
	InfoInvalidData          ExecutionInfo = 7
	InfoInvalidSignature     ExecutionInfo = 8
	InfoAccountNotFound      ExecutionInfo = 9
	InfoNonceMismatch        ExecutionInfo = 10
	InfoInsufficientBalance  ExecutionInfo = 11
	InfoInvalidTrait         ExecutionInfo = 12
	InfoTxFeeTooLow          ExecutionInfo = 13
	InfoUntrustedVerifier    ExecutionInfo = 14
)

// String implements the fmt.Stringer interface.
func (i ExecutionInfo) String() string {
	switch i {
	case InfoAccountCreated:
		return "account-created"
	case InfoPaymentConfirmed:
		return "payment-confirmed"
	case InfoUserUpdated:
		return "user-updated"
	case InfoUserDeleted:
		return "user-deleted"
	case InfoNicknameNotAvailable:
		return "nickname-not-available"
	case InfoNumberNotAvailable:
		return "number-not-available"
	case InfoInvalidData:
		return "invalid-data"
	case InfoInvalidSignature:
		return "invalid-signature"
	case InfoAccountNotFound:
		return "account-not-found"
	case InfoNonceMismatch:
		return "nonce-mismatch"
	case InfoInsufficientBalance:
		return "insufficient-balance"
	case InfoInvalidTrait:
		return "invalid-trait"
	case InfoTxFeeTooLow:
		return "tx-fee-too-low"
	case InfoUntrustedVerifier:
		return "untrusted-verifier"
	}
	return "unknown"
}

// TransactionEvent records the execution of one transaction at a height.
type TransactionEvent struct {
	Timestamp      uint64            `json:"timestamp"`
	Height         uint64            `json:"height"`
	Transaction    SignedTransaction `json:"transaction"`
	TxHash         TxHash            `json:"transaction_hash"`
	Result         TxResult          `json:"result"`
	Info           ExecutionInfo     `json:"info"`
	Fee            uint64            `json:"fee"`
	FeeType        FeeType           `json:"fee_type"`
	SignupReward   uint64            `json:"signup_reward"`
	ReferralReward uint64            `json:"referral_reward"`
	ErrorMessage   string            `json:"error_message,omitempty"`
}

// BlockEvent aggregates the transaction events of one produced block.
type BlockEvent struct {
	Timestamp             uint64             `json:"timestamp"`
	Height                uint64             `json:"height"`
	BlockHash             hexutil.Bytes      `json:"block_hash"`
	SignupsCount          uint64             `json:"signups_count"`
	PaymentsCount         uint64             `json:"payments_count"`
	FeesAmount            uint64             `json:"fees_amount"`
	SignupRewardsAmount   uint64             `json:"signup_rewards_amount"`
	ReferralRewardsAmount uint64             `json:"referral_rewards_amount"`
	ReferralRewardsCount  uint64             `json:"referral_rewards_count"`
	Reward                uint64             `json:"reward"`
	TransactionsEvents    []TransactionEvent `json:"transactions_events"`
}
