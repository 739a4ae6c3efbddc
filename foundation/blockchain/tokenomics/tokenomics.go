// Package tokenomics implements the reward emission and fee subsidy rules.
// Every function is a pure mapping from the genesis parameters and the
// current aggregate statistics so the producer stays deterministic.
package tokenomics

import (
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
)

// SignupReward returns the KCents minted for the next signup. The amount
// steps down as the cumulative signup allocation is consumed: phase 1 until
// its allocation runs out, phase 2 until the combined allocation runs out,
// then the small phase 3 residual forever.
func SignupReward(g genesis.Genesis, stats database.BlockchainStats) uint64 {
	switch {
	case stats.SignupRewardsAmount < g.SignupRewardPhase1Alloc:
		return g.SignupRewardPhase1
	case stats.SignupRewardsAmount < g.SignupRewardPhase1Alloc+g.SignupRewardPhase2Alloc:
		return g.SignupRewardPhase2
	default:
		return g.SignupRewardPhase3
	}
}

// ReferralReward returns the KCents minted for the next referral, on the
// two phase schedule. Zero once both allocations are consumed.
func ReferralReward(g genesis.Genesis, stats database.BlockchainStats) uint64 {
	switch {
	case stats.ReferralRewardsAmount < g.ReferralRewardPhase1Alloc:
		return g.ReferralRewardPhase1
	case stats.ReferralRewardsAmount < g.ReferralRewardPhase1Alloc+g.ReferralRewardPhase2Alloc:
		return g.ReferralRewardPhase2
	default:
		return 0
	}
}

// KarmaReward returns the KCents credited to each karma rewards winner,
// zero once the karma allocation is consumed.
func KarmaReward(g genesis.Genesis, stats database.BlockchainStats) uint64 {
	if stats.KarmaRewardsAmount < g.KarmaRewardAlloc {
		return g.KarmaRewardAmount
	}
	return 0
}

// BlockReward returns the producer reward for a block height. Constant up
// to the configured last height, zero after.
func BlockReward(g genesis.Genesis, height uint64) uint64 {
	if height <= g.BlockRewardLastHeight {
		return g.BlockReward
	}
	return 0
}

// ShouldSubsidizeFee decides whether the protocol bears the fee for a
// transaction. userNonce is the nonce the transaction carries; a new user's
// first transaction has nonce 1.
func ShouldSubsidizeFee(g genesis.Genesis, stats database.BlockchainStats, userNonce uint64, fee uint64, kind database.PayloadKind) bool {
	if fee > g.FeeSubsidyMaxFee {
		return false
	}
	if userNonce > g.FeeSubsidyMaxPerUser {
		return false
	}

	// Phase 1: any transaction type qualifies while the subsidy allocation
	// lasts, under the tighter phase 1 fee cap.
	if stats.FeeSubsAmount <= g.FeeSubsidyPhase1Alloc {
		return fee <= g.FeeSubsidyPhase1Max
	}

	// After phase 1 only signups are subsidised.
	return kind == database.KindNewUser
}
