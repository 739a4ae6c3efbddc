package database

// BlockchainStats is the monotonic aggregate over the whole chain. It lives
// under a well known key in the blockchain-data column family and only the
// block producer writes it.
type BlockchainStats struct {
	LastBlockTime        uint64 `json:"last_block_time"`
	TipHeight            uint64 `json:"tip_height"`
	TransactionsCount    uint64 `json:"transactions_count"`
	PaymentsCount        uint64 `json:"payments_count"`
	UsersCount           uint64 `json:"users_count"`
	FeesAmount           uint64 `json:"fees_amount"`
	MintedAmount         uint64 `json:"minted_amount"`
	CirculationAmount    uint64 `json:"circulation_amount"`
	FeeSubsCount         uint64 `json:"fee_subs_count"`
	FeeSubsAmount        uint64 `json:"fee_subs_amount"`
	SignupRewardsCount   uint64 `json:"signup_rewards_count"`
	SignupRewardsAmount  uint64 `json:"signup_rewards_amount"`
	ReferralRewardsCount uint64 `json:"referral_rewards_count"`
	ReferralRewardsAmount uint64 `json:"referral_rewards_amount"`
	ValidatorRewardsCount uint64 `json:"validator_rewards_count"`
	ValidatorRewardsAmount uint64 `json:"validator_rewards_amount"`
	KarmaRewardsAmount   uint64 `json:"karma_rewards_amount"`
}

// LeaderboardEntry is a transient record of recent trait score activity,
// consulted by the karma rewards sweep.
type LeaderboardEntry struct {
	AccountID AccountID `json:"account_id"`
	UserName  string    `json:"user_name"`
	Score     uint32    `json:"score"`
	TraitIDs  []uint32  `json:"trait_ids"`
}
