package state

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/karmacoin/node/foundation/blockchain/tokenomics"
)

// KarmaRewardsSweep samples winners from the leaderboard, credits each one
// the karma reward and marks them with the winner trait, then clears the
// leaderboard for the next period. Returns how many winners were paid.
func (s *State) KarmaRewardsSweep() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.db.GetStats()
	if err != nil {
		return 0, fmt.Errorf("loading stats: %w", err)
	}

	reward := tokenomics.KarmaReward(s.genesis, stats)
	if reward == 0 {
		return 0, nil
	}

	entries, err := s.db.LeaderboardScan()
	if err != nil {
		return 0, fmt.Errorf("scanning leaderboard: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var paid int
	for _, entry := range sampleEntries(entries, s.genesis.KarmaRewardTopN) {
		user, err := s.db.GetUserByAccountID(entry.AccountID)
		if err != nil {
			s.evHandler("state: karma: loading winner[%s]: ERROR: %s", entry.AccountID, err)
			continue
		}

		// Past winners and migrated-away records are not eligible.
		if user.TraitScoreFor(genesis.TraitKarmaRewards, 0) > 0 {
			continue
		}
		if strings.HasSuffix(user.UserName, MigratedNameSuffix) {
			continue
		}

		user.Balance += reward
		user.ApplyTrait(genesis.TraitKarmaRewards, 0)

		if err := s.db.SaveUser(user); err != nil {
			s.evHandler("state: karma: paying winner[%s]: ERROR: %s", entry.AccountID, err)
			continue
		}

		stats.KarmaRewardsAmount += reward
		stats.CirculationAmount += reward
		paid++

		s.evHandler("state: karma: rewarded user[%s] amount[%d]", user.UserName, reward)
	}

	if err := s.db.LeaderboardClear(); err != nil {
		return paid, fmt.Errorf("clearing leaderboard: %w", err)
	}

	if paid > 0 {
		if err := s.db.SaveStats(stats); err != nil {
			return paid, fmt.Errorf("persisting stats: %w", err)
		}
	}

	return paid, nil
}

// sampleEntries draws up to max entries uniformly without replacement.
func sampleEntries(entries []database.LeaderboardEntry, max int) []database.LeaderboardEntry {
	if max <= 0 || len(entries) <= max {
		return entries
	}

	pool := append([]database.LeaderboardEntry(nil), entries...)
	picked := make([]database.LeaderboardEntry, 0, max)

	for len(picked) < max {
		i := 0
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)))); err == nil {
			i = int(n.Int64())
		}
		picked = append(picked, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	return picked
}
