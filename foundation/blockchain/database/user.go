package database

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TraitScore counts how many times a user was appreciated for one trait,
// optionally scoped to a community.
type TraitScore struct {
	TraitID     uint32 `json:"trait_id"`
	Score       uint32 `json:"score"`
	CommunityID uint32 `json:"community_id"`
}

// CommunityMembership records a user's standing inside one community.
type CommunityMembership struct {
	CommunityID uint32 `json:"community_id"`
	KarmaScore  uint32 `json:"karma_score"`
	IsAdmin     bool   `json:"is_admin"`
}

// User is the on-chain record for a mobile number attested account.
type User struct {
	AccountID    AccountID             `json:"account_id"`
	Nonce        uint64                `json:"nonce"`
	UserName     string                `json:"user_name"`
	MobileNumber string                `json:"mobile_number"`
	Balance      uint64                `json:"balance"`
	TraitScores  []TraitScore          `json:"trait_scores"`
	Memberships  []CommunityMembership `json:"community_memberships"`
	KarmaScore   uint32                `json:"karma_score"`
	PreKeys      []hexutil.Bytes       `json:"pre_keys"`
}

// TraitScoreFor returns the user's current score for a trait in a community.
func (u User) TraitScoreFor(traitID uint32, communityID uint32) uint32 {
	for _, ts := range u.TraitScores {
		if ts.TraitID == traitID && ts.CommunityID == communityID {
			return ts.Score
		}
	}
	return 0
}

// ApplyTrait increments the user's score for a trait by one and keeps the
// karma score invariant: karma equals the sum of all trait scores.
func (u *User) ApplyTrait(traitID uint32, communityID uint32) {
	for i := range u.TraitScores {
		if u.TraitScores[i].TraitID == traitID && u.TraitScores[i].CommunityID == communityID {
			u.TraitScores[i].Score++
			u.KarmaScore++
			return
		}
	}

	u.TraitScores = append(u.TraitScores, TraitScore{TraitID: traitID, Score: 1, CommunityID: communityID})
	u.KarmaScore++
}

// MembershipFor returns the membership record for a community.
func (u User) MembershipFor(communityID uint32) (CommunityMembership, bool) {
	for _, m := range u.Memberships {
		if m.CommunityID == communityID {
			return m, true
		}
	}
	return CommunityMembership{}, false
}
