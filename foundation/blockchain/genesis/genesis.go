// Package genesis maintains access to the genesis parameters. The values
// resolve in three layers: compiled defaults, then an optional genesis file,
// then GENESIS_* environment variables.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// KCentsPerKC is the number of KCents in one KarmaCoin.
const KCentsPerKC uint64 = 1_000_000

// Character trait ids with protocol meaning. All other trait ids are just
// appreciation vocabulary.
const (
	TraitNone         uint32 = 0
	TraitGrower       uint32 = 1
	TraitAppreciator  uint32 = 2
	TraitAmbassador   uint32 = 41
	TraitKarmaRewards uint32 = 62
)

// CharTrait is an immutable genesis defined appreciation trait.
type CharTrait struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Community is an immutable genesis defined community definition.
type Community struct {
	ID          uint32   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TraitIDs    []uint32 `json:"trait_ids"`
	Closed      bool     `json:"closed"`
}

// Verifier identifies a trusted attestation signer by its hex encoded
// Ed25519 public key.
type Verifier struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// Genesis represents the genesis parameters for a network.
type Genesis struct {
	NetID   uint32    `json:"net_id"`
	NetName string    `json:"net_name"`
	Date    time.Time `json:"date"`

	SignupRewardPhase1      uint64 `json:"signup_reward_phase1"`       // KCents per phase 1 signup.
	SignupRewardPhase1Alloc uint64 `json:"signup_reward_phase1_alloc"` // Total KCents allocated to phase 1.
	SignupRewardPhase2      uint64 `json:"signup_reward_phase2"`
	SignupRewardPhase2Alloc uint64 `json:"signup_reward_phase2_alloc"`
	SignupRewardPhase3      uint64 `json:"signup_reward_phase3"` // Residual reward after both allocations.

	ReferralRewardPhase1      uint64 `json:"referral_reward_phase1"`
	ReferralRewardPhase1Alloc uint64 `json:"referral_reward_phase1_alloc"`
	ReferralRewardPhase2      uint64 `json:"referral_reward_phase2"`
	ReferralRewardPhase2Alloc uint64 `json:"referral_reward_phase2_alloc"`

	KarmaRewardAmount uint64 `json:"karma_reward_amount"`
	KarmaRewardAlloc  uint64 `json:"karma_reward_alloc"`
	KarmaRewardTopN   int    `json:"karma_reward_top_n"` // Max winners per sweep.

	BlockReward           uint64 `json:"block_reward"`
	BlockRewardLastHeight uint64 `json:"block_reward_last_height"`

	FeeSubsidyMaxFee      uint64 `json:"fee_subsidy_max_fee"`       // No subsidy above this fee, ever.
	FeeSubsidyMaxPerUser  uint64 `json:"fee_subsidy_max_per_user"`  // No subsidy past this user nonce.
	FeeSubsidyPhase1Alloc uint64 `json:"fee_subsidy_phase1_alloc"`  // Total KCents of phase 1 subsidies.
	FeeSubsidyPhase1Max   uint64 `json:"fee_subsidy_phase1_max"`    // Max subsidised fee during phase 1.

	ValidatorsPoolAccountID string `json:"validators_pool_account_id"`
	ValidatorsPoolAmount    uint64 `json:"validators_pool_amount"`

	Verifiers   []Verifier  `json:"verifiers"`
	CharTraits  []CharTrait `json:"char_traits"`
	Communities []Community `json:"communities"`
}

// IsTrustedVerifier reports whether the account id (hex) is in the
// configured verifier set.
func (g Genesis) IsTrustedVerifier(accountID string) bool {
	for _, v := range g.Verifiers {
		if v.AccountID == accountID {
			return true
		}
	}
	return false
}

// TraitByID returns the trait definition for the id.
func (g Genesis) TraitByID(id uint32) (CharTrait, bool) {
	for _, t := range g.CharTraits {
		if t.ID == id {
			return t, true
		}
	}
	return CharTrait{}, false
}

// CommunityByID returns the community definition for the id.
func (g Genesis) CommunityByID(id uint32) (Community, bool) {
	for _, c := range g.Communities {
		if c.ID == id {
			return c, true
		}
	}
	return Community{}, false
}

// =============================================================================

// Load resolves the genesis parameters. The path is optional; when empty or
// missing only defaults and environment overrides apply.
func Load(path string) (Genesis, error) {
	genesis := Defaults()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(content, &genesis); err != nil {
				return Genesis{}, fmt.Errorf("parsing genesis file %q: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults stand.
		default:
			return Genesis{}, fmt.Errorf("reading genesis file %q: %w", path, err)
		}
	}

	if err := applyEnv(&genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Defaults returns the compiled in genesis parameters.
func Defaults() Genesis {
	return Genesis{
		NetID:   3,
		NetName: "KarmaCoin Testnet",
		Date:    time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),

		SignupRewardPhase1:      10 * KCentsPerKC,
		SignupRewardPhase1Alloc: 100_000_000 * KCentsPerKC,
		SignupRewardPhase2:      1 * KCentsPerKC,
		SignupRewardPhase2Alloc: 200_000_000 * KCentsPerKC,
		SignupRewardPhase3:      1_000,

		ReferralRewardPhase1:      100 * KCentsPerKC,
		ReferralRewardPhase1Alloc: 100_000_000 * KCentsPerKC,
		ReferralRewardPhase2:      10 * KCentsPerKC,
		ReferralRewardPhase2Alloc: 200_000_000 * KCentsPerKC,

		KarmaRewardAmount: 10 * KCentsPerKC,
		KarmaRewardAlloc:  250_000_000 * KCentsPerKC,
		KarmaRewardTopN:   10,

		BlockReward:           10 * KCentsPerKC,
		BlockRewardLastHeight: 500_000,

		FeeSubsidyMaxFee:      10_000,
		FeeSubsidyMaxPerUser:  10,
		FeeSubsidyPhase1Alloc: 250_000 * KCentsPerKC,
		FeeSubsidyPhase1Max:   1_000,

		CharTraits:  DefaultCharTraits(),
		Communities: DefaultCommunities(),
	}
}

// DefaultCharTraits is the built in appreciation vocabulary.
func DefaultCharTraits() []CharTrait {
	return []CharTrait{
		{0, "", ""},
		{1, "a Grower", "🌱"},
		{2, "an Appreciator", "🙏"},
		{3, "Awesome", "😎"},
		{4, "Smart", "🧠"},
		{5, "Sexy", "😍"},
		{6, "Patient", "🙂"},
		{7, "Grateful", "🦒"},
		{8, "Spiritual", "🕊️"},
		{9, "Funny", "😂"},
		{10, "Caring", "🤗"},
		{11, "Loving", "❤️"},
		{12, "Generous", "🎁"},
		{13, "Honest", "🤝"},
		{14, "Respectful", "🎩"},
		{15, "Creative", "🎨"},
		{16, "Intelligent", "📚"},
		{17, "Loyal", "🦒"},
		{18, "Trustworthy", "👍"},
		{19, "Humble", "🌾"},
		{20, "Courageous", "🦁"},
		{21, "Confident", "🌞"},
		{22, "Passionate", "🔥"},
		{23, "Optimistic", "😃"},
		{24, "Adventurous", "🧗"},
		{25, "Determined", "🏹"},
		{26, "Selfless", "😇"},
		{27, "Self-disciplined", "💪"},
		{28, "Mindful", "🧘"},
		{29, "Tolerant", "🌈"},
		{30, "Gracious", "🦢"},
		{31, "Sweet", "🍭"},
		{32, "Sharing", "🍰"},
		{33, "Strong", "💪"},
		{34, "Troubled", "😞"},
		{35, "Accepting", "🤲"},
		{36, "Welcoming", "🤗"},
		{37, "Enlightened", "💡"},
		{38, "Wise", "🦉"},
		{39, "Sensitive", "🌸"},
		{40, "Helpful", "🪁"},
		{41, "an Ambassador", "🌍"},
		{42, "an Inspiration", "🌟"},
		{43, "a Visionary", "🔭"},
		{44, "a Genius", "💎"},
		{45, "an Angel", "👼"},
		{46, "a Healer", "🌿"},
		{47, "a Lightworker", "🕯️"},
		{48, "a Philanthropist", "🎗️"},
		{49, "a Pioneer", "🚀"},
		{50, "a Leader", "⭐"},
		{51, "an Optimist", "🌤️"},
		{52, "a Peacemaker", "☮️"},
		{53, "a Problem Solver", "🔧"},
		{54, "a Teacher", "🍎"},
		{55, "a Mentor", "🧭"},
		{56, "a Builder", "🏗️"},
		{57, "a Dreamer", "🌙"},
		{58, "a Doer", "⚡"},
		{59, "a Giver", "🌻"},
		{60, "a Listener", "👂"},
		{61, "a Friend", "🫂"},
		{62, "a Karma Rewards Winner", "🏆"},
	}
}

// DefaultCommunities is the built in community set.
func DefaultCommunities() []Community {
	return []Community{
		{
			ID:          1,
			Name:        "Grateful Grapefruits",
			Description: "The founding appreciation community",
			TraitIDs:    []uint32{3, 7, 10, 11, 12, 40, 42, 59},
			Closed:      false,
		},
	}
}

// =============================================================================

// applyEnv overlays GENESIS_* environment variables onto the parameters.
// The node level configuration (hosts, keys, database) is owned by the
// conf package in main; these are the chain parameters only.
func applyEnv(g *Genesis) error {
	var err error

	overlayU32(&g.NetID, "GENESIS_NET_ID", &err)
	overlayStr(&g.NetName, "GENESIS_NET_NAME")
	overlayU64(&g.SignupRewardPhase1, "GENESIS_SIGNUP_REWARD_PHASE1", &err)
	overlayU64(&g.SignupRewardPhase1Alloc, "GENESIS_SIGNUP_REWARD_PHASE1_ALLOC", &err)
	overlayU64(&g.SignupRewardPhase2, "GENESIS_SIGNUP_REWARD_PHASE2", &err)
	overlayU64(&g.SignupRewardPhase2Alloc, "GENESIS_SIGNUP_REWARD_PHASE2_ALLOC", &err)
	overlayU64(&g.SignupRewardPhase3, "GENESIS_SIGNUP_REWARD_PHASE3", &err)
	overlayU64(&g.ReferralRewardPhase1, "GENESIS_REFERRAL_REWARD_PHASE1", &err)
	overlayU64(&g.ReferralRewardPhase1Alloc, "GENESIS_REFERRAL_REWARD_PHASE1_ALLOC", &err)
	overlayU64(&g.ReferralRewardPhase2, "GENESIS_REFERRAL_REWARD_PHASE2", &err)
	overlayU64(&g.ReferralRewardPhase2Alloc, "GENESIS_REFERRAL_REWARD_PHASE2_ALLOC", &err)
	overlayU64(&g.KarmaRewardAmount, "GENESIS_KARMA_REWARD_AMOUNT", &err)
	overlayU64(&g.KarmaRewardAlloc, "GENESIS_KARMA_REWARD_ALLOC", &err)
	overlayU64(&g.BlockReward, "GENESIS_BLOCK_REWARD", &err)
	overlayU64(&g.BlockRewardLastHeight, "GENESIS_BLOCK_REWARD_LAST_HEIGHT", &err)
	overlayU64(&g.FeeSubsidyMaxFee, "GENESIS_FEE_SUBSIDY_MAX_FEE", &err)
	overlayU64(&g.FeeSubsidyMaxPerUser, "GENESIS_FEE_SUBSIDY_MAX_PER_USER", &err)
	overlayU64(&g.FeeSubsidyPhase1Alloc, "GENESIS_FEE_SUBSIDY_PHASE1_ALLOC", &err)
	overlayU64(&g.FeeSubsidyPhase1Max, "GENESIS_FEE_SUBSIDY_PHASE1_MAX", &err)
	overlayStr(&g.ValidatorsPoolAccountID, "GENESIS_VALIDATORS_POOL_ACCOUNT_ID")
	overlayU64(&g.ValidatorsPoolAmount, "GENESIS_VALIDATORS_POOL_AMOUNT", &err)

	if v, ok := os.LookupEnv("GENESIS_VERIFIER_ACCOUNT_ID"); ok {
		g.Verifiers = append(g.Verifiers, Verifier{AccountID: v, Name: "env"})
	}

	return err
}

func overlayStr(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func overlayU64(dst *uint64, name string, errp *error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		*errp = fmt.Errorf("parsing %s: %w", name, err)
		return
	}
	*dst = n
}

func overlayU32(dst *uint32, name string, errp *error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		*errp = fmt.Errorf("parsing %s: %w", name, err)
		return
	}
	*dst = uint32(n)
}
