package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.AddCommand(chainStatsCmd, chainGenesisCmd, chainLeaderboardCmd)
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Inspect the chain state",
}

var chainStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the aggregate chain statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/v1/chain")
	},
}

var chainGenesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Show the genesis configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/v1/genesis")
	},
}

var chainLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the karma leaderboard for the current period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/v1/leaderboard")
	},
}
