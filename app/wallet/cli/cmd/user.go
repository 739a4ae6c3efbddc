package cmd

import (
	"fmt"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.Flags().StringVar(&userByAccount, "id", "", "Look the user up by account id.")
	userCmd.Flags().StringVar(&userByName, "name", "", "Look the user up by user name.")
	userCmd.Flags().StringVar(&userByNumber, "number", "", "Look the user up by mobile number.")
}

var (
	userByAccount string
	userByName    string
	userByNumber  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up an on-chain user record",
	RunE:  userRun,
}

func userRun(cmd *cobra.Command, args []string) error {
	switch {
	case userByAccount != "":
		return getJSON(fmt.Sprintf("/v1/user/account/%s", userByAccount))
	case userByName != "":
		return getJSON(fmt.Sprintf("/v1/user/name/%s", userByName))
	case userByNumber != "":
		return getJSON(fmt.Sprintf("/v1/user/number/%s", userByNumber))
	}

	// With no lookup flags, show the wallet's own account.
	kp, err := loadKeypair()
	if err != nil {
		return err
	}
	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return err
	}
	return getJSON(fmt.Sprintf("/v1/user/account/%s", accountID))
}
