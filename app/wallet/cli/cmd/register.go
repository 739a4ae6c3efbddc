package cmd

import (
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/verifier"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerNumber, "number", "n", "", "Mobile number to register.")
	registerCmd.MarkFlagRequired("number")
}

var registerNumber string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Ask the verifier to send a one time code to a mobile number",
	RunE:  registerRun,
}

func registerRun(cmd *cobra.Command, args []string) error {
	kp, err := loadKeypair()
	if err != nil {
		return err
	}

	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return err
	}

	req := verifier.RegisterNumberRequest{
		AccountID:    accountID,
		MobileNumber: registerNumber,
	}
	req.Sign(kp)

	return postJSON("/v1/verifier/register", req)
}
