package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().StringVarP(&signupEvidence, "evidence", "e", "zchain/accounts/evidence.json", "File with the verification evidence.")
	signupCmd.Flags().Uint64VarP(&signupFee, "fee", "f", 1, "Fee offered in KCents.")
}

var (
	signupEvidence string
	signupFee      uint64
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Submit a new user transaction from saved verification evidence",
	RunE:  signupRun,
}

func signupRun(cmd *cobra.Command, args []string) error {
	kp, err := loadKeypair()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(signupEvidence)
	if err != nil {
		return fmt.Errorf("reading evidence file: %w", err)
	}

	var evd database.VerificationEvidence
	if err := json.Unmarshal(raw, &evd); err != nil {
		return fmt.Errorf("decoding evidence: %w", err)
	}

	var gen genesis.Genesis
	if err := fetch("/v1/genesis", &gen); err != nil {
		return err
	}

	body := database.TransactionBody{
		Timestamp: uint64(time.Now().UnixMilli()),
		Nonce:     1,
		Fee:       signupFee,
		NetID:     gen.NetID,
		Payload:   database.NewUserV1{Evidence: evd},
	}

	tx, err := body.Sign(kp)
	if err != nil {
		return err
	}

	fmt.Println("tx hash:", tx.Hash())
	return postJSON("/v1/tx/submit", tx)
}
