package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/verifier"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&verifyNumber, "number", "n", "", "Mobile number being verified.")
	verifyCmd.Flags().StringVarP(&verifyCode, "code", "c", "", "One time code received for the number.")
	verifyCmd.Flags().StringVarP(&verifyUserName, "name", "m", "", "Requested user name.")
	verifyCmd.Flags().StringVarP(&verifyOut, "out", "o", "zchain/accounts/evidence.json", "File to store the verification evidence in.")
	verifyCmd.MarkFlagRequired("number")
	verifyCmd.MarkFlagRequired("code")
	verifyCmd.MarkFlagRequired("name")
}

var (
	verifyNumber   string
	verifyCode     string
	verifyUserName string
	verifyOut      string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Present the one time code and obtain signup evidence",
	RunE:  verifyRun,
}

func verifyRun(cmd *cobra.Command, args []string) error {
	kp, err := loadKeypair()
	if err != nil {
		return err
	}

	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return err
	}

	req := verifier.VerifyNumberRequest{
		AccountID:         accountID,
		MobileNumber:      verifyNumber,
		Code:              verifyCode,
		RequestedUserName: verifyUserName,
	}
	req.Sign(kp)

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/verifier/verify", nodeURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned %s: %s", resp.Status, raw)
	}

	var evd database.VerificationEvidence
	if err := json.Unmarshal(raw, &evd); err != nil {
		return fmt.Errorf("decoding evidence: %w", err)
	}
	if evd.Result != database.VerificationVerified {
		return fmt.Errorf("verification failed: %s", evd.Result)
	}

	if err := os.MkdirAll(filepath.Dir(verifyOut), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(verifyOut, raw, 0600); err != nil {
		return err
	}

	fmt.Println("evidence saved:", verifyOut)
	return printBody(bytes.NewReader(raw))
}
