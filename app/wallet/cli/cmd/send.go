package cmd

import (
	"fmt"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Mobile number of the payee.")
	sendCmd.Flags().Uint64VarP(&sendAmount, "amount", "v", 0, "Amount to send in KCents.")
	sendCmd.Flags().Uint32VarP(&sendTrait, "trait", "c", 0, "Character trait id for the appreciation, 0 for none.")
	sendCmd.Flags().Uint64VarP(&sendFee, "fee", "f", 1, "Fee offered in KCents.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

var (
	sendTo     string
	sendAmount uint64
	sendTrait  uint32
	sendFee    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an appreciation payment to a mobile number",
	RunE:  sendRun,
}

func sendRun(cmd *cobra.Command, args []string) error {
	kp, err := loadKeypair()
	if err != nil {
		return err
	}

	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return err
	}

	var gen genesis.Genesis
	if err := fetch("/v1/genesis", &gen); err != nil {
		return err
	}

	// The next valid nonce follows the signer's on-chain nonce.
	var user database.User
	if err := fetch(fmt.Sprintf("/v1/user/account/%s", accountID), &user); err != nil {
		return fmt.Errorf("fetching signer user: %w", err)
	}

	body := database.TransactionBody{
		Timestamp: uint64(time.Now().UnixMilli()),
		Nonce:     user.Nonce + 1,
		Fee:       sendFee,
		NetID:     gen.NetID,
		Payload: database.PaymentV1{
			ToNumber:    sendTo,
			Amount:      sendAmount,
			CharTraitID: sendTrait,
		},
	}

	tx, err := body.Sign(kp)
	if err != nil {
		return err
	}

	fmt.Println("tx hash:", tx.Hash())
	return postJSON("/v1/tx/submit", tx)
}
