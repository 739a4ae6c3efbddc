package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new Ed25519 keypair and store its seed",
	RunE:  generateRun,
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getSeedPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("seed file %s already exists", path)
	}

	kp, err := signature.Generate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(kp.SeedHex()+"\n"), 0600); err != nil {
		return err
	}

	accountID, err := database.ToAccountID(kp.PublicKey)
	if err != nil {
		return err
	}

	fmt.Println("seed file:", path)
	fmt.Println("account id:", accountID)
	return nil
}
