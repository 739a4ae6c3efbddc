// Package cmd contains the wallet commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/karmacoin/node/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	nodeURL     string
)

const keyExtension = ".seed"

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "wallet.seed", "Name of the key seed file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zchain/accounts/", "Path to the directory with key seed files.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "A wallet for the appreciation coin network",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

func getSeedPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}
	return filepath.Join(accountPath, accountName)
}

func loadKeypair() (signature.Keypair, error) {
	seed, err := os.ReadFile(getSeedPath())
	if err != nil {
		return signature.Keypair{}, fmt.Errorf("reading seed file: %w", err)
	}
	return signature.LoadKeypair(strings.TrimSpace(string(seed)))
}

// postJSON sends a request value to the node and prints the response body.
func postJSON(path string, request any) error {
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s%s", nodeURL, path), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printBody(resp.Body)
}

// getJSON fetches a node endpoint and prints the response body.
func getJSON(path string) error {
	resp, err := http.Get(fmt.Sprintf("%s%s", nodeURL, path))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printBody(resp.Body)
}

// fetch decodes a node response into a value.
func fetch(path string, val any) error {
	resp, err := http.Get(fmt.Sprintf("%s%s", nodeURL, path))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(val)
}

func printBody(body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return nil
	}

	fmt.Println(pretty.String())
	return nil
}
