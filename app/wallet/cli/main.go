// This program provides a command line wallet for the appreciation coin
// network.
package main

import "github.com/karmacoin/node/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
