package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the public key for the specific account",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(signature.EncodePublicKey(&privateKey.PublicKey))
}
