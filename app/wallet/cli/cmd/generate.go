package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	path := getPrivateKeyPath()

	if _, err := os.Stat(path); err == nil {
		log.Fatalf("key file %s already exists", path)
	}

	if err := os.MkdirAll(accountPath, 0755); err != nil {
		log.Fatal(err)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		log.Fatal(err)
	}

	fmt.Println(path)
}
