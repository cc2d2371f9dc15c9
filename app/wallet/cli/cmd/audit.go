package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var difficulty uint16

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Fetch a node's chain and verify it locally",
	Run:   auditRun,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Uint16VarP(&difficulty, "difficulty", "f", genesis.DefaultDifficulty, "Leading zeros every block hash needs.")
}

func auditRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain", url))
	if err != nil {
		log.Fatalf("could not connect to the node: %s", err)
	}
	defer resp.Body.Close()

	var chain []database.Block
	if err := json.NewDecoder(resp.Body).Decode(&chain); err != nil {
		log.Fatal(err)
	}

	table := pterm.TableData{{"Index", "Timestamp", "TxID", "Nonce", "Hash"}}
	for _, blk := range chain {
		id, _ := blk.TxID()
		table = append(table, []string{
			strconv.FormatUint(blk.Index, 10),
			strconv.FormatInt(blk.Timestamp, 10),
			id,
			strconv.FormatUint(blk.Nonce, 10),
			blk.BlockHash,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(table).Render()

	if err := database.ValidateChain(chain, difficulty, signature.Secp256k1{}); err != nil {
		pterm.Error.Printfln("cryptographic audit: false (%s)", err)
		return
	}
	pterm.Success.Println("cryptographic audit: true (ok)")

	if len(chain) == 1 {
		pterm.Info.Println("chain is valid but only holds the genesis block")
		return
	}

	latest := chain[len(chain)-1].Payload.Without("tx_id", "last_update")

	pretty, err := json.MarshalIndent(latest, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	box := pterm.DefaultBox.WithTitle("verified latest payload").WithTitleTopCenter()
	box.Println(string(pretty))
}
