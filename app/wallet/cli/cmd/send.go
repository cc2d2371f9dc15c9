package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	txID string
	data string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		sendWithDetails(privateKey)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&txID, "tx-id", "i", "", "Transaction id, a new uuid when empty.")
	sendCmd.Flags().StringVarP(&data, "data", "d", "{}", "JSON object to record.")
}

func sendWithDetails(privateKey *ecdsa.PrivateKey) {
	if txID == "" {
		txID = uuid.NewString()
	}

	payload, err := buildPayload(data, txID, time.Now().Unix())
	if err != nil {
		log.Fatal(err)
	}

	sub, err := database.SignSubmission(payload, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	body, err := json.Marshal(sub)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		pterm.Error.Printfln("tx_id %s refused: status %d: %s", txID, resp.StatusCode, result)
		return
	}

	pterm.Success.Printfln("tx_id %s accepted", txID)
	pterm.Println(string(result))
}

// buildPayload parses the user's JSON object and stamps it with the
// transaction id and update time. Numbers keep their original literal.
func buildPayload(data string, txID string, now int64) (canonical.Value, error) {
	v, err := canonical.Parse([]byte(data))
	if err != nil {
		return canonical.Value{}, fmt.Errorf("data must be a JSON object: %w", err)
	}

	if v.Kind() != canonical.KindObject {
		return canonical.Value{}, fmt.Errorf("data must be a JSON object, got %s", v.Kind())
	}

	fields := v.Fields()
	if fields == nil {
		fields = make(map[string]canonical.Value)
	}
	fields["tx_id"] = canonical.String(txID)
	fields["last_update"] = canonical.Int(now)

	return canonical.Object(fields), nil
}
