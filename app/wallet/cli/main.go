// This program signs and submits transactions to a ledger node and audits
// the chain a node serves.
package main

import "github.com/ardanlabs/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
