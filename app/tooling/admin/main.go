// This program performs administrative tasks against a ledger node's
// storage while the node is stopped.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/badgerdb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		conf.Args
		Storage     string `conf:"default:disk,help:disk|badger"`
		DBPath      string `conf:"default:zblock/ledger.json"`
		BadgerDir   string `conf:"default:zblock/badger"`
		GenesisPath string
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	var storage database.Storage
	switch cfg.Storage {
	case "disk":
		storage, err = disk.New(cfg.DBPath)
	case "badger":
		storage, err = badgerdb.New(cfg.BadgerDir)
	default:
		err = fmt.Errorf("unknown storage kind %q", cfg.Storage)
	}
	if err != nil {
		return err
	}
	defer storage.Close()

	log.Infow("startup", "status", "storage opened", "kind", cfg.Storage)

	return processCommands(cfg.Args, storage, gen)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, storage database.Storage, gen genesis.Genesis) error {
	switch args.Num(0) {
	case "chain":
		if err := commands.Chain(storage); err != nil {
			return fmt.Errorf("printing chain: %w", err)
		}
	case "verify":
		if err := commands.Verify(storage, gen); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
	case "tx":
		if err := commands.Tx(storage, args.Num(1)); err != nil {
			return fmt.Errorf("finding transaction: %w", err)
		}
	default:
		fmt.Println("chain:   print every stored block")
		fmt.Println("verify:  validate the stored chain")
		fmt.Println("tx <id>: print the block carrying the tx_id")
	}

	return nil
}
