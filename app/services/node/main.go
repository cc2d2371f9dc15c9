package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/badgerdb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
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

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		State struct {
			Storage         string        `conf:"default:disk,help:disk|badger|memory"`
			DBPath          string        `conf:"default:zblock/ledger.json"`
			BadgerDir       string        `conf:"default:zblock/badger"`
			GenesisPath     string
			KnownPeers      []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			AuthorizedPeers []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			PeerTimeout     time.Duration `conf:"default:5s"`
			MaxPeerBytes    int64         `conf:"default:67108864"`
			ResolveInterval time.Duration `conf:"default:1m"`
			VerifyCacheSize int           `conf:"default:4096"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`  _     _____ ____   ____ _____ ____  `)
	fmt.Println(` | |   | ____|  _ \ / ___| ____|  _ \ `)
	fmt.Println(` | |   |  _| | | | | |  _|  _| | |_) |`)
	fmt.Println(` | |___| |___| |_| | |_| | |___|  _ < `)
	fmt.Println(` |_____|_____|____/ \____|_____|_| \_\`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Ledger Support

	// The genesis file is optional. Without one every node starts from the
	// same built in genesis so independent nodes agree on block zero.
	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	storage, err := newStorage(cfg.State.Storage, cfg.State.DBPath, cfg.State.BadgerDir)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// Verifying a chain from a peer repeats the same signature checks over
	// and over, so results are cached by signature, key and payload.
	verifier, err := signature.NewCachedVerifier(signature.Secp256k1{}, cfg.State.VerifyCacheSize)
	if err != nil {
		return fmt.Errorf("unable to construct verifier: %w", err)
	}

	// A peer set is a collection of known nodes in the network that are
	// consulted during conflict resolution.
	knownPeers, err := peerSet(cfg.State.KnownPeers)
	if err != nil {
		return fmt.Errorf("known peers: %w", err)
	}

	// Only hosts in the authorized set can be registered at runtime.
	authorized, err := peerSet(cfg.State.AuthorizedPeers)
	if err != nil {
		return fmt.Errorf("authorized peers: %w", err)
	}

	// The ledger packages accept a function of this signature to allow the
	// application to log. Messages prefixed with "viewer:" are also sent to
	// any websocket client connected through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, "viewer:") {
			evts.Send(s)
		}
	}

	// The state value represents the ledger node and manages the chain
	// database and provides an API for application support.
	state, err := state.New(state.Config{
		Host:            cfg.Web.PrivateHost,
		Storage:         storage,
		Genesis:         gen,
		KnownPeers:      knownPeers,
		AuthorizedPeers: authorized,
		PeerTimeout:     cfg.State.PeerTimeout,
		MaxPeerBytes:    cfg.State.MaxPeerBytes,
		Verifier:        verifier,
		EvHandler:       ev,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer state.Shutdown()

	// The worker package runs periodic peer discovery and conflict
	// resolution. The worker will register itself with the state.
	worker.Run(state, cfg.State.ResolveInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		NS:       ns,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// newStorage constructs the storage backend named by kind.
func newStorage(kind string, dbPath string, badgerDir string) (database.Storage, error) {
	switch kind {
	case "disk":
		return disk.New(dbPath)
	case "badger":
		return badgerdb.New(badgerDir)
	case "memory":
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}

// peerSet parses the configured hosts into a peer set.
func peerSet(hosts []string) (*peer.PeerSet, error) {
	ps := peer.NewPeerSet()
	for _, host := range hosts {
		pr, err := peer.Parse(host)
		if err != nil {
			return nil, err
		}
		ps.Add(pr)
	}

	return ps, nil
}
