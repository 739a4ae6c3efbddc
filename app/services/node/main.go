package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"github.com/karmacoin/node/app/services/node/handlers"
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/genesis"
	"github.com/karmacoin/node/foundation/blockchain/signature"
	"github.com/karmacoin/node/foundation/blockchain/state"
	"github.com/karmacoin/node/foundation/blockchain/storage"
	"github.com/karmacoin/node/foundation/blockchain/verifier"
	"github.com/karmacoin/node/foundation/blockchain/worker"
	"github.com/karmacoin/node/foundation/events"
	"github.com/karmacoin/node/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in
// the makefile.
var build = "develop"

func main() {

	// Environment files keep local development credentials out of the
	// shell profile.
	godotenv.Load()

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

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			DBPath          string        `conf:"default:zchain/db"`
			DropOnExit      bool          `conf:"default:false"`
			GenesisFile     string        `conf:"default:zchain/genesis.json"`
			BackupDir       string        `conf:"default:zchain/backup"`
			ProducerSeed    string        `conf:"mask"`
			VerifierSeed    string        `conf:"mask"`
			ProduceInterval time.Duration `conf:"default:10s"`
			KarmaInterval   time.Duration `conf:"default:720h"`
			BackupInterval  time.Duration `conf:"default:24h"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "KARMACOIN"
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

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Genesis and Key Support

	gen, err := genesis.Load(cfg.Node.GenesisFile)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}
	log.Infow("startup", "status", "genesis loaded", "netid", gen.NetID, "netname", gen.NetName)

	producerKP, err := loadOrGenerate(log, "producer", cfg.Node.ProducerSeed)
	if err != nil {
		return err
	}

	verifierKP, err := loadOrGenerate(log, "verifier", cfg.Node.VerifierSeed)
	if err != nil {
		return err
	}

	// The local verifier must be in the trusted set or its evidence would
	// reject every signup.
	verifierID, err := database.ToAccountID(verifierKP.PublicKey)
	if err != nil {
		return err
	}
	if !gen.IsTrustedVerifier(verifierID.String()) {
		gen.Verifiers = append(gen.Verifiers, genesis.Verifier{AccountID: verifierID.String(), Name: "local"})
	}

	// =========================================================================
	// Blockchain Support

	store, err := storage.New(cfg.Node.DBPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if cfg.Node.DropOnExit {
			log.Infow("shutdown", "status", "dropping database", "path", cfg.Node.DBPath)
			if err := store.Drop(); err != nil {
				log.Errorw("shutdown", "status", "dropping database", "ERROR", err)
			}
			return
		}
		store.Close()
	}()

	db, err := database.New(store, gen.NetID)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow
	// the application to log. These raw messages are also sent to any
	// websocket client that is connected into the system through the
	// events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	vrf, err := verifier.New(db, verifierKP, verifier.LogSender{Log: ev}, ev)
	if err != nil {
		return fmt.Errorf("constructing verifier: %w", err)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		DB:        db,
		Keypair:   producerKP,
		BackupDir: cfg.Node.BackupDir,
		Inviter:   vrf,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker registers itself with the state and runs block production
	// plus the periodic chores.
	worker.New(st, worker.Config{
		ProduceInterval: cfg.Node.ProduceInterval,
		KarmaInterval:   cfg.Node.KarmaInterval,
		BackupInterval:  cfg.Node.BackupInterval,
	}, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Verifier: vrf,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

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
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// loadOrGenerate resolves a signing keypair from a hex seed, or generates
// an ephemeral one for local development when no seed is configured.
func loadOrGenerate(log *zap.SugaredLogger, name string, seed string) (signature.Keypair, error) {
	if seed != "" {
		kp, err := signature.LoadKeypair(seed)
		if err != nil {
			return signature.Keypair{}, fmt.Errorf("loading %s keypair: %w", name, err)
		}
		return kp, nil
	}

	kp, err := signature.Generate()
	if err != nil {
		return signature.Keypair{}, fmt.Errorf("generating %s keypair: %w", name, err)
	}
	log.Infow("startup", "status", "generated ephemeral keypair", "role", name)
	return kp, nil
}
