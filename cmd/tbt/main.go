// Package main provides the entry point for the token-bound-token ledger.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/CR3Labs/token-bound-token/pkg/config"
	"github.com/CR3Labs/token-bound-token/pkg/escrow"
	"github.com/CR3Labs/token-bound-token/pkg/ledger"
	"github.com/CR3Labs/token-bound-token/pkg/multitoken"
	"github.com/CR3Labs/token-bound-token/pkg/oracle"
	"github.com/CR3Labs/token-bound-token/pkg/registry"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "path to JSON config file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tbt version %s\n", Version)
		os.Exit(0)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	host := registry.New()
	resolver := oracle.NewResolver(host)
	for contract, sig := range cfg.OwnerOfOverrides {
		resolver.SetOwnerOfFunction(contract, sig)
	}

	l, err := ledger.New(ledger.Config{
		Admin:    cfg.Admin,
		Custody:  cfg.Custody,
		Payee:    cfg.Payee,
		Balances: multitoken.NewLedger(),
		Escrow:   escrow.New(),
		Owners:   resolver,
		Events:   ledger.NewRecordingSink(),
	})
	if err != nil {
		log.Error("failed to build ledger", "err", err)
		os.Exit(1)
	}

	log.Info("token-bound-token ledger ready",
		"version", Version,
		"admin", l.Admin().Hex(),
		"payee", l.Payee().Hex(),
		"nextId", l.NextID().String(),
		"ownerOfOverrides", len(cfg.OwnerOfOverrides),
	)
}
