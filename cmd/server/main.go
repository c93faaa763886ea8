package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/subosito/gotenv"

	"github.com/rfmelo/gastos/pkg/classifier"
	"github.com/rfmelo/gastos/pkg/config"
	"github.com/rfmelo/gastos/pkg/ledger"
	"github.com/rfmelo/gastos/pkg/server"
	"github.com/rfmelo/gastos/pkg/store"
)

func main() {
	_ = gotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "gastos",
	})

	var cfgFile string
	flag.StringVar(&cfgFile, "c", "", "Config file (default is config.yaml)")
	flag.Parse()

	cfg, err := config.Build(cfgFile, nil)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	var backend classifier.Classifier
	switch cfg.Backend {
	case "rules":
		backend, err = classifier.LoadRules(cfg.RulesPath)
		if err != nil {
			logger.Fatal("failed to load rules", "err", err)
		}
	default:
		backend = classifier.NewZeroShot(cfg)
	}

	gate, err := classifier.NewService(backend, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build classifier", "err", err)
	}
	defer gate.Close()

	st := store.New(cfg.LedgerPath, logger)
	svc := ledger.New(st, gate, logger)

	srv := server.New(cfg, svc, logger)
	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	logger.Info("starting server", "addr", addr, "ledger", cfg.LedgerPath)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
