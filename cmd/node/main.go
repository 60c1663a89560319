package main

import (
	"fmt"
	"os"

	"Veritas/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point with error handling.
func run() error {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logger.Init(level)

	cfg.PrivateKey, err = loadOrGenerateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load key:\n%w", err)
	}

	node, err := NewNode(cfg)
	if err != nil {
		return fmt.Errorf("create node:\n%w", err)
	}

	printStartupInfo(node)

	return node.Run()
}

// printStartupInfo displays node configuration at startup.
func printStartupInfo(n *Node) {
	logger.Info("starting Veritas node",
		"did", n.codec.FormatDID(n.self),
		"anchor", n.evaluator.Anchor().String(),
		"network", n.codec.Network,
		"http", n.cfg.HTTPAddress,
		"data", n.cfg.DataPath,
	)
}
