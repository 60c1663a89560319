package main

import (
	"crypto/ecdsa"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/crypto"
)

// Config holds the node configuration.
type Config struct {
	// DataPath is the directory for persistent storage.
	DataPath string `toml:"data"`

	// HTTPAddress is the HTTP API listen address.
	HTTPAddress string `toml:"http"`

	// Network is the DID network segment, "core" for none.
	Network string `toml:"network"`

	// Anchor is the trust-anchor account. Defaults to the node account.
	Anchor string `toml:"anchor"`

	// KeyPath is the path to the hex secp256k1 private key file.
	KeyPath string `toml:"key"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `toml:"log-level"`

	// Contracts are contract identities registered with their controller at startup.
	Contracts []ContractConfig `toml:"contract"`

	// PrivateKey is the node's account key.
	PrivateKey *ecdsa.PrivateKey `toml:"-"`
}

// ContractConfig maps a contract identity to its controller.
type ContractConfig struct {
	ID         string `toml:"id"`
	Controller string `toml:"controller"`
}

// defaultConfig returns the configuration used when neither file nor flags set a value.
func defaultConfig() *Config {
	return &Config{
		DataPath:    "./data",
		HTTPAddress: ":8080",
		Network:     "core",
		LogLevel:    "info",
	}
}

// parseFlags parses command-line flags over an optional TOML file into Config.
// Explicit flags override file values.
func parseFlags(args []string) (*Config, error) {
	cfg := defaultConfig()

	fset := flag.NewFlagSet("node", flag.ContinueOnError)

	var configPath string
	fset.StringVar(&configPath, "config", "", "TOML configuration file")

	var fromFlags Config
	fset.StringVar(&fromFlags.DataPath, "data", cfg.DataPath, "Data directory path")
	fset.StringVar(&fromFlags.HTTPAddress, "http", cfg.HTTPAddress, "HTTP API address")
	fset.StringVar(&fromFlags.Network, "network", cfg.Network, "DID network (core for none)")
	fset.StringVar(&fromFlags.Anchor, "anchor", "", "Trust-anchor account address (defaults to node account)")
	fset.StringVar(&fromFlags.KeyPath, "key", "", "secp256k1 private key path (generates new if missing)")
	fset.StringVar(&fromFlags.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("read config %s:\n%w", configPath, err)
		}
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataPath = fromFlags.DataPath
		case "http":
			cfg.HTTPAddress = fromFlags.HTTPAddress
		case "network":
			cfg.Network = fromFlags.Network
		case "anchor":
			cfg.Anchor = fromFlags.Anchor
		case "key":
			cfg.KeyPath = fromFlags.KeyPath
		case "log-level":
			cfg.LogLevel = fromFlags.LogLevel
		}
	})

	return cfg, nil
}

// loadOrGenerateKey loads the private key from file or generates a new one.
func loadOrGenerateKey(keyPath string) (*ecdsa.PrivateKey, error) {
	if keyPath == "" {
		return generateNewKey()
	}

	priv, err := crypto.LoadECDSA(keyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return generateAndSaveKey(keyPath)
	}

	if err != nil {
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	return priv, nil
}

// generateNewKey creates a new secp256k1 private key.
func generateNewKey() (*ecdsa.PrivateKey, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key:\n%w", err)
	}

	return priv, nil
}

// generateAndSaveKey creates a new key and saves it to the given path.
func generateAndSaveKey(path string) (*ecdsa.PrivateKey, error) {
	priv, err := generateNewKey()
	if err != nil {
		return nil, err
	}

	if err := crypto.SaveECDSA(path, priv); err != nil {
		return nil, fmt.Errorf("save key to %s:\n%w", path, err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		return nil, fmt.Errorf("restrict key file %s:\n%w", path, err)
	}

	return priv, nil
}
