package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	if cfg.DataPath != "./data" || cfg.HTTPAddress != ":8080" || cfg.Network != "core" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFlags_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")

	content := `
data = "/var/lib/veritas"
http = ":9090"
network = "testcore"
log-level = "debug"

[[contract]]
id = "0x00000000000000000000000000000000000000000000000000000000000000c0"
controller = "0x0000000000000000000000000000000000000001"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseFlags([]string{"--config", path, "--http", ":7070"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	if cfg.DataPath != "/var/lib/veritas" {
		t.Errorf("data = %s", cfg.DataPath)
	}
	if cfg.HTTPAddress != ":7070" {
		t.Errorf("flag should override file, http = %s", cfg.HTTPAddress)
	}
	if cfg.Network != "testcore" || cfg.LogLevel != "debug" {
		t.Errorf("network=%s log-level=%s", cfg.Network, cfg.LogLevel)
	}
	if len(cfg.Contracts) != 1 || cfg.Contracts[0].Controller != "0x0000000000000000000000000000000000000001" {
		t.Errorf("contracts = %+v", cfg.Contracts)
	}
}

func TestParseFlags_MissingFile(t *testing.T) {
	if _, err := parseFlags([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.key")

	first, err := loadOrGenerateKey(path)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	second, err := loadOrGenerateKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if crypto.PubkeyToAddress(first.PublicKey) != crypto.PubkeyToAddress(second.PublicKey) {
		t.Error("reloaded key differs from generated key")
	}
}

func TestNewNode_WiresComponents(t *testing.T) {
	cfg, err := parseFlags([]string{"--data", t.TempDir(), "--network", "testcore"})
	if err != nil {
		t.Fatal(err)
	}

	cfg.Contracts = []ContractConfig{{
		ID:         "0x00000000000000000000000000000000000000000000000000000000000000c0",
		Controller: "0x0000000000000000000000000000000000000001",
	}}

	if cfg.PrivateKey, err = loadOrGenerateKey(""); err != nil {
		t.Fatal(err)
	}

	n, err := NewNode(cfg)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	defer n.Close()

	if n.evaluator.Anchor() != n.self {
		t.Error("anchor should default to the node account")
	}

	if _, err := n.ring.Get(n.keyID); err != nil {
		t.Errorf("node key not in ring: %v", err)
	}

	entries, err := n.identities.Export()
	if err != nil || len(entries) != 1 {
		t.Fatalf("contracts = %v, %v", entries, err)
	}
}
