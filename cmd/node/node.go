package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Veritas/internal/api"
	"Veritas/internal/claims"
	"Veritas/internal/dfs"
	"Veritas/internal/did"
	"Veritas/internal/identity"
	"Veritas/internal/keys"
	"Veritas/internal/logger"
	"Veritas/internal/proof"
	"Veritas/internal/storage"
	"Veritas/internal/trust"
)

// Node represents a running node.
type Node struct {
	cfg        *Config
	storage    *storage.Storage
	blobs      *dfs.PebbleStore
	codec      identity.Codec
	self       identity.Identity
	anchor     identity.Identity
	keyID      string
	ring       *keys.Ring
	identities *identity.Registry
	ledger     *claims.Store
	evaluator  *trust.Evaluator
	manager    *did.Manager
	api        *api.Server
}

// NewNode creates and initializes a new node.
func NewNode(cfg *Config) (*Node, error) {
	n := &Node{cfg: cfg}

	if err := n.initStorage(); err != nil {
		return nil, err
	}

	if err := n.initIdentity(); err != nil {
		n.Close()
		return nil, err
	}

	if err := n.initContracts(); err != nil {
		n.Close()
		return nil, err
	}

	n.ledger = claims.NewStore(n.storage, n.identities)
	n.evaluator = trust.New(n.ledger, n.anchor)
	n.manager = did.NewManager(n.identities, did.NewRegistry(n.storage), n.blobs, proof.NewEngine(n.ring, n.codec, n.identities))

	return n, nil
}

// initStorage initializes the Pebble storage and blob store.
func (n *Node) initStorage() error {
	dbPath := n.cfg.DataPath + "/db"

	if err := os.MkdirAll(n.cfg.DataPath, 0755); err != nil {
		return fmt.Errorf("create data directory:\n%w", err)
	}

	db, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("init storage:\n%w", err)
	}

	n.storage = db

	blobs, err := dfs.NewPebbleStore(db)
	if err != nil {
		return fmt.Errorf("init blob store:\n%w", err)
	}

	n.blobs = blobs

	return nil
}

// initIdentity derives the node identity, its keyring and the trust anchor.
func (n *Node) initIdentity() error {
	n.codec = identity.NewCodec(n.cfg.Network)

	signer := keys.NewSecp256k1(n.cfg.PrivateKey)
	n.self = identity.Account(signer.Address())
	n.keyID = n.codec.FormatDID(n.self) + "#" + did.DefaultKeyFragment

	n.ring = keys.NewRing()
	n.ring.Add(n.keyID, signer)

	n.identities = identity.NewRegistry(n.storage, n.codec)

	n.anchor = n.self
	if n.cfg.Anchor != "" {
		anchor, err := n.identities.IdentityFor(context.Background(), n.cfg.Anchor)
		if err != nil {
			return fmt.Errorf("parse anchor:\n%w", err)
		}

		if anchor.IsContract() {
			return fmt.Errorf("anchor %s must be an account", anchor)
		}

		n.anchor = anchor
	}

	return nil
}

// initContracts registers the configured contract controllers.
func (n *Node) initContracts() error {
	ctx := context.Background()

	for _, c := range n.cfg.Contracts {
		contract, err := n.identities.IdentityFor(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("parse contract %q:\n%w", c.ID, err)
		}

		controller, err := n.identities.IdentityFor(ctx, c.Controller)
		if err != nil {
			return fmt.Errorf("parse controller %q:\n%w", c.Controller, err)
		}

		if err := n.identities.RegisterContract(ctx, contract, controller); err != nil {
			return fmt.Errorf("register contract %s:\n%w", contract, err)
		}
	}

	registered, err := n.identities.Export()
	if err != nil {
		return fmt.Errorf("list contracts:\n%w", err)
	}

	logger.Info("contracts loaded", "count", len(registered))

	return nil
}

// Run starts the node and blocks until shutdown signal.
func (n *Node) Run() error {
	n.api = api.New(
		n.cfg.HTTPAddress,
		api.Actor{Identity: n.self, KeyID: n.keyID},
		n.identities,
		n.ledger,
		n.evaluator,
		n.manager,
		n.blobs,
	)

	if err := n.api.Start(); err != nil {
		n.Close()
		return fmt.Errorf("start api:\n%w", err)
	}

	return n.waitForShutdown()
}

// waitForShutdown blocks until SIGINT or SIGTERM and closes the node.
func (n *Node) waitForShutdown() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	return n.Close()
}

// Close shuts down all node components gracefully.
func (n *Node) Close() error {
	if n.api != nil {
		if err := n.api.Stop(); err != nil {
			logger.Warn("failed to stop http api", "error", err)
		}
	}

	if n.blobs != nil {
		n.blobs.Close()
	}

	if n.storage != nil {
		return n.storage.Close()
	}

	return nil
}
