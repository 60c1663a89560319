// Package dfs is the content-addressed blob store that holds claim payloads,
// reject reasons, descriptions and DID document bodies. The ledgers only keep
// references into it.
package dfs

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"Veritas/internal/fault"
	"Veritas/internal/logger"
	"Veritas/internal/storage"
)

// blobKeyPrefix is the Pebble key prefix for blob bodies.
var blobKeyPrefix = []byte("b:")

// Ref is the blake3 hash of a blob's plain bytes.
type Ref [32]byte

// RefOf returns the reference a blob would be stored under.
func RefOf(data []byte) Ref {
	return blake3.Sum256(data)
}

// ParseRef decodes a hex reference (with or without 0x prefix).
func ParseRef(s string) (Ref, error) {
	s = trimHexPrefix(s)

	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(Ref{}) {
		return Ref{}, fmt.Errorf("%w: invalid blob reference %q", fault.ErrValidation, s)
	}

	var r Ref
	copy(r[:], raw)

	return r, nil
}

// trimHexPrefix strips an optional 0x prefix.
func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// IsZero reports whether r is the empty reference.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// String returns the 0x-prefixed hex form.
func (r Ref) String() string {
	return "0x" + hex.EncodeToString(r[:])
}

// MarshalText encodes the reference as hex; the zero reference encodes as "".
func (r Ref) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return []byte{}, nil
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a hex reference; "" decodes to the zero reference.
func (r *Ref) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = Ref{}
		return nil
	}

	parsed, err := ParseRef(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

// Store is the blob store collaborator.
type Store interface {
	// Get returns the blob stored under ref.
	Get(ctx context.Context, ref Ref) ([]byte, error)

	// Add stores data and returns its reference. label is informational.
	Add(ctx context.Context, label string, data []byte) (Ref, error)
}

// PebbleStore keeps zstd-compressed blobs in Pebble, keyed by reference.
type PebbleStore struct {
	db  *storage.Storage // db is the underlying Pebble storage
	enc *zstd.Encoder    // enc compresses bodies, safe for concurrent EncodeAll
	dec *zstd.Decoder    // dec decompresses bodies, safe for concurrent DecodeAll
}

// NewPebbleStore creates a blob store backed by the given storage.
func NewPebbleStore(db *storage.Storage) (*PebbleStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder:\n%w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder:\n%w", err)
	}

	return &PebbleStore{db: db, enc: enc, dec: dec}, nil
}

// Add compresses and stores data. Adding the same bytes twice is a no-op.
func (s *PebbleStore) Add(ctx context.Context, label string, data []byte) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}

	ref := RefOf(data)
	key := s.makeKey(ref)

	exists, err := s.db.Has(key)
	if err != nil {
		return Ref{}, fmt.Errorf("check blob %s:\n%w", ref, err)
	}

	if exists {
		return ref, nil
	}

	compressed := s.enc.EncodeAll(data, make([]byte, 0, len(data)/2))

	if err := s.db.Set(key, compressed); err != nil {
		return Ref{}, fmt.Errorf("store blob %s:\n%w", ref, err)
	}

	logger.Debug("blob added", "label", label, "ref", ref.String(), "size", len(data), "stored", len(compressed))

	return ref, nil
}

// Get loads, decompresses and integrity-checks a blob.
func (s *PebbleStore) Get(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := s.db.Get(s.makeKey(ref))
	if err != nil {
		return nil, fmt.Errorf("read blob %s:\n%w", ref, err)
	}

	if compressed == nil {
		return nil, fmt.Errorf("%w: blob %s", fault.ErrNotFound, ref)
	}

	data, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress blob %s:\n%w", ref, err)
	}

	if got := RefOf(data); !bytes.Equal(got[:], ref[:]) {
		return nil, fmt.Errorf("blob %s is corrupt: content hashes to %s", ref, got)
	}

	return data, nil
}

// Close releases the compression resources.
func (s *PebbleStore) Close() {
	s.enc.Close()
	s.dec.Close()
}

// makeKey builds the Pebble key for a blob: "b:" + ref.
func (s *PebbleStore) makeKey(ref Ref) []byte {
	return storage.Key(blobKeyPrefix, ref[:])
}
