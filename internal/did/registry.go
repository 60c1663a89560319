package did

import (
	"context"
	"fmt"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"

	"Veritas/internal/dfs"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/storage"
	"Veritas/internal/types"
)

var (
	// pointerKeyPrefix is the Pebble key prefix for document pointers.
	pointerKeyPrefix = []byte("p:")

	// deactivatedKeyPrefix is the Pebble key prefix for deactivation markers.
	deactivatedKeyPrefix = []byte("x:")
)

// Record points at the current document body of an identity.
type Record struct {
	Hash    dfs.Ref // Hash is the DFS reference of the signed body
	Created int64   // Created is the unix time of the first publication
	Updated int64   // Updated is the unix time of the latest publication
}

// Registry stores document pointers and deactivation markers in Pebble.
type Registry struct {
	db *storage.Storage // db is the underlying Pebble storage
	mu sync.Mutex       // mu serialises pointer and marker writes
}

// NewRegistry creates a registry backed by the given storage.
func NewRegistry(db *storage.Storage) *Registry {
	return &Registry{db: db}
}

// Pointer returns the stored record of id. ok is false when nothing was published.
func (r *Registry) Pointer(ctx context.Context, id identity.Identity) (rec Record, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	data, err := r.db.Get(r.pointerKey(id))
	if err != nil {
		return Record{}, false, fmt.Errorf("read did pointer %s:\n%w", id, err)
	}

	if data == nil {
		return Record{}, false, nil
	}

	rec, err = decodeRecord(data)
	if err != nil {
		return Record{}, false, fmt.Errorf("decode did pointer %s:\n%w", id, err)
	}

	return rec, true, nil
}

// SetPointer stores rec as the current pointer of id unless id is deactivated.
func (r *Registry) SetPointer(ctx context.Context, id identity.Identity, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deactivated, err := r.db.Has(r.markerKey(id))
	if err != nil {
		return fmt.Errorf("read deactivation marker %s:\n%w", id, err)
	}

	if deactivated {
		return fmt.Errorf("%w: %s", fault.ErrDeactivatedDid, id)
	}

	return r.db.Set(r.pointerKey(id), encodeRecord(rec))
}

// Deactivate writes the deactivation marker of id and drops its pointer.
// It fails with ErrDeactivationFailed if id is already deactivated.
func (r *Registry) Deactivate(ctx context.Context, id identity.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deactivated, err := r.db.Has(r.markerKey(id))
	if err != nil {
		return fmt.Errorf("read deactivation marker %s:\n%w", id, err)
	}

	if deactivated {
		return fmt.Errorf("%w: %s is already deactivated", fault.ErrDeactivationFailed, id)
	}

	return r.db.Apply([]storage.Op{
		storage.Put(r.markerKey(id), []byte{1}),
		storage.Del(r.pointerKey(id)),
	})
}

// IsDeactivated reports whether id carries a deactivation marker.
func (r *Registry) IsDeactivated(ctx context.Context, id identity.Identity) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := r.db.Has(r.markerKey(id))
	if err != nil {
		return false, fmt.Errorf("read deactivation marker %s:\n%w", id, err)
	}

	return ok, nil
}

// pointerKey builds "p:" + identity key.
func (r *Registry) pointerKey(id identity.Identity) []byte {
	return storage.Key(pointerKeyPrefix, id.Key())
}

// markerKey builds "x:" + identity key.
func (r *Registry) markerKey(id identity.Identity) []byte {
	return storage.Key(deactivatedKeyPrefix, id.Key())
}

// encodeRecord serializes a record as a FlatBuffers DidRecord.
func encodeRecord(rec Record) []byte {
	builder := flatbuffers.NewBuilder(64)

	hashVec := builder.CreateByteVector(rec.Hash[:])

	types.DidRecordStart(builder)
	types.DidRecordAddHash(builder, hashVec)
	types.DidRecordAddCreated(builder, uint64(rec.Created))
	types.DidRecordAddUpdated(builder, uint64(rec.Updated))
	builder.Finish(types.DidRecordEnd(builder))

	return builder.FinishedBytes()
}

// decodeRecord parses a DidRecord.
func decodeRecord(data []byte) (rec Record, retErr error) {
	// FlatBuffers panics on malformed data, recover gracefully
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("malformed did record")
		}
	}()

	if len(data) < 8 {
		return Record{}, fmt.Errorf("did record too short")
	}

	fb := types.GetRootAsDidRecord(data, 0)

	if len(fb.HashBytes()) != len(dfs.Ref{}) {
		return Record{}, fmt.Errorf("invalid hash size: %d", len(fb.HashBytes()))
	}

	copy(rec.Hash[:], fb.HashBytes())
	rec.Created = int64(fb.Created())
	rec.Updated = int64(fb.Updated())

	return rec, nil
}
