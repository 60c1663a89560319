package claims

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"Veritas/internal/dfs"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/logger"
	"Veritas/internal/storage"
	"Veritas/internal/topic"
)

// Pebble key layout:
//
//	c:<subject key><topic hash><seq>  -> VerificationRecord
//	ci:<subject key><id>              -> <topic hash><seq>
//	m:claims-seq                      -> last allocated seq
var (
	prefixEntry = []byte("c:")
	prefixIndex = []byte("ci:")
	keySeq      = []byte("m:claims-seq")
)

const (
	// seqSize is the byte length of the big-endian sequence suffix.
	seqSize = 8

	// locatorSize is the length of an index value.
	locatorSize = len(topic.Hash{}) + seqSize
)

// Store is a Pebble-backed Ledger. It serialises all writes, so
// conflicting transitions on the same entry are applied one after another.
type Store struct {
	db         *storage.Storage  // db is the underlying Pebble storage
	identities identity.Resolver // identities resolves contract controllers, may be nil
	now        func() time.Time  // now stamps creation dates
	mu         sync.Mutex        // mu serialises writes and seq allocation
}

// NewStore creates a claim ledger. identities is used to let a contract's
// controller act on the contract's behalf; pass nil to disable that.
func NewStore(db *storage.Storage, identities identity.Resolver) *Store {
	return &Store{db: db, identities: identities, now: time.Now}
}

// Get returns all entries for subject and topic in creation order.
func (s *Store) Get(ctx context.Context, subject identity.Identity, t topic.Topic) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	th := t.Hash()
	prefix := storage.Key(prefixEntry, subject.Key(), th[:])

	var entries []Entry

	err := s.db.IteratePrefix(prefix, func(key, value []byte) error {
		e, err := decodeEntry(value)
		if err != nil {
			return fmt.Errorf("entry %x:\n%w", key, err)
		}

		entries = append(entries, e)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read verifications for %s %s:\n%w", subject, t, err)
	}

	return entries, nil
}

// Set issues a verification. Issuing again for the same issuer, subject and
// topic replaces the entry in place and resets it to Issued, unless the
// existing entry was rejected.
func (s *Store) Set(ctx context.Context, issuer, subject identity.Identity, t topic.Topic, opts SetOptions) (ID, error) {
	if err := ctx.Err(); err != nil {
		return ID{}, err
	}

	if issuer.IsZero() || subject.IsZero() || t.IsZero() {
		return ID{}, fmt.Errorf("%w: issuer, subject and topic are required", fault.ErrValidation)
	}

	if opts.ExpirationDate < 0 {
		return ID{}, fmt.Errorf("%w: negative expiration date", fault.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewID(issuer, t)

	height, err := s.nextSeq()
	if err != nil {
		return ID{}, err
	}

	entry := Entry{
		ID:                      id,
		Issuer:                  issuer,
		Subject:                 subject,
		Topic:                   t,
		Status:                  StatusIssued,
		CreationDate:            s.now().Unix(),
		CreationBlock:           height,
		ExpirationDate:          opts.ExpirationDate,
		DisableSubVerifications: opts.DisableSubVerifications,
		Description:             opts.Description,
		Data:                    opts.Data,
	}

	key, existing, err := s.load(subject, id)
	switch {
	case errors.Is(err, fault.ErrNotFound):
		th := t.Hash()
		key = entryKey(subject, th, height)
	case err != nil:
		return ID{}, err
	case existing.Status == StatusRejected:
		return ID{}, fmt.Errorf("%w: verification %s was rejected", fault.ErrInvalidTransition, id)
	}

	if err := s.db.Apply([]storage.Op{
		storage.Put(key, encodeEntry(&entry)),
		storage.Put(indexKey(subject, id), key[len(prefixEntry)+identity.KeySize:]),
		storage.Put(keySeq, encodeSeq(height)),
	}); err != nil {
		return ID{}, fmt.Errorf("write verification %s:\n%w", id, err)
	}

	logger.Info("verification issued",
		"id", id.String(),
		"issuer", issuer.String(),
		"subject", subject.String(),
		"topic", t.String(),
	)

	return id, nil
}

// Confirm marks an issued entry confirmed. Only the subject (or its controller) may confirm.
func (s *Store) Confirm(ctx context.Context, actor, subject identity.Identity, id ID) error {
	return s.transition(ctx, actor, subject, id, func(e *Entry) error {
		if e.Status != StatusIssued {
			return fmt.Errorf("%w: cannot confirm %s verification %s", fault.ErrInvalidTransition, e.Status, id)
		}

		e.Status = StatusConfirmed

		return nil
	})
}

// Reject marks an entry rejected with an optional reason blob. Rejection is terminal.
func (s *Store) Reject(ctx context.Context, actor, subject identity.Identity, id ID, reason dfs.Ref) error {
	return s.transition(ctx, actor, subject, id, func(e *Entry) error {
		if e.Status == StatusRejected {
			return fmt.Errorf("%w: verification %s already rejected", fault.ErrInvalidTransition, id)
		}

		e.Status = StatusRejected
		e.RejectReason = reason

		return nil
	})
}

// Delete removes an entry. Only the issuer (or its controller) may delete.
func (s *Store) Delete(ctx context.Context, actor, subject identity.Identity, id ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, entry, err := s.load(subject, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, actor, entry.Issuer); err != nil {
		return fmt.Errorf("delete verification %s:\n%w", id, err)
	}

	if err := s.db.Apply([]storage.Op{
		storage.Del(key),
		storage.Del(indexKey(subject, id)),
	}); err != nil {
		return fmt.Errorf("delete verification %s:\n%w", id, err)
	}

	logger.Info("verification deleted", "id", id.String(), "actor", actor.String())

	return nil
}

// transition applies fn to the entry after checking the actor acts for the subject.
func (s *Store) transition(ctx context.Context, actor, subject identity.Identity, id ID, fn func(*Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, entry, err := s.load(subject, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, actor, subject); err != nil {
		return fmt.Errorf("update verification %s:\n%w", id, err)
	}

	if err := fn(&entry); err != nil {
		return err
	}

	if err := s.db.Set(key, encodeEntry(&entry)); err != nil {
		return fmt.Errorf("write verification %s:\n%w", id, err)
	}

	logger.Info("verification updated", "id", id.String(), "status", entry.Status.String(), "actor", actor.String())

	return nil
}

// authorize succeeds when actor is owner or, for contract owners, the owner's controller.
func (s *Store) authorize(ctx context.Context, actor, owner identity.Identity) error {
	if actor == owner {
		return nil
	}

	if owner.IsContract() && s.identities != nil {
		controller, err := s.identities.ControllerOf(ctx, owner)
		if err != nil && !errors.Is(err, fault.ErrNotFound) {
			return err
		}

		if err == nil && controller == actor {
			return nil
		}
	}

	return fmt.Errorf("%w: %s may not act for %s", fault.ErrForbidden, actor, owner)
}

// load finds an entry through the subject index.
func (s *Store) load(subject identity.Identity, id ID) ([]byte, Entry, error) {
	locator, err := s.db.Get(indexKey(subject, id))
	if err != nil {
		return nil, Entry{}, fmt.Errorf("read index for %s:\n%w", id, err)
	}

	if len(locator) != locatorSize {
		return nil, Entry{}, fmt.Errorf("%w: verification %s for %s", fault.ErrNotFound, id, subject)
	}

	key := storage.Key(prefixEntry, subject.Key(), locator)

	value, err := s.db.Get(key)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("read verification %s:\n%w", id, err)
	}

	if value == nil {
		return nil, Entry{}, fmt.Errorf("%w: verification %s for %s", fault.ErrNotFound, id, subject)
	}

	entry, err := decodeEntry(value)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("decode verification %s:\n%w", id, err)
	}

	return key, entry, nil
}

// nextSeq allocates the next ledger height. Caller must hold s.mu.
func (s *Store) nextSeq() (uint64, error) {
	value, err := s.db.Get(keySeq)
	if err != nil {
		return 0, fmt.Errorf("read ledger height:\n%w", err)
	}

	var seq uint64
	if len(value) == seqSize {
		seq = binary.BigEndian.Uint64(value)
	}

	return seq + 1, nil
}

// entryKey builds "c:" + subject + topic hash + seq.
func entryKey(subject identity.Identity, th topic.Hash, seq uint64) []byte {
	return storage.Key(prefixEntry, subject.Key(), th[:], encodeSeq(seq))
}

// indexKey builds "ci:" + subject + id.
func indexKey(subject identity.Identity, id ID) []byte {
	return storage.Key(prefixIndex, subject.Key(), id[:])
}

// encodeSeq returns the big-endian form of seq so keys sort by creation.
func encodeSeq(seq uint64) []byte {
	buf := make([]byte, seqSize)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
