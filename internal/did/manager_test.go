package did

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Veritas/internal/dfs"
	"Veritas/internal/document"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/keys"
	"Veritas/internal/proof"
	"Veritas/internal/storage"
)

// newTestStorage creates a temporary storage for testing.
func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	dir, err := os.MkdirTemp("", "did-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	db, err := storage.New(filepath.Join(dir, "db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to create storage: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(dir)
	})

	return db
}

type testEnv struct {
	m          *Manager
	codec      identity.Codec
	ring       *keys.Ring
	identities *identity.Registry
	registry   *Registry
	blobs      *dfs.PebbleStore
	alice      identity.Identity
	aliceKey   string
	bob        identity.Identity
	bobKey     string
	contract   identity.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestStorage(t)
	codec := identity.NewCodec("")
	ring := keys.NewRing()

	blobs, err := dfs.NewPebbleStore(db)
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	t.Cleanup(blobs.Close)

	env := &testEnv{
		codec:      codec,
		ring:       ring,
		identities: identity.NewRegistry(db, codec),
		registry:   NewRegistry(db),
		blobs:      blobs,
		contract:   identity.Contract([32]byte{0xC0, 0xFF, 0xEE}),
	}

	env.alice, env.aliceKey = env.addAccount(t)
	env.bob, env.bobKey = env.addAccount(t)

	if err := env.identities.RegisterContract(context.Background(), env.contract, env.alice); err != nil {
		t.Fatalf("register contract: %v", err)
	}

	env.m = NewManager(env.identities, env.registry, blobs, proof.NewEngine(ring, codec, env.identities))

	return env
}

// addAccount generates an account key and registers it as key-1.
func (e *testEnv) addAccount(t *testing.T) (identity.Identity, string) {
	t.Helper()

	s, err := keys.GenerateSecp256k1()
	if err != nil {
		t.Fatal(err)
	}

	id := identity.Account(s.Address())
	keyID := e.codec.FormatDID(id) + "#" + DefaultKeyFragment
	e.ring.Add(keyID, s)

	return id, keyID
}

func (e *testEnv) did(id identity.Identity) string {
	return e.codec.FormatDID(id)
}

func marshal(t *testing.T, doc *document.Document) []byte {
	t.Helper()

	raw, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func withService(doc *document.Document, endpoint string) *document.Document {
	c := doc.Clone()
	c.Service = append(c.Service, document.Service{
		ID:              doc.ID + "#agent",
		Type:            "DIDCommMessaging",
		ServiceEndpoint: endpoint,
	})
	return c
}

func TestResolve_DefaultAccountDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v, err := env.m.ResolveVariant(ctx, env.did(env.alice))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	acc, ok := v.(AccountDocument)
	if !ok {
		t.Fatalf("variant = %T, want AccountDocument", v)
	}

	if !acc.Default {
		t.Error("expected default document")
	}

	pk, ok := acc.Doc.FindKey(env.aliceKey)
	if !ok {
		t.Fatalf("default document lacks %s", env.aliceKey)
	}

	if pk.EthereumAddress != env.alice.Address().Hex() {
		t.Errorf("address = %s, want %s", pk.EthereumAddress, env.alice.Address().Hex())
	}

	if acc.Doc.Proof != nil {
		t.Error("default document must be unsigned")
	}
}

func TestDefaultDocument_Contract(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.m.DefaultDocument(context.Background(), env.contract)
	if err != nil {
		t.Fatalf("default document: %v", err)
	}

	if doc.Controller != env.did(env.alice) {
		t.Errorf("controller = %s", doc.Controller)
	}

	if len(doc.Authentication) != 1 || doc.Authentication[0] != env.aliceKey {
		t.Errorf("authentication = %v, want [%s]", doc.Authentication, env.aliceKey)
	}

	if len(doc.PublicKey) != 0 {
		t.Errorf("contract default document should carry no keys, got %v", doc.PublicKey)
	}
}

func TestDefaultDocument_UnregisteredContract(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.m.DefaultDocument(context.Background(), identity.Contract([32]byte{0x99}))
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPublish_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.m.now = func() time.Time { return t0 }

	base, err := env.m.Resolve(ctx, env.did(env.alice))
	if err != nil {
		t.Fatal(err)
	}

	published, err := env.m.Publish(ctx, env.alice, env.did(env.alice), marshal(t, withService(base, "https://a.example")), env.aliceKey)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if published.Proof == nil || published.Proof.VerificationMethod != env.aliceKey {
		t.Fatalf("unexpected proof: %+v", published.Proof)
	}

	if published.Created != "2026-03-01T12:00:00Z" || published.Updated != published.Created {
		t.Errorf("created=%s updated=%s", published.Created, published.Updated)
	}

	v, err := env.m.ResolveVariant(ctx, env.did(env.alice))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	acc, ok := v.(AccountDocument)
	if !ok || acc.Default {
		t.Fatalf("variant = %#v", v)
	}

	if len(acc.Doc.Service) != 1 || acc.Doc.Service[0].ServiceEndpoint != "https://a.example" {
		t.Errorf("service = %+v", acc.Doc.Service)
	}

	// Update: created is kept, updated moves.
	env.m.now = func() time.Time { return t0.Add(time.Hour) }

	updated, err := env.m.Publish(ctx, env.alice, env.did(env.alice), marshal(t, withService(acc.Doc, "https://b.example")), env.aliceKey)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}

	if updated.Created != "2026-03-01T12:00:00Z" || updated.Updated != "2026-03-01T13:00:00Z" {
		t.Errorf("created=%s updated=%s", updated.Created, updated.Updated)
	}

	rec, ok, err := env.registry.Pointer(ctx, env.alice)
	if err != nil || !ok {
		t.Fatalf("pointer: ok=%v err=%v", ok, err)
	}

	if rec.Created != t0.Unix() || rec.Updated != t0.Add(time.Hour).Unix() {
		t.Errorf("record = %+v", rec)
	}
}

func TestResolve_TamperedBodyIsPayloadMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base, err := env.m.Resolve(ctx, env.did(env.alice))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.alice, env.did(env.alice), marshal(t, withService(base, "https://a.example")), env.aliceKey); err != nil {
		t.Fatalf("publish: %v", err)
	}

	rec, _, err := env.registry.Pointer(ctx, env.alice)
	if err != nil {
		t.Fatal(err)
	}

	body, err := env.blobs.Get(ctx, rec.Hash)
	if err != nil {
		t.Fatal(err)
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		t.Fatal(err)
	}
	obj["service"] = []any{map[string]any{"id": "x", "type": "evil", "serviceEndpoint": "https://evil.example"}}

	tampered, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}

	ref, err := env.blobs.Add(ctx, "tampered", tampered)
	if err != nil {
		t.Fatal(err)
	}

	rec.Hash = ref
	if err := env.registry.SetPointer(ctx, env.alice, rec); err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Resolve(ctx, env.did(env.alice)); !errors.Is(err, fault.ErrPayloadMismatch) {
		t.Fatalf("expected payload mismatch, got %v", err)
	}
}

func TestResolve_MissingBodyIsNotDefaulted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := Record{Hash: dfs.RefOf([]byte("never stored")), Created: 1, Updated: 1}
	if err := env.registry.SetPointer(ctx, env.alice, rec); err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Resolve(ctx, env.did(env.alice)); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected blob not found, got %v", err)
	}
}

func TestDeactivate_IsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	did := env.did(env.alice)

	base, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, base), env.aliceKey); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := env.m.Deactivate(ctx, env.alice, did); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, base), env.aliceKey); !errors.Is(err, fault.ErrDeactivatedDid) {
		t.Fatalf("publish after deactivation: expected deactivated, got %v", err)
	}

	for i := 0; i < 3; i++ {
		v, err := env.m.ResolveVariant(ctx, did)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}

		if _, ok := v.(DeactivatedDocument); !ok {
			t.Fatalf("resolve %d: variant = %T", i, v)
		}

		doc := v.Document()
		if doc.ID != did || !doc.IsEmpty() || doc.Proof != nil {
			t.Errorf("placeholder = %+v", doc)
		}
	}

	if err := env.m.Deactivate(ctx, env.alice, did); !errors.Is(err, fault.ErrDeactivationFailed) {
		t.Fatalf("second deactivate: expected failure, got %v", err)
	}

	ok, err := env.m.IsDeactivated(ctx, did)
	if err != nil || !ok {
		t.Fatalf("IsDeactivated = %v, %v", ok, err)
	}
}

func TestDeactivate_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.m.Deactivate(ctx, env.bob, env.did(env.alice)); !errors.Is(err, fault.ErrDeactivationFailed) {
		t.Fatalf("account: expected deactivation failure, got %v", err)
	}

	if err := env.m.Deactivate(ctx, env.bob, env.did(env.contract)); !errors.Is(err, fault.ErrDeactivationFailed) {
		t.Fatalf("contract: expected deactivation failure, got %v", err)
	}

	if err := env.m.Deactivate(ctx, env.alice, env.did(env.contract)); err != nil {
		t.Fatalf("controller deactivate: %v", err)
	}
}

func TestPublish_NotAuthorizedToIssue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceDoc, err := env.m.Resolve(ctx, env.did(env.alice))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.bob, env.did(env.alice), marshal(t, aliceDoc), env.bobKey); !errors.Is(err, fault.ErrNotAuthorizedToIssue) {
		t.Fatalf("account: expected not authorized, got %v", err)
	}

	contractDoc, err := env.m.Resolve(ctx, env.did(env.contract))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.bob, env.did(env.contract), marshal(t, contractDoc), env.bobKey); !errors.Is(err, fault.ErrNotAuthorizedToIssue) {
		t.Fatalf("contract: expected not authorized, got %v", err)
	}

	// Naming oneself as controller does not help.
	hijack := contractDoc.Clone()
	hijack.Controller = env.did(env.bob)

	if _, err := env.m.Publish(ctx, env.bob, env.did(env.contract), marshal(t, hijack), env.bobKey); !errors.Is(err, fault.ErrNotAuthorizedToIssue) {
		t.Fatalf("hijack: expected not authorized, got %v", err)
	}
}

func TestPublish_IDMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc, err := env.m.Resolve(ctx, env.did(env.alice))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.alice, env.did(env.bob), marshal(t, doc), env.aliceKey); !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPublish_ContractByController(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc, err := env.m.Resolve(ctx, env.did(env.contract))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.alice, env.did(env.contract), marshal(t, withService(doc, "https://c.example")), env.aliceKey); err != nil {
		t.Fatalf("publish: %v", err)
	}

	v, err := env.m.ResolveVariant(ctx, env.did(env.contract))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	cd, ok := v.(ContractDocument)
	if !ok || cd.Default {
		t.Fatalf("variant = %#v", v)
	}

	if cd.Controller != env.alice {
		t.Errorf("controller = %s", cd.Controller)
	}
}

func TestResolve_ContractFailsAfterControllerDeactivated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc, err := env.m.Resolve(ctx, env.did(env.contract))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.m.Publish(ctx, env.alice, env.did(env.contract), marshal(t, doc), env.aliceKey); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := env.m.Deactivate(ctx, env.alice, env.did(env.alice)); err != nil {
		t.Fatalf("deactivate controller: %v", err)
	}

	if _, err := env.m.Resolve(ctx, env.did(env.contract)); !errors.Is(err, fault.ErrUnauthorizedSigner) {
		t.Fatalf("expected unauthorized signer, got %v", err)
	}
}

func TestPublish_SelfSignedWithNewKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	did := env.did(env.alice)

	ed, err := keys.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	edKey := did + "#key-2"
	env.ring.Add(edKey, ed)

	base, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatal(err)
	}

	next := base.Clone()
	next.PublicKey = append(next.PublicKey, ed.PublicKey(edKey, did))
	next.Authentication = append(next.Authentication, edKey)

	// The new key is not yet part of the stored document.
	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, next), edKey); !errors.Is(err, fault.ErrUnauthorizedSigner) {
		t.Fatalf("expected unauthorized signer, got %v", err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, next), env.aliceKey); err != nil {
		t.Fatalf("publish with key-1: %v", err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, next), edKey); err != nil {
		t.Fatalf("publish with key-2: %v", err)
	}

	resolved, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Proof.VerificationMethod != edKey || resolved.Proof.Type != keys.ProofType(keys.TypeEd25519) {
		t.Errorf("proof = %+v", resolved.Proof)
	}
}

func TestManager_VerifyExternalDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	engine := proof.NewEngine(env.ring, env.codec, env.identities)

	contractDoc, err := env.m.Resolve(ctx, env.did(env.contract))
	if err != nil {
		t.Fatal(err)
	}

	signed, err := engine.SignDocument(ctx, marshal(t, contractDoc), env.alice, env.aliceKey, env.m)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := env.m.Verify(ctx, signed); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// forgeProof attaches a proof made with keyID without any authorization check.
func (e *testEnv) forgeProof(t *testing.T, raw []byte, keyID string) []byte {
	t.Helper()

	signer, err := e.ring.Get(keyID)
	if err != nil {
		t.Fatal(err)
	}

	stripped, err := document.StripProof(raw)
	if err != nil {
		t.Fatal(err)
	}

	owner, _, err := identity.SplitKeyID(keyID)
	if err != nil {
		t.Fatal(err)
	}

	token := jwt.NewWithClaims(signer.Method(), jwt.MapClaims{
		"iss":         owner,
		"didDocument": json.RawMessage(stripped),
	})
	token.Header["kid"] = keyID

	jws, err := token.SignedString(signer.SigningKey())
	if err != nil {
		t.Fatal(err)
	}

	out, err := document.AttachProof(raw, &document.Proof{
		Type:               keys.ProofType(signer.KeyType()),
		ProofPurpose:       proof.PurposeAssertion,
		VerificationMethod: keyID,
		JWS:                jws,
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestVerify_ForgedControllerIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, victim := range []identity.Identity{env.alice, env.contract} {
		doc := &document.Document{
			Context:        document.Context,
			ID:             env.did(victim),
			Controller:     env.did(env.bob),
			Authentication: []string{env.bobKey},
		}

		if _, err := env.m.Publish(ctx, env.bob, env.did(victim), marshal(t, doc), env.bobKey); !errors.Is(err, fault.ErrNotAuthorizedToIssue) {
			t.Errorf("publish %s: expected not authorized, got %v", env.did(victim), err)
		}

		forged := env.forgeProof(t, marshal(t, doc), env.bobKey)
		if err := env.m.Verify(ctx, forged); !errors.Is(err, fault.ErrNotAuthorizedToIssue) {
			t.Errorf("verify %s: expected not authorized, got %v", env.did(victim), err)
		}
	}

	// The registered controller still verifies.
	doc := &document.Document{
		Context:    document.Context,
		ID:         env.did(env.contract),
		Controller: env.did(env.alice),
	}

	if err := env.m.Verify(ctx, env.forgeProof(t, marshal(t, doc), env.aliceKey)); err != nil {
		t.Fatalf("registered controller: %v", err)
	}
}

func TestPublish_RotationDroppingSigningKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	did := env.did(env.alice)

	ed, err := keys.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	edKey := did + "#key-2"
	env.ring.Add(edKey, ed)

	base, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatal(err)
	}

	rotated := &document.Document{
		Context:        document.Context,
		ID:             did,
		PublicKey:      []document.PublicKey{ed.PublicKey(edKey, did)},
		Authentication: []string{edKey},
	}

	// key-1 cannot sign a body that no longer lists it.
	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, rotated), env.aliceKey); !errors.Is(err, fault.ErrUnauthorizedSigner) {
		t.Fatalf("expected unauthorized signer, got %v", err)
	}

	if _, ok, err := env.registry.Pointer(ctx, env.alice); err != nil || ok {
		t.Fatalf("pointer written after rejected publish: ok=%v err=%v", ok, err)
	}

	// Two steps: add key-2 with key-1, then drop key-1 with key-2.
	both := base.Clone()
	both.PublicKey = append(both.PublicKey, ed.PublicKey(edKey, did))
	both.Authentication = append(both.Authentication, edKey)

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, both), env.aliceKey); err != nil {
		t.Fatalf("add key-2: %v", err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, rotated), edKey); err != nil {
		t.Fatalf("drop key-1: %v", err)
	}

	resolved, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatalf("resolve after rotation: %v", err)
	}

	if resolved.HasKey(env.aliceKey) || !resolved.HasKey(edKey) {
		t.Errorf("keys after rotation = %v", resolved.KeyIDs())
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, rotated), env.aliceKey); !errors.Is(err, fault.ErrUnauthorizedSigner) {
		t.Fatalf("retired key: expected unauthorized signer, got %v", err)
	}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, withService(rotated, "https://a.example")), edKey); err != nil {
		t.Fatalf("publish after rotation: %v", err)
	}
}

// addHook runs onAdd after every successful blob write.
type addHook struct {
	dfs.Store
	onAdd func()
}

func (h addHook) Add(ctx context.Context, label string, data []byte) (dfs.Ref, error) {
	ref, err := h.Store.Add(ctx, label, data)
	if err == nil {
		h.onAdd()
	}
	return ref, err
}

func TestPublish_DeactivatedDuringPublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	did := env.did(env.alice)

	doc, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatal(err)
	}

	env.m.blobs = addHook{Store: env.blobs, onAdd: func() {
		if err := env.registry.Deactivate(ctx, env.alice); err != nil {
			t.Errorf("deactivate: %v", err)
		}
	}}

	if _, err := env.m.Publish(ctx, env.alice, did, marshal(t, doc), env.aliceKey); !errors.Is(err, fault.ErrDeactivatedDid) {
		t.Fatalf("expected deactivated did, got %v", err)
	}

	if _, ok, err := env.registry.Pointer(ctx, env.alice); err != nil || ok {
		t.Fatalf("pointer after deactivation: ok=%v err=%v", ok, err)
	}

	resolved, err := env.m.Resolve(ctx, did)
	if err != nil {
		t.Fatal(err)
	}

	if !resolved.IsEmpty() {
		t.Errorf("expected placeholder, got %+v", resolved)
	}
}

func TestRegistry_RecordRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, ok, err := env.registry.Pointer(ctx, env.bob); ok || err != nil {
		t.Fatalf("empty pointer: ok=%v err=%v", ok, err)
	}

	want := Record{Hash: dfs.RefOf([]byte("body")), Created: 10, Updated: 20}
	if err := env.registry.SetPointer(ctx, env.bob, want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := env.registry.Pointer(ctx, env.bob)
	if err != nil || !ok {
		t.Fatalf("pointer: ok=%v err=%v", ok, err)
	}

	if got != want {
		t.Errorf("record = %+v, want %+v", got, want)
	}

	if err := env.registry.Deactivate(ctx, env.bob); err != nil {
		t.Fatal(err)
	}

	if err := env.registry.SetPointer(ctx, env.bob, want); !errors.Is(err, fault.ErrDeactivatedDid) {
		t.Fatalf("expected deactivated, got %v", err)
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	if _, err := decodeRecord([]byte{1, 2}); err == nil {
		t.Error("expected error for short record")
	}

	if _, err := decodeRecord([]byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0, 1}); err == nil {
		t.Error("expected error for garbage record")
	}
}
