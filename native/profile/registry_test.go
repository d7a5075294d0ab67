package profile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
	"basepulse/core/types"
)

type mockState struct {
	data map[string][]byte
}

func newMockState() *mockState {
	return &mockState{data: make(map[string][]byte)}
}

func (m *mockState) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok := m.data[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	return true, json.Unmarshal(data, out)
}

func (m *mockState) KVPut(key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[string(key)] = data
	return nil
}

func (m *mockState) KVDelete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

type captureEmitter struct {
	events []*types.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	if payload := events.Payload(evt); payload != nil {
		c.events = append(c.events, payload)
	}
}

func newTestRegistry(t *testing.T) (*Registry, *captureEmitter) {
	t.Helper()
	registry := NewRegistry()
	registry.SetState(newMockState())
	emitter := &captureEmitter{}
	registry.SetEmitter(emitter)
	registry.SetNowFunc(func() int64 { return 1700000000 })
	return registry, emitter
}

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestCreateProfileAssignsSequentialIDs(t *testing.T) {
	registry, emitter := newTestRegistry(t)

	first, err := registry.CreateProfile(alice, "ipfs://profile-a")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if first.ProfileID != 1 {
		t.Fatalf("expected id 1, got %d", first.ProfileID)
	}
	second, err := registry.CreateProfile(bob, "ipfs://profile-b")
	if err != nil {
		t.Fatalf("create second profile: %v", err)
	}
	if second.ProfileID != 2 {
		t.Fatalf("expected id 2, got %d", second.ProfileID)
	}
	total, err := registry.TotalProfiles()
	if err != nil {
		t.Fatalf("total profiles: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 profiles, got %d", total)
	}
	if len(emitter.events) != 2 || emitter.events[0].Type != EventTypeProfileCreated {
		t.Fatalf("unexpected events: %+v", emitter.events)
	}
}

func TestCreateProfileRejectsDuplicates(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if _, err := registry.CreateProfile(alice, "ipfs://one"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := registry.CreateProfile(alice, "ipfs://two"); !errors.Is(err, ErrAlreadyHasProfile) {
		t.Fatalf("expected ErrAlreadyHasProfile, got %v", err)
	}
	total, err := registry.TotalProfiles()
	if err != nil {
		t.Fatalf("total profiles: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one record, got %d", total)
	}
}

func TestUpdateProfileRequiresExistingRecord(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if _, err := registry.UpdateProfile(alice, "ipfs://new"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := registry.CreateProfile(alice, "ipfs://old"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	updated, err := registry.UpdateProfile(alice, "ipfs://new")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.MetadataURI != "ipfs://new" {
		t.Fatalf("metadata not replaced: %q", updated.MetadataURI)
	}
	meta, err := registry.MetadataOf(updated.ProfileID)
	if err != nil {
		t.Fatalf("metadata of: %v", err)
	}
	if meta != "ipfs://new" {
		t.Fatalf("expected updated metadata, got %q", meta)
	}
}

func TestTransferAlwaysSoulbound(t *testing.T) {
	registry, _ := newTestRegistry(t)
	if _, err := registry.CreateProfile(alice, "ipfs://meta"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	targets := []common.Address{bob, {}, alice}
	for _, target := range targets {
		if err := registry.Transfer(alice, target, 1); !errors.Is(err, ErrSoulboundTransfer) {
			t.Fatalf("transfer to %s: expected ErrSoulboundTransfer, got %v", target.Hex(), err)
		}
	}
	owner, err := registry.OwnerOf(1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != alice {
		t.Fatalf("ownership moved to %s", owner.Hex())
	}
}

func TestLinkFarcasterBijection(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if _, err := registry.LinkFarcaster(alice, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without profile, got %v", err)
	}
	if _, err := registry.CreateProfile(alice, "ipfs://a"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := registry.CreateProfile(bob, "ipfs://b"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := registry.LinkFarcaster(alice, 42); err != nil {
		t.Fatalf("link farcaster: %v", err)
	}
	owner, ok, err := registry.OwnerByFid(42)
	if err != nil || !ok {
		t.Fatalf("owner by fid: ok=%v err=%v", ok, err)
	}
	if owner != alice {
		t.Fatalf("fid resolves to %s", owner.Hex())
	}
	if _, err := registry.LinkFarcaster(bob, 42); !errors.Is(err, ErrFarcasterAlreadyLinked) {
		t.Fatalf("expected ErrFarcasterAlreadyLinked, got %v", err)
	}

	// Re-linking a different fid releases the old one.
	if _, err := registry.LinkFarcaster(alice, 43); err != nil {
		t.Fatalf("relink: %v", err)
	}
	if _, ok, _ := registry.OwnerByFid(42); ok {
		t.Fatal("old fid still linked")
	}
	if _, err := registry.LinkFarcaster(bob, 42); err != nil {
		t.Fatalf("claim released fid: %v", err)
	}
}

func TestProfileIDOfAbsentAddressIsZero(t *testing.T) {
	registry, _ := newTestRegistry(t)
	id, err := registry.ProfileIDOf(alice)
	if err != nil {
		t.Fatalf("profile id of: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected 0, got %d", id)
	}
	if ok, err := registry.HasProfile(alice); err != nil || ok {
		t.Fatalf("has profile: ok=%v err=%v", ok, err)
	}
}
