package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
)

var (
	// ErrAlreadyHasProfile is returned when an address mints a second profile.
	ErrAlreadyHasProfile = errors.New("profile: address already has a profile")
	// ErrNotFound marks lookups for addresses or ids without a profile.
	ErrNotFound = errors.New("profile: profile not found")
	// ErrSoulboundTransfer is returned for every transfer attempt; profiles
	// are permanently bound to their minting address.
	ErrSoulboundTransfer = errors.New("profile: soulbound token cannot be transferred")
	// ErrFarcasterAlreadyLinked marks fid collisions with another address.
	ErrFarcasterAlreadyLinked = errors.New("profile: farcaster id already linked")
	errNilState               = errors.New("profile: state not configured")
	errEmptyMetadata          = errors.New("profile: metadata uri required")
)

var (
	ownerPrefix = []byte("profile/owner/")
	idPrefix    = []byte("profile/id/")
	fidPrefix   = []byte("profile/fid/")
	totalKeyRaw = []byte("profile/total")
)

func ownerKey(addr common.Address) []byte {
	return append(append([]byte(nil), ownerPrefix...), addr.Bytes()...)
}

func idKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", idPrefix, id))
}

func fidKey(fid uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", fidPrefix, fid))
}

// registryState abstracts the subset of state manager functionality required
// by the profile registry.
type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Registry enforces the one-profile-per-address and soulbound invariants.
type Registry struct {
	state   registryState
	emitter events.Emitter
	nowFn   func() int64
}

// NewRegistry constructs a registry with default dependencies.
func NewRegistry() *Registry {
	return &Registry{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state registryState) { r.state = state }

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (r *Registry) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

func (r *Registry) emit(evt events.Event) {
	if r == nil || evt == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}

func (r *Registry) now() int64 {
	if r == nil || r.nowFn == nil {
		return time.Now().Unix()
	}
	return r.nowFn()
}

// CreateProfile mints the caller's soulbound profile. Each address may mint
// exactly once; ids are sequential starting at 1 and never reused.
func (r *Registry) CreateProfile(caller common.Address, metadataURI string) (*Record, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(metadataURI)
	if trimmed == "" {
		return nil, errEmptyMetadata
	}
	if ok, err := r.state.KVGet(ownerKey(caller), nil); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyHasProfile
	}
	var total uint64
	if _, err := r.state.KVGet(totalKeyRaw, &total); err != nil {
		return nil, err
	}
	record := &Record{
		Owner:       caller,
		ProfileID:   total + 1,
		MetadataURI: trimmed,
		CreatedAt:   r.now(),
		UpdatedAt:   r.now(),
	}
	if err := r.state.KVPut(ownerKey(caller), record); err != nil {
		return nil, err
	}
	if err := r.state.KVPut(idKey(record.ProfileID), caller); err != nil {
		return nil, err
	}
	if err := r.state.KVPut(totalKeyRaw, record.ProfileID); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(ProfileCreatedEvent(caller.Hex(), record.ProfileID, record.MetadataURI, record.CreatedAt)))
	return record.Clone(), nil
}

// UpdateProfile replaces the caller's metadata URI in place.
func (r *Registry) UpdateProfile(caller common.Address, metadataURI string) (*Record, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(metadataURI)
	if trimmed == "" {
		return nil, errEmptyMetadata
	}
	record := new(Record)
	ok, err := r.state.KVGet(ownerKey(caller), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	record.MetadataURI = trimmed
	record.UpdatedAt = r.now()
	if err := r.state.KVPut(ownerKey(caller), record); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(ProfileUpdatedEvent(caller.Hex(), record.ProfileID, record.MetadataURI, record.UpdatedAt)))
	return record.Clone(), nil
}

// LinkFarcaster binds a Farcaster id to the caller's profile. The mapping is
// bijective: a fid held by another address cannot be claimed, and re-linking
// a new fid releases the previous one.
func (r *Registry) LinkFarcaster(caller common.Address, fid uint64) (*Record, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	if fid == 0 {
		return nil, fmt.Errorf("profile: fid must be positive")
	}
	record := new(Record)
	ok, err := r.state.KVGet(ownerKey(caller), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var holder common.Address
	if ok, err := r.state.KVGet(fidKey(fid), &holder); err != nil {
		return nil, err
	} else if ok && holder != caller {
		return nil, ErrFarcasterAlreadyLinked
	}
	if record.Fid != 0 && record.Fid != fid {
		if err := r.state.KVDelete(fidKey(record.Fid)); err != nil {
			return nil, err
		}
	}
	record.Fid = fid
	record.UpdatedAt = r.now()
	if err := r.state.KVPut(fidKey(fid), caller); err != nil {
		return nil, err
	}
	if err := r.state.KVPut(ownerKey(caller), record); err != nil {
		return nil, err
	}
	r.emit(events.Wrap(FarcasterLinkedEvent(caller.Hex(), record.ProfileID, fid, record.UpdatedAt)))
	return record.Clone(), nil
}

// Transfer always fails: profiles are soulbound. The method exists so the
// registry can stand in for a token-style interface.
func (r *Registry) Transfer(from, to common.Address, id uint64) error {
	return ErrSoulboundTransfer
}

// HasProfile reports whether addr owns a profile.
func (r *Registry) HasProfile(addr common.Address) (bool, error) {
	if r == nil || r.state == nil {
		return false, errNilState
	}
	return r.state.KVGet(ownerKey(addr), nil)
}

// Get returns the profile record for addr.
func (r *Registry) Get(addr common.Address) (*Record, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	record := new(Record)
	ok, err := r.state.KVGet(ownerKey(addr), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// ProfileIDOf returns the profile id owned by addr, or 0 when absent.
func (r *Registry) ProfileIDOf(addr common.Address) (uint64, error) {
	record, err := r.Get(addr)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.ProfileID, nil
}

// OwnerOf resolves a profile id back to its owner.
func (r *Registry) OwnerOf(id uint64) (common.Address, error) {
	if r == nil || r.state == nil {
		return common.Address{}, errNilState
	}
	var owner common.Address
	ok, err := r.state.KVGet(idKey(id), &owner)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, ErrNotFound
	}
	return owner, nil
}

// MetadataOf returns the metadata URI stored for a profile id.
func (r *Registry) MetadataOf(id uint64) (string, error) {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return "", err
	}
	record, err := r.Get(owner)
	if err != nil {
		return "", err
	}
	return record.MetadataURI, nil
}

// OwnerByFid resolves a linked Farcaster id to its owning address.
func (r *Registry) OwnerByFid(fid uint64) (common.Address, bool, error) {
	if r == nil || r.state == nil {
		return common.Address{}, false, errNilState
	}
	var owner common.Address
	ok, err := r.state.KVGet(fidKey(fid), &owner)
	if err != nil {
		return common.Address{}, false, err
	}
	return owner, ok, nil
}

// TotalProfiles returns the number of minted profiles.
func (r *Registry) TotalProfiles() (uint64, error) {
	if r == nil || r.state == nil {
		return 0, errNilState
	}
	var total uint64
	if _, err := r.state.KVGet(totalKeyRaw, &total); err != nil {
		return 0, err
	}
	return total, nil
}
