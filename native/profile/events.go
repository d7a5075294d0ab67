package profile

import (
	"fmt"

	"basepulse/core/types"
)

const (
	// EventTypeProfileCreated is emitted when an address mints its profile.
	EventTypeProfileCreated = "profile.created"
	// EventTypeProfileUpdated is emitted when profile metadata changes.
	EventTypeProfileUpdated = "profile.updated"
	// EventTypeFarcasterLinked is emitted when a Farcaster id is bound.
	EventTypeFarcasterLinked = "profile.farcaster_linked"
)

// ProfileCreatedEvent returns the structured payload for profile mints.
func ProfileCreatedEvent(owner string, profileID uint64, metadataURI string, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeProfileCreated,
		Attributes: map[string]string{
			"owner":       owner,
			"profileId":   fmt.Sprintf("%d", profileID),
			"metadataUri": metadataURI,
			"timestamp":   fmt.Sprintf("%d", timestamp),
		},
	}
}

// ProfileUpdatedEvent returns the structured payload for metadata updates.
func ProfileUpdatedEvent(owner string, profileID uint64, metadataURI string, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeProfileUpdated,
		Attributes: map[string]string{
			"owner":       owner,
			"profileId":   fmt.Sprintf("%d", profileID),
			"metadataUri": metadataURI,
			"timestamp":   fmt.Sprintf("%d", timestamp),
		},
	}
}

// FarcasterLinkedEvent returns the structured payload for fid bindings.
func FarcasterLinkedEvent(owner string, profileID uint64, fid uint64, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeFarcasterLinked,
		Attributes: map[string]string{
			"owner":     owner,
			"profileId": fmt.Sprintf("%d", profileID),
			"fid":       fmt.Sprintf("%d", fid),
			"timestamp": fmt.Sprintf("%d", timestamp),
		},
	}
}
