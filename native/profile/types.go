package profile

import "github.com/ethereum/go-ethereum/common"

// Record is the soulbound profile bound to a wallet address. Only the
// metadata URI and the linked Farcaster id ever change after minting.
type Record struct {
	Owner       common.Address `json:"owner"`
	ProfileID   uint64         `json:"profileId"`
	MetadataURI string         `json:"metadataUri"`
	Fid         uint64         `json:"fid,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
