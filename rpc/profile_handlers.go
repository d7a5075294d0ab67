package rpc

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/native/profile"
)

type profileCreateParams struct {
	Caller      string `json:"caller"`
	MetadataURI string `json:"metadataUri"`
}

type profileUpdateParams struct {
	Caller      string `json:"caller"`
	MetadataURI string `json:"metadataUri"`
}

type profileLinkParams struct {
	Caller string `json:"caller"`
	Fid    uint64 `json:"fid"`
}

type profileTransferParams struct {
	From      string `json:"from"`
	To        string `json:"to"`
	ProfileID uint64 `json:"profileId"`
}

type profileGetParams struct {
	Address string `json:"address"`
}

type profileResolveFidParams struct {
	Fid uint64 `json:"fid"`
}

type profileResult struct {
	Owner       string `json:"owner"`
	ProfileID   uint64 `json:"profileId"`
	MetadataURI string `json:"metadataUri"`
	Fid         uint64 `json:"fid,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func formatProfile(record *profile.Record) profileResult {
	return profileResult{
		Owner:       record.Owner.Hex(),
		ProfileID:   record.ProfileID,
		MetadataURI: record.MetadataURI,
		Fid:         record.Fid,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func (s *Server) handleProfileCreate(w http.ResponseWriter, req *RPCRequest) {
	var params profileCreateParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	record, err := s.node.CreateProfile(caller, params.MetadataURI)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(record))
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, req *RPCRequest) {
	var params profileUpdateParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	record, err := s.node.UpdateProfile(caller, params.MetadataURI)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(record))
}

func (s *Server) handleProfileLinkFarcaster(w http.ResponseWriter, req *RPCRequest) {
	var params profileLinkParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	record, err := s.node.LinkFarcaster(caller, params.Fid)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(record))
}

func (s *Server) handleProfileTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params profileTransferParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	from, err := decodeAddress(params.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid from address", err.Error())
		return
	}
	var to common.Address
	if params.To != "" {
		decoded, err := decodeAddress(params.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid to address", err.Error())
			return
		}
		to = decoded
	}
	if err := s.node.TransferProfile(from, to, params.ProfileID); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"transferred": true})
}

func (s *Server) handleProfileGet(w http.ResponseWriter, req *RPCRequest) {
	var params profileGetParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := decodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	record, err := s.node.GetProfile(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(record))
}

func (s *Server) handleProfileResolveFid(w http.ResponseWriter, req *RPCRequest) {
	var params profileResolveFidParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	owner, ok, err := s.node.ProfileOwnerByFid(params.Fid)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeNotFound, "fid not linked", nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"owner": owner.Hex()})
}
