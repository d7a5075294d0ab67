package rpc

import (
	"net/http"

	"basepulse/core/types"
	"basepulse/native/engagement"
)

type likeParams struct {
	Caller string `json:"caller"`
	PostID uint64 `json:"postId"`
}

type paidLikeParams struct {
	Caller string `json:"caller"`
	PostID uint64 `json:"postId"`
	Amount string `json:"amount"`
}

type batchPaidLikeParams struct {
	Caller        string   `json:"caller"`
	PostIDs       []uint64 `json:"postIds"`
	AmountPerPost string   `json:"amountPerPost"`
	TotalPaid     string   `json:"totalPaid"`
}

type addressParams struct {
	Address string `json:"address"`
}

type feePreviewParams struct {
	Amount string `json:"amount"`
}

type getEventsParams struct {
	Count int `json:"count"`
}

type receiptResult struct {
	PostID        uint64 `json:"postId"`
	Liker         string `json:"liker"`
	Creator       string `json:"creator"`
	TotalFee      string `json:"totalFee"`
	CreatorReward string `json:"creatorReward"`
	LikerReward   string `json:"likerReward"`
	TreasuryFee   string `json:"treasuryFee"`
	Timestamp     int64  `json:"timestamp"`
}

type userStatsResult struct {
	LikesGiven    uint64 `json:"likesGiven"`
	LikesReceived uint64 `json:"likesReceived"`
	TotalEarnings string `json:"totalEarnings"`
}

type platformStatsResult struct {
	TotalFeesCollected  string `json:"totalFeesCollected"`
	TotalCreatorRewards string `json:"totalCreatorRewards"`
	TotalLikerRewards   string `json:"totalLikerRewards"`
}

type feePreviewResult struct {
	CreatorReward string `json:"creatorReward"`
	TreasuryFee   string `json:"treasuryFee"`
	LikerReward   string `json:"likerReward"`
}

type eventResult struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

func formatReceipt(receipt *engagement.Receipt) receiptResult {
	return receiptResult{
		PostID:        receipt.PostID,
		Liker:         receipt.Liker.Hex(),
		Creator:       receipt.Creator.Hex(),
		TotalFee:      bigString(receipt.TotalFee),
		CreatorReward: bigString(receipt.CreatorReward),
		LikerReward:   bigString(receipt.LikerReward),
		TreasuryFee:   bigString(receipt.TreasuryFee),
		Timestamp:     receipt.Timestamp,
	}
}

func formatEvents(events []*types.Event) []eventResult {
	out := make([]eventResult, 0, len(events))
	for _, evt := range events {
		if evt == nil {
			continue
		}
		out = append(out, eventResult{Type: evt.Type, Attributes: evt.Attributes})
	}
	return out
}

func (s *Server) handleLike(w http.ResponseWriter, req *RPCRequest) {
	var params likeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	post, err := s.node.Like(caller, params.PostID)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatPost(post))
}

func (s *Server) handleUnlike(w http.ResponseWriter, req *RPCRequest) {
	var params likeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	post, err := s.node.Unlike(caller, params.PostID)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatPost(post))
}

func (s *Server) handlePaidLike(w http.ResponseWriter, req *RPCRequest) {
	var params paidLikeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount", err.Error())
		return
	}
	receipt, err := s.node.PaidLike(caller, params.PostID, amount)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatReceipt(receipt))
}

func (s *Server) handleBatchPaidLike(w http.ResponseWriter, req *RPCRequest) {
	var params batchPaidLikeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amountPerPost, err := parseAmount(params.AmountPerPost)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amountPerPost", err.Error())
		return
	}
	totalPaid, err := parseAmount(params.TotalPaid)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid totalPaid", err.Error())
		return
	}
	receipts, err := s.node.BatchPaidLike(caller, params.PostIDs, amountPerPost, totalPaid)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	formatted := make([]receiptResult, 0, len(receipts))
	for _, receipt := range receipts {
		formatted = append(formatted, formatReceipt(receipt))
	}
	writeResult(w, req.ID, map[string][]receiptResult{"receipts": formatted})
}

func (s *Server) handleUserStats(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := decodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	stats, err := s.node.UserStats(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, userStatsResult{
		LikesGiven:    stats.LikesGiven,
		LikesReceived: stats.LikesReceived,
		TotalEarnings: bigString(stats.TotalEarnings),
	})
}

func (s *Server) handlePlatformStats(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	stats, err := s.node.PlatformStats()
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, platformStatsResult{
		TotalFeesCollected:  bigString(stats.TotalFeesCollected),
		TotalCreatorRewards: bigString(stats.TotalCreatorRewards),
		TotalLikerRewards:   bigString(stats.TotalLikerRewards),
	})
}

func (s *Server) handleFeePreview(w http.ResponseWriter, req *RPCRequest) {
	var params feePreviewParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount", err.Error())
		return
	}
	creator, treasury, liker := engagement.CalculateFeeDistribution(amount)
	writeResult(w, req.ID, feePreviewResult{
		CreatorReward: bigString(creator),
		TreasuryFee:   bigString(treasury),
		LikerReward:   bigString(liker),
	})
}

func (s *Server) handleMinFee(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"minLikeFee": bigString(s.node.MinLikeFee())})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := decodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.GetBalance(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": bigString(balance)})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, req *RPCRequest) {
	var params getEventsParams
	if len(req.Params) > 0 {
		if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
			writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
			return
		}
	}
	writeResult(w, req.ID, map[string][]eventResult{"events": formatEvents(s.node.Events(params.Count))})
}
