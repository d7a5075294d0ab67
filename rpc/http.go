package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basepulse/core"
	"basepulse/native/content"
	"basepulse/native/engagement"
	"basepulse/native/profile"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	authTokenEnv    = "PULSE_RPC_TOKEN"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeNotFound       = -32010
	codeDuplicate      = -32011
	codeRejected       = -32012
	codeInsufficient   = -32013
	codeBatchFailed    = -32014
)

// Server exposes the ledger node over JSON-RPC.
type Server struct {
	node      *core.Node
	authToken string
}

// NewServer wires a server around the provided node. Mutating methods require
// a bearer token when PULSE_RPC_TOKEN is set.
func NewServer(node *core.Node) *Server {
	return &Server{
		node:      node,
		authToken: strings.TrimSpace(os.Getenv(authTokenEnv)),
	}
}

// Router returns the HTTP handler: JSON-RPC on POST /, plus health and
// metrics endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr, blocking until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Router())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeLedgerError maps ledger rejections onto stable RPC error codes so
// callers can distinguish "retry with a higher fee" from "never retry".
func writeLedgerError(w http.ResponseWriter, id interface{}, err error) {
	code := codeServerError
	switch {
	case errors.Is(err, profile.ErrNotFound),
		errors.Is(err, content.ErrPostNotFound),
		errors.Is(err, content.ErrCommentNotFound):
		code = codeNotFound
	case errors.Is(err, profile.ErrAlreadyHasProfile),
		errors.Is(err, engagement.ErrAlreadyLiked):
		code = codeDuplicate
	case errors.Is(err, engagement.ErrInsufficientFee),
		errors.Is(err, engagement.ErrInsufficientFunds):
		code = codeInsufficient
	case errors.Is(err, engagement.ErrBatchFailed):
		code = codeBatchFailed
	case errors.Is(err, profile.ErrSoulboundTransfer),
		errors.Is(err, profile.ErrFarcasterAlreadyLinked),
		errors.Is(err, engagement.ErrCannotLikeOwnPost),
		errors.Is(err, engagement.ErrNotLiked),
		errors.Is(err, engagement.ErrPaidLikeIrreversible):
		code = codeRejected
	}
	writeError(w, http.StatusBadRequest, id, code, err.Error(), nil)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid bearer token"}
	}
	return nil
}

func decodeSingleParam(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) != 1 {
		return &RPCError{Code: codeInvalidParams, Message: "exactly one parameter object expected"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "invalid parameter object", Data: err.Error()}
	}
	return nil
}

func decodeAddress(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(trimmed), nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	mutating := true
	switch req.Method {
	case "profile_get", "profile_resolveFid",
		"post_get", "post_getComment", "post_latest", "post_userPosts",
		"engagement_userStats", "engagement_platformStats",
		"engagement_feePreview", "engagement_minFee",
		"pulse_getBalance", "pulse_getEvents":
		mutating = false
	}
	if mutating {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
	}

	switch req.Method {
	case "profile_create":
		s.handleProfileCreate(w, req)
	case "profile_update":
		s.handleProfileUpdate(w, req)
	case "profile_linkFarcaster":
		s.handleProfileLinkFarcaster(w, req)
	case "profile_transfer":
		s.handleProfileTransfer(w, req)
	case "profile_get":
		s.handleProfileGet(w, req)
	case "profile_resolveFid":
		s.handleProfileResolveFid(w, req)
	case "post_create":
		s.handlePostCreate(w, req)
	case "post_get":
		s.handlePostGet(w, req)
	case "post_latest":
		s.handlePostLatest(w, req)
	case "post_userPosts":
		s.handlePostUserPosts(w, req)
	case "post_comment":
		s.handlePostComment(w, req)
	case "post_getComment":
		s.handlePostGetComment(w, req)
	case "post_repost":
		s.handlePostRepost(w, req)
	case "engagement_like":
		s.handleLike(w, req)
	case "engagement_unlike":
		s.handleUnlike(w, req)
	case "engagement_paidLike":
		s.handlePaidLike(w, req)
	case "engagement_batchPaidLike":
		s.handleBatchPaidLike(w, req)
	case "engagement_userStats":
		s.handleUserStats(w, req)
	case "engagement_platformStats":
		s.handlePlatformStats(w, req)
	case "engagement_feePreview":
		s.handleFeePreview(w, req)
	case "engagement_minFee":
		s.handleMinFee(w, req)
	case "pulse_getBalance":
		s.handleGetBalance(w, req)
	case "pulse_getEvents":
		s.handleGetEvents(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method), nil)
	}
}
