package rpc

import (
	"net/http"

	"basepulse/native/content"
)

type postCreateParams struct {
	Caller     string `json:"caller"`
	ContentURI string `json:"contentUri"`
}

type postGetParams struct {
	PostID uint64 `json:"postId"`
}

type postLatestParams struct {
	Count int `json:"count"`
}

type postUserPostsParams struct {
	Address string `json:"address"`
}

type postCommentParams struct {
	Caller     string `json:"caller"`
	PostID     uint64 `json:"postId"`
	ContentURI string `json:"contentUri"`
}

type commentGetParams struct {
	CommentID uint64 `json:"commentId"`
}

type postRepostParams struct {
	Caller string `json:"caller"`
	PostID uint64 `json:"postId"`
}

type postResult struct {
	ID           uint64 `json:"id"`
	Author       string `json:"author"`
	ContentURI   string `json:"contentUri"`
	CreatedAt    int64  `json:"createdAt"`
	LikeCount    uint64 `json:"likeCount"`
	CommentCount uint64 `json:"commentCount"`
	RepostCount  uint64 `json:"repostCount"`
}

type commentResult struct {
	ID         uint64 `json:"id"`
	PostID     uint64 `json:"postId"`
	Author     string `json:"author"`
	ContentURI string `json:"contentUri"`
	CreatedAt  int64  `json:"createdAt"`
}

func formatPost(post *content.Post) postResult {
	return postResult{
		ID:           post.ID,
		Author:       post.Author.Hex(),
		ContentURI:   post.ContentURI,
		CreatedAt:    post.CreatedAt,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		RepostCount:  post.RepostCount,
	}
}

func formatComment(comment *content.Comment) commentResult {
	return commentResult{
		ID:         comment.ID,
		PostID:     comment.PostID,
		Author:     comment.Author.Hex(),
		ContentURI: comment.ContentURI,
		CreatedAt:  comment.CreatedAt,
	}
}

func (s *Server) handlePostCreate(w http.ResponseWriter, req *RPCRequest) {
	var params postCreateParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	post, err := s.node.CreatePost(caller, params.ContentURI)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatPost(post))
}

func (s *Server) handlePostGet(w http.ResponseWriter, req *RPCRequest) {
	var params postGetParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	post, err := s.node.GetPost(params.PostID)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatPost(post))
}

func (s *Server) handlePostLatest(w http.ResponseWriter, req *RPCRequest) {
	var params postLatestParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	ids, err := s.node.LatestPosts(params.Count)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeResult(w, req.ID, map[string][]uint64{"postIds": ids})
}

func (s *Server) handlePostUserPosts(w http.ResponseWriter, req *RPCRequest) {
	var params postUserPostsParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := decodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	ids, err := s.node.UserPosts(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeResult(w, req.ID, map[string][]uint64{"postIds": ids})
}

func (s *Server) handlePostComment(w http.ResponseWriter, req *RPCRequest) {
	var params postCommentParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	comment, err := s.node.AddComment(caller, params.PostID, params.ContentURI)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatComment(comment))
}

func (s *Server) handlePostGetComment(w http.ResponseWriter, req *RPCRequest) {
	var params commentGetParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	comment, err := s.node.GetComment(params.CommentID)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatComment(comment))
}

func (s *Server) handlePostRepost(w http.ResponseWriter, req *RPCRequest) {
	var params postRepostParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	post, err := s.node.Repost(caller, params.PostID)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatPost(post))
}
