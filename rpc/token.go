package rpc

import (
	"net/http"

	"proptix/core/types"
)

type getTokenParams struct {
	ClassID string `json:"classId"`
	ID      string `json:"id"`
}

// TokenResult is the wire form of a registered token.
type TokenResult struct {
	ClassID string `json:"classId"`
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	URI     string `json:"uri,omitempty"`
	URIHash string `json:"uriHash,omitempty"`
	Frozen  bool   `json:"frozen"`
}

func (s *Server) handleGetToken(w http.ResponseWriter, req *RPCRequest) {
	var params getTokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	tok, ok, err := s.node.TokenInfo(params.ClassID, params.ID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "token not found", nil)
		return
	}
	writeResult(w, req.ID, TokenResult{
		ClassID: tok.ClassID,
		ID:      tok.ID,
		Owner:   encodeAddr(tok.Owner),
		URI:     tok.URI,
		URIHash: tok.URIHash,
		Frozen:  tok.Frozen,
	})
}

type getClassParams struct {
	ClassID string `json:"classId"`
}

// ClassResult is the wire form of a token class.
type ClassResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
	Issuer      string `json:"issuer"`
	RoyaltyRate string `json:"royaltyRate,omitempty"`
}

func (s *Server) handleGetClass(w http.ResponseWriter, req *RPCRequest) {
	var params getClassParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	class, ok, err := s.node.ClassInfo(params.ClassID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "class not found", nil)
		return
	}
	writeResult(w, req.ID, ClassResult{
		ID:          class.ID,
		Name:        class.Name,
		Symbol:      class.Symbol,
		Description: class.Description,
		URI:         class.URI,
		Issuer:      encodeAddr(class.Issuer),
		RoyaltyRate: class.RoyaltyRate,
	})
}

type ownerTokensParams struct {
	Owner      string `json:"owner"`
	StartAfter string `json:"startAfter"`
	Limit      uint32 `json:"limit"`
}

func (s *Server) handleOwnerTokens(w http.ResponseWriter, req *RPCRequest) {
	var params ownerTokensParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	owner, err := decodeAddr(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode owner address", err.Error())
		return
	}
	refs, err := s.node.OwnerTokens(owner, params.StartAfter, params.Limit)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, refs)
}

type tokenTransferParams struct {
	Caller    string `json:"caller"`
	ClassID   string `json:"classId"`
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params tokenTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	caller, err := decodeAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode caller address", err.Error())
		return
	}
	recipient, err := decodeAddr(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode recipient address", err.Error())
		return
	}
	if err := s.node.TransferToken(caller, params.ClassID, params.ID, recipient); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type getEventsParams struct {
	Limit int `json:"limit"`
}

func (s *Server) handleGetEvents(w http.ResponseWriter, req *RPCRequest) {
	params := getEventsParams{}
	if len(req.Params) > 0 {
		if err := decodeParams(req, &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
			return
		}
	}
	evts := s.node.Events(params.Limit)
	if evts == nil {
		evts = []types.Event{}
	}
	writeResult(w, req.ID, evts)
}
