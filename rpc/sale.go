package rpc

import (
	"net/http"

	"proptix/native/sale"
)

type collectionParams struct {
	Collection string `json:"collection"`
}

// saleCall carries the addressing shared by every mutating sale method.
type saleCall struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
}

func (s *Server) decodeSaleCall(w http.ResponseWriter, req *RPCRequest, params saleCall) (collection, caller [20]byte, ok bool) {
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return collection, caller, false
	}
	caller, err = decodeAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode caller address", err.Error())
		return collection, caller, false
	}
	return collection, caller, true
}

type purchaseParams struct {
	saleCall
	Count uint64 `json:"count"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, req *RPCRequest) {
	var params purchaseParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgPurchase{Count: params.Count})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type saleWhitelistParams struct {
	saleCall
	Account string `json:"account"`
	Status  bool   `json:"status"`
}

func (s *Server) handleSaleSetWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var params saleWhitelistParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	account, err := decodeAddr(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode account address", err.Error())
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgWhitelist{Address: account, Status: params.Status})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type isWhitelistedParams struct {
	Collection string `json:"collection"`
	Account    string `json:"account"`
}

func (s *Server) handleIsWhitelisted(w http.ResponseWriter, req *RPCRequest) {
	var params isWhitelistedParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return
	}
	account, err := decodeAddr(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode account address", err.Error())
		return
	}
	eligible, err := s.node.IsWhitelisted(collection, account)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"whitelisted": eligible})
}

// CollectionResult is the wire form of the persisted collection state.
type CollectionResult struct {
	Address               string `json:"address"`
	Owner                 string `json:"owner"`
	Name                  string `json:"name"`
	Symbol                string `json:"symbol"`
	ClassID               string `json:"classId"`
	BaseTokenURI          string `json:"baseTokenUri"`
	BaseTokenURIExtension string `json:"baseTokenUriExtension"`
	PrerevealTokenURI     string `json:"prerevealTokenUri"`
	TreasuryAddress       string `json:"treasuryAddress"`
	ProtocolAddress       string `json:"protocolAddress"`
	MintPrice             string `json:"mintPrice"`
	SaleStartTime         uint64 `json:"saleStartTime"`
	SaleEndTime           uint64 `json:"saleEndTime"`
	ProtocolFee           uint8  `json:"protocolFee"`
	MaxTotalMint          uint64 `json:"maxTotalMint"`
	CurrentTokenID        uint64 `json:"currentTokenId"`
	URIRevealed           bool   `json:"uriRevealed"`
}

func collectionResult(col *sale.Collection) CollectionResult {
	price := "0"
	if col.MintPrice != nil {
		price = col.MintPrice.Dec()
	}
	return CollectionResult{
		Address:               encodeAddr(col.Address),
		Owner:                 encodeAddr(col.Owner),
		Name:                  col.Name,
		Symbol:                col.Symbol,
		ClassID:               col.ClassID,
		BaseTokenURI:          col.BaseTokenURI,
		BaseTokenURIExtension: col.BaseTokenURIExtension,
		PrerevealTokenURI:     col.PrerevealTokenURI,
		TreasuryAddress:       encodeAddr(col.TreasuryAddress),
		ProtocolAddress:       encodeAddr(col.ProtocolAddress),
		MintPrice:             price,
		SaleStartTime:         col.SaleStartTime,
		SaleEndTime:           col.SaleEndTime,
		ProtocolFee:           col.ProtocolFee,
		MaxTotalMint:          col.MaxTotalMint,
		CurrentTokenID:        col.CurrentTokenID,
		URIRevealed:           col.URIRevealed,
	}
}

func (s *Server) handleGetCollection(w http.ResponseWriter, req *RPCRequest) {
	var params collectionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return
	}
	col, err := s.node.Collection(collection)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, collectionResult(col))
}

type balanceParams struct {
	Collection string `json:"collection"`
	Account    string `json:"account"`
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return
	}
	account, err := decodeAddr(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode account address", err.Error())
		return
	}
	balance, err := s.node.BalanceOf(collection, account)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": balance.Dec()})
}

type depositParams struct {
	Collection string `json:"collection"`
	Account    string `json:"account"`
	Amount     string `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params depositParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return
	}
	account, err := decodeAddr(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode account address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount", err.Error())
		return
	}
	if err := s.node.Deposit(collection, account, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type saleSetBaseURIParams struct {
	saleCall
	URI    string `json:"uri"`
	Status bool   `json:"status"`
}

func (s *Server) handleSaleSetBaseURI(w http.ResponseWriter, req *RPCRequest) {
	var params saleSetBaseURIParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgSetBaseURI{URI: params.URI, Status: params.Status})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type tokenURIParams struct {
	Collection string `json:"collection"`
	TokenID    uint64 `json:"tokenId"`
}

func (s *Server) handleTokenURI(w http.ResponseWriter, req *RPCRequest) {
	var params tokenURIParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, err := decodeAddr(params.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode collection address", err.Error())
		return
	}
	col, err := s.node.Collection(collection)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"uri": col.TokenURI(params.TokenID)})
}

type saleMintParams struct {
	saleCall
	ClassID string `json:"classId"`
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	URI     string `json:"uri"`
	URIHash string `json:"uriHash"`
}

func (s *Server) handleSaleMint(w http.ResponseWriter, req *RPCRequest) {
	var params saleMintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	owner, err := decodeAddr(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode owner address", err.Error())
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgMint{
		ClassID: params.ClassID,
		ID:      params.ID,
		Owner:   owner,
		URI:     params.URI,
		URIHash: params.URIHash,
	})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type saleTokenRefParams struct {
	saleCall
	ClassID string `json:"classId"`
	ID      string `json:"id"`
}

func (s *Server) handleSaleBurn(w http.ResponseWriter, req *RPCRequest) {
	var params saleTokenRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgBurn{ClassID: params.ClassID, ID: params.ID})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

func (s *Server) handleSaleFreeze(w http.ResponseWriter, req *RPCRequest) {
	var params saleTokenRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgFreeze{ClassID: params.ClassID, ID: params.ID})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

func (s *Server) handleSaleUnfreeze(w http.ResponseWriter, req *RPCRequest) {
	var params saleTokenRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, sale.MsgUnfreeze{ClassID: params.ClassID, ID: params.ID})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type saleTokenWhitelistParams struct {
	saleCall
	ClassID string `json:"classId"`
	ID      string `json:"id"`
	Account string `json:"account"`
}

func (s *Server) handleSaleTokenWhitelist(w http.ResponseWriter, req *RPCRequest, add bool) {
	var params saleTokenWhitelistParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	collection, caller, ok := s.decodeSaleCall(w, req, params.saleCall)
	if !ok {
		return
	}
	account, err := decodeAddr(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode account address", err.Error())
		return
	}
	var msg interface{}
	if add {
		msg = sale.MsgAddToWhitelist{ClassID: params.ClassID, ID: params.ID, Account: account}
	} else {
		msg = sale.MsgRemoveFromWhitelist{ClassID: params.ClassID, ID: params.ID, Account: account}
	}
	resp, err := s.node.ApplySaleMsg(collection, caller, msg)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}
