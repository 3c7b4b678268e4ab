package rpc

import (
	"net/http"

	"proptix/native/registry"
	"proptix/native/sale"
)

type deploymentConfigParam struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	MaxSupply       uint64 `json:"maxSupply"`
	TreasuryAddress string `json:"treasuryAddress"`
}

type runtimeConfigParam struct {
	BaseTokenURI          string `json:"baseTokenUri"`
	BaseTokenURIExtension string `json:"baseTokenUriExtension"`
	PrerevealTokenURI     string `json:"prerevealTokenUri"`
	MintPrice             string `json:"mintPrice"`
	SaleStartTime         uint64 `json:"saleStartTime"`
	SaleEndTime           uint64 `json:"saleEndTime"`
	ProtocolFee           uint8  `json:"protocolFee"`
}

type createCollectionParams struct {
	Caller     string                `json:"caller"`
	Deployment deploymentConfigParam `json:"deploymentConfig"`
	Runtime    runtimeConfigParam    `json:"runtimeConfig"`
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, req *RPCRequest) {
	var params createCollectionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	caller, err := decodeAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode caller address", err.Error())
		return
	}
	treasury, err := decodeAddr(params.Deployment.TreasuryAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode treasury address", err.Error())
		return
	}
	price, err := parseAmount(params.Runtime.MintPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid mint price", err.Error())
		return
	}
	msg := registry.MsgCreateCollection{
		Deployment: sale.DeploymentConfig{
			Name:            params.Deployment.Name,
			Symbol:          params.Deployment.Symbol,
			MaxSupply:       params.Deployment.MaxSupply,
			TreasuryAddress: treasury,
		},
		Runtime: sale.RuntimeConfig{
			BaseTokenURI:          params.Runtime.BaseTokenURI,
			BaseTokenURIExtension: params.Runtime.BaseTokenURIExtension,
			PrerevealTokenURI:     params.Runtime.PrerevealTokenURI,
			MintPrice:             price,
			SaleStartTime:         params.Runtime.SaleStartTime,
			SaleEndTime:           params.Runtime.SaleEndTime,
			ProtocolFee:           params.Runtime.ProtocolFee,
		},
	}
	resp, err := s.node.ApplyRegistryMsg(caller, msg)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type resolveParams struct {
	Name string `json:"name"`
}

func (s *Server) handleResolve(w http.ResponseWriter, req *RPCRequest) {
	var params resolveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	addr, err := s.node.ResolveCollection(params.Name)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"name":       params.Name,
		"collection": encodeAddr(addr),
	})
}

type registrySetBaseURIParams struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	URI        string `json:"uri"`
	Status     bool   `json:"status"`
}

func (s *Server) handleRegistrySetBaseURI(w http.ResponseWriter, req *RPCRequest) {
	var params registrySetBaseURIParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	caller, err := decodeAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode caller address", err.Error())
		return
	}
	resp, err := s.node.ApplyRegistryMsg(caller, registry.MsgSetBaseURI{
		Collection: params.Collection,
		URI:        params.URI,
		Status:     params.Status,
	})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type registrySetWhitelistParams struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	User       string `json:"user"`
	Status     bool   `json:"status"`
}

func (s *Server) handleRegistrySetWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var params registrySetWhitelistParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	caller, err := decodeAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode caller address", err.Error())
		return
	}
	user, err := decodeAddr(params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode user address", err.Error())
		return
	}
	resp, err := s.node.ApplyRegistryMsg(caller, registry.MsgSetWhitelist{
		Collection: params.Collection,
		User:       user,
		Status:     params.Status,
	})
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

type ownerParams struct {
	Owner string `json:"owner"`
}

func (s *Server) handleDeployed(w http.ResponseWriter, req *RPCRequest) {
	var params ownerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	owner, err := decodeAddr(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode owner address", err.Error())
		return
	}
	addrs, err := s.node.Deployed(owner)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, encodeAddrList(addrs))
}

func (s *Server) handleLastDeployed(w http.ResponseWriter, req *RPCRequest) {
	var params ownerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	owner, err := decodeAddr(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode owner address", err.Error())
		return
	}
	addr, ok, err := s.node.LastDeployed(owner)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "owner has no deployments", nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"collection": encodeAddr(addr)})
}

func (s *Server) handleAllContracts(w http.ResponseWriter, req *RPCRequest) {
	addrs, err := s.node.AllContracts()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, encodeAddrList(addrs))
}

func encodeAddrList(addrs [][20]byte) []string {
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = encodeAddr(addr)
	}
	return out
}
