package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proptix/core"
	"proptix/crypto"
	"proptix/native/registry"
	"proptix/native/sale"
	"proptix/native/token"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeNotFound       = -32004
)

type Server struct {
	node *core.Node
	log  *slog.Logger
}

func NewServer(node *core.Node, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{node: node, log: log}
}

// Router mounts the JSON-RPC endpoint alongside health and metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
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

// writeEngineError maps engine sentinel errors to JSON-RPC error codes.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, sale.ErrUnauthorized), errors.Is(err, token.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, sale.ErrCollectionNotFound),
		errors.Is(err, registry.ErrCollectionNotFound),
		errors.Is(err, token.ErrClassNotFound),
		errors.Is(err, token.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, id, codeNotFound, "not found", err.Error())
	case errors.Is(err, sale.ErrInvalidConfig),
		errors.Is(err, sale.ErrInvalidAmount),
		errors.Is(err, token.ErrInvalidClass):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, "invalid parameters", err.Error())
	default:
		writeError(w, http.StatusConflict, id, codeServerError, "request rejected", err.Error())
	}
}

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

	switch req.Method {
	case "registry_createCollection":
		s.handleCreateCollection(w, req)
	case "registry_resolve":
		s.handleResolve(w, req)
	case "registry_setBaseUri":
		s.handleRegistrySetBaseURI(w, req)
	case "registry_setWhitelist":
		s.handleRegistrySetWhitelist(w, req)
	case "registry_deployed":
		s.handleDeployed(w, req)
	case "registry_lastDeployed":
		s.handleLastDeployed(w, req)
	case "registry_allContracts":
		s.handleAllContracts(w, req)
	case "sale_purchase":
		s.handlePurchase(w, req)
	case "sale_setWhitelist":
		s.handleSaleSetWhitelist(w, req)
	case "sale_isWhitelisted":
		s.handleIsWhitelisted(w, req)
	case "sale_getCollection":
		s.handleGetCollection(w, req)
	case "sale_balanceOf":
		s.handleBalanceOf(w, req)
	case "sale_deposit":
		s.handleDeposit(w, req)
	case "sale_setBaseUri":
		s.handleSaleSetBaseURI(w, req)
	case "sale_tokenUri":
		s.handleTokenURI(w, req)
	case "sale_mint":
		s.handleSaleMint(w, req)
	case "sale_burn":
		s.handleSaleBurn(w, req)
	case "sale_freeze":
		s.handleSaleFreeze(w, req)
	case "sale_unfreeze":
		s.handleSaleUnfreeze(w, req)
	case "sale_addToWhitelist":
		s.handleSaleTokenWhitelist(w, req, true)
	case "sale_removeFromWhitelist":
		s.handleSaleTokenWhitelist(w, req, false)
	case "token_getToken":
		s.handleGetToken(w, req)
	case "token_getClass":
		s.handleGetClass(w, req)
	case "token_ownerTokens":
		s.handleOwnerTokens(w, req)
	case "token_transfer":
		s.handleTokenTransfer(w, req)
	case "ptx_getEvents":
		s.handleGetEvents(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %s not found", req.Method), nil)
	}
}

// decodeParams unmarshals the single object parameter every method accepts.
func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("parameter object required")
	}
	return json.Unmarshal(req.Params[0], out)
}

func decodeAddr(addrStr string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(addrStr)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

func encodeAddr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.PTXPrefix, addr[:]).String()
}

func parseAmount(value string) (*uint256.Int, error) {
	if value == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromDecimal(value)
}
