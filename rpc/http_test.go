package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"proptix/core"
	"proptix/crypto"
	"proptix/storage"
)

func bech32Addr(last byte) string {
	var raw [20]byte
	raw[19] = last
	return crypto.MustNewAddress(crypto.PTXPrefix, raw[:]).String()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	var protocol [20]byte
	protocol[19] = 0xEE
	node := core.NewNode(storage.NewMemDB(), core.Options{
		ProtocolAddress: protocol,
		NowFn:           func() int64 { return 1500 },
	})
	ts := httptest.NewServer(NewServer(node, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) (*RPCResponse, int) {
	t.Helper()
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		body["params"] = []interface{}{params}
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()
	out := &RPCResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", method, err)
	}
	return out, resp.StatusCode
}

func mustCall(t *testing.T, ts *httptest.Server, method string, params interface{}) *RPCResponse {
	t.Helper()
	resp, status := call(t, ts, method, params)
	if status != http.StatusOK || resp.Error != nil {
		t.Fatalf("%s failed: status %d, error %+v", method, status, resp.Error)
	}
	return resp
}

func createCollection(t *testing.T, ts *httptest.Server, owner string) string {
	t.Helper()
	mustCall(t, ts, "registry_createCollection", map[string]interface{}{
		"caller": owner,
		"deploymentConfig": map[string]interface{}{
			"name":            "Skyline",
			"symbol":          "SKY",
			"maxSupply":       10,
			"treasuryAddress": bech32Addr(0xDD),
		},
		"runtimeConfig": map[string]interface{}{
			"baseTokenUri":      "ipfs://base/",
			"prerevealTokenUri": "ipfs://hidden",
			"mintPrice":         "100",
			"saleStartTime":     1000,
			"saleEndTime":       2000,
			"protocolFee":       10,
		},
	})

	resp := mustCall(t, ts, "registry_resolve", map[string]interface{}{"name": "Skyline"})
	var resolved map[string]string
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &resolved); err != nil {
		t.Fatalf("decode resolve result: %v", err)
	}
	if resolved["collection"] == "" {
		t.Fatal("resolve returned no collection address")
	}
	return resolved["collection"]
}

func TestPurchaseOverRPC(t *testing.T) {
	ts := newTestServer(t)
	owner := bech32Addr(0x01)
	buyer := bech32Addr(0x02)
	collection := createCollection(t, ts, owner)

	mustCall(t, ts, "sale_setWhitelist", map[string]interface{}{
		"caller":     owner,
		"collection": collection,
		"account":    buyer,
		"status":     true,
	})
	mustCall(t, ts, "sale_deposit", map[string]interface{}{
		"collection": collection,
		"account":    buyer,
		"amount":     "250",
	})

	resp := mustCall(t, ts, "sale_purchase", map[string]interface{}{
		"caller":     buyer,
		"collection": collection,
		"count":      2,
	})
	attrs := attributeMap(t, resp)
	if attrs["totalCost"] != "200" || attrs["protocolFee"] != "20" || attrs["treasuryAmount"] != "180" {
		t.Fatalf("purchase attributes = %v", attrs)
	}

	balResp := mustCall(t, ts, "sale_balanceOf", map[string]interface{}{
		"collection": collection,
		"account":    buyer,
	})
	var bal map[string]string
	raw, _ := json.Marshal(balResp.Result)
	if err := json.Unmarshal(raw, &bal); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if bal["balance"] != "50" {
		t.Fatalf("balance = %q, want 50", bal["balance"])
	}

	tokensResp := mustCall(t, ts, "token_ownerTokens", map[string]interface{}{"owner": buyer})
	var refs []string
	raw, _ = json.Marshal(tokensResp.Result)
	if err := json.Unmarshal(raw, &refs); err != nil {
		t.Fatalf("decode owner tokens: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("owner tokens = %v, want 2 refs", refs)
	}
}

func TestRejectedPurchaseReturnsError(t *testing.T) {
	ts := newTestServer(t)
	owner := bech32Addr(0x01)
	buyer := bech32Addr(0x02)
	collection := createCollection(t, ts, owner)

	resp, status := call(t, ts, "sale_purchase", map[string]interface{}{
		"caller":     buyer,
		"collection": collection,
		"count":      1,
	})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeUnauthorized)
	}
}

func TestUnknownMethodAndMalformedRequests(t *testing.T) {
	ts := newTestServer(t)

	resp, status := call(t, ts, "sale_doesNotExist", nil)
	if status != http.StatusNotFound || resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method: status %d, error %+v", status, resp.Error)
	}

	httpResp, err := http.Post(ts.URL, "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post malformed: %v", err)
	}
	defer httpResp.Body.Close()
	out := &RPCResponse{}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		t.Fatalf("decode malformed response: %v", err)
	}
	if out.Error == nil || out.Error.Code != codeParseError {
		t.Fatalf("malformed body error = %+v", out.Error)
	}
}

func TestResolveUnknownCollection(t *testing.T) {
	ts := newTestServer(t)
	resp, status := call(t, ts, "registry_resolve", map[string]interface{}{"name": "Ghost"})
	if status != http.StatusNotFound || resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Fatalf("status %d, error %+v", status, resp.Error)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func attributeMap(t *testing.T, resp *RPCResponse) map[string]string {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var decoded struct {
		Attributes []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode attributes: %v", err)
	}
	out := make(map[string]string, len(decoded.Attributes))
	for _, attr := range decoded.Attributes {
		out[attr.Key] = attr.Value
	}
	if len(out) == 0 {
		t.Fatalf("response carried no attributes: %+v", resp.Result)
	}
	return out
}
