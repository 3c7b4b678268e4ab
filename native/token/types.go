package token

import (
	"fmt"
	"strings"

	"proptix/crypto"
)

// ClassDefinition carries the caller-supplied parameters for issuing a new
// token class.
type ClassDefinition struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	URI         string   `json:"uri"`
	URIHash     string   `json:"uriHash"`
	Data        []byte   `json:"data"`
	Features    []uint32 `json:"features"`
	RoyaltyRate string   `json:"royaltyRate"`
}

// Class is a registered token class. The identifier binds the symbol to the
// issuing address so two issuers can reuse the same symbol without colliding.
type Class struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	URI         string   `json:"uri"`
	URIHash     string   `json:"uriHash"`
	Data        []byte   `json:"data"`
	Features    []uint32 `json:"features"`
	RoyaltyRate string   `json:"royaltyRate"`
	Issuer      [20]byte `json:"issuer"`
}

// Token is a single issued token. Ownership and the frozen flag live here; the
// sale engine only ever references tokens through the registry.
type Token struct {
	ClassID string   `json:"classId"`
	ID      string   `json:"id"`
	Owner   [20]byte `json:"owner"`
	URI     string   `json:"uri"`
	URIHash string   `json:"uriHash"`
	Data    []byte   `json:"data"`
	Frozen  bool     `json:"frozen"`
}

// MintSpec carries the parameters for minting a single token.
type MintSpec struct {
	ClassID string   `json:"classId"`
	ID      string   `json:"id"`
	Owner   [20]byte `json:"owner"`
	URI     string   `json:"uri"`
	URIHash string   `json:"uriHash"`
	Data    []byte   `json:"data"`
}

// BuildClassID derives the canonical class identifier from a symbol and the
// issuing address: "<symbol>-<bech32 issuer>", symbol lowercased.
func BuildClassID(symbol string, issuer [20]byte) string {
	addr := crypto.MustNewAddress(crypto.PTXPrefix, issuer[:])
	return fmt.Sprintf("%s-%s", strings.ToLower(strings.TrimSpace(symbol)), addr.String())
}

// TokenRef is the owner-index entry for a token.
func TokenRef(classID, id string) string {
	return classID + "/" + id
}

// Pagination bounds for owner token listings.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)
