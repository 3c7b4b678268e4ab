package sale

import (
	"fmt"
	"strconv"

	"proptix/core/types"
	"proptix/crypto"
	"proptix/native/token"
)

// Messages accepted by the sale engine. Each maps to one mutating request and
// produces an ordered attribute-list response describing the action, the
// acting address and the relevant identifiers.

type MsgIssueClass struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description,omitempty"`
	URI         string   `json:"uri,omitempty"`
	URIHash     string   `json:"uriHash,omitempty"`
	Data        []byte   `json:"data,omitempty"`
	Features    []uint32 `json:"features,omitempty"`
	RoyaltyRate string   `json:"royaltyRate,omitempty"`
}

type MsgMint struct {
	ClassID string   `json:"classId"`
	ID      string   `json:"id"`
	Owner   [20]byte `json:"owner"`
	URI     string   `json:"uri,omitempty"`
	URIHash string   `json:"uriHash,omitempty"`
	Data    []byte   `json:"data,omitempty"`
}

type MsgBurn struct {
	ClassID string `json:"classId"`
	ID      string `json:"id"`
}

type MsgFreeze struct {
	ClassID string `json:"classId"`
	ID      string `json:"id"`
}

type MsgUnfreeze struct {
	ClassID string `json:"classId"`
	ID      string `json:"id"`
}

type MsgAddToWhitelist struct {
	ClassID string   `json:"classId"`
	ID      string   `json:"id"`
	Account [20]byte `json:"account"`
}

type MsgRemoveFromWhitelist struct {
	ClassID string   `json:"classId"`
	ID      string   `json:"id"`
	Account [20]byte `json:"account"`
}

type MsgWhitelist struct {
	Address [20]byte `json:"address"`
	Status  bool     `json:"status"`
}

type MsgPurchase struct {
	Count uint64 `json:"count"`
}

type MsgSetBaseURI struct {
	URI    string `json:"uri"`
	Status bool   `json:"status"`
}

func attrAddr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.PTXPrefix, addr[:]).String()
}

// HandleMsg dispatches a mutating engine message on behalf of the caller and
// returns the response attribute list.
func (e *Engine) HandleMsg(collection, caller [20]byte, msg interface{}) (*types.Response, error) {
	switch m := msg.(type) {
	case MsgWhitelist:
		if err := e.SetWhitelist(collection, caller, m.Address, m.Status); err != nil {
			return nil, err
		}
		action := "whitelist_add"
		if !m.Status {
			action = "whitelist_remove"
		}
		return types.NewResponse(action).
			Add("collection", attrAddr(collection)).
			Add("account", attrAddr(m.Address)), nil
	case MsgPurchase:
		receipt, err := e.Purchase(collection, caller, m.Count)
		if err != nil {
			return nil, err
		}
		return types.NewResponse("purchase").
			Add("collection", attrAddr(collection)).
			Add("buyer", attrAddr(caller)).
			Add("count", strconv.FormatUint(receipt.Count, 10)).
			Add("totalCost", receipt.TotalCost.Dec()).
			Add("protocolFee", receipt.ProtocolFee.Dec()).
			Add("treasuryAmount", receipt.TreasuryAmount.Dec()).
			Add("firstTokenId", strconv.FormatUint(receipt.FirstTokenID, 10)).
			Add("lastTokenId", strconv.FormatUint(receipt.LastTokenID, 10)), nil
	case MsgSetBaseURI:
		if err := e.SetBaseURI(collection, caller, m.URI, m.Status); err != nil {
			return nil, err
		}
		return types.NewResponse("set_base_uri").
			Add("collection", attrAddr(collection)).
			Add("uri", m.URI).
			Add("revealed", strconv.FormatBool(m.Status)), nil
	case MsgIssueClass:
		classID, err := e.IssueClass(collection, caller, token.ClassDefinition{
			Name:        m.Name,
			Symbol:      m.Symbol,
			Description: m.Description,
			URI:         m.URI,
			URIHash:     m.URIHash,
			Data:        m.Data,
			Features:    m.Features,
			RoyaltyRate: m.RoyaltyRate,
		})
		if err != nil {
			return nil, err
		}
		return types.NewResponse("issue_class").
			Add("collection", attrAddr(collection)).
			Add("issuer", attrAddr(caller)).
			Add("classId", classID), nil
	case MsgMint:
		if err := e.MintToken(collection, caller, token.MintSpec{
			ClassID: m.ClassID,
			ID:      m.ID,
			Owner:   m.Owner,
			URI:     m.URI,
			URIHash: m.URIHash,
			Data:    m.Data,
		}); err != nil {
			return nil, err
		}
		return types.NewResponse("mint").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID).
			Add("owner", attrAddr(m.Owner)), nil
	case MsgBurn:
		if err := e.BurnToken(collection, caller, m.ClassID, m.ID); err != nil {
			return nil, err
		}
		return types.NewResponse("burn").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID), nil
	case MsgFreeze:
		if err := e.FreezeToken(collection, caller, m.ClassID, m.ID); err != nil {
			return nil, err
		}
		return types.NewResponse("freeze").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID), nil
	case MsgUnfreeze:
		if err := e.UnfreezeToken(collection, caller, m.ClassID, m.ID); err != nil {
			return nil, err
		}
		return types.NewResponse("unfreeze").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID), nil
	case MsgAddToWhitelist:
		if err := e.SetTokenWhitelist(collection, caller, m.ClassID, m.ID, m.Account, true); err != nil {
			return nil, err
		}
		return types.NewResponse("add_to_whitelist").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID).
			Add("account", attrAddr(m.Account)), nil
	case MsgRemoveFromWhitelist:
		if err := e.SetTokenWhitelist(collection, caller, m.ClassID, m.ID, m.Account, false); err != nil {
			return nil, err
		}
		return types.NewResponse("remove_from_whitelist").
			Add("collection", attrAddr(collection)).
			Add("classId", m.ClassID).
			Add("tokenId", m.ID).
			Add("account", attrAddr(m.Account)), nil
	default:
		return nil, fmt.Errorf("sale engine: unsupported message type %T", msg)
	}
}
