package events

import (
	"strconv"

	"github.com/holiman/uint256"

	"proptix/core/types"
	"proptix/crypto"
)

const (
	// TypeSaleWhitelistUpdated is emitted when the collection owner flips an
	// account's purchase eligibility.
	TypeSaleWhitelistUpdated = "sale.whitelist.updated"
	// TypeSaleTokenWhitelistUpdated is emitted for the per-token whitelist
	// variant, which is tracked separately from the purchase gate.
	TypeSaleTokenWhitelistUpdated = "sale.token_whitelist.updated"
	// TypeSalePurchaseCompleted is emitted once per successful purchase.
	TypeSalePurchaseCompleted = "sale.purchase.completed"
	// TypeSaleTokenMinted is emitted for every token issued by a purchase.
	TypeSaleTokenMinted = "sale.token.minted"
	// TypeSaleBaseURIUpdated is emitted when the base URI or reveal status
	// changes.
	TypeSaleBaseURIUpdated = "sale.baseuri.updated"
	// TypeSaleLedgerDeposited is emitted when funds are reconciled into the
	// internal ledger.
	TypeSaleLedgerDeposited = "sale.ledger.deposited"
)

func addrString(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.PTXPrefix, addr[:]).String()
}

func amountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

type SaleWhitelistUpdated struct {
	Collection [20]byte
	Account    [20]byte
	Eligible   bool
}

func (SaleWhitelistUpdated) EventType() string { return TypeSaleWhitelistUpdated }

func (e SaleWhitelistUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeSaleWhitelistUpdated,
		Attributes: map[string]string{
			"collection": addrString(e.Collection),
			"account":    addrString(e.Account),
			"eligible":   strconv.FormatBool(e.Eligible),
		},
	}
}

type SaleTokenWhitelistUpdated struct {
	Collection [20]byte
	ClassID    string
	TokenID    string
	Account    [20]byte
	Eligible   bool
}

func (SaleTokenWhitelistUpdated) EventType() string { return TypeSaleTokenWhitelistUpdated }

func (e SaleTokenWhitelistUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeSaleTokenWhitelistUpdated,
		Attributes: map[string]string{
			"collection": addrString(e.Collection),
			"classId":    e.ClassID,
			"tokenId":    e.TokenID,
			"account":    addrString(e.Account),
			"eligible":   strconv.FormatBool(e.Eligible),
		},
	}
}

type SalePurchaseCompleted struct {
	Collection     [20]byte
	Buyer          [20]byte
	Count          uint64
	TotalCost      *uint256.Int
	ProtocolFee    *uint256.Int
	TreasuryAmount *uint256.Int
	FirstTokenID   uint64
	LastTokenID    uint64
}

func (SalePurchaseCompleted) EventType() string { return TypeSalePurchaseCompleted }

func (e SalePurchaseCompleted) Event() *types.Event {
	return &types.Event{
		Type: TypeSalePurchaseCompleted,
		Attributes: map[string]string{
			"collection":     addrString(e.Collection),
			"buyer":          addrString(e.Buyer),
			"count":          strconv.FormatUint(e.Count, 10),
			"totalCost":      amountString(e.TotalCost),
			"protocolFee":    amountString(e.ProtocolFee),
			"treasuryAmount": amountString(e.TreasuryAmount),
			"firstTokenId":   strconv.FormatUint(e.FirstTokenID, 10),
			"lastTokenId":    strconv.FormatUint(e.LastTokenID, 10),
		},
	}
}

type SaleTokenMinted struct {
	Collection [20]byte
	ClassID    string
	TokenID    uint64
	Owner      [20]byte
	URI        string
}

func (SaleTokenMinted) EventType() string { return TypeSaleTokenMinted }

func (e SaleTokenMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeSaleTokenMinted,
		Attributes: map[string]string{
			"collection": addrString(e.Collection),
			"classId":    e.ClassID,
			"tokenId":    strconv.FormatUint(e.TokenID, 10),
			"owner":      addrString(e.Owner),
			"uri":        e.URI,
		},
	}
}

type SaleBaseURIUpdated struct {
	Collection [20]byte
	URI        string
	Revealed   bool
}

func (SaleBaseURIUpdated) EventType() string { return TypeSaleBaseURIUpdated }

func (e SaleBaseURIUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeSaleBaseURIUpdated,
		Attributes: map[string]string{
			"collection": addrString(e.Collection),
			"uri":        e.URI,
			"revealed":   strconv.FormatBool(e.Revealed),
		},
	}
}

type SaleLedgerDeposited struct {
	Collection [20]byte
	Account    [20]byte
	Amount     *uint256.Int
}

func (SaleLedgerDeposited) EventType() string { return TypeSaleLedgerDeposited }

func (e SaleLedgerDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeSaleLedgerDeposited,
		Attributes: map[string]string{
			"collection": addrString(e.Collection),
			"account":    addrString(e.Account),
			"amount":     amountString(e.Amount),
		},
	}
}
