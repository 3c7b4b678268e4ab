package sale

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// DeploymentConfig carries the immutable parameters fixed when a collection is
// deployed.
type DeploymentConfig struct {
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	MaxSupply       uint64   `json:"maxSupply"`
	TreasuryAddress [20]byte `json:"treasuryAddress"`
}

// RuntimeConfig carries the sale parameters. Price and window may later be
// adjusted by the collection owner.
type RuntimeConfig struct {
	BaseTokenURI          string        `json:"baseTokenUri"`
	BaseTokenURIExtension string        `json:"baseTokenUriExtension"`
	PrerevealTokenURI     string        `json:"prerevealTokenUri"`
	MintPrice             *uint256.Int  `json:"mintPrice"`
	SaleStartTime         uint64        `json:"saleStartTime"`
	SaleEndTime           uint64        `json:"saleEndTime"`
	ProtocolFee           uint8         `json:"protocolFee"`
}

// Collection is the persisted per-instance engine state. Everything except the
// reveal flag, price and window is immutable after deployment.
type Collection struct {
	Address               [20]byte     `json:"address"`
	Owner                 [20]byte     `json:"owner"`
	Name                  string       `json:"name"`
	Symbol                string       `json:"symbol"`
	ClassID               string       `json:"classId"`
	BaseTokenURI          string       `json:"baseTokenUri"`
	BaseTokenURIExtension string       `json:"baseTokenUriExtension"`
	PrerevealTokenURI     string       `json:"prerevealTokenUri"`
	TreasuryAddress       [20]byte     `json:"treasuryAddress"`
	ProtocolAddress       [20]byte     `json:"protocolAddress"`
	MintPrice             *uint256.Int `json:"mintPrice"`
	SaleStartTime         uint64       `json:"saleStartTime"`
	SaleEndTime           uint64       `json:"saleEndTime"`
	ProtocolFee           uint8        `json:"protocolFee"`
	MaxTotalMint          uint64       `json:"maxTotalMint"`
	CurrentTokenID        uint64       `json:"currentTokenId"`
	URIRevealed           bool         `json:"uriRevealed"`
}

// PurchaseReceipt summarises a completed purchase for callers and response
// attributes.
type PurchaseReceipt struct {
	Count          uint64
	TotalCost      *uint256.Int
	ProtocolFee    *uint256.Int
	TreasuryAmount *uint256.Int
	FirstTokenID   uint64
	LastTokenID    uint64
}

// Validate checks the deployment half of a collection configuration.
func (c DeploymentConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Symbol) == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidConfig)
	}
	if c.MaxSupply == 0 {
		return fmt.Errorf("%w: max supply must be positive", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the runtime half of a collection configuration.
func (c RuntimeConfig) Validate() error {
	if c.ProtocolFee > 100 {
		return fmt.Errorf("%w: protocol fee %d exceeds 100", ErrInvalidConfig, c.ProtocolFee)
	}
	if c.SaleStartTime > c.SaleEndTime {
		return fmt.Errorf("%w: sale start %d after end %d", ErrInvalidConfig, c.SaleStartTime, c.SaleEndTime)
	}
	return nil
}

// NewCollection assembles the persisted collection state from validated
// configuration. The mint counter starts at zero and URIs stay unrevealed
// until the owner flips the status.
func NewCollection(address, owner, protocol [20]byte, dep DeploymentConfig, run RuntimeConfig) *Collection {
	price := run.MintPrice
	if price == nil {
		price = uint256.NewInt(0)
	}
	return &Collection{
		Address:               address,
		Owner:                 owner,
		Name:                  strings.TrimSpace(dep.Name),
		Symbol:                strings.TrimSpace(dep.Symbol),
		BaseTokenURI:          strings.TrimSpace(run.BaseTokenURI),
		BaseTokenURIExtension: strings.TrimSpace(run.BaseTokenURIExtension),
		PrerevealTokenURI:     strings.TrimSpace(run.PrerevealTokenURI),
		TreasuryAddress:       dep.TreasuryAddress,
		ProtocolAddress:       protocol,
		MintPrice:             new(uint256.Int).Set(price),
		SaleStartTime:         run.SaleStartTime,
		SaleEndTime:           run.SaleEndTime,
		ProtocolFee:           run.ProtocolFee,
		MaxTotalMint:          dep.MaxSupply,
	}
}

// TokenURI derives the metadata URI for a token id. Before reveal every token
// resolves to the shared pre-reveal URI.
func (c *Collection) TokenURI(id uint64) string {
	if !c.URIRevealed {
		return c.PrerevealTokenURI
	}
	return c.BaseTokenURI + strconv.FormatUint(id, 10) + c.BaseTokenURIExtension
}

// Clone returns a deep copy of the collection state.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	clone := *c
	if c.MintPrice != nil {
		clone.MintPrice = new(uint256.Int).Set(c.MintPrice)
	}
	return &clone
}
