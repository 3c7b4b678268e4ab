package sale

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"proptix/core/events"
	nativecommon "proptix/native/common"
	"proptix/native/token"
)

const moduleName = "sale"

type engineState interface {
	SaleCollectionGet(collection [20]byte) (*Collection, bool, error)
	SaleCollectionPut(c *Collection) error
	SaleWhitelistGet(collection, account [20]byte) (bool, error)
	SaleWhitelistPut(collection, account [20]byte, eligible bool) error
	SaleTokenWhitelistGet(collection [20]byte, classID, tokenID string, account [20]byte) (bool, error)
	SaleTokenWhitelistPut(collection [20]byte, classID, tokenID string, account [20]byte, eligible bool) error
	SaleBalanceGet(collection, account [20]byte) (*uint256.Int, error)
	SaleBalancePut(collection, account [20]byte, amount *uint256.Int) error
}

// TokenRegistry is the narrow capability interface the engine needs from the
// external token-ownership module. The engine drives it but never owns its
// data.
type TokenRegistry interface {
	IssueClass(issuer [20]byte, def token.ClassDefinition) (string, error)
	Mint(caller [20]byte, spec token.MintSpec) error
	Burn(caller [20]byte, classID, id string) error
	Freeze(caller [20]byte, classID, id string) error
	Unfreeze(caller [20]byte, classID, id string) error
	Token(classID, id string) (*token.Token, bool, error)
	OwnerTokens(owner [20]byte, startAfter string, limit uint32) ([]string, error)
}

// Engine orchestrates collection sales: whitelist gating, the sale window,
// internal fund accounting with the protocol/treasury split, and the mint
// sequence driven through the token registry.
type Engine struct {
	state   engineState
	tokens  TokenRegistry
	emitter events.Emitter
	nowFn   func() int64
	pauses  nativecommon.PauseView
}

// NewEngine constructs a sale engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokenRegistry configures the token registry the engine mints through.
func (e *Engine) SetTokenRegistry(tokens TokenRegistry) { e.tokens = tokens }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets it to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetPauses wires the module pause view consulted before mutations.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.tokens == nil {
		return ErrNilTokenRegistry
	}
	return nil
}

func (e *Engine) collection(addr [20]byte) (*Collection, error) {
	col, ok, err := e.state.SaleCollectionGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return col, nil
}

func (e *Engine) requireOwner(col *Collection, caller [20]byte) error {
	if caller != col.Owner {
		return fmt.Errorf("%w: caller is not the collection owner", ErrUnauthorized)
	}
	return nil
}

// ledger returns the fund bookkeeping view scoped to one collection.
func (e *Engine) ledger(collection [20]byte) Ledger {
	return Ledger{st: e.state, collection: collection}
}

// Collection returns the persisted engine state for the given address.
func (e *Engine) Collection(addr [20]byte) (*Collection, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	col, err := e.collection(addr)
	if err != nil {
		return nil, err
	}
	return col.Clone(), nil
}

// InitCollection persists a freshly deployed collection. Called by the
// collection registry at deployment time; rejects overwrites.
func (e *Engine) InitCollection(col *Collection) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if col == nil {
		return fmt.Errorf("%w: nil collection", ErrInvalidConfig)
	}
	if _, ok, err := e.state.SaleCollectionGet(col.Address); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: collection already initialised", ErrInvalidConfig)
	}
	return e.state.SaleCollectionPut(col.Clone())
}

// SetWhitelist flips an account's purchase eligibility. Owner only. Setting
// the stored value again is a no-op observable only through the emitted event.
func (e *Engine) SetWhitelist(collection, caller, account [20]byte, eligible bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	if err := e.state.SaleWhitelistPut(collection, account, eligible); err != nil {
		return err
	}
	e.emitter.Emit(events.SaleWhitelistUpdated{Collection: collection, Account: account, Eligible: eligible})
	return nil
}

// IsWhitelisted reports purchase eligibility; absent entries read as false.
func (e *Engine) IsWhitelisted(collection, account [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	return e.state.SaleWhitelistGet(collection, account)
}

// SetTokenWhitelist maintains the per-token whitelist variant. It is stored
// separately and never consulted by the purchase gate.
func (e *Engine) SetTokenWhitelist(collection, caller [20]byte, classID, tokenID string, account [20]byte, eligible bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	classID = strings.TrimSpace(classID)
	tokenID = strings.TrimSpace(tokenID)
	if classID == "" || tokenID == "" {
		return fmt.Errorf("%w: class and token id required", ErrInvalidAmount)
	}
	if err := e.state.SaleTokenWhitelistPut(collection, classID, tokenID, account, eligible); err != nil {
		return err
	}
	e.emitter.Emit(events.SaleTokenWhitelistUpdated{
		Collection: collection,
		ClassID:    classID,
		TokenID:    tokenID,
		Account:    account,
		Eligible:   eligible,
	})
	return nil
}

// IsTokenWhitelisted reads the per-token whitelist variant.
func (e *Engine) IsTokenWhitelisted(collection [20]byte, classID, tokenID string, account [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	return e.state.SaleTokenWhitelistGet(collection, classID, tokenID, account)
}

// Deposit reconciles externally received funds into the internal ledger.
func (e *Engine) Deposit(collection, account [20]byte, amount *uint256.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if _, err := e.collection(collection); err != nil {
		return err
	}
	if err := e.ledger(collection).Credit(account, amount); err != nil {
		return err
	}
	e.emitter.Emit(events.SaleLedgerDeposited{Collection: collection, Account: account, Amount: new(uint256.Int).Set(amount)})
	return nil
}

// BalanceOf returns the internal ledger balance for an account.
func (e *Engine) BalanceOf(collection, account [20]byte) (*uint256.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if _, err := e.collection(collection); err != nil {
		return nil, err
	}
	return e.ledger(collection).BalanceOf(account)
}

// Purchase executes the sale state machine: whitelist, window and capacity
// checks, cost computation with overflow detection, the protocol/treasury fee
// split, ledger movement and the mint sequence. The cheap eligibility checks
// run before any state is touched; the node-level transaction discards every
// mutation when any later step fails, so a failed mint never leaves funds
// debited without tokens issued.
func (e *Engine) Purchase(collection, buyer [20]byte, count uint64) (*PurchaseReceipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: count must be at least 1", ErrInvalidAmount)
	}
	col, err := e.collection(collection)
	if err != nil {
		return nil, err
	}

	eligible, err := e.state.SaleWhitelistGet(collection, buyer)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: buyer not whitelisted", ErrUnauthorized)
	}

	now := e.now()
	if now < 0 || uint64(now) < col.SaleStartTime || uint64(now) > col.SaleEndTime {
		return nil, fmt.Errorf("%w: window [%d, %d], now %d", ErrSaleNotActive, col.SaleStartTime, col.SaleEndTime, now)
	}

	if count > col.MaxTotalMint-col.CurrentTokenID {
		return nil, fmt.Errorf("%w: %d of %d minted, %d requested", ErrSupplyExhausted, col.CurrentTokenID, col.MaxTotalMint, count)
	}

	totalCost, overflow := new(uint256.Int).MulOverflow(col.MintPrice, uint256.NewInt(count))
	if overflow {
		return nil, fmt.Errorf("%w: mint price times count", ErrValueOverflow)
	}

	ledger := e.ledger(collection)
	balance, err := ledger.BalanceOf(buyer)
	if err != nil {
		return nil, err
	}
	if balance.Lt(totalCost) {
		return nil, fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, balance.Dec(), totalCost.Dec())
	}

	// Integer division rounds the protocol share down; the remainder goes to
	// the treasury so the split always sums exactly to the total cost.
	protocolFee, overflow := new(uint256.Int).MulDivOverflow(totalCost, uint256.NewInt(uint64(col.ProtocolFee)), uint256.NewInt(100))
	if overflow {
		return nil, fmt.Errorf("%w: protocol fee computation", ErrValueOverflow)
	}
	treasuryAmount := new(uint256.Int).Sub(totalCost, protocolFee)

	if err := ledger.Debit(buyer, totalCost); err != nil {
		return nil, err
	}
	if err := ledger.Credit(col.ProtocolAddress, protocolFee); err != nil {
		return nil, err
	}
	if err := ledger.Credit(col.TreasuryAddress, treasuryAmount); err != nil {
		return nil, err
	}

	firstID := col.CurrentTokenID
	for i := uint64(0); i < count; i++ {
		id := col.CurrentTokenID
		uri := col.TokenURI(id)
		spec := token.MintSpec{
			ClassID: col.ClassID,
			ID:      strconv.FormatUint(id, 10),
			Owner:   buyer,
			URI:     uri,
		}
		if err := e.tokens.Mint(collection, spec); err != nil {
			return nil, fmt.Errorf("mint token %d: %w", id, err)
		}
		col.CurrentTokenID++
		e.emitter.Emit(events.SaleTokenMinted{
			Collection: collection,
			ClassID:    col.ClassID,
			TokenID:    id,
			Owner:      buyer,
			URI:        uri,
		})
	}
	if err := e.state.SaleCollectionPut(col); err != nil {
		return nil, err
	}

	receipt := &PurchaseReceipt{
		Count:          count,
		TotalCost:      totalCost,
		ProtocolFee:    protocolFee,
		TreasuryAmount: treasuryAmount,
		FirstTokenID:   firstID,
		LastTokenID:    col.CurrentTokenID - 1,
	}
	e.emitter.Emit(events.SalePurchaseCompleted{
		Collection:     collection,
		Buyer:          buyer,
		Count:          count,
		TotalCost:      totalCost,
		ProtocolFee:    protocolFee,
		TreasuryAmount: treasuryAmount,
		FirstTokenID:   receipt.FirstTokenID,
		LastTokenID:    receipt.LastTokenID,
	})
	return receipt, nil
}

// SetBaseURI updates the base URI and reveal status. Owner only.
func (e *Engine) SetBaseURI(collection, caller [20]byte, uri string, revealed bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	col.BaseTokenURI = strings.TrimSpace(uri)
	col.URIRevealed = revealed
	if err := e.state.SaleCollectionPut(col); err != nil {
		return err
	}
	e.emitter.Emit(events.SaleBaseURIUpdated{Collection: collection, URI: col.BaseTokenURI, Revealed: revealed})
	return nil
}

// IssueClass creates an additional token class issued by the collection.
// Owner only; the collection address acts as the issuer.
func (e *Engine) IssueClass(collection, caller [20]byte, def token.ClassDefinition) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	col, err := e.collection(collection)
	if err != nil {
		return "", err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return "", err
	}
	classID, err := e.tokens.IssueClass(collection, def)
	if err != nil {
		return "", err
	}
	if col.ClassID == "" {
		col.ClassID = classID
		if err := e.state.SaleCollectionPut(col); err != nil {
			return "", err
		}
	}
	return classID, nil
}

// MintToken mints a token with an explicit identifier outside the purchase
// counter. Owner only; intended for issuer-reserved tokens.
func (e *Engine) MintToken(collection, caller [20]byte, spec token.MintSpec) error {
	if err := e.ready(); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	return e.tokens.Mint(collection, spec)
}

// BurnToken retires a token. Owner only; delegated to the token registry with
// the collection acting as class issuer.
func (e *Engine) BurnToken(collection, caller [20]byte, classID, id string) error {
	if err := e.ready(); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	return e.tokens.Burn(collection, classID, id)
}

// FreezeToken marks a token non-transferable. Owner only.
func (e *Engine) FreezeToken(collection, caller [20]byte, classID, id string) error {
	return e.setTokenFrozen(collection, caller, classID, id, true)
}

// UnfreezeToken lifts a freeze. Owner only.
func (e *Engine) UnfreezeToken(collection, caller [20]byte, classID, id string) error {
	return e.setTokenFrozen(collection, caller, classID, id, false)
}

func (e *Engine) setTokenFrozen(collection, caller [20]byte, classID, id string, frozen bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	col, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := e.requireOwner(col, caller); err != nil {
		return err
	}
	if frozen {
		return e.tokens.Freeze(collection, classID, id)
	}
	return e.tokens.Unfreeze(collection, classID, id)
}

// TokenURI resolves the metadata URI a token id would carry right now.
func (e *Engine) TokenURI(collection [20]byte, id uint64) (string, error) {
	if e == nil || e.state == nil {
		return "", ErrNilState
	}
	col, err := e.collection(collection)
	if err != nil {
		return "", err
	}
	return col.TokenURI(id), nil
}
