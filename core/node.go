package core

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"

	"proptix/core/events"
	"proptix/core/state"
	"proptix/core/types"
	"proptix/native/registry"
	"proptix/native/sale"
	"proptix/native/token"
	"proptix/observability/metrics"
	"proptix/storage"
)

// payloadEvent is satisfied by every typed event that can render itself as an
// attribute map.
type payloadEvent interface {
	events.Event
	Event() *types.Event
}

type pauseSet map[string]bool

func (p pauseSet) IsPaused(module string) bool { return p[module] }

// Options tunes node construction.
type Options struct {
	// ProtocolAddress receives the protocol share of every fee split.
	ProtocolAddress [20]byte
	// PausedModules disables mutating calls for the named native modules.
	PausedModules []string
	// NowFn overrides the engine time source, mainly for tests.
	NowFn func() int64
}

// Node owns the state manager and the native engines. It serializes all
// mutating calls and wraps each message in the state manager's commit/reset
// pair so every request is atomic: full success or no observable effect,
// events included.
type Node struct {
	mu       sync.RWMutex
	db       storage.Database
	state    *state.Manager
	tokens   *token.Registry
	sale     *sale.Engine
	registry *registry.Registry
	metrics  *metrics.SaleMetrics

	pending  []types.Event
	eventLog []types.Event
}

// NewNode wires the engines against the provided database.
func NewNode(db storage.Database, opts Options) *Node {
	n := &Node{db: db, metrics: metrics.Sale()}
	n.state = state.NewManager(db)

	paused := make(pauseSet, len(opts.PausedModules))
	for _, module := range opts.PausedModules {
		paused[module] = true
	}

	n.tokens = token.NewRegistry(n.state)
	n.tokens.SetEmitter(n)

	n.sale = sale.NewEngine()
	n.sale.SetState(n.state)
	n.sale.SetTokenRegistry(n.tokens)
	n.sale.SetEmitter(n)
	n.sale.SetPauses(paused)
	if opts.NowFn != nil {
		n.sale.SetNowFunc(opts.NowFn)
	}

	n.registry = registry.NewRegistry(n.state, n.sale, n.tokens)
	n.registry.SetEmitter(n)
	n.registry.SetPauses(paused)
	n.registry.SetProtocolAddress(opts.ProtocolAddress)

	return n
}

// Emit implements events.Emitter. Events buffer alongside the state overlay
// and only reach the log when the surrounding message commits.
func (n *Node) Emit(evt events.Event) {
	payload, ok := evt.(payloadEvent)
	if !ok {
		return
	}
	if rendered := payload.Event(); rendered != nil {
		n.pending = append(n.pending, *rendered)
	}
}

// apply runs a mutating handler inside the commit/reset transaction.
func (n *Node) apply(handler func() (*types.Response, error)) (*types.Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = n.pending[:0]
	resp, err := handler()
	if err != nil {
		n.state.Reset()
		n.pending = n.pending[:0]
		return nil, err
	}
	if err := n.state.Commit(); err != nil {
		n.state.Reset()
		n.pending = n.pending[:0]
		return nil, err
	}
	n.eventLog = append(n.eventLog, n.pending...)
	n.pending = n.pending[:0]
	return resp, nil
}

// ApplySaleMsg executes a mutating sale-engine message.
func (n *Node) ApplySaleMsg(collection, caller [20]byte, msg interface{}) (*types.Response, error) {
	resp, err := n.apply(func() (*types.Response, error) {
		return n.sale.HandleMsg(collection, caller, msg)
	})
	if purchase, ok := msg.(sale.MsgPurchase); ok {
		if err != nil {
			n.metrics.ObserveRejectedPurchase(rejectReason(err))
		} else {
			n.metrics.ObservePurchase(purchase.Count)
		}
	}
	return resp, err
}

// ApplyRegistryMsg executes a mutating collection-registry message.
func (n *Node) ApplyRegistryMsg(caller [20]byte, msg interface{}) (*types.Response, error) {
	resp, err := n.apply(func() (*types.Response, error) {
		return n.registry.HandleMsg(caller, msg)
	})
	if _, ok := msg.(registry.MsgCreateCollection); ok && err == nil {
		n.metrics.ObserveDeployment()
	}
	return resp, err
}

// Deposit reconciles funds into a collection's internal ledger. Dev and
// operational tooling entry point; real asset custody stays external.
func (n *Node) Deposit(collection, account [20]byte, amount *uint256.Int) error {
	_, err := n.apply(func() (*types.Response, error) {
		if err := n.sale.Deposit(collection, account, amount); err != nil {
			return nil, err
		}
		return types.NewResponse("deposit"), nil
	})
	return err
}

// TransferToken moves a token between owners through the token registry.
func (n *Node) TransferToken(caller [20]byte, classID, id string, recipient [20]byte) error {
	_, err := n.apply(func() (*types.Response, error) {
		if err := n.tokens.Transfer(caller, classID, id, recipient); err != nil {
			return nil, err
		}
		return types.NewResponse("transfer"), nil
	})
	return err
}

// --- Read-only queries ---

// Collection returns the persisted sale state for an engine address.
func (n *Node) Collection(addr [20]byte) (*sale.Collection, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sale.Collection(addr)
}

// BalanceOf returns an internal ledger balance.
func (n *Node) BalanceOf(collection, account [20]byte) (*uint256.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sale.BalanceOf(collection, account)
}

// IsWhitelisted reports purchase eligibility.
func (n *Node) IsWhitelisted(collection, account [20]byte) (bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sale.IsWhitelisted(collection, account)
}

// ClassInfo returns a token class by identifier.
func (n *Node) ClassInfo(classID string) (*token.Class, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tokens.Class(classID)
}

// TokenInfo returns a token by class and identifier.
func (n *Node) TokenInfo(classID, id string) (*token.Token, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tokens.Token(classID, id)
}

// OwnerTokens pages through the token references held by an owner.
func (n *Node) OwnerTokens(owner [20]byte, startAfter string, limit uint32) ([]string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tokens.OwnerTokens(owner, startAfter, limit)
}

// Deployed returns an owner's collections in deployment order.
func (n *Node) Deployed(owner [20]byte) ([][20]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.Deployed(owner)
}

// LastDeployed returns an owner's most recent collection.
func (n *Node) LastDeployed(owner [20]byte) ([20]byte, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.LastDeployed(owner)
}

// AllContracts returns the global deployment sequence.
func (n *Node) AllContracts() ([][20]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.AllContracts()
}

// ResolveCollection maps a collection name to its engine address.
func (n *Node) ResolveCollection(name string) ([20]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.Resolve(name)
}

// Events returns the most recent committed events, newest last.
func (n *Node) Events(limit int) []types.Event {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if limit <= 0 || limit > len(n.eventLog) {
		limit = len(n.eventLog)
	}
	out := make([]types.Event, limit)
	copy(out, n.eventLog[len(n.eventLog)-limit:])
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, sale.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, sale.ErrSaleNotActive):
		return "sale_not_active"
	case errors.Is(err, sale.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, sale.ErrSupplyExhausted):
		return "supply_exhausted"
	case errors.Is(err, sale.ErrValueOverflow):
		return "overflow"
	default:
		return "other"
	}
}
