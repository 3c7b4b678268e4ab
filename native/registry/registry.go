package registry

import (
	"encoding/binary"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"proptix/core/events"
	nativecommon "proptix/native/common"
	"proptix/native/sale"
	"proptix/native/token"
)

const moduleName = "registry"

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

// SaleEngine is the slice of the sale engine the registry drives: instance
// initialisation plus the owner-authorised pass-through operations.
type SaleEngine interface {
	InitCollection(col *sale.Collection) error
	SetWhitelist(collection, caller, account [20]byte, eligible bool) error
	SetBaseURI(collection, caller [20]byte, uri string, revealed bool) error
}

// ClassIssuer issues the token class backing a freshly deployed collection.
type ClassIssuer interface {
	IssueClass(issuer [20]byte, def token.ClassDefinition) (string, error)
}

// Registry tracks which sale-engine instances each owner has deployed and
// resolves collection names to engine addresses for pass-through calls.
type Registry struct {
	st       registryState
	engine   SaleEngine
	tokens   ClassIssuer
	emitter  events.Emitter
	pauses   nativecommon.PauseView
	protocol [20]byte
}

// NewRegistry creates a registry backed by the provided state manager.
func NewRegistry(st registryState, engine SaleEngine, tokens ClassIssuer) *Registry {
	return &Registry{st: st, engine: engine, tokens: tokens, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used to broadcast deployments.
// Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetPauses wires the module pause view consulted before mutations.
func (r *Registry) SetPauses(p nativecommon.PauseView) {
	if r == nil {
		return
	}
	r.pauses = p
}

// SetProtocolAddress configures the protocol fee recipient stamped into every
// deployed collection.
func (r *Registry) SetProtocolAddress(addr [20]byte) { r.protocol = addr }

func nameKey(name string) []byte {
	return []byte("registry/name/" + strings.ToLower(name))
}

func ownerKey(owner [20]byte) []byte {
	return append([]byte("registry/owner/"), owner[:]...)
}

func nonceKey(owner [20]byte) []byte {
	return append([]byte("registry/nonce/"), owner[:]...)
}

var allKey = []byte("registry/all")

// deriveAddress computes the deterministic engine address for the owner's
// n-th deployment.
func deriveAddress(owner [20]byte, nonce uint64) [20]byte {
	buf := make([]byte, len(owner)+8)
	copy(buf, owner[:])
	binary.BigEndian.PutUint64(buf[len(owner):], nonce)
	var addr [20]byte
	copy(addr[:], ethcrypto.Keccak256(buf)[12:])
	return addr
}

// CreateCollection validates the configuration, deploys a new sale-engine
// instance and records it in the caller's and the global deployment indexes.
func (r *Registry) CreateCollection(caller [20]byte, dep sale.DeploymentConfig, run sale.RuntimeConfig) ([20]byte, error) {
	var zero [20]byte
	if r == nil || r.st == nil || r.engine == nil || r.tokens == nil {
		return zero, ErrNilState
	}
	if err := nativecommon.Guard(r.pauses, moduleName); err != nil {
		return zero, err
	}
	if err := dep.Validate(); err != nil {
		return zero, err
	}
	if err := run.Validate(); err != nil {
		return zero, err
	}
	name := strings.TrimSpace(dep.Name)
	if ok, err := r.st.KVGet(nameKey(name), nil); err != nil {
		return zero, err
	} else if ok {
		return zero, fmt.Errorf("%w: collection name %q already in use", sale.ErrInvalidConfig, name)
	}

	var nonce uint64
	if _, err := r.st.KVGet(nonceKey(caller), &nonce); err != nil {
		return zero, err
	}
	addr := deriveAddress(caller, nonce)
	if err := r.st.KVPut(nonceKey(caller), nonce+1); err != nil {
		return zero, err
	}

	col := sale.NewCollection(addr, caller, r.protocol, dep, run)
	classID, err := r.tokens.IssueClass(addr, token.ClassDefinition{
		Name:   col.Name,
		Symbol: col.Symbol,
		URI:    col.BaseTokenURI,
	})
	if err != nil {
		return zero, err
	}
	col.ClassID = classID
	if err := r.engine.InitCollection(col); err != nil {
		return zero, err
	}

	if err := r.st.KVPut(nameKey(name), addr[:]); err != nil {
		return zero, err
	}
	if err := r.st.KVAppend(ownerKey(caller), addr[:]); err != nil {
		return zero, err
	}
	if err := r.st.KVAppend(allKey, addr[:]); err != nil {
		return zero, err
	}

	r.emitter.Emit(events.CollectionCreated{Owner: caller, Collection: addr, Name: name, ClassID: classID})
	return addr, nil
}

// Resolve maps a collection name to its engine address.
func (r *Registry) Resolve(name string) ([20]byte, error) {
	var addr [20]byte
	if r == nil || r.st == nil {
		return addr, ErrNilState
	}
	var raw []byte
	ok, err := r.st.KVGet(nameKey(strings.TrimSpace(name)), &raw)
	if err != nil {
		return addr, err
	}
	if !ok || len(raw) != len(addr) {
		return addr, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	copy(addr[:], raw)
	return addr, nil
}

// SetBaseURI resolves the collection by name and forwards the update with the
// caller's authority.
func (r *Registry) SetBaseURI(caller [20]byte, collection, uri string, revealed bool) error {
	if r == nil || r.engine == nil {
		return ErrNilState
	}
	addr, err := r.Resolve(collection)
	if err != nil {
		return err
	}
	return r.engine.SetBaseURI(addr, caller, uri, revealed)
}

// SetWhitelist resolves the collection by name and forwards the eligibility
// update with the caller's authority.
func (r *Registry) SetWhitelist(caller [20]byte, collection string, user [20]byte, status bool) error {
	if r == nil || r.engine == nil {
		return ErrNilState
	}
	addr, err := r.Resolve(collection)
	if err != nil {
		return err
	}
	return r.engine.SetWhitelist(addr, caller, user, status)
}

// Deployed returns the caller's collections in deployment order.
func (r *Registry) Deployed(owner [20]byte) ([][20]byte, error) {
	if r == nil || r.st == nil {
		return nil, ErrNilState
	}
	return r.addressList(ownerKey(owner))
}

// LastDeployed returns the owner's most recent collection address, or false
// when the owner has deployed nothing.
func (r *Registry) LastDeployed(owner [20]byte) ([20]byte, bool, error) {
	var zero [20]byte
	deployed, err := r.Deployed(owner)
	if err != nil {
		return zero, false, err
	}
	if len(deployed) == 0 {
		return zero, false, nil
	}
	return deployed[len(deployed)-1], true, nil
}

// AllContracts returns every deployed collection across all owners in global
// deployment order.
func (r *Registry) AllContracts() ([][20]byte, error) {
	if r == nil || r.st == nil {
		return nil, ErrNilState
	}
	return r.addressList(allKey)
}

func (r *Registry) addressList(key []byte) ([][20]byte, error) {
	var raw [][]byte
	if err := r.st.KVGetList(key, &raw); err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(raw))
	for _, b := range raw {
		if len(b) != 20 {
			continue
		}
		var addr [20]byte
		copy(addr[:], b)
		out = append(out, addr)
	}
	return out, nil
}
