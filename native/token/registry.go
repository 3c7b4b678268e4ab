package token

import (
	"fmt"
	"sort"
	"strings"

	"proptix/core/events"
)

type registryState interface {
	TokenClassGet(classID string) (*Class, bool, error)
	TokenClassPut(class *Class) error
	TokenGet(classID, id string) (*Token, bool, error)
	TokenPut(tok *Token) error
	TokenDelete(classID, id string) error
	TokenBurnedMark(classID, id string) error
	TokenBurnedHas(classID, id string) (bool, error)
	TokenOwnerIndexAdd(owner [20]byte, ref string) error
	TokenOwnerIndexRemove(owner [20]byte, ref string) error
	TokenOwnerIndexList(owner [20]byte) ([]string, error)
}

// Registry owns token identity, ownership and freeze state. The sale engine
// drives it through a narrow capability interface and never touches its
// storage directly.
type Registry struct {
	st      registryState
	emitter events.Emitter
}

// NewRegistry creates a registry backed by the provided state manager.
func NewRegistry(st registryState) *Registry {
	return &Registry{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used to broadcast token activity.
// Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// IssueClass registers a new token class for the issuer and returns its
// identifier. Identifiers are deterministic, so reissuing the same symbol from
// the same address fails with ErrClassExists.
func (r *Registry) IssueClass(issuer [20]byte, def ClassDefinition) (string, error) {
	if r == nil || r.st == nil {
		return "", ErrNilState
	}
	name := strings.TrimSpace(def.Name)
	symbol := strings.TrimSpace(def.Symbol)
	if name == "" || symbol == "" {
		return "", fmt.Errorf("%w: name and symbol required", ErrInvalidClass)
	}
	classID := BuildClassID(symbol, issuer)
	if _, ok, err := r.st.TokenClassGet(classID); err != nil {
		return "", err
	} else if ok {
		return "", fmt.Errorf("%w: %s", ErrClassExists, classID)
	}
	class := &Class{
		ID:          classID,
		Name:        name,
		Symbol:      symbol,
		Description: strings.TrimSpace(def.Description),
		URI:         strings.TrimSpace(def.URI),
		URIHash:     strings.TrimSpace(def.URIHash),
		Data:        append([]byte(nil), def.Data...),
		Features:    append([]uint32(nil), def.Features...),
		RoyaltyRate: strings.TrimSpace(def.RoyaltyRate),
		Issuer:      issuer,
	}
	if err := r.st.TokenClassPut(class); err != nil {
		return "", err
	}
	r.emitter.Emit(events.TokenClassIssued{ClassID: classID, Issuer: issuer, Name: name, Symbol: symbol})
	return classID, nil
}

// Mint creates a new token in the caller's class. Only the class issuer may
// mint, and identifiers of burned tokens are never reissued.
func (r *Registry) Mint(caller [20]byte, spec MintSpec) error {
	if r == nil || r.st == nil {
		return ErrNilState
	}
	class, err := r.requireClass(spec.ClassID)
	if err != nil {
		return err
	}
	if class.Issuer != caller {
		return fmt.Errorf("%w: only class issuer may mint", ErrUnauthorized)
	}
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return fmt.Errorf("%w: token id required", ErrTokenNotFound)
	}
	if burned, err := r.st.TokenBurnedHas(spec.ClassID, id); err != nil {
		return err
	} else if burned {
		return fmt.Errorf("%w: %s/%s", ErrTokenBurned, spec.ClassID, id)
	}
	if _, ok, err := r.st.TokenGet(spec.ClassID, id); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s/%s", ErrTokenExists, spec.ClassID, id)
	}
	tok := &Token{
		ClassID: spec.ClassID,
		ID:      id,
		Owner:   spec.Owner,
		URI:     strings.TrimSpace(spec.URI),
		URIHash: strings.TrimSpace(spec.URIHash),
		Data:    append([]byte(nil), spec.Data...),
	}
	if err := r.st.TokenPut(tok); err != nil {
		return err
	}
	if err := r.st.TokenOwnerIndexAdd(spec.Owner, TokenRef(spec.ClassID, id)); err != nil {
		return err
	}
	r.emitter.Emit(events.TokenMinted{ClassID: spec.ClassID, TokenID: id, Owner: spec.Owner, URI: tok.URI})
	return nil
}

// Burn destroys a token. The class issuer or the current token owner may burn;
// the identifier is tombstoned so it can never be minted again.
func (r *Registry) Burn(caller [20]byte, classID, id string) error {
	if r == nil || r.st == nil {
		return ErrNilState
	}
	class, err := r.requireClass(classID)
	if err != nil {
		return err
	}
	tok, err := r.requireToken(classID, id)
	if err != nil {
		return err
	}
	if caller != class.Issuer && caller != tok.Owner {
		return fmt.Errorf("%w: only issuer or owner may burn", ErrUnauthorized)
	}
	if err := r.st.TokenDelete(classID, tok.ID); err != nil {
		return err
	}
	if err := r.st.TokenBurnedMark(classID, tok.ID); err != nil {
		return err
	}
	if err := r.st.TokenOwnerIndexRemove(tok.Owner, TokenRef(classID, tok.ID)); err != nil {
		return err
	}
	r.emitter.Emit(events.TokenBurned{ClassID: classID, TokenID: tok.ID})
	return nil
}

// Freeze marks a token as non-transferable. Issuer only.
func (r *Registry) Freeze(caller [20]byte, classID, id string) error {
	return r.setFrozen(caller, classID, id, true)
}

// Unfreeze lifts a previous freeze. Issuer only.
func (r *Registry) Unfreeze(caller [20]byte, classID, id string) error {
	return r.setFrozen(caller, classID, id, false)
}

func (r *Registry) setFrozen(caller [20]byte, classID, id string, frozen bool) error {
	if r == nil || r.st == nil {
		return ErrNilState
	}
	class, err := r.requireClass(classID)
	if err != nil {
		return err
	}
	if class.Issuer != caller {
		return fmt.Errorf("%w: only class issuer may freeze", ErrUnauthorized)
	}
	tok, err := r.requireToken(classID, id)
	if err != nil {
		return err
	}
	if tok.Frozen == frozen {
		return nil
	}
	tok.Frozen = frozen
	if err := r.st.TokenPut(tok); err != nil {
		return err
	}
	r.emitter.Emit(events.TokenFrozen{ClassID: classID, TokenID: tok.ID, Frozen: frozen})
	return nil
}

// Transfer moves a token to a new owner. The current owner must be the caller
// and the token must not be frozen.
func (r *Registry) Transfer(caller [20]byte, classID, id string, recipient [20]byte) error {
	if r == nil || r.st == nil {
		return ErrNilState
	}
	tok, err := r.requireToken(classID, id)
	if err != nil {
		return err
	}
	if tok.Owner != caller {
		return fmt.Errorf("%w: only token owner may transfer", ErrUnauthorized)
	}
	if tok.Frozen {
		return fmt.Errorf("%w: %s/%s", ErrTokenFrozen, classID, tok.ID)
	}
	if tok.Owner == recipient {
		return nil
	}
	previous := tok.Owner
	tok.Owner = recipient
	if err := r.st.TokenPut(tok); err != nil {
		return err
	}
	if err := r.st.TokenOwnerIndexRemove(previous, TokenRef(classID, tok.ID)); err != nil {
		return err
	}
	if err := r.st.TokenOwnerIndexAdd(recipient, TokenRef(classID, tok.ID)); err != nil {
		return err
	}
	r.emitter.Emit(events.TokenTransferred{ClassID: classID, TokenID: tok.ID, Sender: previous, Recipient: recipient})
	return nil
}

// Class retrieves a class by its identifier.
func (r *Registry) Class(classID string) (*Class, bool, error) {
	if r == nil || r.st == nil {
		return nil, false, ErrNilState
	}
	return r.st.TokenClassGet(classID)
}

// Token retrieves a token by class and identifier.
func (r *Registry) Token(classID, id string) (*Token, bool, error) {
	if r == nil || r.st == nil {
		return nil, false, ErrNilState
	}
	return r.st.TokenGet(classID, strings.TrimSpace(id))
}

// OwnerTokens lists the token references held by an address in lexicographic
// order, starting after the provided cursor. A zero limit selects the default
// page size; requests above the cap are clamped.
func (r *Registry) OwnerTokens(owner [20]byte, startAfter string, limit uint32) ([]string, error) {
	if r == nil || r.st == nil {
		return nil, ErrNilState
	}
	refs, err := r.st.TokenOwnerIndexList(owner)
	if err != nil {
		return nil, err
	}
	sort.Strings(refs)
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := make([]string, 0, limit)
	for _, ref := range refs {
		if startAfter != "" && ref <= startAfter {
			continue
		}
		page = append(page, ref)
		if uint32(len(page)) == limit {
			break
		}
	}
	return page, nil
}

func (r *Registry) requireClass(classID string) (*Class, error) {
	class, ok, err := r.st.TokenClassGet(classID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}
	return class, nil
}

func (r *Registry) requireToken(classID, id string) (*Token, error) {
	tok, ok, err := r.st.TokenGet(classID, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrTokenNotFound, classID, id)
	}
	return tok, nil
}
