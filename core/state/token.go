package state

import (
	"sort"

	"proptix/native/token"
)

// Typed accessors backing the token registry's state interface.

func tokenClassKey(classID string) []byte {
	return appendString(append([]byte(nil), tokenClassPrefix...), classID)
}

func tokenItemKey(classID, id string) []byte {
	buf := appendString(append([]byte(nil), tokenItemPrefix...), classID)
	return appendString(buf, id)
}

func tokenBurnedKey(classID, id string) []byte {
	buf := appendString(append([]byte(nil), tokenBurnedPrefix...), classID)
	return appendString(buf, id)
}

func tokenOwnerKey(owner [20]byte) []byte {
	return appendAddr(append([]byte(nil), tokenOwnerPrefix...), owner)
}

func (m *Manager) TokenClassGet(classID string) (*token.Class, bool, error) {
	class := new(token.Class)
	ok, err := m.KVGet(tokenClassKey(classID), class)
	if err != nil || !ok {
		return nil, false, err
	}
	return class, true, nil
}

func (m *Manager) TokenClassPut(class *token.Class) error {
	return m.KVPut(tokenClassKey(class.ID), class)
}

func (m *Manager) TokenGet(classID, id string) (*token.Token, bool, error) {
	tok := new(token.Token)
	ok, err := m.KVGet(tokenItemKey(classID, id), tok)
	if err != nil || !ok {
		return nil, false, err
	}
	return tok, true, nil
}

func (m *Manager) TokenPut(tok *token.Token) error {
	return m.KVPut(tokenItemKey(tok.ClassID, tok.ID), tok)
}

func (m *Manager) TokenDelete(classID, id string) error {
	return m.KVDelete(tokenItemKey(classID, id))
}

// TokenBurnedMark tombstones a token id so it can never be minted again.
func (m *Manager) TokenBurnedMark(classID, id string) error {
	return m.KVPut(tokenBurnedKey(classID, id), true)
}

func (m *Manager) TokenBurnedHas(classID, id string) (bool, error) {
	return m.KVGet(tokenBurnedKey(classID, id), nil)
}

// TokenOwnerIndexAdd records a token reference under its owner. The list is
// kept sorted so pagination stays deterministic.
func (m *Manager) TokenOwnerIndexAdd(owner [20]byte, ref string) error {
	var refs []string
	if err := m.KVGetList(tokenOwnerKey(owner), &refs); err != nil {
		return err
	}
	for _, existing := range refs {
		if existing == ref {
			return nil
		}
	}
	refs = append(refs, ref)
	sort.Strings(refs)
	return m.KVPut(tokenOwnerKey(owner), refs)
}

func (m *Manager) TokenOwnerIndexRemove(owner [20]byte, ref string) error {
	var refs []string
	if err := m.KVGetList(tokenOwnerKey(owner), &refs); err != nil {
		return err
	}
	filtered := refs[:0]
	for _, existing := range refs {
		if existing != ref {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == len(refs) {
		return nil
	}
	return m.KVPut(tokenOwnerKey(owner), filtered)
}

func (m *Manager) TokenOwnerIndexList(owner [20]byte) ([]string, error) {
	var refs []string
	if err := m.KVGetList(tokenOwnerKey(owner), &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
