package state

import (
	"github.com/holiman/uint256"

	"proptix/native/sale"
)

// Typed accessors backing the sale engine's state interface.

func saleCollectionKey(addr [20]byte) []byte {
	return appendAddr(append([]byte(nil), saleCollectionPrefix...), addr)
}

func saleWhitelistKey(collection, account [20]byte) []byte {
	buf := appendAddr(append([]byte(nil), saleWhitelistPrefix...), collection)
	return appendAddr(buf, account)
}

func saleTokenWhitelistKey(collection [20]byte, classID, tokenID string, account [20]byte) []byte {
	buf := appendAddr(append([]byte(nil), saleTokenWhitelistPrefix...), collection)
	buf = appendString(buf, classID)
	buf = appendString(buf, tokenID)
	return appendAddr(buf, account)
}

func saleBalanceKey(collection, account [20]byte) []byte {
	buf := appendAddr(append([]byte(nil), saleBalancePrefix...), collection)
	return appendAddr(buf, account)
}

func (m *Manager) SaleCollectionGet(collection [20]byte) (*sale.Collection, bool, error) {
	col := new(sale.Collection)
	ok, err := m.KVGet(saleCollectionKey(collection), col)
	if err != nil || !ok {
		return nil, false, err
	}
	return col, true, nil
}

func (m *Manager) SaleCollectionPut(col *sale.Collection) error {
	return m.KVPut(saleCollectionKey(col.Address), col)
}

// SaleWhitelistGet reads an account's purchase eligibility; a missing entry is
// equivalent to false.
func (m *Manager) SaleWhitelistGet(collection, account [20]byte) (bool, error) {
	var eligible bool
	ok, err := m.KVGet(saleWhitelistKey(collection, account), &eligible)
	if err != nil || !ok {
		return false, err
	}
	return eligible, nil
}

// SaleWhitelistPut stores eligibility. Revoked entries are deleted so absence
// stays the canonical "false".
func (m *Manager) SaleWhitelistPut(collection, account [20]byte, eligible bool) error {
	key := saleWhitelistKey(collection, account)
	if !eligible {
		return m.KVDelete(key)
	}
	return m.KVPut(key, true)
}

func (m *Manager) SaleTokenWhitelistGet(collection [20]byte, classID, tokenID string, account [20]byte) (bool, error) {
	var eligible bool
	ok, err := m.KVGet(saleTokenWhitelistKey(collection, classID, tokenID, account), &eligible)
	if err != nil || !ok {
		return false, err
	}
	return eligible, nil
}

func (m *Manager) SaleTokenWhitelistPut(collection [20]byte, classID, tokenID string, account [20]byte, eligible bool) error {
	key := saleTokenWhitelistKey(collection, classID, tokenID, account)
	if !eligible {
		return m.KVDelete(key)
	}
	return m.KVPut(key, true)
}

// SaleBalanceGet reads an internal ledger balance, zero for unknown accounts.
func (m *Manager) SaleBalanceGet(collection, account [20]byte) (*uint256.Int, error) {
	balance := new(uint256.Int)
	ok, err := m.KVGet(saleBalanceKey(collection, account), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	return balance, nil
}

func (m *Manager) SaleBalancePut(collection, account [20]byte, amount *uint256.Int) error {
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	return m.KVPut(saleBalanceKey(collection, account), amount)
}
