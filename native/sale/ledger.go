package sale

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Ledger is the internal, per-collection fund bookkeeping layer. It is the
// sole source of truth for "funds available to spend" during a purchase and is
// independent of any externally custodied balance.
type Ledger struct {
	st         engineState
	collection [20]byte
}

// BalanceOf returns the stored balance, zero for unknown accounts.
func (l Ledger) BalanceOf(account [20]byte) (*uint256.Int, error) {
	return l.st.SaleBalanceGet(l.collection, account)
}

// Credit adds amount to the stored balance.
func (l Ledger) Credit(account [20]byte, amount *uint256.Int) error {
	balance, err := l.st.SaleBalanceGet(l.collection, account)
	if err != nil {
		return err
	}
	updated, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return fmt.Errorf("%w: ledger credit", ErrValueOverflow)
	}
	return l.st.SaleBalancePut(l.collection, account, updated)
}

// Debit subtracts amount from the stored balance, rejecting any underflow so
// balances can never go negative.
func (l Ledger) Debit(account [20]byte, amount *uint256.Int) error {
	balance, err := l.st.SaleBalanceGet(l.collection, account)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, balance.Dec(), amount.Dec())
	}
	return l.st.SaleBalancePut(l.collection, account, new(uint256.Int).Sub(balance, amount))
}
