package types

import "math/big"

// Account tracks the base-currency position held by an address. Token unit
// balances live in the launch module's unit ledger, not here.
type Account struct {
	Nonce      uint64   `json:"nonce"`
	BalancePLS *big.Int `json:"balancePLS"`
}

// Clone returns a deep copy so callers cannot mutate shared balances.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.BalancePLS != nil {
		clone.BalancePLS = new(big.Int).Set(a.BalancePLS)
	}
	return &clone
}
