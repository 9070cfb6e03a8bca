package fees

import (
	"fmt"
	"math/big"
)

// Direction identifies which side of a curve trade a fee applies to.
type Direction uint8

const (
	// DirectionBuy charges the fee on the gross payment before the curve.
	DirectionBuy Direction = iota
	// DirectionSell charges the fee on the gross curve output after the curve.
	DirectionSell
)

// MaxFeeBps caps each configurable trade fee rate at 5%.
const MaxFeeBps = 500

// String returns the canonical label for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Policy captures the configured trade fee rates. Buy and sell sides are
// independently adjustable.
type Policy struct {
	BuyBps  uint32
	SellBps uint32
}

// Validate enforces the per-side rate cap.
func (p Policy) Validate() error {
	if p.BuyBps > MaxFeeBps {
		return fmt.Errorf("fees: buy rate %d bps exceeds cap %d", p.BuyBps, MaxFeeBps)
	}
	if p.SellBps > MaxFeeBps {
		return fmt.Errorf("fees: sell rate %d bps exceeds cap %d", p.SellBps, MaxFeeBps)
	}
	return nil
}

// RateFor resolves the basis-point rate configured for the direction.
func (p Policy) RateFor(d Direction) uint32 {
	if d == DirectionSell {
		return p.SellBps
	}
	return p.BuyBps
}

// ExemptionView reports whether an address has its trade fees waived.
type ExemptionView interface {
	IsFeeExempt(addr [20]byte) bool
}

// ApplyInput captures the context required to evaluate the fee owed on a
// single trade.
type ApplyInput struct {
	Gross     *big.Int
	Direction Direction
	Policy    Policy
	Exempt    bool
}

// ApplyResult summarises the computed fee and the resulting net amount.
type ApplyResult struct {
	Fee *big.Int
	Net *big.Int
}

// Apply evaluates the policy against the gross amount. The caller is
// responsible for routing the fee to the treasury. Division truncates, so the
// protocol never collects more than rate*gross/10000.
func Apply(input ApplyInput) ApplyResult {
	result := ApplyResult{Fee: big.NewInt(0)}
	if input.Gross != nil {
		result.Net = new(big.Int).Set(input.Gross)
	} else {
		result.Net = big.NewInt(0)
	}
	if result.Net.Sign() <= 0 {
		result.Net = big.NewInt(0)
		return result
	}
	if input.Exempt {
		return result
	}
	rate := input.Policy.RateFor(input.Direction)
	if rate == 0 {
		return result
	}
	fee := new(big.Int).Mul(result.Net, big.NewInt(int64(rate)))
	fee = fee.Div(fee, big.NewInt(10_000))
	if fee.Sign() <= 0 {
		return result
	}
	if fee.Cmp(result.Net) >= 0 {
		result.Fee = new(big.Int).Set(result.Net)
		result.Net = big.NewInt(0)
		return result
	}
	result.Fee = fee
	result.Net = new(big.Int).Sub(result.Net, fee)
	return result
}
