package launch

import (
	"math/big"

	"github.com/holiman/uint256"
)

// priceScale is the fixed-point unit for per-unit prices returned by
// currentPrice.
var priceScale = uint256.NewInt(1e18)

// PriceScale exposes the fixed-point denominator used by price quotes.
func PriceScale() *big.Int {
	return priceScale.ToBig()
}

// curveReserves derives the effective constant-product reserves for a record:
// the virtual base reserve offset by the accumulated real reserve, and the
// virtual unit reserve reduced by the units already issued. Returns false when
// the record state cannot produce a meaningful curve (unit side exhausted or
// values out of range).
func curveReserves(record *TokenRecord, p *Params) (plsReserve, tokenReserve *uint256.Int, ok bool) {
	if record == nil || p == nil {
		return nil, nil, false
	}
	vBase, overflow := uint256.FromBig(p.VirtualBaseReserve)
	if overflow || vBase.IsZero() {
		return nil, nil, false
	}
	vUnits, overflow := uint256.FromBig(p.VirtualUnitReserve)
	if overflow || vUnits.IsZero() {
		return nil, nil, false
	}
	reserve := uint256.NewInt(0)
	if record.ReserveBalance != nil && record.ReserveBalance.Sign() > 0 {
		if reserve, overflow = uint256.FromBig(record.ReserveBalance); overflow {
			return nil, nil, false
		}
	}
	issued := uint256.NewInt(0)
	if record.UnitsIssued != nil && record.UnitsIssued.Sign() > 0 {
		if issued, overflow = uint256.FromBig(record.UnitsIssued); overflow {
			return nil, nil, false
		}
	}
	if issued.Cmp(vUnits) >= 0 {
		return nil, nil, false
	}
	plsReserve = new(uint256.Int).Add(vBase, reserve)
	tokenReserve = new(uint256.Int).Sub(vUnits, issued)
	return plsReserve, tokenReserve, true
}

// quoteBuy prices a buy of netIn base currency against the record's curve.
// The invariant product k is held constant across the quote; division
// truncates, biasing the output in the protocol's favour. The result is
// capped at the unissued remainder of MaxSupply. Returns zero for non-Live
// records or non-positive input.
func quoteBuy(record *TokenRecord, p *Params, baseIn *big.Int) *big.Int {
	if record == nil || record.Status != StatusLive {
		return big.NewInt(0)
	}
	if baseIn == nil || baseIn.Sign() <= 0 {
		return big.NewInt(0)
	}
	plsReserve, tokenReserve, ok := curveReserves(record, p)
	if !ok {
		return big.NewInt(0)
	}
	in, overflow := uint256.FromBig(baseIn)
	if overflow {
		return big.NewInt(0)
	}
	k := new(uint256.Int).Mul(plsReserve, tokenReserve)
	newPlsReserve := new(uint256.Int).Add(plsReserve, in)
	newTokenReserve := new(uint256.Int).Div(k, newPlsReserve)
	if newTokenReserve.Cmp(tokenReserve) >= 0 {
		return big.NewInt(0)
	}
	unitsOut := new(uint256.Int).Sub(tokenReserve, newTokenReserve)

	remaining := remainingSupply(record, p)
	if remaining == nil {
		return big.NewInt(0)
	}
	out := unitsOut.ToBig()
	if out.Cmp(remaining) > 0 {
		out = remaining
	}
	return out
}

// quoteSell prices a sell of unitsIn against the record's curve, symmetric to
// quoteBuy. The payout is capped at the real accumulated reserve so virtual
// liquidity can never be withdrawn. Returns zero for non-Live records,
// non-positive input, or unitsIn exceeding the units in circulation.
func quoteSell(record *TokenRecord, p *Params, unitsIn *big.Int) *big.Int {
	if record == nil || record.Status != StatusLive {
		return big.NewInt(0)
	}
	if unitsIn == nil || unitsIn.Sign() <= 0 {
		return big.NewInt(0)
	}
	if record.UnitsIssued == nil || unitsIn.Cmp(record.UnitsIssued) > 0 {
		return big.NewInt(0)
	}
	plsReserve, tokenReserve, ok := curveReserves(record, p)
	if !ok {
		return big.NewInt(0)
	}
	in, overflow := uint256.FromBig(unitsIn)
	if overflow {
		return big.NewInt(0)
	}
	k := new(uint256.Int).Mul(plsReserve, tokenReserve)
	newTokenReserve := new(uint256.Int).Add(tokenReserve, in)
	newPlsReserve := new(uint256.Int).Div(k, newTokenReserve)
	if newPlsReserve.Cmp(plsReserve) >= 0 {
		return big.NewInt(0)
	}
	baseOut := new(uint256.Int).Sub(plsReserve, newPlsReserve)

	out := baseOut.ToBig()
	if record.ReserveBalance == nil {
		return big.NewInt(0)
	}
	if out.Cmp(record.ReserveBalance) > 0 {
		out = new(big.Int).Set(record.ReserveBalance)
	}
	return out
}

// currentPrice returns the instantaneous per-unit price in PriceScale fixed
// point. Zero when the curve state is unusable.
func currentPrice(record *TokenRecord, p *Params) *big.Int {
	plsReserve, tokenReserve, ok := curveReserves(record, p)
	if !ok || tokenReserve.IsZero() {
		return big.NewInt(0)
	}
	price := new(uint256.Int).Mul(plsReserve, priceScale)
	price.Div(price, tokenReserve)
	return price.ToBig()
}

// remainingSupply returns MaxSupply minus the units already issued, floored
// at zero.
func remainingSupply(record *TokenRecord, p *Params) *big.Int {
	if p == nil || p.MaxSupply == nil {
		return nil
	}
	issued := big.NewInt(0)
	if record != nil && record.UnitsIssued != nil {
		issued = record.UnitsIssued
	}
	remaining := new(big.Int).Sub(p.MaxSupply, issued)
	if remaining.Sign() < 0 {
		return big.NewInt(0)
	}
	return remaining
}
