package launch

import (
	"fmt"
	"math/big"
)

// TokenStatus enumerates the lifecycle states of a curve-traded token.
type TokenStatus uint8

const (
	// StatusLive is the initial state; the token trades on the curve.
	StatusLive TokenStatus = iota
	// StatusGraduated is terminal; liquidity has moved to external pools.
	StatusGraduated
	// StatusDelisted is terminal; an administrator removed the token and
	// flushed its reserve to the treasury.
	StatusDelisted
	// StatusRugged is a reserved terminal state. No transition currently
	// produces it.
	StatusRugged
)

// String returns the canonical label for the status.
func (s TokenStatus) String() string {
	switch s {
	case StatusLive:
		return "live"
	case StatusGraduated:
		return "graduated"
	case StatusDelisted:
		return "delisted"
	case StatusRugged:
		return "rugged"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// TokenRecord is the per-token ledger entry. It is owned exclusively by the
// launch engine; ReserveBalance and UnitsIssued track the cumulative net base
// currency held against the token and the units in circulation via the curve.
// Virtual reserves are engine-wide parameters and are never stored here.
type TokenRecord struct {
	ID          uint64      `json:"id"`
	Address     [20]byte    `json:"address"`
	Creator     [20]byte    `json:"creator"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	MetadataURI string      `json:"metadataUri"`
	Status      TokenStatus `json:"status"`

	ReserveBalance *big.Int `json:"reserveBalance"`
	UnitsIssued    *big.Int `json:"unitsIssued"`

	// Informational counters; pricing logic never reads them.
	TradingVolume *big.Int `json:"tradingVolume"`
	TradeCount    uint64   `json:"tradeCount"`
	HolderCount   uint64   `json:"holderCount"`

	CreatedAt   int64 `json:"createdAt"`
	GraduatedAt int64 `json:"graduatedAt"`
}

// Clone returns a deep copy so callers cannot mutate ledger state in place.
func (r *TokenRecord) Clone() *TokenRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.ReserveBalance != nil {
		clone.ReserveBalance = new(big.Int).Set(r.ReserveBalance)
	}
	if r.UnitsIssued != nil {
		clone.UnitsIssued = new(big.Int).Set(r.UnitsIssued)
	}
	if r.TradingVolume != nil {
		clone.TradingVolume = new(big.Int).Set(r.TradingVolume)
	}
	return &clone
}

// TokenOverrides holds the sparse per-token parameter overrides. Nil fields
// fall back to the engine-wide params.
type TokenOverrides struct {
	BuyFeeBps           *uint32  `json:"buyFeeBps,omitempty"`
	SellFeeBps          *uint32  `json:"sellFeeBps,omitempty"`
	GraduationThreshold *big.Int `json:"graduationThreshold,omitempty"`
	LaunchFeePLS        *big.Int `json:"launchFeePls,omitempty"`
}

// Clone returns a deep copy of the override slots.
func (o *TokenOverrides) Clone() *TokenOverrides {
	if o == nil {
		return nil
	}
	clone := TokenOverrides{}
	if o.BuyFeeBps != nil {
		v := *o.BuyFeeBps
		clone.BuyFeeBps = &v
	}
	if o.SellFeeBps != nil {
		v := *o.SellFeeBps
		clone.SellFeeBps = &v
	}
	if o.GraduationThreshold != nil {
		clone.GraduationThreshold = new(big.Int).Set(o.GraduationThreshold)
	}
	if o.LaunchFeePLS != nil {
		clone.LaunchFeePLS = new(big.Int).Set(o.LaunchFeePLS)
	}
	return &clone
}

// Empty reports whether every override slot is unset.
func (o *TokenOverrides) Empty() bool {
	return o == nil || (o.BuyFeeBps == nil && o.SellFeeBps == nil && o.GraduationThreshold == nil && o.LaunchFeePLS == nil)
}

// PoolReceipt is the proof of a completed liquidity seeding returned by an
// external pool collaborator.
type PoolReceipt struct {
	Pool        string   `json:"pool"`
	Token       [20]byte `json:"token"`
	BaseSeeded  *big.Int `json:"baseSeeded"`
	UnitsSeeded *big.Int `json:"unitsSeeded"`
	Recipient   [20]byte `json:"recipient"`
}

// LiquidityPool is the capability consumed when graduating a token to
// permanent external liquidity. minRatioBps bounds how far below the nominal
// amounts the pool may settle before the seeding is rejected.
type LiquidityPool interface {
	Name() string
	SeedLiquidity(token [20]byte, amountBase, amountUnits *big.Int, minRatioBps uint32, recipient [20]byte) (*PoolReceipt, error)
}

// UnitIssuer is the token issuance/destruction primitive. The launch engine
// drives it during trades and graduation; the default implementation is the
// state manager's unit ledger.
type UnitIssuer interface {
	MintUnits(tokenID uint64, to [20]byte, amount *big.Int) error
	BurnUnits(tokenID uint64, from [20]byte, amount *big.Int) error
	UnitBalance(tokenID uint64, addr [20]byte) (*big.Int, error)
}

// TradeResult summarises a completed buy or sell.
type TradeResult struct {
	Token     *TokenRecord   `json:"token"`
	Gross     *big.Int       `json:"gross"`
	Fee       *big.Int       `json:"fee"`
	Net       *big.Int       `json:"net"`
	Units     *big.Int       `json:"units"`
	Graduated bool           `json:"graduated"`
	Receipts  []*PoolReceipt `json:"receipts,omitempty"`
}
