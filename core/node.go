package core

import (
	"errors"
	"math/big"
	"sync"

	"curvelaunch/core/events"
	"curvelaunch/native/launch"
	"curvelaunch/observability/metrics"
)

// Node is the serialization boundary in front of the launch engine. Engine
// operations mutate several keys per call, so writers hold the exclusive lock
// and readers share it; the engine itself only ever sees one operation at a
// time.
type Node struct {
	mu      sync.RWMutex
	engine  *launch.Engine
	hub     *events.Hub
	metrics *metrics.Launch
}

// NewNode wires the engine to the event hub and optional metrics.
func NewNode(engine *launch.Engine, hub *events.Hub, m *metrics.Launch) *Node {
	if hub == nil {
		hub = events.NewHub(0)
	}
	engine.SetEmitter(hub)
	return &Node{engine: engine, hub: hub, metrics: m}
}

// Hub exposes the event hub for streaming subscribers.
func (n *Node) Hub() *events.Hub { return n.hub }

func errKind(err error) string {
	switch {
	case errors.Is(err, launch.ErrPaused):
		return "paused"
	case errors.Is(err, launch.ErrUnknownToken):
		return "unknown_token"
	case errors.Is(err, launch.ErrNotLive):
		return "not_live"
	case errors.Is(err, launch.ErrAlreadyGraduated):
		return "already_graduated"
	case errors.Is(err, launch.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, launch.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, launch.ErrSlippageExceeded):
		return "slippage_exceeded"
	case errors.Is(err, launch.ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, launch.ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, launch.ErrReentrancy):
		return "reentrancy"
	default:
		return "internal"
	}
}

// Launch creates a new curve-traded token.
func (n *Node) Launch(creator [20]byte, name, symbol, metadataURI string) (*launch.TokenRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	record, err := n.engine.Launch(creator, name, symbol, metadataURI)
	if err != nil {
		n.metrics.TradeError(errKind(err))
		return nil, err
	}
	n.metrics.TokenLaunched()
	return record, nil
}

// Buy executes a curve purchase.
func (n *Node) Buy(buyer [20]byte, id uint64, baseIn, minUnitsOut *big.Int) (*launch.TradeResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result, err := n.engine.Buy(buyer, id, baseIn, minUnitsOut)
	if err != nil {
		n.metrics.TradeError(errKind(err))
		return nil, err
	}
	n.metrics.Trade("buy", result.Gross)
	if result.Graduated {
		n.metrics.Graduated()
	}
	return result, nil
}

// Sell executes a curve sale.
func (n *Node) Sell(seller [20]byte, id uint64, unitsIn, minBaseOut *big.Int) (*launch.TradeResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result, err := n.engine.Sell(seller, id, unitsIn, minBaseOut)
	if err != nil {
		n.metrics.TradeError(errKind(err))
		return nil, err
	}
	n.metrics.Trade("sell", result.Gross)
	return result, nil
}

// Delist administratively removes a live token.
func (n *Node) Delist(id uint64, reason string) (*launch.TokenRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	record, err := n.engine.Delist(id, reason)
	if err != nil {
		n.metrics.TradeError(errKind(err))
		return nil, err
	}
	n.metrics.Delisted()
	return record, nil
}

// Token returns the record for the id.
func (n *Node) Token(id uint64) (*launch.TokenRecord, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.Token(id)
}

// TokenByAddress resolves a record through the address index.
func (n *Node) TokenByAddress(addr [20]byte) (*launch.TokenRecord, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.TokenByAddress(addr)
}

// Tokens pages through records in id order.
func (n *Node) Tokens(afterID uint64, limit int) ([]*launch.TokenRecord, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.Tokens(afterID, limit)
}

// QuoteBuy prices a buy without fees or state changes.
func (n *Node) QuoteBuy(id uint64, baseIn *big.Int) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.QuoteBuy(id, baseIn)
}

// QuoteSell prices a sell without fees or state changes.
func (n *Node) QuoteSell(id uint64, unitsIn *big.Int) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.QuoteSell(id, unitsIn)
}

// CurrentPrice returns the instantaneous per-unit price.
func (n *Node) CurrentPrice(id uint64) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.CurrentPrice(id)
}

// UnitBalanceOf reports a holder's unit balance.
func (n *Node) UnitBalanceOf(id uint64, addr [20]byte) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.UnitBalanceOf(id, addr)
}

// Params returns the active parameter snapshot.
func (n *Node) Params() launch.Params {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.Params()
}

// UpdateParams installs a new parameter version.
func (n *Node) UpdateParams(mutate func(*launch.Params) error) (launch.Params, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.UpdateParams(mutate)
}

// SetPaused toggles the engine-wide pause flag.
func (n *Node) SetPaused(paused bool) (launch.Params, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SetPaused(paused)
}

// SetTokenOverrides installs per-token parameter overrides.
func (n *Node) SetTokenOverrides(id uint64, overrides *launch.TokenOverrides) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SetTokenOverrides(id, overrides)
}

// TokenOverridesFor returns the overrides configured for the token.
func (n *Node) TokenOverridesFor(id uint64) (*launch.TokenOverrides, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.TokenOverridesFor(id)
}

// SetFeeExempt adds or removes an address from the fee exemption set.
func (n *Node) SetFeeExempt(addr [20]byte, exempt bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SetFeeExempt(addr, exempt)
}

// FeeExempt reports exemption membership.
func (n *Node) FeeExempt(addr [20]byte) (bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.FeeExempt(addr)
}
