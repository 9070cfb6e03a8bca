package launch

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"lukechampine.com/blake3"

	"curvelaunch/core/events"
	"curvelaunch/core/types"
	nativecommon "curvelaunch/native/common"
	"curvelaunch/native/fees"
)

const moduleName = "launch"

type engineState interface {
	LaunchTokenGet(id uint64) (*TokenRecord, bool, error)
	LaunchTokenPut(record *TokenRecord) error
	LaunchTokenIDByAddress(addr [20]byte) (uint64, bool, error)
	LaunchTokenCountGet() (uint64, error)
	LaunchTokenCountPut(count uint64) error
	LaunchOverridesGet(id uint64) (*TokenOverrides, bool, error)
	LaunchOverridesPut(id uint64, overrides *TokenOverrides) error
	LaunchParamsGet() (*Params, bool, error)
	LaunchParamsPut(p *Params) error
	FeeExemptGet(addr [20]byte) (bool, error)
	FeeExemptPut(addr [20]byte, exempt bool) error
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, account *types.Account) error
}

// Engine orchestrates the token-sale state transitions: launches, curve
// trades, graduation, and administrative actions. Every entry point runs as a
// single atomic unit; a failure at any point unwinds all writes made by the
// operation.
type Engine struct {
	state   engineState
	units   UnitIssuer
	params  *ParamStore
	emitter events.Emitter
	nowFn   func() int64
	pauses  nativecommon.PauseView

	vault [20]byte
	poolA LiquidityPool
	poolB LiquidityPool

	guardMu  sync.Mutex
	inFlight bool
}

// NewEngine constructs a launch engine around the supplied parameter store.
func NewEngine(params *ParamStore) *Engine {
	return &Engine{
		params:  params,
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState wires the engine to the persistence layer. Implementations must
// return defensive copies from every getter.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetUnitIssuer configures the token issuance/destruction primitive.
func (e *Engine) SetUnitIssuer(units UnitIssuer) { e.units = units }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetPauses wires an external pause switchboard in addition to the pause flag
// carried by the parameter set.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetVault configures the module account that holds the accumulated reserves.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetPoolA configures the primary external liquidity pool collaborator.
func (e *Engine) SetPoolA(pool LiquidityPool) { e.poolA = pool }

// SetPoolB configures the secondary external liquidity pool collaborator.
func (e *Engine) SetPoolB(pool LiquidityPool) { e.poolB = pool }

// enter flips the operation-in-progress flag, rejecting nested entry from a
// collaborator call-out. exit must run on every path out of the entry point.
func (e *Engine) enter() error {
	e.guardMu.Lock()
	defer e.guardMu.Unlock()
	if e.inFlight {
		return ErrReentrancy
	}
	e.inFlight = true
	return nil
}

func (e *Engine) exit() {
	e.guardMu.Lock()
	e.inFlight = false
	e.guardMu.Unlock()
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) checkPaused(p Params) error {
	if p.Paused {
		return ErrPaused
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return ErrPaused
	}
	return nil
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{BalancePLS: big.NewInt(0)}
	}
	if acc.BalancePLS == nil {
		acc.BalancePLS = big.NewInt(0)
	}
	return acc
}

// deriveTokenAddress produces the stable external address for a token from
// its creator and assigned id.
func deriveTokenAddress(creator [20]byte, id uint64) [20]byte {
	var buf [28]byte
	copy(buf[:20], creator[:])
	binary.BigEndian.PutUint64(buf[20:], id)
	sum := blake3.Sum256(buf[:])
	var addr [20]byte
	copy(addr[:], sum[:20])
	return addr
}

// ModuleAddress derives the stable account address for a named module vault.
// Reserves accumulated by the engine live under this address.
func ModuleAddress(name string) [20]byte {
	sum := blake3.Sum256([]byte("module/" + name))
	var addr [20]byte
	copy(addr[:], sum[:20])
	return addr
}

// creditJournaled adds amount to the account balance and records the revert.
func (e *Engine) creditJournaled(j *journal, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	prior := acc.Clone()
	acc.BalancePLS = new(big.Int).Add(acc.BalancePLS, amount)
	if err := e.state.PutAccount(addr, acc); err != nil {
		return err
	}
	j.record(func() error { return e.state.PutAccount(addr, prior) })
	return nil
}

// debitJournaled subtracts amount from the account balance, failing with
// ErrInsufficientBalance when the balance cannot cover it.
func (e *Engine) debitJournaled(j *journal, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	if acc.BalancePLS.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	prior := acc.Clone()
	acc.BalancePLS = new(big.Int).Sub(acc.BalancePLS, amount)
	if err := e.state.PutAccount(addr, acc); err != nil {
		return err
	}
	j.record(func() error { return e.state.PutAccount(addr, prior) })
	return nil
}

func (e *Engine) transferJournaled(j *journal, from, to [20]byte, amount *big.Int) error {
	if err := e.debitJournaled(j, from, amount); err != nil {
		return err
	}
	return e.creditJournaled(j, to, amount)
}

func (e *Engine) mintJournaled(j *journal, tokenID uint64, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if err := e.units.MintUnits(tokenID, to, amount); err != nil {
		return err
	}
	reverted := new(big.Int).Set(amount)
	j.record(func() error { return e.units.BurnUnits(tokenID, to, reverted) })
	return nil
}

func (e *Engine) burnJournaled(j *journal, tokenID uint64, from [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if err := e.units.BurnUnits(tokenID, from, amount); err != nil {
		return err
	}
	reverted := new(big.Int).Set(amount)
	j.record(func() error { return e.units.MintUnits(tokenID, from, reverted) })
	return nil
}

// putTokenJournaled persists the record, recording a revert to the prior
// stored version. The record must already exist.
func (e *Engine) putTokenJournaled(j *journal, record *TokenRecord) error {
	prior, ok, err := e.state.LaunchTokenGet(record.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownToken
	}
	if err := e.state.LaunchTokenPut(record.Clone()); err != nil {
		return err
	}
	j.record(func() error { return e.state.LaunchTokenPut(prior) })
	return nil
}

func (e *Engine) loadToken(id uint64) (*TokenRecord, error) {
	record, ok, err := e.state.LaunchTokenGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrUnknownToken
	}
	return record, nil
}

// requireLive rejects trades against terminal records with the most specific
// error kind.
func requireLive(record *TokenRecord) error {
	switch record.Status {
	case StatusLive:
		return nil
	case StatusGraduated:
		return ErrAlreadyGraduated
	default:
		return ErrNotLive
	}
}

func (e *Engine) loadOverrides(id uint64) (*TokenOverrides, error) {
	overrides, ok, err := e.state.LaunchOverridesGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return overrides, nil
}

func effectiveFeePolicy(p Params, o *TokenOverrides) fees.Policy {
	policy := p.Fees
	if o != nil {
		if o.BuyFeeBps != nil {
			policy.BuyBps = *o.BuyFeeBps
		}
		if o.SellFeeBps != nil {
			policy.SellBps = *o.SellFeeBps
		}
	}
	return policy
}

func effectiveThreshold(p Params, o *TokenOverrides) *big.Int {
	if o != nil && o.GraduationThreshold != nil {
		return o.GraduationThreshold
	}
	return p.GraduationThreshold
}

func effectiveLaunchFee(p Params, o *TokenOverrides) *big.Int {
	if o != nil && o.LaunchFeePLS != nil {
		return o.LaunchFeePLS
	}
	return p.LaunchFeePLS
}

func (e *Engine) isFeeExempt(addr [20]byte) (bool, error) {
	return e.state.FeeExemptGet(addr)
}

// Launch creates a Live token record with zeroed curve state, charging the
// configured flat launch fee to the treasury.
func (e *Engine) Launch(creator [20]byte, name, symbol, metadataURI string) (*TokenRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()

	p := e.params.Current()
	if err := e.checkPaused(p); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" || symbol == "" {
		return nil, errInvalidMeta
	}

	count, err := e.state.LaunchTokenCountGet()
	if err != nil {
		return nil, err
	}
	id := count + 1
	overrides, err := e.loadOverrides(id)
	if err != nil {
		return nil, err
	}

	j := &journal{}
	launchFee := effectiveLaunchFee(p, overrides)
	if launchFee != nil && launchFee.Sign() > 0 {
		if isZeroAddress(p.Treasury) {
			return nil, errTreasuryNotSet
		}
		if err := e.transferJournaled(j, creator, p.Treasury, launchFee); err != nil {
			_ = j.unwind()
			if errors.Is(err, ErrInsufficientBalance) {
				return nil, ErrInsufficientPayment
			}
			return nil, err
		}
	}

	record := &TokenRecord{
		ID:             id,
		Address:        deriveTokenAddress(creator, id),
		Creator:        creator,
		Name:           name,
		Symbol:         symbol,
		MetadataURI:    strings.TrimSpace(metadataURI),
		Status:         StatusLive,
		ReserveBalance: big.NewInt(0),
		UnitsIssued:    big.NewInt(0),
		TradingVolume:  big.NewInt(0),
		CreatedAt:      e.now(),
	}
	if err := e.state.LaunchTokenCountPut(id); err != nil {
		_ = j.unwind()
		return nil, err
	}
	j.record(func() error { return e.state.LaunchTokenCountPut(count) })
	if err := e.state.LaunchTokenPut(record.Clone()); err != nil {
		_ = j.unwind()
		return nil, err
	}
	e.emit(TokenLaunchedEvent(record.ID, hexAddr(record.Address), hexAddr(creator), record.Symbol))
	return record, nil
}

// Buy executes a curve purchase. The fee is taken from the gross payment
// before the curve; the remaining principal moves into the reserve vault and
// units are issued to the buyer. Crossing the graduation threshold triggers
// graduation inside the same operation.
func (e *Engine) Buy(buyer [20]byte, id uint64, baseIn, minUnitsOut *big.Int) (*TradeResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.units == nil {
		return nil, errNilIssuer
	}
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()

	p := e.params.Current()
	if err := e.checkPaused(p); err != nil {
		return nil, err
	}
	if baseIn == nil || baseIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	if err := requireLive(record); err != nil {
		return nil, err
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	overrides, err := e.loadOverrides(id)
	if err != nil {
		return nil, err
	}
	exempt, err := e.isFeeExempt(buyer)
	if err != nil {
		return nil, err
	}

	applied := fees.Apply(fees.ApplyInput{
		Gross:     baseIn,
		Direction: fees.DirectionBuy,
		Policy:    effectiveFeePolicy(p, overrides),
		Exempt:    exempt,
	})
	netIn := applied.Net
	unitsOut := quoteBuy(record, &p, netIn)
	if unitsOut.Sign() == 0 {
		return nil, ErrSlippageExceeded
	}
	if minUnitsOut != nil && unitsOut.Cmp(minUnitsOut) < 0 {
		return nil, ErrSlippageExceeded
	}
	if applied.Fee.Sign() > 0 && isZeroAddress(p.Treasury) {
		return nil, errTreasuryNotSet
	}

	j := &journal{}
	if err := e.debitJournaled(j, buyer, baseIn); err != nil {
		_ = j.unwind()
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, ErrInsufficientPayment
		}
		return nil, err
	}
	if err := e.creditJournaled(j, e.vault, netIn); err != nil {
		_ = j.unwind()
		return nil, err
	}
	if err := e.creditJournaled(j, p.Treasury, applied.Fee); err != nil {
		_ = j.unwind()
		return nil, err
	}

	priorBalance, err := e.units.UnitBalance(id, buyer)
	if err != nil {
		_ = j.unwind()
		return nil, err
	}
	if err := e.mintJournaled(j, id, buyer, unitsOut); err != nil {
		_ = j.unwind()
		return nil, err
	}

	record.ReserveBalance = new(big.Int).Add(record.ReserveBalance, netIn)
	record.UnitsIssued = new(big.Int).Add(record.UnitsIssued, unitsOut)
	record.TradingVolume = new(big.Int).Add(record.TradingVolume, baseIn)
	record.TradeCount++
	if priorBalance == nil || priorBalance.Sign() == 0 {
		record.HolderCount++
	}
	if err := e.putTokenJournaled(j, record); err != nil {
		_ = j.unwind()
		return nil, err
	}
	e.emit(TokenTradedEvent(record.ID, hexAddr(buyer), "buy", baseIn.String(), applied.Fee.String(), unitsOut.String(), record.ReserveBalance.String()))

	graduated, receipts, err := e.maybeGraduate(j, record, p, overrides)
	if err != nil {
		_ = j.unwind()
		return nil, err
	}
	return &TradeResult{
		Token:     record.Clone(),
		Gross:     new(big.Int).Set(baseIn),
		Fee:       applied.Fee,
		Net:       netIn,
		Units:     unitsOut,
		Graduated: graduated,
		Receipts:  receipts,
	}, nil
}

// Sell executes a curve sale. The fee is taken from the gross curve output
// after the curve; the net payout leaves the reserve vault and the sold units
// are destroyed.
func (e *Engine) Sell(seller [20]byte, id uint64, unitsIn, minBaseOut *big.Int) (*TradeResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.units == nil {
		return nil, errNilIssuer
	}
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()

	p := e.params.Current()
	if err := e.checkPaused(p); err != nil {
		return nil, err
	}
	if unitsIn == nil || unitsIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	if err := requireLive(record); err != nil {
		return nil, err
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	overrides, err := e.loadOverrides(id)
	if err != nil {
		return nil, err
	}
	exempt, err := e.isFeeExempt(seller)
	if err != nil {
		return nil, err
	}

	grossOut := quoteSell(record, &p, unitsIn)
	applied := fees.Apply(fees.ApplyInput{
		Gross:     grossOut,
		Direction: fees.DirectionSell,
		Policy:    effectiveFeePolicy(p, overrides),
		Exempt:    exempt,
	})
	netOut := applied.Net
	if netOut.Sign() == 0 {
		return nil, ErrSlippageExceeded
	}
	if minBaseOut != nil && netOut.Cmp(minBaseOut) < 0 {
		return nil, ErrSlippageExceeded
	}
	balance, err := e.units.UnitBalance(id, seller)
	if err != nil {
		return nil, err
	}
	if balance == nil || balance.Cmp(unitsIn) < 0 {
		return nil, ErrInsufficientBalance
	}
	if applied.Fee.Sign() > 0 && isZeroAddress(p.Treasury) {
		return nil, errTreasuryNotSet
	}

	j := &journal{}
	if err := e.burnJournaled(j, id, seller, unitsIn); err != nil {
		_ = j.unwind()
		return nil, err
	}
	record.ReserveBalance = new(big.Int).Sub(record.ReserveBalance, grossOut)
	record.UnitsIssued = new(big.Int).Sub(record.UnitsIssued, unitsIn)
	record.TradingVolume = new(big.Int).Add(record.TradingVolume, grossOut)
	record.TradeCount++
	if err := e.putTokenJournaled(j, record); err != nil {
		_ = j.unwind()
		return nil, err
	}
	if err := e.transferJournaled(j, e.vault, seller, netOut); err != nil {
		_ = j.unwind()
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, ErrTransferFailed
		}
		return nil, err
	}
	if err := e.transferJournaled(j, e.vault, p.Treasury, applied.Fee); err != nil {
		_ = j.unwind()
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, ErrTransferFailed
		}
		return nil, err
	}
	e.emit(TokenTradedEvent(record.ID, hexAddr(seller), "sell", grossOut.String(), applied.Fee.String(), unitsIn.String(), record.ReserveBalance.String()))
	return &TradeResult{
		Token: record.Clone(),
		Gross: grossOut,
		Fee:   applied.Fee,
		Net:   netOut,
		Units: new(big.Int).Set(unitsIn),
	}, nil
}

// Delist removes a Live token from trading and flushes its remaining reserve
// to the treasury. Administrative; allowed while the engine is paused.
func (e *Engine) Delist(id uint64, reason string) (*TokenRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()

	p := e.params.Current()
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	if err := requireLive(record); err != nil {
		return nil, err
	}

	j := &journal{}
	flushed := new(big.Int).Set(record.ReserveBalance)
	if flushed.Sign() > 0 {
		if isZeroAddress(p.Treasury) {
			return nil, errTreasuryNotSet
		}
		if isZeroAddress(e.vault) {
			return nil, errVaultNotSet
		}
		if err := e.transferJournaled(j, e.vault, p.Treasury, flushed); err != nil {
			_ = j.unwind()
			if errors.Is(err, ErrInsufficientBalance) {
				return nil, ErrTransferFailed
			}
			return nil, err
		}
	}
	record.ReserveBalance = big.NewInt(0)
	record.Status = StatusDelisted
	if err := e.putTokenJournaled(j, record); err != nil {
		_ = j.unwind()
		return nil, err
	}
	e.emit(TokenDelistedEvent(record.ID, strings.TrimSpace(reason), flushed.String()))
	return record.Clone(), nil
}

// Token returns the ledger record for the supplied id.
func (e *Engine) Token(id uint64) (*TokenRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadToken(id)
}

// TokenByAddress resolves a record through the address index.
func (e *Engine) TokenByAddress(addr [20]byte) (*TokenRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	id, ok, err := e.state.LaunchTokenIDByAddress(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownToken
	}
	return e.loadToken(id)
}

// Tokens returns up to limit records with ids greater than afterID, in id
// order. Ids are dense, so pagination walks the arena directly.
func (e *Engine) Tokens(afterID uint64, limit int) ([]*TokenRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	count, err := e.state.LaunchTokenCountGet()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = int(count)
	}
	records := make([]*TokenRecord, 0, limit)
	for id := afterID + 1; id <= count && len(records) < limit; id++ {
		record, ok, err := e.state.LaunchTokenGet(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// QuoteBuy mirrors the curve's buy pricing for the supplied principal without
// applying fees or touching state.
func (e *Engine) QuoteBuy(id uint64, baseIn *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	p := e.params.Current()
	return quoteBuy(record, &p, baseIn), nil
}

// QuoteSell mirrors the curve's sell pricing without applying fees.
func (e *Engine) QuoteSell(id uint64, unitsIn *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	p := e.params.Current()
	return quoteSell(record, &p, unitsIn), nil
}

// CurrentPrice returns the instantaneous per-unit price in PriceScale fixed
// point.
func (e *Engine) CurrentPrice(id uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadToken(id)
	if err != nil {
		return nil, err
	}
	p := e.params.Current()
	return currentPrice(record, &p), nil
}

// UnitBalanceOf reports the unit balance held by addr for the token.
func (e *Engine) UnitBalanceOf(id uint64, addr [20]byte) (*big.Int, error) {
	if e == nil || e.units == nil {
		return nil, errNilIssuer
	}
	return e.units.UnitBalance(id, addr)
}

// Params returns a snapshot of the active parameter set.
func (e *Engine) Params() Params {
	return e.params.Current()
}

// UpdateParams validates and installs a new parameter version, persisting it
// so the configuration survives restart.
func (e *Engine) UpdateParams(mutate func(*Params) error) (Params, error) {
	if e == nil || e.state == nil {
		return Params{}, errNilState
	}
	prior := e.params.Current()
	next, err := e.params.Update(mutate)
	if err != nil {
		return Params{}, err
	}
	if err := e.state.LaunchParamsPut(&next); err != nil {
		_ = e.params.Replace(prior)
		return Params{}, err
	}
	return next, nil
}

// SetPaused toggles the engine-wide pause flag.
func (e *Engine) SetPaused(paused bool) (Params, error) {
	return e.UpdateParams(func(p *Params) error {
		p.Paused = paused
		return nil
	})
}

// SetTokenOverrides installs per-token parameter overrides, validating each
// populated slot against the same bounds as the engine-wide params.
func (e *Engine) SetTokenOverrides(id uint64, overrides *TokenOverrides) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if overrides != nil {
		if overrides.BuyFeeBps != nil && *overrides.BuyFeeBps > fees.MaxFeeBps {
			return fmt.Errorf("launch engine: buy fee override %d bps exceeds cap %d", *overrides.BuyFeeBps, fees.MaxFeeBps)
		}
		if overrides.SellFeeBps != nil && *overrides.SellFeeBps > fees.MaxFeeBps {
			return fmt.Errorf("launch engine: sell fee override %d bps exceeds cap %d", *overrides.SellFeeBps, fees.MaxFeeBps)
		}
		if overrides.GraduationThreshold != nil && overrides.GraduationThreshold.Sign() <= 0 {
			return fmt.Errorf("launch engine: graduation threshold override must be positive")
		}
		if overrides.LaunchFeePLS != nil && overrides.LaunchFeePLS.Sign() < 0 {
			return fmt.Errorf("launch engine: launch fee override must not be negative")
		}
	}
	return e.state.LaunchOverridesPut(id, overrides.Clone())
}

// TokenOverridesFor returns the override slots configured for the token.
func (e *Engine) TokenOverridesFor(id uint64) (*TokenOverrides, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadOverrides(id)
}

// SetFeeExempt adds or removes an address from the fee exemption set.
func (e *Engine) SetFeeExempt(addr [20]byte, exempt bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.FeeExemptPut(addr, exempt)
}

// FeeExempt reports exemption membership.
func (e *Engine) FeeExempt(addr [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.FeeExemptGet(addr)
}

// LoadPersistedParams restores the parameter set saved in state, if any.
// Called once at boot before the engine serves operations.
func (e *Engine) LoadPersistedParams() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	persisted, ok, err := e.state.LaunchParamsGet()
	if err != nil {
		return err
	}
	if !ok || persisted == nil {
		return nil
	}
	return e.params.Replace(*persisted)
}
