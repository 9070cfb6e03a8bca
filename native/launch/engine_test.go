package launch

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"curvelaunch/core/events"
	"curvelaunch/core/types"
)

type mockState struct {
	tokens    map[uint64]*TokenRecord
	addrIndex map[[20]byte]uint64
	count     uint64
	overrides map[uint64]*TokenOverrides
	params    *Params
	exempt    map[[20]byte]bool
	accounts  map[[20]byte]*types.Account
	units     map[uint64]map[[20]byte]*big.Int

	failTokenPut bool
}

func newMockState() *mockState {
	return &mockState{
		tokens:    make(map[uint64]*TokenRecord),
		addrIndex: make(map[[20]byte]uint64),
		overrides: make(map[uint64]*TokenOverrides),
		exempt:    make(map[[20]byte]bool),
		accounts:  make(map[[20]byte]*types.Account),
		units:     make(map[uint64]map[[20]byte]*big.Int),
	}
}

func (m *mockState) LaunchTokenGet(id uint64) (*TokenRecord, bool, error) {
	record, ok := m.tokens[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) LaunchTokenPut(record *TokenRecord) error {
	if m.failTokenPut {
		return fmt.Errorf("mock: token put failed")
	}
	m.tokens[record.ID] = record.Clone()
	m.addrIndex[record.Address] = record.ID
	return nil
}

func (m *mockState) LaunchTokenIDByAddress(addr [20]byte) (uint64, bool, error) {
	id, ok := m.addrIndex[addr]
	return id, ok, nil
}

func (m *mockState) LaunchTokenCountGet() (uint64, error) { return m.count, nil }

func (m *mockState) LaunchTokenCountPut(count uint64) error {
	m.count = count
	return nil
}

func (m *mockState) LaunchOverridesGet(id uint64) (*TokenOverrides, bool, error) {
	o, ok := m.overrides[id]
	if !ok {
		return nil, false, nil
	}
	return o.Clone(), true, nil
}

func (m *mockState) LaunchOverridesPut(id uint64, o *TokenOverrides) error {
	if o.Empty() {
		delete(m.overrides, id)
		return nil
	}
	m.overrides[id] = o.Clone()
	return nil
}

func (m *mockState) LaunchParamsGet() (*Params, bool, error) {
	if m.params == nil {
		return nil, false, nil
	}
	clone := m.params.Clone()
	return &clone, true, nil
}

func (m *mockState) LaunchParamsPut(p *Params) error {
	clone := p.Clone()
	m.params = &clone
	return nil
}

func (m *mockState) FeeExemptGet(addr [20]byte) (bool, error) { return m.exempt[addr], nil }

func (m *mockState) FeeExemptPut(addr [20]byte, exempt bool) error {
	if exempt {
		m.exempt[addr] = true
	} else {
		delete(m.exempt, addr)
	}
	return nil
}

func (m *mockState) GetAccount(addr [20]byte) (*types.Account, error) {
	acc, ok := m.accounts[addr]
	if !ok {
		return &types.Account{BalancePLS: big.NewInt(0)}, nil
	}
	return acc.Clone(), nil
}

func (m *mockState) PutAccount(addr [20]byte, acc *types.Account) error {
	m.accounts[addr] = acc.Clone()
	return nil
}

func (m *mockState) MintUnits(tokenID uint64, to [20]byte, amount *big.Int) error {
	ledger, ok := m.units[tokenID]
	if !ok {
		ledger = make(map[[20]byte]*big.Int)
		m.units[tokenID] = ledger
	}
	prior := ledger[to]
	if prior == nil {
		prior = big.NewInt(0)
	}
	ledger[to] = new(big.Int).Add(prior, amount)
	return nil
}

func (m *mockState) BurnUnits(tokenID uint64, from [20]byte, amount *big.Int) error {
	ledger := m.units[tokenID]
	prior := ledger[from]
	if prior == nil || prior.Cmp(amount) < 0 {
		return fmt.Errorf("mock: burn exceeds balance")
	}
	ledger[from] = new(big.Int).Sub(prior, amount)
	return nil
}

func (m *mockState) UnitBalance(tokenID uint64, addr [20]byte) (*big.Int, error) {
	bal := m.units[tokenID][addr]
	if bal == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}

func (m *mockState) fund(addr [20]byte, amount int64) {
	m.accounts[addr] = &types.Account{BalancePLS: big.NewInt(amount)}
}

func (m *mockState) balance(addr [20]byte) *big.Int {
	acc, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(acc.BalancePLS)
}

// snapshot captures the mock's observable state for rollback assertions.
// Zero balances are treated the same as absent entries so a write-then-revert
// pair compares equal to no write at all.
func (m *mockState) snapshot() string {
	tokens := make(map[uint64]string, len(m.tokens))
	for id, r := range m.tokens {
		tokens[id] = fmt.Sprintf("%x/%s/%s/%s/%s/%d/%d", r.Address, r.Status, r.ReserveBalance, r.UnitsIssued, r.TradingVolume, r.TradeCount, r.HolderCount)
	}
	accounts := make(map[string]string)
	for a, acc := range m.accounts {
		if acc.BalancePLS != nil && acc.BalancePLS.Sign() != 0 {
			accounts[fmt.Sprintf("%x", a)] = acc.BalancePLS.String()
		}
	}
	units := make(map[string]string)
	for id, ledger := range m.units {
		for a, bal := range ledger {
			if bal != nil && bal.Sign() != 0 {
				units[fmt.Sprintf("%d/%x", id, a)] = bal.String()
			}
		}
	}
	return fmt.Sprintf("%v|%v|%d|%v|%d|%v", tokens, accounts, m.count, units, len(m.overrides), m.exempt)
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func (c *captureEmitter) byType(eventType string) []*types.Event {
	var out []*types.Event
	for _, evt := range c.events {
		env, ok := evt.(interface{ Event() *types.Event })
		if !ok {
			continue
		}
		if inner := env.Event(); inner.Type == eventType {
			out = append(out, inner)
		}
	}
	return out
}

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

var (
	treasuryAddr = addr(0xAA)
	burnSinkAddr = addr(0xBB)
	vaultAddr    = addr(0xCC)
	creatorAddr  = addr(0x01)
	buyerAddr    = addr(0x02)
	sellerAddr   = addr(0x03)
)

func newTestEngine(t *testing.T) (*Engine, *mockState, *captureEmitter) {
	t.Helper()
	p := DefaultParams()
	p.Treasury = treasuryAddr
	p.BurnSink = burnSinkAddr
	store, err := NewParamStore(p)
	if err != nil {
		t.Fatalf("param store: %v", err)
	}
	state := newMockState()
	emitter := &captureEmitter{}
	engine := NewEngine(store)
	engine.SetState(state)
	engine.SetUnitIssuer(state)
	engine.SetEmitter(emitter)
	engine.SetVault(vaultAddr)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine, state, emitter
}

func mustLaunch(t *testing.T, engine *Engine) *TokenRecord {
	t.Helper()
	record, err := engine.Launch(creatorAddr, "Test Token", "TST", "ipfs://meta")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	return record
}

func TestLaunchAssignsSequentialIDs(t *testing.T) {
	engine, state, emitter := newTestEngine(t)

	first := mustLaunch(t, engine)
	second, err := engine.Launch(creatorAddr, "Other", "OTH", "")
	if err != nil {
		t.Fatalf("second launch: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", first.ID, second.ID)
	}
	if first.Address == second.Address {
		t.Fatalf("token addresses must differ")
	}
	if first.Status != StatusLive {
		t.Fatalf("status = %s, want live", first.Status)
	}
	if got := len(emitter.byType(EventTypeTokenLaunched)); got != 2 {
		t.Fatalf("launched events = %d, want 2", got)
	}
	if state.count != 2 {
		t.Fatalf("token count = %d, want 2", state.count)
	}
}

func TestLaunchChargesFee(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	if _, err := engine.UpdateParams(func(p *Params) error {
		p.LaunchFeePLS = big.NewInt(5_000)
		return nil
	}); err != nil {
		t.Fatalf("set launch fee: %v", err)
	}

	if _, err := engine.Launch(creatorAddr, "Broke", "BRK", ""); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("unfunded launch err = %v, want ErrInsufficientPayment", err)
	}

	state.fund(creatorAddr, 5_000)
	if _, err := engine.Launch(creatorAddr, "Funded", "FND", ""); err != nil {
		t.Fatalf("funded launch: %v", err)
	}
	if got := state.balance(treasuryAddr); got.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("treasury = %s, want 5000", got)
	}
	if got := state.balance(creatorAddr); got.Sign() != 0 {
		t.Fatalf("creator = %s, want 0", got)
	}
}

func TestLaunchRejectsBlankMetadata(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	if _, err := engine.Launch(creatorAddr, "  ", "TST", ""); err == nil {
		t.Fatalf("blank name accepted")
	}
	if _, err := engine.Launch(creatorAddr, "Name", "", ""); err == nil {
		t.Fatalf("blank symbol accepted")
	}
}

func TestBuyAgainstFreshCurve(t *testing.T) {
	engine, state, emitter := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)

	result, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Fee.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("fee = %s, want 10000", result.Fee)
	}
	if result.Net.Cmp(big.NewInt(990_000)) != 0 {
		t.Fatalf("net = %s, want 990000", result.Net)
	}
	wantUnits := big.NewInt(250_000_000 - 3_750_000_000_000_000/15_990_000)
	if result.Units.Cmp(wantUnits) != 0 {
		t.Fatalf("units = %s, want %s", result.Units, wantUnits)
	}
	if result.Graduated {
		t.Fatalf("single small buy must not graduate")
	}

	if got := state.balance(buyerAddr); got.Sign() != 0 {
		t.Fatalf("buyer balance = %s, want 0", got)
	}
	if got := state.balance(vaultAddr); got.Cmp(big.NewInt(990_000)) != 0 {
		t.Fatalf("vault = %s, want 990000", got)
	}
	if got := state.balance(treasuryAddr); got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("treasury = %s, want 10000", got)
	}

	stored := state.tokens[record.ID]
	if stored.ReserveBalance.Cmp(big.NewInt(990_000)) != 0 {
		t.Fatalf("reserve = %s, want 990000", stored.ReserveBalance)
	}
	if stored.UnitsIssued.Cmp(wantUnits) != 0 {
		t.Fatalf("issued = %s, want %s", stored.UnitsIssued, wantUnits)
	}
	if stored.TradeCount != 1 || stored.HolderCount != 1 {
		t.Fatalf("counters = %d trades, %d holders; want 1, 1", stored.TradeCount, stored.HolderCount)
	}
	if bal, _ := state.UnitBalance(record.ID, buyerAddr); bal.Cmp(wantUnits) != 0 {
		t.Fatalf("buyer units = %s, want %s", bal, wantUnits)
	}
	if got := len(emitter.byType(EventTypeTokenTraded)); got != 1 {
		t.Fatalf("traded events = %d, want 1", got)
	}
}

func TestBuySlippageLeavesStateUnchanged(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)
	before := state.snapshot()

	quote, err := engine.QuoteBuy(record.ID, big.NewInt(990_000))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	tooHigh := new(big.Int).Add(quote, big.NewInt(1))
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), tooHigh); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("err = %v, want ErrSlippageExceeded", err)
	}
	if after := state.snapshot(); after != before {
		t.Fatalf("state changed on rejected buy:\nbefore %s\nafter  %s", before, after)
	}
}

func TestBuyErrorTaxonomy(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 10_000_000)

	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(0), nil); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("zero amount err = %v", err)
	}
	if _, err := engine.Buy(buyerAddr, 99, big.NewInt(1_000), nil); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("unknown token err = %v", err)
	}
	if _, err := engine.Buy(addr(0x7F), record.ID, big.NewInt(1_000_000), nil); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("unfunded buyer err = %v", err)
	}

	if _, err := engine.SetPaused(true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000), nil); !errors.Is(err, ErrPaused) {
		t.Fatalf("paused err = %v", err)
	}
	if _, err := engine.SetPaused(false); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000), nil); err != nil {
		t.Fatalf("buy after resume: %v", err)
	}

	delisted, err := engine.Launch(creatorAddr, "Gone", "GON", "")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if _, err := engine.Delist(delisted.ID, "test"); err != nil {
		t.Fatalf("delist: %v", err)
	}
	if _, err := engine.Buy(buyerAddr, delisted.ID, big.NewInt(1_000), nil); !errors.Is(err, ErrNotLive) {
		t.Fatalf("delisted err = %v", err)
	}
}

func TestSellRoundTripNeverProfits(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)

	bought, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	sold, err := engine.Sell(buyerAddr, record.ID, bought.Units, nil)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if sold.Net.Cmp(big.NewInt(1_000_000)) >= 0 {
		t.Fatalf("round trip paid out %s from 1000000 in", sold.Net)
	}
	if got := state.balance(buyerAddr); got.Cmp(sold.Net) != 0 {
		t.Fatalf("buyer balance = %s, want %s", got, sold.Net)
	}
	if bal, _ := state.UnitBalance(record.ID, buyerAddr); bal.Sign() != 0 {
		t.Fatalf("buyer units = %s, want 0", bal)
	}
	stored := state.tokens[record.ID]
	if stored.UnitsIssued.Sign() != 0 {
		t.Fatalf("issued = %s, want 0 after full round trip", stored.UnitsIssued)
	}
}

func TestSellRequiresUnitBalance(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := engine.Sell(sellerAddr, record.ID, big.NewInt(100), nil); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestSellSlippageBound(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)
	bought, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	before := state.snapshot()

	if _, err := engine.Sell(buyerAddr, record.ID, bought.Units, big.NewInt(2_000_000)); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("err = %v, want ErrSlippageExceeded", err)
	}
	if after := state.snapshot(); after != before {
		t.Fatalf("state changed on rejected sell")
	}
}

func TestFeeExemptionWaivesFees(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	if err := engine.SetFeeExempt(buyerAddr, true); err != nil {
		t.Fatalf("set exempt: %v", err)
	}
	state.fund(buyerAddr, 1_000_000)

	result, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Fee.Sign() != 0 {
		t.Fatalf("exempt fee = %s, want 0", result.Fee)
	}
	if result.Net.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("exempt net = %s, want full gross", result.Net)
	}
	if got := state.balance(treasuryAddr); got.Sign() != 0 {
		t.Fatalf("treasury = %s, want 0", got)
	}
}

func TestHolderCountOnlyCountsNewHolders(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 2_000_000)
	state.fund(sellerAddr, 1_000_000)

	for _, buy := range []struct {
		who [20]byte
	}{{buyerAddr}, {buyerAddr}, {sellerAddr}} {
		if _, err := engine.Buy(buy.who, record.ID, big.NewInt(500_000), nil); err != nil {
			t.Fatalf("buy: %v", err)
		}
	}
	if got := state.tokens[record.ID].HolderCount; got != 2 {
		t.Fatalf("holder count = %d, want 2", got)
	}
}

func TestDelistFlushesReserve(t *testing.T) {
	engine, state, emitter := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil); err != nil {
		t.Fatalf("buy: %v", err)
	}
	treasuryBefore := state.balance(treasuryAddr)

	delisted, err := engine.Delist(record.ID, "policy violation")
	if err != nil {
		t.Fatalf("delist: %v", err)
	}
	if delisted.Status != StatusDelisted {
		t.Fatalf("status = %s, want delisted", delisted.Status)
	}
	if delisted.ReserveBalance.Sign() != 0 {
		t.Fatalf("reserve = %s, want 0", delisted.ReserveBalance)
	}
	flushed := new(big.Int).Sub(state.balance(treasuryAddr), treasuryBefore)
	if flushed.Cmp(big.NewInt(990_000)) != 0 {
		t.Fatalf("flushed = %s, want 990000", flushed)
	}
	if got := state.balance(vaultAddr); got.Sign() != 0 {
		t.Fatalf("vault = %s, want 0", got)
	}
	if got := len(emitter.byType(EventTypeTokenDelisted)); got != 1 {
		t.Fatalf("delisted events = %d, want 1", got)
	}

	if _, err := engine.Delist(record.ID, "again"); !errors.Is(err, ErrNotLive) {
		t.Fatalf("second delist err = %v, want ErrNotLive", err)
	}
}

func TestTokenOverridesAdjustFeesAndThreshold(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	zero := uint32(0)
	if err := engine.SetTokenOverrides(record.ID, &TokenOverrides{BuyFeeBps: &zero}); err != nil {
		t.Fatalf("set overrides: %v", err)
	}
	state.fund(buyerAddr, 1_000_000)

	result, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Fee.Sign() != 0 {
		t.Fatalf("overridden buy fee = %s, want 0", result.Fee)
	}

	over := uint32(600)
	if err := engine.SetTokenOverrides(record.ID, &TokenOverrides{SellFeeBps: &over}); err == nil {
		t.Fatalf("fee override above cap accepted")
	}
}

func TestTokensPagination(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	for i := 0; i < 5; i++ {
		if _, err := engine.Launch(creatorAddr, fmt.Sprintf("Token %d", i), fmt.Sprintf("T%d", i), ""); err != nil {
			t.Fatalf("launch %d: %v", i, err)
		}
	}

	page, err := engine.Tokens(0, 2)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(page) != 2 || page[0].ID != 1 || page[1].ID != 2 {
		t.Fatalf("first page = %+v", page)
	}
	page, err = engine.Tokens(2, 10)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(page) != 3 || page[0].ID != 3 || page[2].ID != 5 {
		t.Fatalf("second page = %+v", page)
	}
}

func TestTokenByAddress(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	record := mustLaunch(t, engine)

	found, err := engine.TokenByAddress(record.Address)
	if err != nil {
		t.Fatalf("by address: %v", err)
	}
	if found.ID != record.ID || found.Address != record.Address || found.Symbol != record.Symbol {
		t.Fatalf("record mismatch: %+v vs %+v", found, record)
	}
	if _, err := engine.TokenByAddress(addr(0xEE)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("missing address err = %v", err)
	}
}

func TestUpdateParamsRejectsOutOfBounds(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	before := engine.Params()

	if _, err := engine.UpdateParams(func(p *Params) error {
		p.RewardBps = 9_999
		return nil
	}); err == nil {
		t.Fatalf("out-of-bounds update accepted")
	}
	after := engine.Params()
	if after.Version != before.Version || after.RewardBps != before.RewardBps {
		t.Fatalf("params mutated by rejected update")
	}
}

func TestBuyUnwindsOnRecordPersistFailure(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)
	before := state.snapshot()

	state.failTokenPut = true
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000_000), nil); err == nil {
		t.Fatalf("buy succeeded despite persist failure")
	}
	state.failTokenPut = false
	if after := state.snapshot(); after != before {
		t.Fatalf("state changed on failed buy:\nbefore %s\nafter  %s", before, after)
	}
}

func TestLoadPersistedParams(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	updated, err := engine.UpdateParams(func(p *Params) error {
		p.Fees.BuyBps = 250
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	p := DefaultParams()
	p.Treasury = treasuryAddr
	store, err := NewParamStore(p)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	fresh := NewEngine(store)
	fresh.SetState(state)
	if err := fresh.LoadPersistedParams(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := fresh.Params()
	if got.Fees.BuyBps != 250 || got.Version != updated.Version {
		t.Fatalf("restored params = %+v, want buy fee 250 at version %d", got, updated.Version)
	}
}

func TestReentrantEntryRejected(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	record := mustLaunch(t, engine)
	state.fund(buyerAddr, 1_000_000)

	if err := engine.enter(); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000), nil); !errors.Is(err, ErrReentrancy) {
		t.Fatalf("err = %v, want ErrReentrancy", err)
	}
	engine.exit()
	if _, err := engine.Buy(buyerAddr, record.ID, big.NewInt(1_000), nil); err != nil {
		t.Fatalf("buy after exit: %v", err)
	}
}
