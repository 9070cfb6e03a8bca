package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"curvelaunch/core/types"
	"curvelaunch/native/fees"
	"curvelaunch/native/launch"
	"curvelaunch/storage"
)

// Key prefixes for the launch module's keyspace.
var (
	tokenPrefix    = []byte("launch/token/")
	addrPrefix     = []byte("launch/addr/")
	countKey       = []byte("launch/meta/count")
	unitsPrefix    = []byte("launch/units/")
	acctPrefix     = []byte("launch/acct/")
	paramsKey      = []byte("launch/params")
	overridePrefix = []byte("launch/override/")
	exemptPrefix   = []byte("launch/exempt/")
)

// Manager persists launch-module state in a key-value store. It implements
// both the engine's state interface and its unit-issuance primitive, encoding
// records with RLP via stored mirror structs.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func tokenKey(id uint64) []byte {
	key := make([]byte, len(tokenPrefix)+8)
	copy(key, tokenPrefix)
	binary.BigEndian.PutUint64(key[len(tokenPrefix):], id)
	return key
}

func addrKey(addr [20]byte) []byte {
	return append(append([]byte{}, addrPrefix...), addr[:]...)
}

func unitsKey(tokenID uint64, addr [20]byte) []byte {
	key := make([]byte, len(unitsPrefix)+8+20)
	copy(key, unitsPrefix)
	binary.BigEndian.PutUint64(key[len(unitsPrefix):], tokenID)
	copy(key[len(unitsPrefix)+8:], addr[:])
	return key
}

func acctKey(addr [20]byte) []byte {
	return append(append([]byte{}, acctPrefix...), addr[:]...)
}

func overrideKey(id uint64) []byte {
	key := make([]byte, len(overridePrefix)+8)
	copy(key, overridePrefix)
	binary.BigEndian.PutUint64(key[len(overridePrefix):], id)
	return key
}

func exemptKey(addr [20]byte) []byte {
	return append(append([]byte{}, exemptPrefix...), addr[:]...)
}

func bigToString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func stringToBig(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("state: invalid integer %q", raw)
	}
	return v, nil
}

// storedToken mirrors launch.TokenRecord with RLP-friendly field types.
type storedToken struct {
	ID             uint64
	Address        [20]byte
	Creator        [20]byte
	Name           string
	Symbol         string
	MetadataURI    string
	Status         uint8
	ReserveBalance string
	UnitsIssued    string
	TradingVolume  string
	TradeCount     uint64
	HolderCount    uint64
	CreatedAt      uint64
	GraduatedAt    uint64
}

func toStoredToken(record *launch.TokenRecord) *storedToken {
	return &storedToken{
		ID:             record.ID,
		Address:        record.Address,
		Creator:        record.Creator,
		Name:           record.Name,
		Symbol:         record.Symbol,
		MetadataURI:    record.MetadataURI,
		Status:         uint8(record.Status),
		ReserveBalance: bigToString(record.ReserveBalance),
		UnitsIssued:    bigToString(record.UnitsIssued),
		TradingVolume:  bigToString(record.TradingVolume),
		TradeCount:     record.TradeCount,
		HolderCount:    record.HolderCount,
		CreatedAt:      uint64(record.CreatedAt),
		GraduatedAt:    uint64(record.GraduatedAt),
	}
}

func (s *storedToken) toRecord() (*launch.TokenRecord, error) {
	reserve, err := stringToBig(s.ReserveBalance)
	if err != nil {
		return nil, err
	}
	issued, err := stringToBig(s.UnitsIssued)
	if err != nil {
		return nil, err
	}
	volume, err := stringToBig(s.TradingVolume)
	if err != nil {
		return nil, err
	}
	return &launch.TokenRecord{
		ID:             s.ID,
		Address:        s.Address,
		Creator:        s.Creator,
		Name:           s.Name,
		Symbol:         s.Symbol,
		MetadataURI:    s.MetadataURI,
		Status:         launch.TokenStatus(s.Status),
		ReserveBalance: reserve,
		UnitsIssued:    issued,
		TradingVolume:  volume,
		TradeCount:     s.TradeCount,
		HolderCount:    s.HolderCount,
		CreatedAt:      int64(s.CreatedAt),
		GraduatedAt:    int64(s.GraduatedAt),
	}, nil
}

// LaunchTokenGet loads the record stored under the id.
func (m *Manager) LaunchTokenGet(id uint64) (*launch.TokenRecord, bool, error) {
	raw, err := m.db.Get(tokenKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stored storedToken
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode token %d: %w", id, err)
	}
	record, err := stored.toRecord()
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// LaunchTokenPut stores the record and maintains the address index.
func (m *Manager) LaunchTokenPut(record *launch.TokenRecord) error {
	if record == nil {
		return fmt.Errorf("state: nil token record")
	}
	raw, err := rlp.EncodeToBytes(toStoredToken(record))
	if err != nil {
		return fmt.Errorf("state: encode token %d: %w", record.ID, err)
	}
	if err := m.db.Put(tokenKey(record.ID), raw); err != nil {
		return err
	}
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], record.ID)
	return m.db.Put(addrKey(record.Address), idBuf[:])
}

// LaunchTokenIDByAddress resolves a token id through the address index.
func (m *Manager) LaunchTokenIDByAddress(addr [20]byte) (uint64, bool, error) {
	raw, err := m.db.Get(addrKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(raw) != 8 {
		return 0, false, fmt.Errorf("state: corrupt address index entry")
	}
	return binary.BigEndian.Uint64(raw), true, nil
}

// LaunchTokenCountGet returns the number of tokens ever launched.
func (m *Manager) LaunchTokenCountGet() (uint64, error) {
	raw, err := m.db.Get(countKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("state: corrupt token count")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// LaunchTokenCountPut stores the token count.
func (m *Manager) LaunchTokenCountPut(count uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], count)
	return m.db.Put(countKey, buf[:])
}

// storedOverrides mirrors launch.TokenOverrides; presence flags stand in for
// the optional pointer slots.
type storedOverrides struct {
	HasBuyFee    bool
	BuyFeeBps    uint32
	HasSellFee   bool
	SellFeeBps   uint32
	HasThreshold bool
	Threshold    string
	HasLaunchFee bool
	LaunchFeePLS string
}

// LaunchOverridesGet loads the per-token override slots.
func (m *Manager) LaunchOverridesGet(id uint64) (*launch.TokenOverrides, bool, error) {
	raw, err := m.db.Get(overrideKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stored storedOverrides
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode overrides %d: %w", id, err)
	}
	overrides := &launch.TokenOverrides{}
	if stored.HasBuyFee {
		v := stored.BuyFeeBps
		overrides.BuyFeeBps = &v
	}
	if stored.HasSellFee {
		v := stored.SellFeeBps
		overrides.SellFeeBps = &v
	}
	if stored.HasThreshold {
		threshold, err := stringToBig(stored.Threshold)
		if err != nil {
			return nil, false, err
		}
		overrides.GraduationThreshold = threshold
	}
	if stored.HasLaunchFee {
		fee, err := stringToBig(stored.LaunchFeePLS)
		if err != nil {
			return nil, false, err
		}
		overrides.LaunchFeePLS = fee
	}
	return overrides, true, nil
}

// LaunchOverridesPut stores the override slots; an empty set clears the entry.
func (m *Manager) LaunchOverridesPut(id uint64, overrides *launch.TokenOverrides) error {
	if overrides.Empty() {
		return m.db.Delete(overrideKey(id))
	}
	stored := storedOverrides{}
	if overrides.BuyFeeBps != nil {
		stored.HasBuyFee = true
		stored.BuyFeeBps = *overrides.BuyFeeBps
	}
	if overrides.SellFeeBps != nil {
		stored.HasSellFee = true
		stored.SellFeeBps = *overrides.SellFeeBps
	}
	if overrides.GraduationThreshold != nil {
		stored.HasThreshold = true
		stored.Threshold = overrides.GraduationThreshold.String()
	}
	if overrides.LaunchFeePLS != nil {
		stored.HasLaunchFee = true
		stored.LaunchFeePLS = overrides.LaunchFeePLS.String()
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("state: encode overrides %d: %w", id, err)
	}
	return m.db.Put(overrideKey(id), raw)
}

// storedParams mirrors launch.Params.
type storedParams struct {
	Version             uint64
	Paused              bool
	BuyFeeBps           uint32
	SellFeeBps          uint32
	LaunchFeePLS        string
	VirtualBaseReserve  string
	VirtualUnitReserve  string
	MaxSupply           string
	GraduationThreshold string
	BurnBps             uint32
	PoolABps            uint32
	PoolBBps            uint32
	RewardBps           uint32
	MinSeedRatioBps     uint32
	Treasury            [20]byte
	BurnSink            [20]byte
	ReceiptRecipient    [20]byte
}

// LaunchParamsGet loads the persisted parameter set.
func (m *Manager) LaunchParamsGet() (*launch.Params, bool, error) {
	raw, err := m.db.Get(paramsKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stored storedParams
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode params: %w", err)
	}
	launchFee, err := stringToBig(stored.LaunchFeePLS)
	if err != nil {
		return nil, false, err
	}
	vBase, err := stringToBig(stored.VirtualBaseReserve)
	if err != nil {
		return nil, false, err
	}
	vUnits, err := stringToBig(stored.VirtualUnitReserve)
	if err != nil {
		return nil, false, err
	}
	maxSupply, err := stringToBig(stored.MaxSupply)
	if err != nil {
		return nil, false, err
	}
	threshold, err := stringToBig(stored.GraduationThreshold)
	if err != nil {
		return nil, false, err
	}
	return &launch.Params{
		Version:             stored.Version,
		Paused:              stored.Paused,
		Fees:                fees.Policy{BuyBps: stored.BuyFeeBps, SellBps: stored.SellFeeBps},
		LaunchFeePLS:        launchFee,
		VirtualBaseReserve:  vBase,
		VirtualUnitReserve:  vUnits,
		MaxSupply:           maxSupply,
		GraduationThreshold: threshold,
		BurnBps:             stored.BurnBps,
		PoolABps:            stored.PoolABps,
		PoolBBps:            stored.PoolBBps,
		RewardBps:           stored.RewardBps,
		MinSeedRatioBps:     stored.MinSeedRatioBps,
		Treasury:            stored.Treasury,
		BurnSink:            stored.BurnSink,
		ReceiptRecipient:    stored.ReceiptRecipient,
	}, true, nil
}

// LaunchParamsPut persists the parameter set.
func (m *Manager) LaunchParamsPut(p *launch.Params) error {
	if p == nil {
		return fmt.Errorf("state: nil params")
	}
	stored := storedParams{
		Version:             p.Version,
		Paused:              p.Paused,
		BuyFeeBps:           p.Fees.BuyBps,
		SellFeeBps:          p.Fees.SellBps,
		LaunchFeePLS:        bigToString(p.LaunchFeePLS),
		VirtualBaseReserve:  bigToString(p.VirtualBaseReserve),
		VirtualUnitReserve:  bigToString(p.VirtualUnitReserve),
		MaxSupply:           bigToString(p.MaxSupply),
		GraduationThreshold: bigToString(p.GraduationThreshold),
		BurnBps:             p.BurnBps,
		PoolABps:            p.PoolABps,
		PoolBBps:            p.PoolBBps,
		RewardBps:           p.RewardBps,
		MinSeedRatioBps:     p.MinSeedRatioBps,
		Treasury:            p.Treasury,
		BurnSink:            p.BurnSink,
		ReceiptRecipient:    p.ReceiptRecipient,
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("state: encode params: %w", err)
	}
	return m.db.Put(paramsKey, raw)
}

// FeeExemptGet reports whether the address is in the fee exemption set.
func (m *Manager) FeeExemptGet(addr [20]byte) (bool, error) {
	_, err := m.db.Get(exemptKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FeeExemptPut adds or removes the address from the fee exemption set.
func (m *Manager) FeeExemptPut(addr [20]byte, exempt bool) error {
	if !exempt {
		return m.db.Delete(exemptKey(addr))
	}
	return m.db.Put(exemptKey(addr), []byte{1})
}

// storedAccount mirrors types.Account.
type storedAccount struct {
	Nonce      uint64
	BalancePLS string
}

// GetAccount loads the account, returning a zero-balance account for unknown
// addresses.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	raw, err := m.db.Get(acctKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return &types.Account{BalancePLS: big.NewInt(0)}, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedAccount
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	balance, err := stringToBig(stored.BalancePLS)
	if err != nil {
		return nil, err
	}
	return &types.Account{Nonce: stored.Nonce, BalancePLS: balance}, nil
}

// PutAccount stores the account.
func (m *Manager) PutAccount(addr [20]byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	stored := storedAccount{
		Nonce:      account.Nonce,
		BalancePLS: bigToString(account.BalancePLS),
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return m.db.Put(acctKey(addr), raw)
}

// MintUnits credits freshly issued units to the address.
func (m *Manager) MintUnits(tokenID uint64, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: mint amount must be positive")
	}
	balance, err := m.UnitBalance(tokenID, to)
	if err != nil {
		return err
	}
	return m.putUnitBalance(tokenID, to, new(big.Int).Add(balance, amount))
}

// BurnUnits destroys units held by the address.
func (m *Manager) BurnUnits(tokenID uint64, from [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: burn amount must be positive")
	}
	balance, err := m.UnitBalance(tokenID, from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("state: burn %s exceeds balance %s", amount, balance)
	}
	return m.putUnitBalance(tokenID, from, new(big.Int).Sub(balance, amount))
}

// UnitBalance reports the units held by the address for the token.
func (m *Manager) UnitBalance(tokenID uint64, addr [20]byte) (*big.Int, error) {
	raw, err := m.db.Get(unitsKey(tokenID, addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	balance, err := stringToBig(string(raw))
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (m *Manager) putUnitBalance(tokenID uint64, addr [20]byte, balance *big.Int) error {
	if balance.Sign() == 0 {
		return m.db.Delete(unitsKey(tokenID, addr))
	}
	return m.db.Put(unitsKey(tokenID, addr), []byte(balance.String()))
}
