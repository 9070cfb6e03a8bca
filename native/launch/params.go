package launch

import (
	"fmt"
	"math/big"
	"sync"

	"curvelaunch/native/fees"
)

// Bounds applied to every parameter update.
const (
	// MaxAllocationBps caps each graduation allocation weight at 50%.
	MaxAllocationBps = 5_000
	bpsDenominator   = 10_000
)

// Default engine economics.
const (
	DefaultBurnBps         = 2_000
	DefaultPoolABps        = 1_000
	DefaultPoolBBps        = 0
	DefaultRewardBps       = 500
	DefaultMinSeedRatioBps = 9_500
	DefaultBuyFeeBps       = 100
	DefaultSellFeeBps      = 100
)

// Params bundles every adjustable engine parameter. Updates replace the whole
// struct wholesale so concurrent readers never observe a torn combination of
// old and new fields.
type Params struct {
	Version uint64
	Paused  bool

	Fees         fees.Policy
	LaunchFeePLS *big.Int

	VirtualBaseReserve  *big.Int
	VirtualUnitReserve  *big.Int
	MaxSupply           *big.Int
	GraduationThreshold *big.Int

	BurnBps         uint32
	PoolABps        uint32
	PoolBBps        uint32
	RewardBps       uint32
	MinSeedRatioBps uint32

	Treasury         [20]byte
	BurnSink         [20]byte
	ReceiptRecipient [20]byte
}

// DefaultParams returns the stock engine economics: the curve shaped by
// 15M/250M virtual reserves, 1% trade fees, and graduation at a 50M reserve.
func DefaultParams() Params {
	return Params{
		Fees:                fees.Policy{BuyBps: DefaultBuyFeeBps, SellBps: DefaultSellFeeBps},
		LaunchFeePLS:        big.NewInt(0),
		VirtualBaseReserve:  big.NewInt(15_000_000),
		VirtualUnitReserve:  big.NewInt(250_000_000),
		MaxSupply:           big.NewInt(200_000_000),
		GraduationThreshold: big.NewInt(50_000_000),
		BurnBps:             DefaultBurnBps,
		PoolABps:            DefaultPoolABps,
		PoolBBps:            DefaultPoolBBps,
		RewardBps:           DefaultRewardBps,
		MinSeedRatioBps:     DefaultMinSeedRatioBps,
	}
}

// Clone returns a deep copy of the parameter set.
func (p Params) Clone() Params {
	clone := p
	if p.LaunchFeePLS != nil {
		clone.LaunchFeePLS = new(big.Int).Set(p.LaunchFeePLS)
	}
	if p.VirtualBaseReserve != nil {
		clone.VirtualBaseReserve = new(big.Int).Set(p.VirtualBaseReserve)
	}
	if p.VirtualUnitReserve != nil {
		clone.VirtualUnitReserve = new(big.Int).Set(p.VirtualUnitReserve)
	}
	if p.MaxSupply != nil {
		clone.MaxSupply = new(big.Int).Set(p.MaxSupply)
	}
	if p.GraduationThreshold != nil {
		clone.GraduationThreshold = new(big.Int).Set(p.GraduationThreshold)
	}
	return clone
}

// Validate enforces every bound the administrative setters must honor.
func (p Params) Validate() error {
	if err := p.Fees.Validate(); err != nil {
		return err
	}
	if p.LaunchFeePLS != nil && p.LaunchFeePLS.Sign() < 0 {
		return fmt.Errorf("params: launch fee must not be negative")
	}
	if p.VirtualBaseReserve == nil || p.VirtualBaseReserve.Sign() <= 0 {
		return fmt.Errorf("params: virtual base reserve must be positive")
	}
	if p.VirtualUnitReserve == nil || p.VirtualUnitReserve.Sign() <= 0 {
		return fmt.Errorf("params: virtual unit reserve must be positive")
	}
	if p.MaxSupply == nil || p.MaxSupply.Sign() <= 0 {
		return fmt.Errorf("params: max supply must be positive")
	}
	if p.MaxSupply.Cmp(p.VirtualUnitReserve) >= 0 {
		return fmt.Errorf("params: max supply must stay below the virtual unit reserve")
	}
	if p.GraduationThreshold == nil || p.GraduationThreshold.Sign() <= 0 {
		return fmt.Errorf("params: graduation threshold must be positive")
	}
	for name, bps := range map[string]uint32{
		"burn":   p.BurnBps,
		"poolA":  p.PoolABps,
		"poolB":  p.PoolBBps,
		"reward": p.RewardBps,
	} {
		if bps > MaxAllocationBps {
			return fmt.Errorf("params: %s allocation %d bps exceeds cap %d", name, bps, MaxAllocationBps)
		}
	}
	if total := p.BurnBps + p.PoolABps + p.PoolBBps; total > bpsDenominator {
		return fmt.Errorf("params: unit allocations total %d bps exceeds 100%%", total)
	}
	if p.MinSeedRatioBps > bpsDenominator {
		return fmt.Errorf("params: minimum seed ratio %d bps exceeds 100%%", p.MinSeedRatioBps)
	}
	return nil
}

// ParamStore holds the current parameter version and swaps it atomically on
// update. Reads taken at the start of an operation stay coherent for its
// whole duration; writes only affect operations submitted afterwards.
type ParamStore struct {
	mu      sync.RWMutex
	current Params
}

// NewParamStore validates and installs the initial parameter set.
func NewParamStore(initial Params) (*ParamStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &ParamStore{current: initial.Clone()}, nil
}

// Current returns a snapshot of the active parameters.
func (s *ParamStore) Current() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies mutate to a copy of the current parameters, validates the
// result, bumps the version, and installs the new set wholesale. The updated
// snapshot is returned.
func (s *ParamStore) Update(mutate func(*Params) error) (Params, error) {
	if mutate == nil {
		return Params{}, fmt.Errorf("params: mutate function required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current.Clone()
	if err := mutate(&next); err != nil {
		return Params{}, err
	}
	next.Version = s.current.Version + 1
	if err := next.Validate(); err != nil {
		return Params{}, err
	}
	s.current = next.Clone()
	return next, nil
}

// Replace installs a previously persisted parameter set without bumping the
// version. Used when restoring state at boot.
func (s *ParamStore) Replace(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p.Clone()
	return nil
}
