package launch

import (
	"fmt"
	"math/big"
)

var bpsDivisor = big.NewInt(bpsDenominator)

// allocation is the multi-way split computed from the pre-graduation snapshot
// of the token's reserve and issued units.
type allocation struct {
	BurnUnits  *big.Int
	PoolAUnits *big.Int
	PoolBUnits *big.Int
	PoolABase  *big.Int
	PoolBBase  *big.Int
	Reward     *big.Int
}

func bpsShare(total *big.Int, bps uint32) *big.Int {
	if total == nil || total.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(total, big.NewInt(int64(bps)))
	return share.Div(share, bpsDivisor)
}

// computeAllocation derives every graduation leg from the snapshot. The base
// currency remaining after the success reward is split across the pool legs
// proportionally to their unit-allocation weights; the share of a weighted
// but unconfigured leg is deliberately left unassigned rather than
// redistributed, matching the reference behavior.
func computeAllocation(reserve, issued *big.Int, p Params) allocation {
	alloc := allocation{
		BurnUnits:  bpsShare(issued, p.BurnBps),
		PoolAUnits: bpsShare(issued, p.PoolABps),
		PoolBUnits: bpsShare(issued, p.PoolBBps),
		Reward:     bpsShare(reserve, p.RewardBps),
		PoolABase:  big.NewInt(0),
		PoolBBase:  big.NewInt(0),
	}
	distributable := new(big.Int).Sub(reserve, alloc.Reward)
	totalPoolWeight := int64(p.PoolABps) + int64(p.PoolBBps)
	if distributable.Sign() > 0 && totalPoolWeight > 0 {
		weight := big.NewInt(totalPoolWeight)
		if p.PoolABps > 0 {
			alloc.PoolABase = new(big.Int).Mul(distributable, big.NewInt(int64(p.PoolABps)))
			alloc.PoolABase.Div(alloc.PoolABase, weight)
		}
		if p.PoolBBps > 0 {
			alloc.PoolBBase = new(big.Int).Mul(distributable, big.NewInt(int64(p.PoolBBps)))
			alloc.PoolBBase.Div(alloc.PoolBBase, weight)
		}
	}
	return alloc
}

// maybeGraduate evaluates the graduation predicate after a buy and, when the
// reserve has crossed the effective threshold, executes the transition inside
// the same journal so a collaborator failure unwinds the entire operation.
func (e *Engine) maybeGraduate(j *journal, record *TokenRecord, p Params, overrides *TokenOverrides) (bool, []*PoolReceipt, error) {
	if record == nil || record.Status != StatusLive {
		return false, nil, nil
	}
	threshold := effectiveThreshold(p, overrides)
	if threshold == nil || record.ReserveBalance.Cmp(threshold) < 0 {
		return false, nil, nil
	}
	receipts, err := e.graduate(j, record, p)
	if err != nil {
		return false, nil, err
	}
	return true, receipts, nil
}

// graduate performs the Live→Graduated transition. The status flip, burn, and
// pool-seeding mints all land before the first external call so a re-entering
// collaborator observes a terminal record; the allocation itself is computed
// from the pre-graduation snapshot taken up front.
func (e *Engine) graduate(j *journal, record *TokenRecord, p Params) ([]*PoolReceipt, error) {
	reserve := new(big.Int).Set(record.ReserveBalance)
	issued := new(big.Int).Set(record.UnitsIssued)
	alloc := computeAllocation(reserve, issued, p)

	legA := p.PoolABps > 0 && e.poolA != nil
	legB := p.PoolBBps > 0 && e.poolB != nil

	record.Status = StatusGraduated
	record.GraduatedAt = e.now()
	if err := e.putTokenJournaled(j, record); err != nil {
		return nil, err
	}

	if err := e.burnToSink(j, record.ID, alloc.BurnUnits, p.BurnSink); err != nil {
		return nil, err
	}
	if legA {
		if err := e.mintJournaled(j, record.ID, e.vault, alloc.PoolAUnits); err != nil {
			return nil, err
		}
	}
	if legB {
		if err := e.mintJournaled(j, record.ID, e.vault, alloc.PoolBUnits); err != nil {
			return nil, err
		}
	}

	if alloc.Reward.Sign() > 0 {
		if isZeroAddress(p.Treasury) {
			return nil, errTreasuryNotSet
		}
		if err := e.transferJournaled(j, e.vault, p.Treasury, alloc.Reward); err != nil {
			return nil, fmt.Errorf("%w: success reward", ErrTransferFailed)
		}
	}

	recipient := p.ReceiptRecipient
	if isZeroAddress(recipient) {
		recipient = p.Treasury
	}

	receipts := make([]*PoolReceipt, 0, 2)
	if legA {
		receipt, err := e.seedPool(j, e.poolA, record, alloc.PoolABase, alloc.PoolAUnits, p.MinSeedRatioBps, recipient)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	} else if p.PoolABps > 0 {
		e.emit(GraduationLegSkippedEvent(record.ID, "poolA", alloc.PoolABase.String(), alloc.PoolAUnits.String()))
	}
	if legB {
		receipt, err := e.seedPool(j, e.poolB, record, alloc.PoolBBase, alloc.PoolBUnits, p.MinSeedRatioBps, recipient)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	} else if p.PoolBBps > 0 {
		e.emit(GraduationLegSkippedEvent(record.ID, "poolB", alloc.PoolBBase.String(), alloc.PoolBUnits.String()))
	}

	e.emit(TokenGraduatedEvent(record.ID, reserve.String(), alloc.BurnUnits.String(), alloc.Reward.String(), len(receipts)))
	return receipts, nil
}

// burnToSink destroys the burn allocation by minting it into the unspendable
// sink address, removing that share of supply from circulation permanently.
func (e *Engine) burnToSink(j *journal, tokenID uint64, amount *big.Int, sink [20]byte) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	return e.mintJournaled(j, tokenID, sink, amount)
}

// seedPool executes one external pool-seeding leg: the pool call first, then
// the vault debit and the destruction of the vault-held units that now live
// inside the pool. Any failure surfaces as ErrTransferFailed so the caller
// unwinds the whole operation, status flip included.
func (e *Engine) seedPool(j *journal, pool LiquidityPool, record *TokenRecord, amountBase, amountUnits *big.Int, minRatioBps uint32, recipient [20]byte) (*PoolReceipt, error) {
	receipt, err := pool.SeedLiquidity(record.Address, amountBase, amountUnits, minRatioBps, recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %s seeding: %w", ErrTransferFailed, pool.Name(), err)
	}
	if err := e.debitJournaled(j, e.vault, amountBase); err != nil {
		return nil, fmt.Errorf("%w: %s base leg", ErrTransferFailed, pool.Name())
	}
	if err := e.burnJournaled(j, record.ID, e.vault, amountUnits); err != nil {
		return nil, fmt.Errorf("%w: %s unit leg", ErrTransferFailed, pool.Name())
	}
	return receipt, nil
}
