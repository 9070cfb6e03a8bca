package launch

import (
	"math/big"
	"testing"
)

func testCurveParams() Params {
	p := DefaultParams()
	return p
}

func liveRecord(reserve, issued int64) *TokenRecord {
	return &TokenRecord{
		ID:             1,
		Status:         StatusLive,
		ReserveBalance: big.NewInt(reserve),
		UnitsIssued:    big.NewInt(issued),
		TradingVolume:  big.NewInt(0),
	}
}

func TestQuoteBuyFreshCurve(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(0, 0)

	// k = 15,000,000 * 250,000,000; a net payment of 990,000 moves the base
	// side to 15,990,000, so the unit side becomes floor(k / 15,990,000).
	got := quoteBuy(record, &p, big.NewInt(990_000))
	want := big.NewInt(250_000_000 - 3_750_000_000_000_000/15_990_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("quoteBuy = %s, want %s", got, want)
	}
}

func TestQuoteBuyMonotonic(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(2_500_000, 1_000_000)

	prev := big.NewInt(0)
	for _, in := range []int64{1_000, 50_000, 990_000, 5_000_000, 40_000_000} {
		out := quoteBuy(record, &p, big.NewInt(in))
		if out.Cmp(prev) <= 0 {
			t.Fatalf("quoteBuy(%d) = %s not greater than prior %s", in, out, prev)
		}
		prev = out
	}
}

func TestQuoteSellMonotonic(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(10_000_000, 100_000_000)

	prev := big.NewInt(0)
	for _, in := range []int64{1_000, 50_000, 990_000, 5_000_000, 40_000_000} {
		out := quoteSell(record, &p, big.NewInt(in))
		if out.Cmp(prev) <= 0 {
			t.Fatalf("quoteSell(%d) = %s not greater than prior %s", in, out, prev)
		}
		prev = out
	}
}

func TestQuoteBuyCapsAtRemainingSupply(t *testing.T) {
	p := testCurveParams()
	p.MaxSupply = big.NewInt(1_000_000)
	record := liveRecord(0, 900_000)

	out := quoteBuy(record, &p, big.NewInt(50_000_000))
	if out.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("capped quote = %s, want 100000", out)
	}
}

func TestQuoteSellCapsAtRealReserve(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(1_000, 50_000_000)

	// The curve values 50M units far above the 1,000 real reserve; the
	// payout must never dip into the virtual base liquidity.
	out := quoteSell(record, &p, big.NewInt(50_000_000))
	if out.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("capped payout = %s, want 1000", out)
	}
}

func TestQuoteSellRejectsOversizedInput(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(5_000_000, 1_000_000)

	if out := quoteSell(record, &p, big.NewInt(1_000_001)); out.Sign() != 0 {
		t.Fatalf("quoteSell beyond circulation = %s, want 0", out)
	}
}

func TestQuotesZeroForTerminalRecords(t *testing.T) {
	p := testCurveParams()
	for _, status := range []TokenStatus{StatusGraduated, StatusDelisted, StatusRugged} {
		record := liveRecord(1_000_000, 1_000_000)
		record.Status = status
		if out := quoteBuy(record, &p, big.NewInt(1_000)); out.Sign() != 0 {
			t.Fatalf("quoteBuy on %s record = %s, want 0", status, out)
		}
		if out := quoteSell(record, &p, big.NewInt(1_000)); out.Sign() != 0 {
			t.Fatalf("quoteSell on %s record = %s, want 0", status, out)
		}
	}
}

func TestQuotesZeroForNonPositiveInput(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(0, 0)

	for _, in := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		if out := quoteBuy(record, &p, in); out.Sign() != 0 {
			t.Fatalf("quoteBuy(%v) = %s, want 0", in, out)
		}
		if out := quoteSell(record, &p, in); out.Sign() != 0 {
			t.Fatalf("quoteSell(%v) = %s, want 0", in, out)
		}
	}
}

func TestCurrentPriceFreshCurve(t *testing.T) {
	p := testCurveParams()
	record := liveRecord(0, 0)

	// 15,000,000 * 1e18 / 250,000,000 = 6e16.
	want, _ := new(big.Int).SetString("60000000000000000", 10)
	if got := currentPrice(record, &p); got.Cmp(want) != 0 {
		t.Fatalf("currentPrice = %s, want %s", got, want)
	}
}

func TestCurrentPriceRisesWithIssuance(t *testing.T) {
	p := testCurveParams()
	fresh := currentPrice(liveRecord(0, 0), &p)
	deep := currentPrice(liveRecord(10_000_000, 50_000_000), &p)
	if deep.Cmp(fresh) <= 0 {
		t.Fatalf("price after issuance %s not above fresh price %s", deep, fresh)
	}
}
