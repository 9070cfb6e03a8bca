package fees

import (
	"math/big"
	"testing"
)

func TestApplyChargesConfiguredRate(t *testing.T) {
	result := Apply(ApplyInput{
		Gross:     big.NewInt(1_000_000),
		Direction: DirectionBuy,
		Policy:    Policy{BuyBps: 100, SellBps: 250},
	})
	if result.Fee.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("unexpected fee: %s", result.Fee)
	}
	if result.Net.Cmp(big.NewInt(990_000)) != 0 {
		t.Fatalf("unexpected net: %s", result.Net)
	}
}

func TestApplyUsesDirectionalRates(t *testing.T) {
	policy := Policy{BuyBps: 100, SellBps: 300}
	buy := Apply(ApplyInput{Gross: big.NewInt(10_000), Direction: DirectionBuy, Policy: policy})
	sell := Apply(ApplyInput{Gross: big.NewInt(10_000), Direction: DirectionSell, Policy: policy})
	if buy.Fee.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected buy fee: %s", buy.Fee)
	}
	if sell.Fee.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("unexpected sell fee: %s", sell.Fee)
	}
}

func TestApplyWaivesExemptTraders(t *testing.T) {
	result := Apply(ApplyInput{
		Gross:     big.NewInt(500_000),
		Direction: DirectionSell,
		Policy:    Policy{SellBps: 500},
		Exempt:    true,
	})
	if result.Fee.Sign() != 0 {
		t.Fatalf("expected zero fee for exempt trader, got %s", result.Fee)
	}
	if result.Net.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("net should equal gross for exempt trader, got %s", result.Net)
	}
}

func TestApplyTruncatesDust(t *testing.T) {
	// 99 * 100 / 10000 = 0 after truncation; no fee is collected.
	result := Apply(ApplyInput{Gross: big.NewInt(99), Direction: DirectionBuy, Policy: Policy{BuyBps: 100}})
	if result.Fee.Sign() != 0 {
		t.Fatalf("expected truncated fee, got %s", result.Fee)
	}
	if result.Net.Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("unexpected net: %s", result.Net)
	}
}

func TestApplyHandlesNilAndNegativeGross(t *testing.T) {
	if result := Apply(ApplyInput{Direction: DirectionBuy, Policy: Policy{BuyBps: 100}}); result.Net.Sign() != 0 || result.Fee.Sign() != 0 {
		t.Fatalf("nil gross should produce zero fee and net")
	}
	if result := Apply(ApplyInput{Gross: big.NewInt(-5), Policy: Policy{BuyBps: 100}}); result.Net.Sign() != 0 || result.Fee.Sign() != 0 {
		t.Fatalf("negative gross should produce zero fee and net")
	}
}

func TestPolicyValidateEnforcesCap(t *testing.T) {
	if err := (Policy{BuyBps: MaxFeeBps, SellBps: MaxFeeBps}).Validate(); err != nil {
		t.Fatalf("cap rate should validate: %v", err)
	}
	if err := (Policy{BuyBps: MaxFeeBps + 1}).Validate(); err == nil {
		t.Fatalf("expected validation failure above cap")
	}
	if err := (Policy{SellBps: MaxFeeBps + 1}).Validate(); err == nil {
		t.Fatalf("expected validation failure above cap")
	}
}
