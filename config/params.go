package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"curvelaunch/native/launch"
)

// paramsFile is the YAML shape of the engine economics file. Every field is
// optional; unset fields keep the engine defaults.
type paramsFile struct {
	BuyFeeBps           *uint32 `yaml:"buyFeeBps"`
	SellFeeBps          *uint32 `yaml:"sellFeeBps"`
	LaunchFeePLS        *string `yaml:"launchFeePls"`
	VirtualBaseReserve  *string `yaml:"virtualBaseReserve"`
	VirtualUnitReserve  *string `yaml:"virtualUnitReserve"`
	MaxSupply           *string `yaml:"maxSupply"`
	GraduationThreshold *string `yaml:"graduationThreshold"`
	BurnBps             *uint32 `yaml:"burnBps"`
	PoolABps            *uint32 `yaml:"poolABps"`
	PoolBBps            *uint32 `yaml:"poolBBps"`
	RewardBps           *uint32 `yaml:"rewardBps"`
	MinSeedRatioBps     *uint32 `yaml:"minSeedRatioBps"`
	Treasury            *string `yaml:"treasury"`
	BurnSink            *string `yaml:"burnSink"`
	ReceiptRecipient    *string `yaml:"receiptRecipient"`
}

// LoadParams builds the initial engine parameter set from an optional YAML
// file layered over the defaults. An empty path returns the defaults.
func LoadParams(path string) (launch.Params, error) {
	p := launch.DefaultParams()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return launch.Params{}, fmt.Errorf("config: read params file: %w", err)
	}
	var file paramsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return launch.Params{}, fmt.Errorf("config: parse params file: %w", err)
	}

	if file.BuyFeeBps != nil {
		p.Fees.BuyBps = *file.BuyFeeBps
	}
	if file.SellFeeBps != nil {
		p.Fees.SellBps = *file.SellFeeBps
	}
	if err := setBig(&p.LaunchFeePLS, file.LaunchFeePLS, "launchFeePls"); err != nil {
		return launch.Params{}, err
	}
	if err := setBig(&p.VirtualBaseReserve, file.VirtualBaseReserve, "virtualBaseReserve"); err != nil {
		return launch.Params{}, err
	}
	if err := setBig(&p.VirtualUnitReserve, file.VirtualUnitReserve, "virtualUnitReserve"); err != nil {
		return launch.Params{}, err
	}
	if err := setBig(&p.MaxSupply, file.MaxSupply, "maxSupply"); err != nil {
		return launch.Params{}, err
	}
	if err := setBig(&p.GraduationThreshold, file.GraduationThreshold, "graduationThreshold"); err != nil {
		return launch.Params{}, err
	}
	if file.BurnBps != nil {
		p.BurnBps = *file.BurnBps
	}
	if file.PoolABps != nil {
		p.PoolABps = *file.PoolABps
	}
	if file.PoolBBps != nil {
		p.PoolBBps = *file.PoolBBps
	}
	if file.RewardBps != nil {
		p.RewardBps = *file.RewardBps
	}
	if file.MinSeedRatioBps != nil {
		p.MinSeedRatioBps = *file.MinSeedRatioBps
	}
	if err := setAddr(&p.Treasury, file.Treasury, "treasury"); err != nil {
		return launch.Params{}, err
	}
	if err := setAddr(&p.BurnSink, file.BurnSink, "burnSink"); err != nil {
		return launch.Params{}, err
	}
	if err := setAddr(&p.ReceiptRecipient, file.ReceiptRecipient, "receiptRecipient"); err != nil {
		return launch.Params{}, err
	}

	if err := p.Validate(); err != nil {
		return launch.Params{}, fmt.Errorf("config: params file: %w", err)
	}
	return p, nil
}

func setBig(dst **big.Int, raw *string, field string) error {
	if raw == nil {
		return nil
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(*raw), 10)
	if !ok {
		return fmt.Errorf("config: %s: invalid integer %q", field, *raw)
	}
	*dst = v
	return nil
}

func setAddr(dst *[20]byte, raw *string, field string) error {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(*raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != 20 {
		return fmt.Errorf("config: %s: invalid address %q", field, *raw)
	}
	copy(dst[:], decoded)
	return nil
}
