package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"curvelaunch/native/launch"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8545", cfg.RPCAddress)
	require.Equal(t, "leveldb", cfg.Backend)
	require.FileExists(t, path)

	// The created file must load back identically.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("Backend = \"memory\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Backend)
	require.Equal(t, ":8545", cfg.RPCAddress)
	require.Equal(t, ":9464", cfg.MetricsAddress)
	require.Equal(t, "launch-local", cfg.NetworkName)
	require.Equal(t, 100, cfg.LogMaxSizeMB)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("Backend = \"cassandra\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown backend")
}

func TestLoadParamsEmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadParams("")
	require.NoError(t, err)
	defaults := launch.DefaultParams()
	require.Equal(t, defaults.Fees, p.Fees)
	require.Equal(t, 0, p.GraduationThreshold.Cmp(defaults.GraduationThreshold))
}

func TestLoadParamsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	body := `
buyFeeBps: 250
graduationThreshold: "75000000"
treasury: "0x00000000000000000000000000000000000000aa"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)
	require.Equal(t, uint32(250), p.Fees.BuyBps)
	require.Equal(t, "75000000", p.GraduationThreshold.String())
	require.Equal(t, byte(0xAA), p.Treasury[19])

	// Untouched fields keep the defaults.
	defaults := launch.DefaultParams()
	require.Equal(t, defaults.Fees.SellBps, p.Fees.SellBps)
	require.Equal(t, 0, p.MaxSupply.Cmp(defaults.MaxSupply))
}

func TestLoadParamsRejectsOutOfBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buyFeeBps: 600\n"), 0o644))

	_, err := LoadParams(path)
	require.Error(t, err)
}

func TestLoadParamsRejectsBadAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("treasury: \"0x1234\"\n"), 0o644))

	_, err := LoadParams(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid address")
}
