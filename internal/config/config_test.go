package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 12, cfg.TableSize())
	require.Equal(t, 1, cfg.HumanCount())
	require.Equal(t, 1, cfg.ComputerCount())
}

func TestLoadConfigMissingFileReturnsDefault(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestValidateRejectsOversizedTable(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Table.Rows = 100
	cfg.Table.Columns = 100
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsHumanWithoutEnoughKeys(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Players = []PlayerEntry{{Name: "p1", Human: true, Keys: []string{"q"}}}
	require.Error(t, cfg.Validate())
}
