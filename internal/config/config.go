// Package config loads the game's HCL configuration file, mirroring the
// shape and defaulting style of a server configuration file: a typed
// struct decoded with gohcl, falling back to DefaultConfig when the file
// is absent, with defaults backfilled for zero-valued table geometry,
// freeze, interval and delay fields and for an empty player list. The
// turn timeouts and hints are taken as written: a zero turn timeout
// selects elapsed mode.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete game configuration.
type Config struct {
	Table   TableConfig   `hcl:"table,block"`
	Game    GameConfig    `hcl:"game,block"`
	Players []PlayerEntry `hcl:"player,block"`
}

// TableConfig describes the grid of slots and the card feature space.
type TableConfig struct {
	Rows         int `hcl:"rows,optional"`
	Columns      int `hcl:"columns,optional"`
	FeatureSize  int `hcl:"feature_size,optional"`
	FeatureCount int `hcl:"feature_count,optional"`
}

// GameConfig describes round timing and scoring.
type GameConfig struct {
	TurnTimeoutMs        int64 `hcl:"turn_timeout_ms,optional"`
	TurnTimeoutWarningMs int64 `hcl:"turn_timeout_warning_ms,optional"`
	PointFreezeMs        int64 `hcl:"point_freeze_ms,optional"`
	PenaltyFreezeMs      int64 `hcl:"penalty_freeze_ms,optional"`
	ComputerIntervalMs   int64 `hcl:"computer_interval_ms,optional"`
	TableDelayMs         int64 `hcl:"table_delay_ms,optional"`
	Hints                bool  `hcl:"hints,optional"`
}

// PlayerEntry configures one seat: human seats bind a key set for its
// slots, computer seats are driven by internal/computer instead.
type PlayerEntry struct {
	Name  string   `hcl:"name,label"`
	Human bool     `hcl:"human,optional"`
	Keys  []string `hcl:"keys,optional"`
}

// DefaultConfig returns the configuration used when no file is given:
// a 3x4 table (the classic 81-card deck), one human seat and one
// computer seat, and a 10 second countdown per round.
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			Rows:         3,
			Columns:      4,
			FeatureSize:  3,
			FeatureCount: 4,
		},
		Game: GameConfig{
			TurnTimeoutMs:        10000,
			TurnTimeoutWarningMs: 3000,
			PointFreezeMs:        3000,
			PenaltyFreezeMs:      1000,
			ComputerIntervalMs:   750,
			TableDelayMs:         10,
		},
		Players: []PlayerEntry{
			{Name: "player1", Human: true, Keys: []string{"q", "w", "e", "r", "a", "s", "d", "f", "z", "x", "c", "v"}},
			{Name: "bot1", Human: false},
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// DefaultConfig if filename does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	def := DefaultConfig()
	if cfg.Table.Rows == 0 {
		cfg.Table.Rows = def.Table.Rows
	}
	if cfg.Table.Columns == 0 {
		cfg.Table.Columns = def.Table.Columns
	}
	if cfg.Table.FeatureSize == 0 {
		cfg.Table.FeatureSize = def.Table.FeatureSize
	}
	if cfg.Table.FeatureCount == 0 {
		cfg.Table.FeatureCount = def.Table.FeatureCount
	}
	if cfg.Game.PointFreezeMs == 0 {
		cfg.Game.PointFreezeMs = def.Game.PointFreezeMs
	}
	if cfg.Game.PenaltyFreezeMs == 0 {
		cfg.Game.PenaltyFreezeMs = def.Game.PenaltyFreezeMs
	}
	if cfg.Game.ComputerIntervalMs == 0 {
		cfg.Game.ComputerIntervalMs = def.Game.ComputerIntervalMs
	}
	if cfg.Game.TableDelayMs == 0 {
		cfg.Game.TableDelayMs = def.Game.TableDelayMs
	}
	if len(cfg.Players) == 0 {
		cfg.Players = def.Players
	}

	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Table.Rows <= 0 || c.Table.Columns <= 0 {
		return fmt.Errorf("table rows and columns must be positive")
	}
	if c.Table.FeatureSize <= 0 || c.Table.FeatureCount <= 0 {
		return fmt.Errorf("feature_size and feature_count must be positive")
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player must be configured")
	}

	tableSize := c.Table.Rows * c.Table.Columns
	deckSize := 1
	for i := 0; i < c.Table.FeatureCount; i++ {
		deckSize *= c.Table.FeatureSize
	}
	if tableSize > deckSize {
		return fmt.Errorf("table size %d exceeds deck size %d", tableSize, deckSize)
	}

	for _, p := range c.Players {
		if p.Human && len(p.Keys) < c.Table.FeatureSize {
			return fmt.Errorf("player %s: needs at least %d keys bound, got %d", p.Name, c.Table.FeatureSize, len(p.Keys))
		}
	}

	return nil
}

// TableSize returns the total number of slots.
func (c *Config) TableSize() int { return c.Table.Rows * c.Table.Columns }

// HumanCount returns the number of human seats.
func (c *Config) HumanCount() int {
	n := 0
	for _, p := range c.Players {
		if p.Human {
			n++
		}
	}
	return n
}

// ComputerCount returns the number of computer seats.
func (c *Config) ComputerCount() int {
	return len(c.Players) - c.HumanCount()
}
