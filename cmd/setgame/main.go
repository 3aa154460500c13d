// Command setgame runs the Set card-matching game: a single entry point,
// needing no flags, that loads its configuration from an HCL file, wires the
// table/dealer/player agents, and runs until terminated by a signal or
// the dealer's own end-of-game condition.
package main

import (
	"math/rand/v2"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/config"
	"github.com/lox/setengine/internal/dealer"
	"github.com/lox/setengine/internal/ui"
	"github.com/lox/setengine/internal/ui/headless"
	"github.com/lox/setengine/internal/ui/tui"
)

// version is set by ldflags during build.
var version = "dev"

// CLI is the single entry point: all configuration is file-driven, the
// optional positional argument only overrides the config file's path.
type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `arg:"" optional:"" default:"setgame.hcl" help:"Path to the game's HCL configuration file"`
	Debug   bool             `help:"Enable debug logging"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setgame"),
		kong.Description("Real-time, multi-player Set card-matching game"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger := config.SetupLogger(cli.Debug)

	cfg, err := config.LoadConfig(cli.Config)
	ctx.FatalIfErrorf(err)
	if err := cfg.Validate(); err != nil {
		ctx.Fatalf("invalid configuration: %v", err)
	}

	cardCfg := cards.Config{
		FeatureSize:  cfg.Table.FeatureSize,
		FeatureCount: cfg.Table.FeatureCount,
	}
	util := cards.NewClassicUtil(cardCfg)

	opts := dealer.Options{
		TableSize:            cfg.TableSize(),
		CardConfig:           cardCfg,
		TurnTimeoutMs:        cfg.Game.TurnTimeoutMs,
		TurnTimeoutWarningMs: cfg.Game.TurnTimeoutWarningMs,
		PointFreezeMs:        cfg.Game.PointFreezeMs,
		PenaltyFreezeMs:      cfg.Game.PenaltyFreezeMs,
		HumanPlayers:         cfg.HumanCount(),
		ComputerPlayers:      cfg.ComputerCount(),
		ComputerInterval:     time.Duration(cfg.Game.ComputerIntervalMs) * time.Millisecond,
		StartDelay:           time.Duration(cfg.Game.TableDelayMs) * time.Millisecond,
		Hints:                cfg.Game.Hints,
	}

	clock := quartz.NewReal()
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano())^goldenRatio64))

	// Human seats need a real terminal; batch (all-computer) runs get the
	// headless UI instead.
	var userUI ui.UserInterface
	var terminalUI *tui.TUI
	if cfg.HumanCount() > 0 {
		terminalUI = tui.New(cfg.Table.Rows, cfg.Table.Columns, logger)
		userUI = terminalUI
	} else {
		userUI = headless.New(logger)
	}

	d := dealer.New(opts, util, userUI, clock, rng, logger)

	if terminalUI != nil {
		terminalUI.Bind(keyedPlayers(cfg, d))
		terminalUI.Start()
		defer terminalUI.Close()
	}

	shutdown := config.SetupSignalHandler(logger)
	go func() {
		<-shutdown.Done()
		d.Terminate()
	}()

	d.Run()
}

const goldenRatio64 = 0x9e3779b97f4a7c15

// keyedPlayers builds the TUI's key bindings from the configured player
// entries, in the same id order the dealer assigned seats (human seats
// first, per dealer.New).
func keyedPlayers(cfg *config.Config, d *dealer.Dealer) []tui.KeyedPlayer {
	players := d.Players()
	humans := make([]config.PlayerEntry, 0, len(cfg.Players))
	bots := make([]config.PlayerEntry, 0, len(cfg.Players))
	for _, p := range cfg.Players {
		if p.Human {
			humans = append(humans, p)
		} else {
			bots = append(bots, p)
		}
	}
	ordered := append(append([]config.PlayerEntry{}, humans...), bots...)

	keyed := make([]tui.KeyedPlayer, len(players))
	for i, p := range players {
		name := p2name(ordered, i)
		kp := tui.KeyedPlayer{PlayerID: p.ID, Human: p.Human, Name: name}
		if p.Human {
			kp.Keys = keyMap(ordered[i].Keys)
			kp.Player = p
		}
		keyed[i] = kp
	}
	return keyed
}

func p2name(entries []config.PlayerEntry, i int) string {
	if i < len(entries) {
		return entries[i].Name
	}
	return "player"
}

func keyMap(keys []string) map[string]cards.Slot {
	m := make(map[string]cards.Slot, len(keys))
	for slot, key := range keys {
		m[key] = cards.Slot(slot)
	}
	return m
}
