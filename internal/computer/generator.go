// Package computer implements the autonomous input generator standing in
// for a non-human player: a uniform random key-press source, deliberately
// not a set-finding AI.
package computer

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lox/setengine/internal/cards"
	"github.com/rs/zerolog"
)

// Player is the subset of player.Player a Generator drives.
type Player interface {
	KeyPressed(slot cards.Slot)
}

// Generator repeatedly presses a uniformly random slot on behalf of a
// non-human player until terminated. The bounded chosenSlots queue and
// the KeyPressed admission predicate naturally back-pressure it; interval
// additionally prevents it from busy-spinning while presses are dropped.
type Generator struct {
	player    Player
	tableSize int
	interval  time.Duration
	rng       *rand.Rand
	logger    zerolog.Logger

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a generator for the given player and table size, seeded
// deterministically from seed so repeated runs with the same seed produce
// the same sequence of presses.
func New(player Player, tableSize int, interval time.Duration, seed uint64, logger zerolog.Logger) *Generator {
	return &Generator{
		player:    player,
		tableSize: tableSize,
		interval:  interval,
		rng:       rand.New(rand.NewPCG(seed, seed^goldenRatio64)),
		logger:    logger,
		done:      make(chan struct{}),
	}
}

const goldenRatio64 = 0x9e3779b97f4a7c15

// Terminate stops the generator. Safe to call multiple times.
func (g *Generator) Terminate() {
	g.doneOnce.Do(func() { close(g.done) })
}

// Run presses random slots until Terminate is called.
func (g *Generator) Run() error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return nil
		case <-ticker.C:
			slot := cards.Slot(g.rng.IntN(g.tableSize))
			g.player.KeyPressed(slot)
		}
	}
}
