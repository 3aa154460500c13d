// Package player implements the per-seat agent: a bounded key-press
// queue, the admission predicate that gates key-presses into token
// actions, and score/freeze bookkeeping.
package player

import (
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/table"
	"github.com/rs/zerolog"
)

// Dealer is the non-owning interface a Player uses to request a token
// toggle; it is the only way a player reaches back into the dealer,
// avoiding a cyclic ownership between the two.
type Dealer interface {
	ToggleToken(playerID int, slot cards.Slot)
}

// UI is the subset of the UserInterface collaborator a player notifies.
type UI interface {
	SetScore(player int, score int)
	SetFreeze(player int, ms int64)
}

// Player is one seat's agent: it owns its key-press queue, score, and
// freeze window, and holds a non-owning reference to the dealer and the
// shared table.
type Player struct {
	ID    int
	Human bool

	table  *table.Table
	dealer Dealer
	ui     UI
	clock  quartz.Clock
	logger zerolog.Logger

	pointFreezeMs   int64
	penaltyFreezeMs int64

	chosenSlots chan cards.Slot

	score         atomic.Int64
	freezeUntilMs atomic.Int64 // -1 means not frozen
	examined      atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a player agent. featureSize is the queue capacity (a claim
// fires once this many tokens are held).
func New(id int, human bool, featureSize int, t *table.Table, dealer Dealer, ui UI, clock quartz.Clock, pointFreezeMs, penaltyFreezeMs int64, logger zerolog.Logger) *Player {
	p := &Player{
		ID:              id,
		Human:           human,
		table:           t,
		dealer:          dealer,
		ui:              ui,
		clock:           clock,
		logger:          logger.With().Int("player", id).Logger(),
		pointFreezeMs:   pointFreezeMs,
		penaltyFreezeMs: penaltyFreezeMs,
		chosenSlots:     make(chan cards.Slot, featureSize),
		done:            make(chan struct{}),
	}
	p.freezeUntilMs.Store(-1)
	return p
}

// Score returns the player's current score.
func (p *Player) Score() int { return int(p.score.Load()) }

// Examined reports whether a claim by this player is queued or under
// evaluation by the dealer.
func (p *Player) Examined() bool { return p.examined.Load() }

// SetExamined is called by the dealer to mark/clear the examined flag.
func (p *Player) SetExamined(v bool) { p.examined.Store(v) }

// FreezeUntilMs returns the absolute millisecond timestamp until which
// this player's key-presses are dropped, or -1 if not frozen.
func (p *Player) FreezeUntilMs() int64 { return p.freezeUntilMs.Load() }

// QueueLen returns the number of pending key-presses.
func (p *Player) QueueLen() int { return len(p.chosenSlots) }

// KeyPressed admits slot into the queue iff the player is not examined,
// the table is ready, the freeze window has elapsed, and the queue has
// room; otherwise the press is silently dropped.
func (p *Player) KeyPressed(slot cards.Slot) {
	if p.examined.Load() {
		return
	}
	if !p.table.Ready() {
		return
	}
	now := p.clock.Now().UnixMilli()
	if freeze := p.freezeUntilMs.Load(); freeze >= 0 && now < freeze {
		return
	}
	select {
	case p.chosenSlots <- slot:
	default:
		// Queue full; drop the press.
	}
}

// Point awards a point: increments the score, starts the point freeze,
// clears the examined flag and the pending queue, and notifies the UI.
func (p *Player) Point() {
	p.score.Add(1)
	p.startFreeze(p.pointFreezeMs)
	p.examined.Store(false)
	p.drainChosenSlots()
	if p.ui != nil {
		p.ui.SetScore(p.ID, int(p.score.Load()))
		p.ui.SetFreeze(p.ID, p.pointFreezeMs)
	}
}

// Penalty starts the penalty freeze, clears the examined flag and the
// pending queue. Score is unaffected.
func (p *Player) Penalty() {
	p.startFreeze(p.penaltyFreezeMs)
	p.examined.Store(false)
	p.drainChosenSlots()
	if p.ui != nil {
		p.ui.SetFreeze(p.ID, p.penaltyFreezeMs)
	}
}

func (p *Player) startFreeze(durationMs int64) {
	p.freezeUntilMs.Store(p.clock.Now().UnixMilli() + durationMs)
}

// ClearFreeze resets the freeze window, used by the dealer's countdown
// timer reset at the start of each round.
func (p *Player) ClearFreeze() {
	p.freezeUntilMs.Store(-1)
}

// RemainingFreezeMs returns max(0, freezeUntilMs-now).
func (p *Player) RemainingFreezeMs() int64 {
	freeze := p.freezeUntilMs.Load()
	if freeze < 0 {
		return 0
	}
	remaining := freeze - p.clock.Now().UnixMilli()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClearQueue discards any pending key-presses. The dealer calls this when
// clearing the whole table between rounds so stale presses cannot land on
// freshly dealt cards.
func (p *Player) ClearQueue() {
	p.drainChosenSlots()
}

func (p *Player) drainChosenSlots() {
	for {
		select {
		case <-p.chosenSlots:
		default:
			return
		}
	}
}

// Terminate signals the agent to stop and wakes it if blocked on the
// queue. Safe to call multiple times.
func (p *Player) Terminate() {
	p.doneOnce.Do(func() { close(p.done) })
}

// Done returns a channel closed once Terminate has been called.
func (p *Player) Done() <-chan struct{} { return p.done }

// Run is the agent's main loop: drain chosenSlots, and for each slot,
// acquire its writer lock and ask the dealer to toggle the token, until
// terminated. Run returns once Terminate is called.
func (p *Player) Run() {
	for {
		select {
		case slot := <-p.chosenSlots:
			p.handleSlot(slot)
		case <-p.done:
			return
		}
	}
}

func (p *Player) handleSlot(slot cards.Slot) {
	p.table.LockSlot(slot, true)
	defer p.table.UnlockSlot(slot, true)

	if p.table.Ready() && p.table.CardAt(slot) != cards.NoCard {
		p.dealer.ToggleToken(p.ID, slot)
	}
}
