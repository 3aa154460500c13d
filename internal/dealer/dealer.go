// Package dealer implements the single coordinating agent: the round and
// timer state machine, the claim-submission protocol, card placement and
// removal, and startup/shutdown ordering for all player agents.
package dealer

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/computer"
	"github.com/lox/setengine/internal/player"
	"github.com/lox/setengine/internal/table"
	"github.com/lox/setengine/internal/ui"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Mode is the round-timing mode derived from Options.TurnTimeoutMs.
type Mode int

const (
	Countdown Mode = iota
	FreePlay
	Elapsed
)

func (m Mode) String() string {
	switch m {
	case Countdown:
		return "countdown"
	case FreePlay:
		return "free-play"
	case Elapsed:
		return "elapsed"
	default:
		return "unknown"
	}
}

// infiniteMs stands in for the "no deadline" reshuffleAt value.
const infiniteMs = int64(math.MaxInt64)

// Options configures a Dealer.
type Options struct {
	TableSize  int
	CardConfig cards.Config

	TurnTimeoutMs        int64
	TurnTimeoutWarningMs int64
	PointFreezeMs        int64
	PenaltyFreezeMs      int64

	HumanPlayers    int
	ComputerPlayers int

	ComputerInterval time.Duration
	StartDelay       time.Duration

	Hints bool
}

func (o Options) mode() Mode {
	switch {
	case o.TurnTimeoutMs > 0:
		return Countdown
	case o.TurnTimeoutMs < 0:
		return FreePlay
	default:
		return Elapsed
	}
}

func (o Options) numPlayers() int {
	return o.HumanPlayers + o.ComputerPlayers
}

// Dealer is the single coordinating agent: it deals cards, consumes the
// claim queue, and drives the round timer.
type Dealer struct {
	opts   Options
	mode   Mode
	util   cards.Util
	table  *table.Table
	deck   *cards.Deck
	ui     ui.UserInterface
	clock  quartz.Clock
	rng    *rand.Rand
	logger zerolog.Logger

	players    []*player.Player
	generators []*computer.Generator

	reshuffleAt atomic.Int64
	elapsedBase atomic.Int64

	claims        chan int
	pendingClaims []int

	removalsMu      sync.Mutex
	pendingRemovals [][]cards.Slot

	// outOfPlay holds cards removed by completed claims in Countdown mode;
	// they rejoin the deck only at the round-ending reshuffle, so a claimed
	// card never reappears within the same countdown window.
	outOfPlay []cards.Card

	terminate atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// New builds a Dealer and its player agents and computer generators, but
// does not start any goroutines; call Run for that.
func New(opts Options, util cards.Util, userUI ui.UserInterface, clock quartz.Clock, rng *rand.Rand, logger zerolog.Logger) *Dealer {
	if opts.StartDelay <= 0 {
		opts.StartDelay = 10 * time.Millisecond
	}
	if opts.ComputerInterval <= 0 {
		opts.ComputerInterval = 50 * time.Millisecond
	}

	n := opts.numPlayers()
	d := &Dealer{
		opts:   opts,
		mode:   opts.mode(),
		util:   util,
		table:  table.New(opts.TableSize, opts.CardConfig.DeckSize(), n, userUI),
		deck:   cards.NewDeck(opts.CardConfig.DeckSize()),
		ui:     userUI,
		clock:  clock,
		rng:    rng,
		logger: logger.With().Str("component", "dealer").Logger(),
		claims: make(chan int, n),
	}
	d.reshuffleAt.Store(infiniteMs)
	d.stopCh = make(chan struct{})

	d.players = make([]*player.Player, n)
	d.generators = make([]*computer.Generator, 0, opts.ComputerPlayers)
	for i := 0; i < n; i++ {
		human := i < opts.HumanPlayers
		d.players[i] = player.New(i, human, opts.CardConfig.FeatureSize, d.table, d, userUI, clock, opts.PointFreezeMs, opts.PenaltyFreezeMs, d.logger)
		if !human {
			seed := rng.Uint64()
			glogger := d.logger.With().Int("player", i).Logger()
			d.generators = append(d.generators, computer.New(d.players[i], opts.TableSize, opts.ComputerInterval, seed, glogger))
		}
	}

	return d
}

// Players returns the dealer's player agents, in id order.
func (d *Dealer) Players() []*player.Player { return d.players }

// Table returns the shared table.
func (d *Dealer) Table() *table.Table { return d.table }

// Terminate requests a clean shutdown: every player is asked to stop, in
// descending id order with a small spacing, then the dealer itself.
func (d *Dealer) Terminate() {
	d.stopOnce.Do(func() {
		for i := len(d.players) - 1; i >= 0; i-- {
			d.players[i].Terminate()
			if i > 0 {
				time.Sleep(d.opts.StartDelay)
			}
		}
		for _, g := range d.generators {
			g.Terminate()
		}
		d.terminate.Store(true)
		close(d.stopCh)
	})
}

// Run is the dealer's top-level loop:
//
//	start all player agents (id ascending, ~10ms apart)
//	while not shouldFinish():
//	  placeCardsOnTable()
//	  timerLoop()
//	  removeAllCardsFromTable()
//	announceWinners()
//	terminate(); join players in descending id order
func (d *Dealer) Run() {
	exited := d.startPlayers()

	var genGroup errgroup.Group
	for _, g := range d.generators {
		genGroup.Go(g.Run)
	}

	for !d.shouldFinish() {
		d.placeCardsOnTable()
		d.timerLoop()
		d.removeAllCardsFromTable()
	}

	d.announceWinners()
	d.Terminate()
	for i := len(exited) - 1; i >= 0; i-- {
		<-exited[i]
	}
	_ = genGroup.Wait()
}

// startPlayers starts every player agent in id order and returns one
// channel per player, closed once that player's Run returns.
func (d *Dealer) startPlayers() []chan struct{} {
	exited := make([]chan struct{}, len(d.players))
	for i, p := range d.players {
		exited[i] = make(chan struct{})
		go func(p *player.Player, done chan struct{}) {
			defer close(done)
			p.Run()
		}(p, exited[i])
		if i < len(d.players)-1 {
			time.Sleep(d.opts.StartDelay)
		}
	}
	return exited
}

// shouldFinish reports whether the game should end: either termination was
// requested, or no legal set can be found in the deck (or, if the deck is
// empty, on the table).
func (d *Dealer) shouldFinish() bool {
	if d.terminate.Load() {
		return true
	}

	deckCards := d.deck.Cards()
	if len(deckCards) > 0 {
		return len(d.util.FindSets(deckCards, 1)) == 0
	}

	d.table.LockAllSlots(false)
	tableCards := d.cardsOnTableLocked()
	d.table.UnlockAllSlots(false)
	return len(d.util.FindSets(tableCards, 1)) == 0
}

func (d *Dealer) cardsOnTableLocked() []cards.Card {
	out := make([]cards.Card, 0, d.opts.TableSize)
	for s := 0; s < d.opts.TableSize; s++ {
		if c := d.table.CardAt(cards.Slot(s)); c != cards.NoCard {
			out = append(out, c)
		}
	}
	return out
}

// ToggleToken implements player.Dealer: it is called with slot's writer
// lock held by the calling player agent. Below featureSize
// tokens it simply toggles; on reaching featureSize it marks the player
// examined and enqueues a claim for the dealer loop to pick up.
func (d *Dealer) ToggleToken(playerID int, slot cards.Slot) {
	featureSize := d.opts.CardConfig.FeatureSize

	if d.table.HasToken(playerID, slot) {
		d.table.RemoveToken(playerID, slot)
		return
	}

	if d.table.TokenCount(playerID) >= featureSize {
		return
	}

	d.table.PlaceToken(playerID, slot)
	if d.table.TokenCount(playerID) == featureSize {
		d.players[playerID].SetExamined(true)
		d.enqueueClaim(playerID)
	}
}

func (d *Dealer) enqueueClaim(playerID int) {
	select {
	case d.claims <- playerID:
	default:
		// claims is sized to numPlayers; a full channel means playerID is
		// already queued (the examined flag prevents double-enqueue), so
		// this should not happen, but never block the caller.
	}
}

// timerLoop runs one round: while not terminated and the
// clock hasn't reached reshuffleAt, sleep until woken by a claim or by the
// deadline, examine any claims, update the timer display, apply removals
// from completed claims, and replenish the table. reshuffleAt is armed by
// updateTimerDisplay (Countdown) or by placeCardsOnTable (FreePlay/Elapsed,
// which also drives this same replenishment from inside the loop body).
func (d *Dealer) timerLoop() {
	for !d.terminate.Load() && d.clock.Now().UnixMilli() < d.reshuffleAt.Load() {
		woke := d.sleepUntilWokenOrTimeout()
		if woke {
			d.examineClaims()
		}
		d.updateTimerDisplay(false)
		if d.terminate.Load() {
			return
		}
		d.applyPendingRemovals()
		d.placeCardsOnTable()
	}
}

// sleepUntilWokenOrTimeout sleeps for 1s, or for 10ms once the deadline is
// within the warning window, so the timer display refreshes regularly
// even with no claims; a claim submission interrupts the sleep
// immediately. It reports whether it woke because of a claim.
func (d *Dealer) sleepUntilWokenOrTimeout() bool {
	interval := time.Second
	remaining := d.reshuffleAt.Load() - d.clock.Now().UnixMilli()
	if d.opts.TurnTimeoutWarningMs > 0 && remaining <= d.opts.TurnTimeoutWarningMs {
		interval = 10 * time.Millisecond
	}
	if remaining >= 0 && remaining < int64(interval/time.Millisecond) {
		interval = time.Duration(remaining) * time.Millisecond
	}

	tc := make(chan time.Time, 1)
	timer := d.clock.AfterFunc(interval, func() {
		tc <- d.clock.Now()
	})
	defer timer.Stop()

	select {
	case p := <-d.claims:
		d.pendingClaims = append(d.pendingClaims, p)
		return true
	case <-tc:
		return false
	case <-d.stopCh:
		return false
	}
}

// examineClaims drains any further already-queued claims (the channel
// doubles as queue and wake signal) and examines each in
// arrival order.
func (d *Dealer) examineClaims() {
	d.drainClaims()
	for _, p := range d.pendingClaims {
		d.examineClaim(p)
	}
	d.pendingClaims = d.pendingClaims[:0]
	d.table.SetReady(false)
}

func (d *Dealer) drainClaims() {
	for {
		select {
		case p := <-d.claims:
			d.pendingClaims = append(d.pendingClaims, p)
		default:
			return
		}
	}
}

// examineClaim locks every slot on the table for reading, reads the
// claimant's token snapshot, tests it, and awards a point or penalty. A
// claimant whose tokens were stolen by an earlier winning set has a short
// snapshot and is dismissed without penalty. A completed set's slots are
// queued for removal (see applyPendingRemovals), and every other player's
// tokens on those slots are discarded, cancelling their queued claims.
func (d *Dealer) examineClaim(playerID int) {
	featureSize := d.opts.CardConfig.FeatureSize
	p := d.players[playerID]

	d.table.LockAllSlots(false)
	defer d.table.UnlockAllSlots(false)

	snapshot := d.table.TokenSnapshot(playerID)
	if len(snapshot) != featureSize {
		p.SetExamined(false)
		return
	}

	var triple [3]cards.Card
	valid := true
	for i, s := range snapshot {
		c := d.table.CardAt(s)
		if c == cards.NoCard {
			valid = false
			break
		}
		triple[i] = c
	}

	if !valid || !d.util.TestSet(triple) {
		p.Penalty()
		return
	}

	for _, q := range d.players {
		changed := false
		for _, s := range snapshot {
			if d.table.DiscardToken(q.ID, s) {
				changed = true
			}
		}
		if changed && q.ID != playerID {
			q.SetExamined(false)
		}
	}
	p.Point()
	d.removalsMu.Lock()
	d.pendingRemovals = append(d.pendingRemovals, snapshot)
	d.removalsMu.Unlock()
}

// placeCardsOnTable fills empty slots from the deck, dealing shuffled
// cards to a shuffled order of empties, and marks the table ready. In
// FreePlay/Elapsed mode it then rearms reshuffleAt from whether a set now
// exists on the table: no set means the round is over as soon as this
// tick's timerLoop notices, a set means the round keeps running
// indefinitely. Countdown mode's deadline is instead armed by
// updateTimerDisplay's reset branch.
func (d *Dealer) placeCardsOnTable() {
	d.table.SetReady(false)

	anyPlaced := false
	d.table.LockAllSlots(true)
	empty := make([]cards.Slot, 0, d.opts.TableSize)
	for s := 0; s < d.opts.TableSize; s++ {
		if d.table.CardAt(cards.Slot(s)) == cards.NoCard {
			empty = append(empty, cards.Slot(s))
		}
	}
	if len(empty) > 0 {
		d.table.LockDeck()
		d.rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })
		d.deck.Shuffle(d.rng)
		for _, s := range empty {
			card, ok := d.deck.PopFront()
			if !ok {
				break
			}
			d.table.PlaceCard(card, s)
			anyPlaced = true
		}
		d.table.UnlockDeck()
	}
	tableCards := d.cardsOnTableLocked()
	d.table.UnlockAllSlots(true)

	if d.mode != Countdown {
		if len(d.util.FindSets(tableCards, 1)) == 0 {
			d.reshuffleAt.Store(d.clock.Now().UnixMilli())
		} else {
			d.reshuffleAt.Store(infiniteMs)
		}
	}

	if anyPlaced && d.opts.Hints {
		d.renderHints(tableCards)
	}

	d.table.SetReady(true)

	if anyPlaced && !d.shouldFinish() {
		d.updateTimerDisplay(true)
	}
}

// renderHints logs one legal set currently on the table. Hints are a log
// concern, not a UserInterface one: the collaborator interface has no hint
// surface, and a spectator tailing the log is the intended audience.
func (d *Dealer) renderHints(tableCards []cards.Card) {
	sets := d.util.FindSets(tableCards, 1)
	if len(sets) == 0 {
		return
	}
	hint := make([]int, 0, len(sets[0]))
	for _, c := range sets[0] {
		hint = append(hint, int(c))
	}
	d.logger.Debug().Ints("cards", hint).Msg("hint: a set is on the table")
}

// applyPendingRemovals clears the slots of any sets claimed since the
// previous tick of the current round. In Countdown mode the claimed cards move to outOfPlay
// until the next full reshuffle in removeAllCardsFromTable; in
// Elapsed/FreePlay mode they are pushed back into
// the deck immediately so placeCardsOnTable's refill, which runs right
// after this, can reuse them the same round.
func (d *Dealer) applyPendingRemovals() {
	d.removalsMu.Lock()
	removals := d.pendingRemovals
	d.pendingRemovals = nil
	d.removalsMu.Unlock()

	if len(removals) == 0 {
		return
	}

	d.table.LockAllSlots(true)
	d.table.LockDeck()
	for _, snapshot := range removals {
		for _, s := range snapshot {
			card := d.table.CardAt(s)
			d.table.RemoveCard(s)
			if card == cards.NoCard {
				continue
			}
			if d.mode == Countdown {
				d.outOfPlay = append(d.outOfPlay, card)
			} else {
				d.deck.PushBack(card)
			}
		}
	}
	d.table.UnlockDeck()
	d.table.UnlockAllSlots(true)
}

// removeAllCardsFromTable clears every token and slot, returns every card
// (including Countdown-mode out-of-play cards) to the deck, reshuffles it,
// and discards the players' pending key-presses, for the reshuffle between
// rounds.
func (d *Dealer) removeAllCardsFromTable() {
	d.table.SetReady(false)

	d.removalsMu.Lock()
	d.pendingRemovals = nil
	d.removalsMu.Unlock()

	d.table.LockAllSlots(true)
	d.table.LockDeck()
	d.table.RemoveAllTokens()
	for s := 0; s < d.opts.TableSize; s++ {
		slot := cards.Slot(s)
		if c := d.table.CardAt(slot); c != cards.NoCard {
			d.deck.PushBack(c)
		}
		d.table.RemoveCard(slot)
	}
	for _, c := range d.outOfPlay {
		d.deck.PushBack(c)
	}
	d.outOfPlay = nil
	d.deck.Shuffle(d.rng)
	d.table.UnlockDeck()
	d.table.UnlockAllSlots(true)

	for _, p := range d.players {
		p.ClearQueue()
	}
}

// updateTimerDisplay notifies the UI of the current round timer state and
// each player's remaining freeze. If reset is true the round's
// elapsed-time base is rearmed; in Countdown mode a reset additionally
// rearms the reshuffle deadline and lifts every player's freeze, matching
// a fresh round start. Freeze displays are rounded up to whole seconds
// except inside the countdown's warning window, where the raw remainder
// passes through for a fine-grained final tick.
func (d *Dealer) updateTimerDisplay(reset bool) {
	now := d.clock.Now().UnixMilli()
	if reset {
		d.elapsedBase.Store(now)
		if d.mode == Countdown {
			d.reshuffleAt.Store(now + d.opts.TurnTimeoutMs)
			for _, p := range d.players {
				p.ClearFreeze()
			}
		}
	}
	if d.ui == nil {
		return
	}

	warn := false
	switch d.mode {
	case Countdown:
		remaining := d.reshuffleAt.Load() - now
		if remaining < 0 {
			remaining = 0
		}
		warn = d.opts.TurnTimeoutWarningMs > 0 && remaining <= d.opts.TurnTimeoutWarningMs
		d.ui.SetCountdown(remaining, warn)
	case Elapsed:
		d.ui.SetElapsed(now - d.elapsedBase.Load())
	case FreePlay:
		// No countdown or elapsed clock is emitted in free play.
	}

	for _, p := range d.players {
		remaining := p.RemainingFreezeMs()
		if remaining > 0 && !warn {
			remaining = (remaining + 999) / 1000 * 1000
		}
		d.ui.SetFreeze(p.ID, remaining)
	}
}

// announceWinners notifies the UI of every player tied for the highest
// score.
func (d *Dealer) announceWinners() {
	if len(d.players) == 0 {
		return
	}
	best := 0
	for _, p := range d.players {
		if s := p.Score(); s > best {
			best = s
		}
	}
	var winners []int
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.ID)
		}
	}
	if d.ui != nil {
		d.ui.AnnounceWinners(winners)
	}
}
