// Package table implements the shared, fine-grained-locked table state:
// the slot<->card bijection, per-player tokens, and the ascending-acquire/
// descending-release multi-slot locking discipline the dealer and player
// agents depend on to avoid deadlock.
package table

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lox/setengine/internal/cards"
)

// UI is the subset of the UserInterface collaborator the table notifies
// directly when card/token state changes.
type UI interface {
	PlaceCard(card cards.Card, slot cards.Slot)
	RemoveCard(slot cards.Slot)
	PlaceToken(player int, slot cards.Slot)
	RemoveToken(player int, slot cards.Slot)
	RemoveTokensAtSlot(slot cards.Slot)
	RemoveTokensAll()
}

// Table holds the slot<->card bijection and per-player tokens for a game
// with the given number of slots and players. All card/token mutation is
// mediated by per-slot locks; see LockSlot/LockSlots/LockAllSlots.
type Table struct {
	tableSize  int
	numPlayers int

	slotLocks []sync.RWMutex
	deckLock  sync.Mutex

	// slotToCard/cardToSlot are only ever mutated while the relevant
	// slot's writer lock is held (see Table's godoc), so plain fields (not
	// atomics) are safe for them; the tokensMu below guards the tokens map
	// because a single token mutation touches one slot's lock but the whole
	// player's token set, and DiscardToken mutates it under reader locks.
	slotToCard []cards.Card
	cardToSlot []cards.Slot

	tokensMu sync.Mutex
	tokens   []map[cards.Slot]struct{} // tokens[player] = set of slots

	ready atomic.Bool

	ui UI
}

// New creates a table with tableSize slots, deckSize distinct cards, and
// numPlayers token sets. ui may be nil (no-op notifications).
func New(tableSize, deckSize, numPlayers int, ui UI) *Table {
	t := &Table{
		tableSize:  tableSize,
		numPlayers: numPlayers,
		slotLocks:  make([]sync.RWMutex, tableSize),
		slotToCard: make([]cards.Card, tableSize),
		cardToSlot: make([]cards.Slot, deckSize),
		tokens:     make([]map[cards.Slot]struct{}, numPlayers),
		ui:         ui,
	}
	for i := range t.slotToCard {
		t.slotToCard[i] = cards.NoCard
	}
	for i := range t.cardToSlot {
		t.cardToSlot[i] = cards.NoSlot
	}
	for i := range t.tokens {
		t.tokens[i] = make(map[cards.Slot]struct{})
	}
	return t
}

// TableSize returns the number of slots.
func (t *Table) TableSize() int { return t.tableSize }

// Ready reports the global table-ready admission flag gating key-presses.
func (t *Table) Ready() bool { return t.ready.Load() }

// SetReady sets the global table-ready admission flag. Exactly two
// writers exist: the dealer clears it before any structural mutation and
// sets it once placeCardsOnTable completes.
func (t *Table) SetReady(ready bool) { t.ready.Store(ready) }

// CardAt returns the card occupying slot, or cards.NoCard if empty. Callers
// must hold at least a reader lock on slot.
func (t *Table) CardAt(slot cards.Slot) cards.Card {
	return t.slotToCard[slot]
}

// SlotOf returns the slot holding card, or cards.NoSlot if it is not on the
// table. Callers must hold at least a reader lock on the returned slot's
// owner, which in practice means calling this only while holding a broad
// enough lock (e.g. during full-table operations).
func (t *Table) SlotOf(card cards.Card) cards.Slot {
	return t.cardToSlot[card]
}

// CountCards returns the number of non-empty slots. Callers should hold
// appropriate locks if they need a linearizable count.
func (t *Table) CountCards() int {
	n := 0
	for _, c := range t.slotToCard {
		if c != cards.NoCard {
			n++
		}
	}
	return n
}

// PlaceCard establishes slot<->card and notifies the UI. The caller must
// hold slot's writer lock, and slot/card must both currently be empty.
func (t *Table) PlaceCard(card cards.Card, slot cards.Slot) {
	t.slotToCard[slot] = card
	t.cardToSlot[card] = slot
	if t.ui != nil {
		t.ui.PlaceCard(card, slot)
	}
}

// RemoveCard clears slot<->card and every token on that slot, and notifies
// the UI. The caller must hold slot's writer lock; an empty slot is a
// no-op.
func (t *Table) RemoveCard(slot cards.Slot) {
	card := t.slotToCard[slot]
	if card == cards.NoCard {
		return
	}
	t.slotToCard[slot] = cards.NoCard
	t.cardToSlot[card] = cards.NoSlot

	t.tokensMu.Lock()
	any := false
	for _, set := range t.tokens {
		if _, ok := set[slot]; ok {
			delete(set, slot)
			any = true
		}
	}
	t.tokensMu.Unlock()
	if any && t.ui != nil {
		t.ui.RemoveTokensAtSlot(slot)
	}
	if t.ui != nil {
		t.ui.RemoveCard(slot)
	}
}

// HasToken reports whether player has a token on slot.
func (t *Table) HasToken(player int, slot cards.Slot) bool {
	t.tokensMu.Lock()
	defer t.tokensMu.Unlock()
	_, ok := t.tokens[player][slot]
	return ok
}

// TokenCount returns the number of tokens player currently has placed.
func (t *Table) TokenCount(player int) int {
	t.tokensMu.Lock()
	defer t.tokensMu.Unlock()
	return len(t.tokens[player])
}

// TokenSnapshot returns a copy of the slots player currently has tokens on.
func (t *Table) TokenSnapshot(player int) []cards.Slot {
	t.tokensMu.Lock()
	defer t.tokensMu.Unlock()
	out := make([]cards.Slot, 0, len(t.tokens[player]))
	for s := range t.tokens[player] {
		out = append(out, s)
	}
	return out
}

// PlaceToken adds a token for player on slot. Token mutation is guarded by
// tokensMu internally, not by the slot lock; callers must still hold at
// least a reader lock on slot per the protocol (so the card underneath the
// token cannot be concurrently removed).
func (t *Table) PlaceToken(player int, slot cards.Slot) {
	t.tokensMu.Lock()
	t.tokens[player][slot] = struct{}{}
	t.tokensMu.Unlock()
	if t.ui != nil {
		t.ui.PlaceToken(player, slot)
	}
}

// RemoveToken removes player's token on slot, if any; a no-op otherwise.
// Like PlaceToken, callers must hold at least a reader lock on slot.
func (t *Table) RemoveToken(player int, slot cards.Slot) {
	t.tokensMu.Lock()
	_, had := t.tokens[player][slot]
	delete(t.tokens[player], slot)
	t.tokensMu.Unlock()
	if had && t.ui != nil {
		t.ui.RemoveToken(player, slot)
	}
}

// DiscardToken removes player's token on slot if present and reports
// whether anything changed, without requiring the caller to separately
// check HasToken first. Used by the dealer while examining a claim, under
// reader locks held across the whole table.
func (t *Table) DiscardToken(player int, slot cards.Slot) bool {
	t.tokensMu.Lock()
	_, had := t.tokens[player][slot]
	delete(t.tokens[player], slot)
	t.tokensMu.Unlock()
	if had && t.ui != nil {
		t.ui.RemoveToken(player, slot)
	}
	return had
}

// RemoveAllTokens clears every player's token set and notifies the UI
// once. Used by the dealer's full-table reshuffle; the caller must hold
// every slot's writer lock.
func (t *Table) RemoveAllTokens() {
	t.tokensMu.Lock()
	for i := range t.tokens {
		t.tokens[i] = make(map[cards.Slot]struct{})
	}
	t.tokensMu.Unlock()
	if t.ui != nil {
		t.ui.RemoveTokensAll()
	}
}

// LockSlot acquires slot's writer or reader lock.
func (t *Table) LockSlot(slot cards.Slot, writer bool) {
	if writer {
		t.slotLocks[slot].Lock()
	} else {
		t.slotLocks[slot].RLock()
	}
}

// UnlockSlot releases slot's writer or reader lock.
func (t *Table) UnlockSlot(slot cards.Slot, writer bool) {
	if writer {
		t.slotLocks[slot].Unlock()
	} else {
		t.slotLocks[slot].RUnlock()
	}
}

// LockSlots acquires the given slots' locks in ascending order, after
// collapsing duplicates, and returns the deduplicated ascending order used
// so the caller can release with the exact same list via UnlockSlots.
func (t *Table) LockSlots(slots []cards.Slot, writer bool) []cards.Slot {
	ordered := dedupSorted(slots)
	for _, s := range ordered {
		t.LockSlot(s, writer)
	}
	return ordered
}

// UnlockSlots releases locks acquired by LockSlots, in descending order.
// Pass the exact slice LockSlots returned.
func (t *Table) UnlockSlots(ordered []cards.Slot, writer bool) {
	for i := len(ordered) - 1; i >= 0; i-- {
		t.UnlockSlot(ordered[i], writer)
	}
}

// LockAllSlots acquires every slot's lock in ascending order.
func (t *Table) LockAllSlots(writer bool) {
	for s := 0; s < t.tableSize; s++ {
		t.LockSlot(cards.Slot(s), writer)
	}
}

// UnlockAllSlots releases every slot's lock in descending order.
func (t *Table) UnlockAllSlots(writer bool) {
	for s := t.tableSize - 1; s >= 0; s-- {
		t.UnlockSlot(cards.Slot(s), writer)
	}
}

// LockDeck acquires the deck lock. By convention (see internal/dealer) the
// deck lock is always acquired after any slot locks and released before
// them, so the combined hierarchy is deadlock-free.
func (t *Table) LockDeck() { t.deckLock.Lock() }

// UnlockDeck releases the deck lock.
func (t *Table) UnlockDeck() { t.deckLock.Unlock() }

func dedupSorted(slots []cards.Slot) []cards.Slot {
	seen := make(map[cards.Slot]struct{}, len(slots))
	out := make([]cards.Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
