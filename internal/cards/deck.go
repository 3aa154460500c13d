package cards

import "math/rand/v2"

// Deck is the ordered sequence of cards not currently on the table.
// It is owned exclusively by the dealer; callers must not share a Deck
// across goroutines without external synchronization (see internal/table
// for the lock that guards it in this repository).
type Deck struct {
	cards []Card
}

// NewDeck returns a deck holding every card in [0, size) in ascending order.
func NewDeck(size int) *Deck {
	d := &Deck{cards: make([]Card, size)}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	return d
}

// Len returns the number of cards remaining in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Shuffle randomizes the order of the deck in place using the supplied rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// PopFront removes and returns the first card in the deck.
func (d *Deck) PopFront() (Card, bool) {
	if len(d.cards) == 0 {
		return NoCard, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// PushBack appends a card to the end of the deck, e.g. when a round drains
// the table back into the deck.
func (d *Deck) PushBack(card Card) {
	d.cards = append(d.cards, card)
}

// Cards returns a copy of the cards currently in the deck, for Util calls
// that need to reason about the full remaining pool.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
