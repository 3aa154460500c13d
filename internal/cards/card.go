// Package cards implements the dealer's pure collaborator: card
// identifiers, the fixed feature-based deck, and the testSet/findSets
// combinatorics that judge and discover sets.
package cards

import "fmt"

// Card is an opaque card identifier in [0, DeckSize).
type Card int

// Slot is a table grid position in [0, TableSize).
type Slot int

// NoCard and NoSlot mark the absence of a mapping in the table's bijection.
const (
	NoCard Card = -1
	NoSlot Slot = -1
)

// Config captures the feature geometry of the deck: FeatureCount
// independent features with FeatureSize values each, so
// DeckSize = FeatureSize^FeatureCount. FeatureSize doubles as the number
// of cards in a set (and therefore the claim threshold).
type Config struct {
	FeatureSize  int
	FeatureCount int
}

// DefaultConfig matches the classic Set deck: 3 values across 4 features (81 cards).
func DefaultConfig() Config {
	return Config{FeatureSize: 3, FeatureCount: 4}
}

// DeckSize returns FeatureSize^FeatureCount.
func (c Config) DeckSize() int {
	size := 1
	for i := 0; i < c.FeatureCount; i++ {
		size *= c.FeatureSize
	}
	return size
}

// Features decomposes a card into its FeatureCount digits in base FeatureSize.
func (c Config) Features(card Card) []int {
	digits := make([]int, c.FeatureCount)
	n := int(card)
	for i := c.FeatureCount - 1; i >= 0; i-- {
		digits[i] = n % c.FeatureSize
		n /= c.FeatureSize
	}
	return digits
}

// String renders a card as its identifier, e.g. "card#5".
func (c Card) String() string {
	return fmt.Sprintf("card#%d", int(c))
}
