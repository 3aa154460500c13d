// Package ui declares the UserInterface collaborator: a pure sink for
// card/token/timer/score events. Rendering is out of this
// core's scope; internal/ui/headless and internal/ui/tui provide two
// concrete sinks.
package ui

import "github.com/lox/setengine/internal/cards"

// UserInterface is the full external collaborator the dealer, table, and
// players notify. Every method must return promptly: it is called while
// the caller may be holding table locks.
type UserInterface interface {
	PlaceCard(card cards.Card, slot cards.Slot)
	RemoveCard(slot cards.Slot)
	PlaceToken(player int, slot cards.Slot)
	RemoveToken(player int, slot cards.Slot)
	RemoveTokensAtSlot(slot cards.Slot)
	RemoveTokensAll()
	SetScore(player int, score int)
	SetFreeze(player int, ms int64)
	SetCountdown(ms int64, warn bool)
	SetElapsed(ms int64)
	AnnounceWinners(playerIDs []int)
}
