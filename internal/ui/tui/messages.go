package tui

import "github.com/lox/setengine/internal/cards"

type placeCardMsg struct {
	card cards.Card
	slot cards.Slot
}

type removeCardMsg struct{ slot cards.Slot }

type placeTokenMsg struct {
	player int
	slot   cards.Slot
}

type removeTokenMsg struct {
	player int
	slot   cards.Slot
}

type removeTokensAtSlotMsg struct{ slot cards.Slot }

type removeTokensAllMsg struct{}

type setScoreMsg struct {
	player int
	score  int
}

type setFreezeMsg struct {
	player int
	ms     int64
}

type setCountdownMsg struct {
	ms   int64
	warn bool
}

type setElapsedMsg struct{ ms int64 }

type announceWinnersMsg struct{ playerIDs []int }
