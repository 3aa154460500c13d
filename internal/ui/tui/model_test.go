package tui

import (
	"testing"

	"github.com/lox/setengine/internal/cards"
	"github.com/stretchr/testify/require"
)

func newTestModel() *model {
	players := []playerView{{id: 0, name: "player1", human: true}, {id: 1, name: "bot1"}}
	return newModel(3, 4, 12, players, nil, nil)
}

func TestModelPlaceAndRemoveCard(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	mm, _ := m.Update(placeCardMsg{card: cards.Card(5), slot: cards.Slot(2)})
	m = mm.(*model)
	require.Equal(t, cards.Card(5), m.slotCard[2])

	mm, _ = m.Update(removeCardMsg{slot: cards.Slot(2)})
	m = mm.(*model)
	require.Equal(t, cards.NoCard, m.slotCard[2])
}

func TestModelTokenLifecycle(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	mm, _ := m.Update(placeTokenMsg{player: 0, slot: cards.Slot(3)})
	m = mm.(*model)
	require.Equal(t, []int{0}, m.slotToken[3])

	mm, _ = m.Update(placeTokenMsg{player: 1, slot: cards.Slot(3)})
	m = mm.(*model)
	require.ElementsMatch(t, []int{0, 1}, m.slotToken[3])

	mm, _ = m.Update(removeTokenMsg{player: 0, slot: cards.Slot(3)})
	m = mm.(*model)
	require.Equal(t, []int{1}, m.slotToken[3])

	mm, _ = m.Update(removeTokensAtSlotMsg{slot: cards.Slot(3)})
	m = mm.(*model)
	require.Empty(t, m.slotToken[3])
}

func TestModelScoreAndFreeze(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	mm, _ := m.Update(setScoreMsg{player: 0, score: 2})
	m = mm.(*model)
	require.Equal(t, 2, m.players[0].score)

	mm, _ = m.Update(setFreezeMsg{player: 0, ms: 1500})
	m = mm.(*model)
	require.Equal(t, int64(1500), m.players[0].frozenMs)
}

func TestModelCountdownAndElapsed(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	mm, _ := m.Update(setCountdownMsg{ms: 3000, warn: true})
	m = mm.(*model)
	require.True(t, m.countdown)
	require.True(t, m.warn)
	require.Equal(t, int64(3000), m.countdownMs)

	mm, _ = m.Update(setElapsedMsg{ms: 4200})
	m = mm.(*model)
	require.False(t, m.countdown)
	require.Equal(t, int64(4200), m.elapsedMs)
}

func TestModelAnnounceWinners(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	mm, _ := m.Update(announceWinnersMsg{playerIDs: []int{1}})
	m = mm.(*model)
	require.True(t, m.done)
	require.Equal(t, []int{1}, m.winners)
}

func TestModelHandleKeyDispatchesToBoundPlayer(t *testing.T) {
	t.Parallel()
	var got cards.Slot = -1
	var gotPlayer = -1
	m := newModel(3, 4, 12, []playerView{{id: 0, human: true}}, []keyBinding{
		{playerID: 0, keys: map[string]cards.Slot{"q": 0, "w": 1}},
	}, func(player int, slot cards.Slot) {
		gotPlayer, got = player, slot
	})

	m.handleKey("w")
	require.Equal(t, 0, gotPlayer)
	require.Equal(t, cards.Slot(1), got)

	m.handleKey("unbound")
	require.Equal(t, cards.Slot(1), got) // unchanged
}
