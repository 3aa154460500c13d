package table

import (
	"testing"

	"github.com/lox/setengine/internal/cards"
	"github.com/stretchr/testify/require"
)

func TestPlaceAndRemoveCard(t *testing.T) {
	t.Parallel()
	tb := New(12, 81, 2, nil)

	tb.LockSlot(0, true)
	tb.PlaceCard(5, 0)
	tb.UnlockSlot(0, true)

	require.Equal(t, cards.Card(5), tb.CardAt(0))
	require.Equal(t, cards.Slot(0), tb.SlotOf(5))

	tb.LockSlot(0, true)
	tb.PlaceToken(0, 0)
	tb.UnlockSlot(0, true)
	require.True(t, tb.HasToken(0, 0))

	tb.LockSlot(0, true)
	tb.RemoveCard(0)
	tb.UnlockSlot(0, true)

	require.Equal(t, cards.NoCard, tb.CardAt(0))
	require.Equal(t, cards.NoSlot, tb.SlotOf(5))
	require.False(t, tb.HasToken(0, 0), "removing a card clears every token on its slot")
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	tb := New(12, 81, 2, nil)
	tb.LockSlot(3, true)
	tb.PlaceCard(7, 3)
	before := tb.TokenSnapshot(0)

	tb.PlaceToken(0, 3)
	tb.RemoveToken(0, 3)
	tb.UnlockSlot(3, true)

	require.ElementsMatch(t, before, tb.TokenSnapshot(0))
}

func TestRemoveTokenNoOpWhenAbsent(t *testing.T) {
	t.Parallel()
	tb := New(4, 81, 1, nil)
	tb.LockSlot(0, true)
	defer tb.UnlockSlot(0, true)
	require.NotPanics(t, func() { tb.RemoveToken(0, 0) })
}

func TestRemoveAllTokens(t *testing.T) {
	t.Parallel()
	tb := New(12, 81, 2, nil)
	tb.LockAllSlots(true)
	tb.PlaceCard(1, 0)
	tb.PlaceCard(2, 1)
	tb.PlaceToken(0, 0)
	tb.PlaceToken(1, 0)
	tb.PlaceToken(1, 1)
	tb.RemoveAllTokens()
	tb.UnlockAllSlots(true)

	require.Equal(t, 0, tb.TokenCount(0))
	require.Equal(t, 0, tb.TokenCount(1))
}

func TestLockSlotsAscendingDedupOrder(t *testing.T) {
	t.Parallel()
	tb := New(12, 81, 1, nil)
	ordered := tb.LockSlots([]cards.Slot{5, 2, 5, 8, 2}, true)
	require.Equal(t, []cards.Slot{2, 5, 8}, ordered)
	tb.UnlockSlots(ordered, true)
}

func TestCountCards(t *testing.T) {
	t.Parallel()
	tb := New(5, 81, 1, nil)
	for i := cards.Slot(0); i < 3; i++ {
		tb.LockSlot(i, true)
		tb.PlaceCard(cards.Card(i), i)
		tb.UnlockSlot(i, true)
	}
	require.Equal(t, 3, tb.CountCards())
}
