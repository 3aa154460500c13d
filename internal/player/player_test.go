package player

import (
	"io"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/table"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeDealer struct {
	toggled []cards.Slot
}

func (f *fakeDealer) ToggleToken(playerID int, slot cards.Slot) {
	f.toggled = append(f.toggled, slot)
}

func newTestPlayer(t *testing.T, tb *table.Table, clock quartz.Clock) (*Player, *fakeDealer) {
	t.Helper()
	fd := &fakeDealer{}
	logger := zerolog.New(io.Discard)
	p := New(0, true, 3, tb, fd, nil, clock, 3000, 1000, logger)
	return p, fd
}

func TestKeyPressedAdmission(t *testing.T) {
	t.Parallel()
	tb := table.New(4, 81, 1, nil)
	tb.SetReady(true)
	mockClock := quartz.NewMock(t)
	p, _ := newTestPlayer(t, tb, mockClock)

	p.KeyPressed(0)
	require.Equal(t, 1, p.QueueLen())

	p.SetExamined(true)
	p.KeyPressed(1)
	require.Equal(t, 1, p.QueueLen(), "examined players must not admit new presses")
	p.SetExamined(false)

	tb.SetReady(false)
	p.KeyPressed(1)
	require.Equal(t, 1, p.QueueLen(), "a non-ready table must not admit new presses")
	tb.SetReady(true)

	p.startFreeze(10_000)
	p.KeyPressed(1)
	require.Equal(t, 1, p.QueueLen(), "a frozen player must not admit new presses")
	p.ClearFreeze()

	p.KeyPressed(1)
	p.KeyPressed(2)
	require.Equal(t, 3, p.QueueLen())
	p.KeyPressed(3)
	require.Equal(t, 3, p.QueueLen(), "a full queue must not admit new presses")
}

func TestPointUpdatesScoreAndFreeze(t *testing.T) {
	t.Parallel()
	tb := table.New(4, 81, 1, nil)
	mockClock := quartz.NewMock(t)
	p, _ := newTestPlayer(t, tb, mockClock)

	before := mockClock.Now().UnixMilli()
	p.KeyPressed(0)
	tb.SetReady(true)
	p.SetExamined(true)

	p.Point()

	require.Equal(t, 1, p.Score())
	require.GreaterOrEqual(t, p.FreezeUntilMs(), before+3000)
	require.Equal(t, 0, p.QueueLen())
	require.False(t, p.Examined())
}

func TestPenaltySetsFreezeWithoutScoring(t *testing.T) {
	t.Parallel()
	tb := table.New(4, 81, 1, nil)
	mockClock := quartz.NewMock(t)
	p, _ := newTestPlayer(t, tb, mockClock)

	before := mockClock.Now().UnixMilli()
	p.SetExamined(true)
	p.Penalty()

	require.Equal(t, 0, p.Score())
	require.GreaterOrEqual(t, p.FreezeUntilMs(), before+1000)
	require.False(t, p.Examined())
}

func TestTerminateWakesRunLoop(t *testing.T) {
	t.Parallel()
	tb := table.New(4, 81, 1, nil)
	mockClock := quartz.NewMock(t)
	p, _ := newTestPlayer(t, tb, mockClock)

	runExited := make(chan struct{})
	go func() {
		p.Run()
		close(runExited)
	}()

	p.Terminate()
	<-runExited // must not hang
}

func TestRunTogglesTokenUnderSlotLock(t *testing.T) {
	t.Parallel()
	tb := table.New(4, 81, 1, nil)
	tb.SetReady(true)
	tb.LockSlot(0, true)
	tb.PlaceCard(1, 0)
	tb.UnlockSlot(0, true)

	mockClock := quartz.NewMock(t)
	p, fd := newTestPlayer(t, tb, mockClock)

	go p.Run()
	defer p.Terminate()

	p.KeyPressed(0)
	require.Eventually(t, func() bool {
		return len(fd.toggled) == 1
	}, testEventuallyTimeout, testEventuallyTick)
	require.Equal(t, cards.Slot(0), fd.toggled[0])
}
