package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/ui"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

var _ ui.UserInterface = (*TUI)(nil)

// KeyedPlayer is one human seat's key binding: its player ID, the keys
// bound to each of its slots (keyboard key -> slot), and the player agent
// to deliver admitted presses to.
type KeyedPlayer struct {
	PlayerID int
	Human    bool
	Name     string
	Keys     map[string]cards.Slot
	Player   interface{ KeyPressed(cards.Slot) }
}

// TUI implements ui.UserInterface as a bubbletea program. Every
// UserInterface method sends a message to the running program and
// returns immediately (tea.Program.Send is safe to call concurrently and
// never blocks on rendering), satisfying the "must return promptly while
// holding table locks" requirement on the collaborator.
//
// New creates the TUI before the dealer (and its player agents) exist, so
// key bindings are wired separately via Bind once the players are built,
// and rendering begins only once Start is called.
type TUI struct {
	rows, cols int
	logger     zerolog.Logger

	program *tea.Program
}

// New creates a TUI for a rows x cols table. Call Bind to wire player key
// bindings, then Start to begin rendering.
func New(rows, cols int, logger zerolog.Logger) *TUI {
	lipgloss.SetColorProfile(termenv.ColorProfile())
	return &TUI{rows: rows, cols: cols, logger: logger.With().Str("component", "tui").Logger()}
}

// Bind wires each player's seat name and, for human seats, its bound keys
// and the Player to deliver admitted presses to. Must be called before
// Start.
func (t *TUI) Bind(keyed []KeyedPlayer) {
	tableSize := t.rows * t.cols
	players := make([]playerView, len(keyed))
	bindings := make([]keyBinding, 0, len(keyed))
	byKey := make(map[int]func(cards.Slot))
	for i, kp := range keyed {
		players[i] = playerView{id: kp.PlayerID, name: kp.Name, human: kp.Human}
		if kp.Human && kp.Player != nil {
			bindings = append(bindings, keyBinding{playerID: kp.PlayerID, keys: kp.Keys})
			byKey[kp.PlayerID] = kp.Player.KeyPressed
		}
	}

	onKey := func(playerID int, slot cards.Slot) {
		if fn, ok := byKey[playerID]; ok {
			fn(slot)
		}
	}

	m := newModel(t.rows, t.cols, tableSize, players, bindings, onKey)
	t.program = tea.NewProgram(m, tea.WithAltScreen())
}

// Start launches the bubbletea event loop in the background. Bind must
// have been called first.
func (t *TUI) Start() {
	go func() {
		if _, err := t.program.Run(); err != nil {
			t.logger.Error().Err(err).Msg("tui exited with error")
		}
	}()
}

// Close tears down the program and restores the terminal.
func (t *TUI) Close() {
	if t.program == nil {
		return
	}
	t.program.Quit()
	t.program.Wait()
	fmt.Print("\033[?25h") // show cursor
}

// send delivers msg to the running program, if Bind/Start have happened.
// Dealer/table/player construction can store a TUI as their
// ui.UserInterface before Bind is called, so every notification must
// tolerate that window without blocking or panicking.
func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) PlaceCard(card cards.Card, slot cards.Slot) {
	t.send(placeCardMsg{card: card, slot: slot})
}

func (t *TUI) RemoveCard(slot cards.Slot) {
	t.send(removeCardMsg{slot: slot})
}

func (t *TUI) PlaceToken(player int, slot cards.Slot) {
	t.send(placeTokenMsg{player: player, slot: slot})
}

func (t *TUI) RemoveToken(player int, slot cards.Slot) {
	t.send(removeTokenMsg{player: player, slot: slot})
}

func (t *TUI) RemoveTokensAtSlot(slot cards.Slot) {
	t.send(removeTokensAtSlotMsg{slot: slot})
}

func (t *TUI) RemoveTokensAll() {
	t.send(removeTokensAllMsg{})
}

func (t *TUI) SetScore(player int, score int) {
	t.send(setScoreMsg{player: player, score: score})
}

func (t *TUI) SetFreeze(player int, ms int64) {
	t.send(setFreezeMsg{player: player, ms: ms})
}

func (t *TUI) SetCountdown(ms int64, warn bool) {
	t.send(setCountdownMsg{ms: ms, warn: warn})
}

func (t *TUI) SetElapsed(ms int64) {
	t.send(setElapsedMsg{ms: ms})
}

func (t *TUI) AnnounceWinners(playerIDs []int) {
	t.send(announceWinnersMsg{playerIDs: playerIDs})
}
