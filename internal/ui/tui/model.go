// Package tui implements ui.UserInterface as an interactive bubbletea
// program: a live grid of slots/tokens, per-player score and freeze
// indicators, a countdown/elapsed clock, a scrolling event log, and
// keyboard capture that feeds human Player.KeyPressed calls.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/setengine/internal/cards"
)

// playerView is the subset of player state the model renders.
type playerView struct {
	id       int
	name     string
	human    bool
	score    int
	frozenMs int64
}

// keyBinding maps a human player's bound keys to the slot each selects.
type keyBinding struct {
	playerID int
	keys     map[string]cards.Slot
}

// model is the bubbletea.Model backing TUI.
type model struct {
	rows, cols int

	slotCard  []cards.Card
	slotToken map[cards.Slot][]int // slot -> player IDs with a token there

	players []playerView
	keyed   []keyBinding

	countdownMs int64
	countdown   bool
	elapsedMs   int64
	warn        bool

	winners []int
	done    bool

	log      []string
	viewport viewport.Model

	width, height int
	ready         bool

	keyPress func(player int, slot cards.Slot)

	styles styles
}

type styles struct {
	title    lipgloss.Style
	cell     lipgloss.Style
	cellWarn lipgloss.Style
	token    lipgloss.Style
	frozen   lipgloss.Style
	score    lipgloss.Style
	banner   lipgloss.Style
	log      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		cell: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 2),
		cellWarn: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E05555")).
			Padding(0, 2),
		token: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		frozen: lipgloss.NewStyle().Foreground(lipgloss.Color("#E05555")),
		score:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true),
		banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#04B575")).
			Padding(0, 2).
			Bold(true),
		log: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1),
	}
}

func newModel(rows, cols, tableSize int, players []playerView, keyed []keyBinding, onKey func(player int, slot cards.Slot)) *model {
	slotCard := make([]cards.Card, tableSize)
	for i := range slotCard {
		slotCard[i] = cards.NoCard
	}
	vp := viewport.New(40, 8)
	vp.SetContent("")
	return &model{
		rows:      rows,
		cols:      cols,
		slotCard:  slotCard,
		slotToken: make(map[cards.Slot][]int),
		players:   players,
		keyed:     keyed,
		viewport:  vp,
		keyPress:  onKey,
		styles:    newStyles(),
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = m.width - 4
		if m.viewport.Width < 10 {
			m.viewport.Width = 10
		}
		m.viewport.Height = 8
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		default:
			m.handleKey(msg.String())
		}

	case placeCardMsg:
		m.slotCard[msg.slot] = msg.card
		m.appendLog(fmt.Sprintf("card placed on slot %d", msg.slot))

	case removeCardMsg:
		m.slotCard[msg.slot] = cards.NoCard
		m.appendLog(fmt.Sprintf("card removed from slot %d", msg.slot))

	case placeTokenMsg:
		m.slotToken[msg.slot] = appendUnique(m.slotToken[msg.slot], msg.player)

	case removeTokenMsg:
		m.slotToken[msg.slot] = removeInt(m.slotToken[msg.slot], msg.player)

	case removeTokensAtSlotMsg:
		delete(m.slotToken, msg.slot)

	case removeTokensAllMsg:
		m.slotToken = make(map[cards.Slot][]int)

	case setScoreMsg:
		for i := range m.players {
			if m.players[i].id == msg.player {
				m.players[i].score = msg.score
				m.appendLog(fmt.Sprintf("%s scores (%d)", m.players[i].name, msg.score))
			}
		}

	case setFreezeMsg:
		for i := range m.players {
			if m.players[i].id == msg.player {
				m.players[i].frozenMs = msg.ms
			}
		}

	case setCountdownMsg:
		m.countdown = true
		m.countdownMs = msg.ms
		m.warn = msg.warn

	case setElapsedMsg:
		m.countdown = false
		m.elapsedMs = msg.ms

	case announceWinnersMsg:
		m.winners = msg.playerIDs
		m.done = true
		m.appendLog("game over: " + winnerNames(m.players, msg.playerIDs))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleKey(key string) {
	for _, kb := range m.keyed {
		if slot, ok := kb.keys[key]; ok && m.keyPress != nil {
			m.keyPress(kb.playerID, slot)
			return
		}
	}
}

func (m *model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > 200 {
		m.log = m.log[len(m.log)-200:]
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(" Set "))
	b.WriteString("\n\n")

	if m.countdown {
		clock := m.styles.score
		if m.warn {
			clock = m.styles.frozen
		}
		b.WriteString(clock.Render(fmt.Sprintf("reshuffle in %.1fs", float64(m.countdownMs)/1000)))
	} else {
		b.WriteString(m.styles.score.Render(fmt.Sprintf("elapsed %.1fs", float64(m.elapsedMs)/1000)))
	}
	b.WriteString("\n\n")

	for r := 0; r < m.rows; r++ {
		var row []string
		for c := 0; c < m.cols; c++ {
			slot := cards.Slot(r*m.cols + c)
			row = append(row, m.renderCell(slot))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, p := range m.players {
		line := fmt.Sprintf("%s: %d", p.name, p.score)
		if p.frozenMs > 0 {
			line += m.styles.frozen.Render(fmt.Sprintf(" (frozen %dms)", p.frozenMs))
		}
		b.WriteString(m.styles.score.Render(line))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(m.styles.banner.Render("winners: " + winnerNames(m.players, m.winners)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.log.Render(m.viewport.View()))
	return b.String()
}

func (m *model) renderCell(slot cards.Slot) string {
	style := m.styles.cell
	content := "   "
	if card := m.slotCard[slot]; card != cards.NoCard {
		content = card.String()
	}
	if tokens := m.slotToken[slot]; len(tokens) > 0 {
		style = m.styles.cellWarn
		content = m.styles.token.Render(content)
	}
	return style.Render(content)
}

func winnerNames(players []playerView, ids []int) string {
	var names []string
	for _, id := range ids {
		for _, p := range players {
			if p.id == id {
				names = append(names, p.name)
			}
		}
	}
	return strings.Join(names, ", ")
}

func appendUnique(ids []int, id int) []int {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeInt(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
