// Package headless implements ui.UserInterface as structured log lines,
// for computer-only batch runs and for tests that want to observe events
// without a terminal.
package headless

import (
	"github.com/lox/setengine/internal/cards"
	"github.com/lox/setengine/internal/ui"
	"github.com/rs/zerolog"
)

var _ ui.UserInterface = (*UI)(nil)

// UI logs every event through a component-scoped logger: scores and the
// winner announcement at info level, everything else at debug level.
type UI struct {
	logger zerolog.Logger
}

// New creates a headless UI backed by logger.
func New(logger zerolog.Logger) *UI {
	return &UI{logger: logger.With().Str("component", "ui").Logger()}
}

func (u *UI) PlaceCard(card cards.Card, slot cards.Slot) {
	u.logger.Debug().Int("card", int(card)).Int("slot", int(slot)).Msg("place card")
}

func (u *UI) RemoveCard(slot cards.Slot) {
	u.logger.Debug().Int("slot", int(slot)).Msg("remove card")
}

func (u *UI) PlaceToken(player int, slot cards.Slot) {
	u.logger.Debug().Int("player", player).Int("slot", int(slot)).Msg("place token")
}

func (u *UI) RemoveToken(player int, slot cards.Slot) {
	u.logger.Debug().Int("player", player).Int("slot", int(slot)).Msg("remove token")
}

func (u *UI) RemoveTokensAtSlot(slot cards.Slot) {
	u.logger.Debug().Int("slot", int(slot)).Msg("remove tokens at slot")
}

func (u *UI) RemoveTokensAll() {
	u.logger.Debug().Msg("remove all tokens")
}

func (u *UI) SetScore(player int, score int) {
	u.logger.Info().Int("player", player).Int("score", score).Msg("score")
}

func (u *UI) SetFreeze(player int, ms int64) {
	u.logger.Debug().Int("player", player).Int64("freeze_ms", ms).Msg("freeze")
}

func (u *UI) SetCountdown(ms int64, warn bool) {
	u.logger.Debug().Int64("remaining_ms", ms).Bool("warn", warn).Msg("countdown")
}

func (u *UI) SetElapsed(ms int64) {
	u.logger.Debug().Int64("elapsed_ms", ms).Msg("elapsed")
}

func (u *UI) AnnounceWinners(playerIDs []int) {
	u.logger.Info().Ints("winners", playerIDs).Msg("game over")
}
