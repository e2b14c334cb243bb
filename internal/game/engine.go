// internal/game/engine.go
//
// Core game engine for a single bowling game.
// Responsibilities:
//   - Create new games with frame 1 ready to take rolls.
//   - Validate each roll and route it to the frame(s) it scores for.
//   - Advance the current frame pointer (never past frame 10).
//   - Report totals, a per-frame scorecard, and completion.
//
// Notes:
//   - Bonus routing lives in routing.go as an ordered decision table.
//   - Roll is all-or-nothing: every check runs before any frame is mutated.
//   - A Game is not safe for concurrent use; callers serialize access.
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// New constructs a new game for player with frame 1 created.
func New(player string) *Game {
	g := &Game{
		ID:     uuid.NewString(),
		Player: player,
	}
	g.open(1)
	return g
}

// FromRolls builds a game for player by rolling each value in order.
// It stops at the first rejected roll and returns its error.
func FromRolls(player string, rolls ...int) (*Game, error) {
	g := New(player)
	for i, pins := range rolls {
		if _, err := g.Roll(pins); err != nil {
			return g, fmt.Errorf("roll %d: %w", i+1, err)
		}
	}
	return g, nil
}

// Roll records the number of pins knocked down by one delivery and returns
// the game for chaining.
//
// Validation rules:
//   - pins must be in 0..10 (ErrValidation).
//   - The game must not be complete (ErrGameOver).
//   - The current frame must be able to take the roll (ErrState).
//   - A second tenth-frame fill ball after a non-strike first fill ball
//     cannot exceed the pins left standing (ErrState).
func (g *Game) Roll(pins int) (*Game, error) {
	if err := validatePins(pins); err != nil {
		return g, err
	}
	if g.Complete() {
		return g, ErrGameOver
	}

	cur := g.Frame(g.current)
	routes := g.plan()

	ownRoll := len(cur.rolls) < 2 && cur.RollTotal() < MaxPins
	if ownRoll {
		if err := cur.checkRoll(pins); err != nil {
			return g, err
		}
	}
	if err := g.checkFillBall(pins); err != nil {
		return g, err
	}

	for _, r := range routes {
		if err := g.apply(r, pins); err != nil {
			return g, fmt.Errorf("%s: %w", r.rule, err)
		}
	}
	if ownRoll {
		cur.rolls = append(cur.rolls, pins)
	}

	if (len(cur.rolls) == 2 || cur.IsStrike()) && g.current != FrameCount {
		g.open(g.current + 1)
	}
	return g, nil
}

// checkFillBall rejects a second tenth-frame fill ball that knocks down more
// pins than the first one left standing.
func (g *Game) checkFillBall(pins int) error {
	if g.current != FrameCount {
		return nil
	}
	f := g.Frame(FrameCount)
	if !f.IsStrike() || len(f.bonusRolls) != 1 {
		return nil
	}
	first := f.bonusRolls[0]
	if first < MaxPins && first+pins > MaxPins {
		return fmt.Errorf("%w: frame %d: fill ball of %d exceeds the %d pins left standing", ErrState, FrameCount, pins, MaxPins-first)
	}
	return nil
}

// open creates frame n and makes it current.
func (g *Game) open(n int) {
	g.frames[n-1] = &Frame{number: n}
	g.created = n
	g.current = n
}

// Frame returns frame n, or nil if play has not reached it.
func (g *Game) Frame(n int) *Frame {
	if n < 1 || n > g.created {
		return nil
	}
	return g.frames[n-1]
}

// CurrentFrameNumber returns the number of the frame taking rolls.
func (g *Game) CurrentFrameNumber() int { return g.current }

// Frames returns the frames created so far, in order.
func (g *Game) Frames() []*Frame {
	return append([]*Frame{}, g.frames[:g.created]...)
}

// Score is the current total over all created frames.
func (g *Game) Score() int {
	total := 0
	for _, f := range g.frames[:g.created] {
		total += f.Score()
	}
	return total
}

// Complete reports whether frame 10 has taken its own rolls and every bonus
// roll it earned.
func (g *Game) Complete() bool {
	f := g.Frame(FrameCount)
	return f != nil && f.State() == StateClosed
}

// RollsLeft is the minimum number of deliveries the current frame still
// needs, counting tenth-frame fill balls already earned.
func (g *Game) RollsLeft() int {
	if g.Complete() {
		return 0
	}
	f := g.Frame(g.current)
	own := 0
	if len(f.rolls) < 2 && f.RollTotal() < MaxPins {
		own = 2 - len(f.rolls)
	}
	if g.current == FrameCount {
		return own + f.pendingBonus()
	}
	return own
}

// Scorecard returns one row per created frame with a running total.
func (g *Game) Scorecard() []FrameScore {
	out := make([]FrameScore, 0, g.created)
	running := 0
	for _, f := range g.frames[:g.created] {
		running += f.Score()
		out = append(out, FrameScore{
			Number:     f.number,
			Rolls:      f.Rolls(),
			BonusRolls: f.BonusRolls(),
			Score:      f.Score(),
			Cumulative: running,
		})
	}
	return out
}
