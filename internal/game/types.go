// internal/game/types.go
//
// Core type definitions for the bowling score engine.
// Defines:
//   - Frame: one of the ten scoring units, with its own rolls and bonus rolls.
//   - FrameState: where a frame sits in its scoring lifecycle.
//   - Game: ten-frame arena plus the current frame pointer.
//   - Sentinel errors shared by Frame and Game.

package game

import (
	"errors"
	"fmt"
)

const (
	// MaxPins is the number of pins standing at the start of a frame.
	MaxPins = 10
	// FrameCount is the number of frames in a game.
	FrameCount = 10
)

var (
	// ErrValidation reports malformed input: a frame number or pin count
	// outside its range. The receiver is left unchanged.
	ErrValidation = errors.New("validation error")

	// ErrState reports an operation that is inconsistent with the current
	// frame or game state. The receiver is left unchanged.
	ErrState = errors.New("state error")

	// ErrGameOver is returned by Game.Roll once frame 10 has taken every
	// roll it is entitled to. It wraps ErrState.
	ErrGameOver = fmt.Errorf("%w: game over", ErrState)
)

// FrameState is the scoring lifecycle position of a single frame.
type FrameState string

const (
	StateAccumulating        FrameState = "accumulating"
	StateAwaitingSpareBonus  FrameState = "awaiting_spare_bonus"
	StateAwaitingStrikeBonus FrameState = "awaiting_strike_bonus"
	StateClosed              FrameState = "closed"
)

// Frame holds the rolls of one frame and any bonus rolls posted to it by
// later play.
type Frame struct {
	number     int   // 1..10, immutable
	rolls      []int // own rolls, at most 2
	bonusRolls []int // at most 1 for a spare, 2 for a strike
}

// Game holds the state of a single bowling game. Construct it with New;
// the zero value has no frames.
type Game struct {
	ID     string // Unique game identifier (UUID).
	Player string // Name of the bowler.

	frames  [FrameCount]*Frame // arena; slot i holds frame i+1 once created
	created int                // number of frames created so far
	current int                // current frame number, 1..10
}

// FrameScore is one row of a scorecard.
type FrameScore struct {
	Number     int   `json:"frame"`
	Rolls      []int `json:"rolls"`
	BonusRolls []int `json:"bonusRolls"`
	Score      int   `json:"score"`
	Cumulative int   `json:"cumulative"`
}

// ValidNoOfPins reports whether pins is a legal pin count for one roll.
func ValidNoOfPins(pins int) bool {
	return pins >= 0 && pins <= MaxPins
}

func validatePins(pins int) error {
	if !ValidNoOfPins(pins) {
		return fmt.Errorf("%w: invalid pin count %d, must be an integer between 0 and %d", ErrValidation, pins, MaxPins)
	}
	return nil
}
