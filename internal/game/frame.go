// internal/game/frame.go
//
// Frame scoring.
// A frame owns its complete score contribution: its own rolls plus the
// bonus rolls that later play posts to it. The game total is therefore a
// plain sum over frames.

package game

import "fmt"

// NewFrame constructs frame number n. n must be in 1..10.
func NewFrame(n int) (*Frame, error) {
	if n < 1 || n > FrameCount {
		return nil, fmt.Errorf("%w: invalid frame number %d, must be an integer between 1 and %d", ErrValidation, n, FrameCount)
	}
	return &Frame{number: n}, nil
}

// Number returns the frame's position in the game.
func (f *Frame) Number() int { return f.number }

// Rolls returns a copy of the frame's own rolls.
func (f *Frame) Rolls() []int { return append([]int{}, f.rolls...) }

// BonusRolls returns a copy of the bonus rolls posted to this frame.
func (f *Frame) BonusRolls() []int { return append([]int{}, f.bonusRolls...) }

// RecordRoll appends an own roll.
func (f *Frame) RecordRoll(pins int) (*Frame, error) {
	if err := validatePins(pins); err != nil {
		return f, err
	}
	if err := f.checkRoll(pins); err != nil {
		return f, err
	}
	f.rolls = append(f.rolls, pins)
	return f, nil
}

// checkRoll reports whether pins may be appended as an own roll.
// pins is assumed valid.
func (f *Frame) checkRoll(pins int) error {
	switch {
	case f.RollTotal() == MaxPins:
		return fmt.Errorf("%w: frame %d: cannot add a new roll, all pins have been scored already", ErrState, f.number)
	case len(f.rolls) >= 2:
		return fmt.Errorf("%w: frame %d: cannot add a new roll, two rolls already recorded", ErrState, f.number)
	case f.RollTotal()+pins > MaxPins:
		return fmt.Errorf("%w: frame %d: total for all rolls cannot exceed %d", ErrState, f.number, MaxPins)
	}
	return nil
}

// RollTotal is the sum of own rolls, excluding bonus rolls.
func (f *Frame) RollTotal() int { return sum(f.rolls) }

// IsSpare is true when exactly two rolls knocked down all ten pins.
func (f *Frame) IsSpare() bool {
	return len(f.rolls) == 2 && f.RollTotal() == MaxPins
}

// IsStrike is true when a single roll knocked down all ten pins.
func (f *Frame) IsStrike() bool {
	return len(f.rolls) == 1 && f.rolls[0] == MaxPins
}

// RecordSpareBonus posts the single bonus roll a spare earns.
func (f *Frame) RecordSpareBonus(pins int) (*Frame, error) {
	if err := validatePins(pins); err != nil {
		return f, err
	}
	if err := f.checkSpareBonus(); err != nil {
		return f, err
	}
	f.bonusRolls = append(f.bonusRolls, pins)
	return f, nil
}

func (f *Frame) checkSpareBonus() error {
	if !f.IsSpare() {
		return fmt.Errorf("%w: frame %d: spare bonus on a frame that is not a spare", ErrState, f.number)
	}
	if len(f.bonusRolls) >= 1 {
		return fmt.Errorf("%w: frame %d: spare bonus already recorded", ErrState, f.number)
	}
	return nil
}

// RecordStrikeBonus posts one of the two bonus rolls a strike earns.
func (f *Frame) RecordStrikeBonus(pins int) (*Frame, error) {
	if err := validatePins(pins); err != nil {
		return f, err
	}
	if err := f.checkStrikeBonus(); err != nil {
		return f, err
	}
	f.bonusRolls = append(f.bonusRolls, pins)
	return f, nil
}

func (f *Frame) checkStrikeBonus() error {
	if !f.IsStrike() {
		return fmt.Errorf("%w: frame %d: strike bonus on a frame that is not a strike", ErrState, f.number)
	}
	if len(f.bonusRolls) >= 2 {
		return fmt.Errorf("%w: frame %d: two strike bonus rolls already recorded", ErrState, f.number)
	}
	return nil
}

// BonusTotal is the sum of bonus rolls.
func (f *Frame) BonusTotal() int { return sum(f.bonusRolls) }

// Score is the frame's complete contribution to the game total.
func (f *Frame) Score() int { return f.RollTotal() + f.BonusTotal() }

// State reports where the frame is in its scoring lifecycle.
func (f *Frame) State() FrameState {
	switch {
	case f.IsStrike():
		if len(f.bonusRolls) < 2 {
			return StateAwaitingStrikeBonus
		}
		return StateClosed
	case f.IsSpare():
		if len(f.bonusRolls) < 1 {
			return StateAwaitingSpareBonus
		}
		return StateClosed
	case len(f.rolls) == 2:
		return StateClosed
	default:
		return StateAccumulating
	}
}

// pendingBonus is the number of bonus rolls the frame is still owed.
func (f *Frame) pendingBonus() int {
	switch f.State() {
	case StateAwaitingStrikeBonus:
		return 2 - len(f.bonusRolls)
	case StateAwaitingSpareBonus:
		return 1
	}
	return 0
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
