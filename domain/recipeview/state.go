package recipeview

import (
	"fmt"

	pkgerrors "recipebook/pkg/errors"
)

// Serving bounds for the servings selector.
const (
	MinServings = 1
	MaxServings = 6
)

// ScaleState is the scaling input of a recipe page: either a serving
// count or a custom amount typed against one line. The two sources are
// mutually exclusive.
type ScaleState struct {
	servings int
	custom   map[int]float64
}

// NewScaleState starts at one serving with no override.
func NewScaleState() ScaleState {
	return ScaleState{servings: MinServings}
}

// Servings returns the selected serving count.
func (s ScaleState) Servings() int {
	return s.servings
}

// CustomAmount returns the override for a line, if any.
func (s ScaleState) CustomAmount(line int) (float64, bool) {
	v, ok := s.custom[line]
	return v, ok
}

// HasCustom reports whether any override is active.
func (s ScaleState) HasCustom() bool {
	return len(s.custom) > 0
}

// SelectServings picks a serving count and clears any custom override.
func (s *ScaleState) SelectServings(n int) error {
	if n < MinServings || n > MaxServings {
		return pkgerrors.NewValidationError(fmt.Sprintf("servings must be between %d and %d", MinServings, MaxServings))
	}
	s.servings = n
	s.custom = nil
	return nil
}

// SetCustomAmount records an absolute amount for one line. Only positive
// amounts are accepted; the override replaces any earlier one and resets
// servings to one.
func (s *ScaleState) SetCustomAmount(line int, amount float64) error {
	if !isFinite(amount) || amount <= 0 {
		return pkgerrors.NewValidationError("custom amount must be a positive number")
	}
	s.custom = map[int]float64{line: amount}
	s.servings = MinServings
	return nil
}

// ClearCustomAmount removes the override for one line.
func (s *ScaleState) ClearCustomAmount(line int) {
	delete(s.custom, line)
}

// Factor resolves the scale applied to every line of the recipe. The
// first core line with a usable override sets the factor to
// custom/original; otherwise the serving count applies.
func (s ScaleState) Factor(lines []Line) float64 {
	if s.HasCustom() {
		for i, line := range lines {
			custom, ok := s.custom[i]
			if !line.Core || !ok {
				continue
			}
			original := line.Amount()
			if original != nil && *original > 0 && custom > 0 {
				return custom / *original
			}
		}
	}
	return float64(s.servings)
}
