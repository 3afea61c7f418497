package validators

import (
	"math"
	"strconv"
	"strings"

	"recipebook/domain/core/valueobjects"
	"recipebook/pkg/errors"
)

// Validation messages for submitted ingredient lines.
const (
	MsgItemRequired  = "item name required"
	MsgCoreGramOnly  = "core ingredients must use gram"
	MsgAmountNumeric = "amount must be a number"
)

// CheckedLine is a raw ingredient line that passed validation, with
// whitespace trimmed and the amount parsed.
type CheckedLine struct {
	Item   string
	Unit   string
	Forms  []string
	Amount *float64
	Core   bool
}

// HasQuantity reports whether an amount or a unit was supplied.
func (c CheckedLine) HasQuantity() bool {
	return c.Amount != nil || c.Unit != ""
}

// IngredientLineValidator enforces the per-line rules applied before any
// name is resolved.
type IngredientLineValidator struct{}

// NewIngredientLineValidator creates a validator.
func NewIngredientLineValidator() *IngredientLineValidator {
	return &IngredientLineValidator{}
}

// Check validates one non-empty line. index is reported back in the error
// details so the caller can point at the offending row.
func (v *IngredientLineValidator) Check(index int, raw valueobjects.RawIngredientLine) (CheckedLine, error) {
	item := strings.TrimSpace(raw.Item)
	unit := strings.TrimSpace(raw.Unit)
	amountText := strings.TrimSpace(raw.Amount)

	if item == "" {
		return CheckedLine{}, errors.NewLineValidationError(MsgItemRequired, index)
	}

	if raw.Core && unit != "" && !valueobjects.IsGramUnit(unit) {
		return CheckedLine{}, errors.NewLineValidationError(MsgCoreGramOnly, index)
	}

	checked := CheckedLine{Item: item, Unit: unit, Core: raw.Core}

	if amountText != "" {
		amount, ok := ParseAmount(amountText)
		if !ok {
			return CheckedLine{}, errors.NewLineValidationError(MsgAmountNumeric, index)
		}
		checked.Amount = &amount
	}

	for _, form := range raw.Forms {
		if f := strings.TrimSpace(form); f != "" {
			checked.Forms = append(checked.Forms, f)
		}
	}

	return checked, nil
}

// ParseAmount parses a finite decimal amount.
func ParseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
