package valueobjects

import "strings"

// Quantity is the optional amount and unit of an ingredient line.
type Quantity struct {
	Amount *float64 `json:"amount,omitempty" dynamodbav:"amount,omitempty"`
	UnitID ID       `json:"unitId,omitempty" dynamodbav:"unitId,omitempty"`
}

// IsGramUnit reports whether a unit name is one of the gram synonyms
// accepted for core ingredients.
func IsGramUnit(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gram", "grams", "g":
		return true
	}
	return false
}
