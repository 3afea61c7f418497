package valueobjects

import "strings"

// RawIngredientLine is an ingredient line as typed into the admin form,
// before any name resolution.
type RawIngredientLine struct {
	Item   string   `json:"item" yaml:"item"`
	Amount string   `json:"amount" yaml:"amount"`
	Unit   string   `json:"unit" yaml:"unit"`
	Forms  []string `json:"forms" yaml:"forms"`
	Core   bool     `json:"core" yaml:"core"`
}

// IsEmpty reports whether the line carries no input at all. Such lines are
// dropped without error.
func (l RawIngredientLine) IsEmpty() bool {
	return strings.TrimSpace(l.Item) == "" &&
		strings.TrimSpace(l.Amount) == "" &&
		strings.TrimSpace(l.Unit) == "" &&
		len(l.Forms) == 0
}
