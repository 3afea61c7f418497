package services

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"recipebook/domain/core/valueobjects"
)

// DefaultSuggestionLimit caps suggestion lists when no limit is given.
const DefaultSuggestionLimit = 8

// Suggester offers existing entity names for autocompletion.
type Suggester struct {
	catalog *Catalog
}

// NewSuggester creates a new suggester
func NewSuggester(catalog *Catalog) *Suggester {
	return &Suggester{catalog: catalog}
}

// Suggest returns up to limit names of kind containing text, ignoring
// case. Blank text matches every name.
func (s *Suggester) Suggest(ctx context.Context, kind valueobjects.EntityKind, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	names, err := s.catalog.ListNames(ctx, kind)
	if err != nil {
		return nil, err
	}

	return MatchNames(names, text, limit), nil
}

// MatchNames filters names by caseless substring match, keeping order.
func MatchNames(names []string, text string, limit int) []string {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(text))

	out := make([]string, 0, min(limit, len(names)))
	for _, name := range names {
		if len(out) == limit {
			break
		}
		if needle == "" || strings.Contains(fold.String(name), needle) {
			out = append(out, name)
		}
	}
	return out
}
