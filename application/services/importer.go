package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// Seed is a bulk load of catalog data.
type Seed struct {
	Ingredients []SeedIngredient `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Recipes     []SeedRecipe     `json:"recipes,omitempty" yaml:"recipes,omitempty"`
	Pairings    []SeedPairing    `json:"pairings,omitempty" yaml:"pairings,omitempty"`
}

// SeedIngredient seeds an ingredient and its protein content.
type SeedIngredient struct {
	Item           string   `json:"item" yaml:"item"`
	ProteinPer100g *float64 `json:"proteinPer100g,omitempty" yaml:"proteinPer100g,omitempty"`
}

// SeedRecipe seeds a recipe by ingredient names.
type SeedRecipe struct {
	Title        string     `json:"title" yaml:"title"`
	Ingredients  []SeedLine `json:"ingredients" yaml:"ingredients"`
	Instructions string     `json:"instructions" yaml:"instructions"`
}

// SeedLine is one ingredient line of a seeded recipe.
type SeedLine struct {
	Item     string        `json:"item" yaml:"item"`
	Core     bool          `json:"core,omitempty" yaml:"core,omitempty"`
	Forms    []string      `json:"forms,omitempty" yaml:"forms,omitempty"`
	Quantity *SeedQuantity `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// SeedQuantity is the amount and unit of a seeded line.
type SeedQuantity struct {
	Amount *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Unit   string   `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// SeedPairing groups seeded recipes by title.
type SeedPairing struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	RecipeTitles []string `json:"recipeTitles" yaml:"recipeTitles"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Ingredients int `json:"ingredients"`
	Recipes     int `json:"recipes"`
	Pairings    int `json:"pairings"`
	Skipped     int `json:"skipped"`
}

// Importer loads seed data through the same normalization used by the
// admin forms.
type Importer struct {
	normalizer *Normalizer
	refs       ports.ReferenceRepositories
	recipes    ports.RecipeRepository
	pairings   ports.PairingRepository
	logger     *zap.Logger
}

// NewImporter creates a new importer
func NewImporter(normalizer *Normalizer, refs ports.ReferenceRepositories, recipes ports.RecipeRepository, pairings ports.PairingRepository, logger *zap.Logger) *Importer {
	return &Importer{
		normalizer: normalizer,
		refs:       refs,
		recipes:    recipes,
		pairings:   pairings,
		logger:     logger,
	}
}

// Import writes ingredients, then recipes, then pairings. Recipes that fail
// validation (no ingredients, a bad line, a missing title) and pairings
// without a known recipe are skipped, not fatal.
func (i *Importer) Import(ctx context.Context, seed Seed) (ImportResult, error) {
	var result ImportResult

	if err := i.importIngredients(ctx, seed.Ingredients, &result); err != nil {
		return result, err
	}

	titles, err := i.importRecipes(ctx, seed.Recipes, &result)
	if err != nil {
		return result, err
	}

	if err := i.importPairings(ctx, seed.Pairings, titles, &result); err != nil {
		return result, err
	}

	i.logger.Info("Seed imported",
		zap.Int("ingredients", result.Ingredients),
		zap.Int("recipes", result.Recipes),
		zap.Int("pairings", result.Pairings),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (i *Importer) importIngredients(ctx context.Context, items []SeedIngredient, result *ImportResult) error {
	repo, err := i.refs.For(valueobjects.KindIngredient)
	if err != nil {
		return err
	}

	for _, item := range items {
		if strings.TrimSpace(item.Item) == "" {
			result.Skipped++
			continue
		}
		id, err := i.normalizer.ResolveIngredientName(ctx, item.Item)
		if err != nil {
			return fmt.Errorf("failed to import ingredient %q: %w", item.Item, err)
		}
		entity, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// Same as saveIngredient: an omitted value clears the stored one.
		if err := entity.SetProteinPer100g(item.ProteinPer100g); err != nil {
			i.logger.Warn("Skipping invalid protein value", zap.String("item", item.Item), zap.Error(err))
			result.Skipped++
			continue
		}
		if err := repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("failed to update ingredient %q: %w", item.Item, err)
		}
		result.Ingredients++
	}
	return nil
}

func (i *Importer) importRecipes(ctx context.Context, recipes []SeedRecipe, result *ImportResult) (map[string]valueobjects.ID, error) {
	existing, err := i.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	titles := make(map[string]valueobjects.ID, len(existing)+len(recipes))
	for _, r := range existing {
		titles[r.Title()] = r.ID()
	}

	for _, seeded := range recipes {
		lines, err := i.normalizer.BuildIngredientLines(ctx, seeded.RawLines())
		if err != nil {
			if !pkgerrors.IsValidation(err) {
				return nil, err
			}
			i.logger.Warn("Skipping recipe with invalid ingredients", zap.String("title", seeded.Title), zap.Error(err))
			result.Skipped++
			continue
		}

		recipe, err := entities.NewRecipe(seeded.Title, seeded.Instructions, lines)
		if err != nil {
			i.logger.Warn("Skipping recipe", zap.String("title", seeded.Title), zap.Error(err))
			result.Skipped++
			continue
		}
		if err := i.recipes.Save(ctx, recipe); err != nil {
			return nil, fmt.Errorf("failed to save recipe %q: %w", seeded.Title, err)
		}
		titles[recipe.Title()] = recipe.ID()
		result.Recipes++
	}
	return titles, nil
}

func (i *Importer) importPairings(ctx context.Context, pairings []SeedPairing, titles map[string]valueobjects.ID, result *ImportResult) error {
	for _, seeded := range pairings {
		ids := make([]valueobjects.ID, 0, len(seeded.RecipeTitles))
		for _, title := range seeded.RecipeTitles {
			id, ok := titles[strings.TrimSpace(title)]
			if !ok {
				i.logger.Warn("Recipe not found for pairing", zap.String("title", title))
				continue
			}
			ids = append(ids, id)
		}

		pairing, err := entities.NewPairing(seeded.Name, ids)
		if err != nil {
			i.logger.Warn("Skipping pairing without known recipes", zap.Strings("titles", seeded.RecipeTitles))
			result.Skipped++
			continue
		}
		if err := i.pairings.Save(ctx, pairing); err != nil {
			return fmt.Errorf("failed to save pairing: %w", err)
		}
		result.Pairings++
	}
	return nil
}

// RawLines converts seeded lines to the admin form representation.
func (r SeedRecipe) RawLines() []valueobjects.RawIngredientLine {
	out := make([]valueobjects.RawIngredientLine, len(r.Ingredients))
	for i, l := range r.Ingredients {
		raw := valueobjects.RawIngredientLine{Item: l.Item, Core: l.Core, Forms: l.Forms}
		if l.Quantity != nil {
			raw.Unit = l.Quantity.Unit
			if l.Quantity.Amount != nil {
				raw.Amount = strconv.FormatFloat(*l.Quantity.Amount, 'f', -1, 64)
			}
		}
		out[i] = raw
	}
	return out
}

// SeedFormat is the encoding of a seed file.
type SeedFormat string

const (
	FormatJSONL SeedFormat = "jsonl"
	FormatJSON  SeedFormat = "json"
	FormatYAML  SeedFormat = "yaml"
)

// FormatFromPath picks the seed format from a file extension.
func FormatFromPath(path string) (SeedFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported seed file extension %q", filepath.Ext(path))
	}
}

// DecodeRecords reads a list of records: one JSON object per line for
// JSONL, or a top-level array for JSON and YAML.
func DecodeRecords[T any](r io.Reader, format SeedFormat) ([]T, error) {
	switch format {
	case FormatJSONL:
		var out []T
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var rec T
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			out = append(out, rec)
		}
		return out, scanner.Err()
	case FormatJSON:
		var out []T
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	case FormatYAML:
		var out []T
		if err := yaml.NewDecoder(r).Decode(&out); err != nil && err != io.EOF {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
}
