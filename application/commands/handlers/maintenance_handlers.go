package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/application/sagas"
	"recipebook/application/services"
	"recipebook/domain/core/valueobjects"
)

// ClearAllDataHandler empties the catalog
type ClearAllDataHandler struct {
	refs     ports.ReferenceRepositories
	recipes  ports.RecipeRepository
	pairings ports.PairingRepository
	logger   *zap.Logger
}

// NewClearAllDataHandler creates a new clear all data handler
func NewClearAllDataHandler(refs ports.ReferenceRepositories, recipes ports.RecipeRepository, pairings ports.PairingRepository, logger *zap.Logger) *ClearAllDataHandler {
	return &ClearAllDataHandler{
		refs:     refs,
		recipes:  recipes,
		pairings: pairings,
		logger:   logger,
	}
}

// Handle deletes pairings, recipes, ingredients, forms and units, in that
// order, so no reference outlives the document pointing at it.
func (h *ClearAllDataHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	if _, ok := c.(commands.ClearAllDataCommand); !ok {
		return nil, unexpected(c)
	}

	var result commands.ClearAllDataResult
	saga := sagas.NewSagaBuilder("clear-all-data", h.logger).
		WithRetryableStep("pairings", deleteAllInto(h.pairings, &result.Pairings), clearRetries, clearRetryDelay).
		WithRetryableStep("recipes", deleteAllInto(h.recipes, &result.Recipes), clearRetries, clearRetryDelay)

	counts := map[valueobjects.EntityKind]*int{
		valueobjects.KindIngredient: &result.Ingredients,
		valueobjects.KindForm:       &result.Forms,
		valueobjects.KindUnit:       &result.Units,
	}
	for _, kind := range valueobjects.AllKinds {
		repo, err := h.refs.For(kind)
		if err != nil {
			return result, err
		}
		saga.WithRetryableStep(kind.Plural(), deleteAllInto(repo, counts[kind]), clearRetries, clearRetryDelay)
	}

	run := saga.Build()
	if err := run.Execute(ctx); err != nil {
		h.logger.Warn("Catalog partially cleared",
			zap.String("saga_state", string(run.GetState())),
			zap.Int("failed_step", run.GetCurrentStep()),
			zap.Int("pairings", result.Pairings),
			zap.Int("recipes", result.Recipes),
		)
		return result, fmt.Errorf("failed to clear catalog: %w", err)
	}

	h.logger.Info("Catalog cleared",
		zap.Int("pairings", result.Pairings),
		zap.Int("recipes", result.Recipes),
		zap.Int("ingredients", result.Ingredients),
		zap.Int("forms", result.Forms),
		zap.Int("units", result.Units),
	)
	return result, nil
}

const (
	clearRetries    = 2
	clearRetryDelay = 200 * time.Millisecond
)

type deleteAller interface {
	DeleteAll(ctx context.Context) (int, error)
}

// deleteAllInto empties one collection, adding what every attempt removed
// to n.
func deleteAllInto(repo deleteAller, n *int) func(context.Context) error {
	return func(ctx context.Context) error {
		deleted, err := repo.DeleteAll(ctx)
		*n += deleted
		return err
	}
}

// ImportSeedHandler bulk loads seed data
type ImportSeedHandler struct {
	importer *services.Importer
}

// NewImportSeedHandler creates a new import seed handler
func NewImportSeedHandler(importer *services.Importer) *ImportSeedHandler {
	return &ImportSeedHandler{importer: importer}
}

// Handle executes the import seed command
func (h *ImportSeedHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.ImportSeedCommand)
	if !ok {
		return nil, unexpected(c)
	}
	return h.importer.Import(ctx, cmd.Seed)
}
