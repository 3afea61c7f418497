package handlers

import (
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/application/services"
)

// Dependencies are what the command handlers need
type Dependencies struct {
	Store      ports.Store
	Normalizer *services.Normalizer
	Orphans    *services.OrphanDetector
	Importer   *services.Importer
	Logger     *zap.Logger
}

// RegisterAll registers every command handler on the bus
func RegisterAll(b *bus.CommandBus, deps Dependencies) error {
	refs := deps.Store.References()
	recipes := deps.Store.Recipes()
	pairings := deps.Store.Pairings()

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.AddRecipeCommand{}, NewAddRecipeHandler(deps.Normalizer, recipes, deps.Logger)},
		{commands.UpdateRecipeCommand{}, NewUpdateRecipeHandler(deps.Normalizer, recipes, deps.Logger)},
		{commands.RemoveRecipeCommand{}, NewRemoveRecipeHandler(recipes, deps.Logger)},
		{commands.RemoveReferenceCommand{}, NewRemoveReferenceHandler(deps.Orphans)},
		{commands.RemoveUnusedCommand{}, NewRemoveUnusedHandler(deps.Orphans)},
		{commands.SaveIngredientCommand{}, NewSaveIngredientHandler(deps.Normalizer, refs, deps.Logger)},
		{commands.SavePairingCommand{}, NewSavePairingHandler(pairings, deps.Logger)},
		{commands.DeletePairingCommand{}, NewDeletePairingHandler(pairings, deps.Logger)},
		{commands.ClearAllDataCommand{}, NewClearAllDataHandler(refs, recipes, pairings, deps.Logger)},
		{commands.ImportSeedCommand{}, NewImportSeedHandler(deps.Importer)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
