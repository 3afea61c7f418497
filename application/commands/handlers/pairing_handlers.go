package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/domain/core/entities"
)

// SavePairingHandler stores a new pairing
type SavePairingHandler struct {
	pairings ports.PairingRepository
	logger   *zap.Logger
}

// NewSavePairingHandler creates a new save pairing handler
func NewSavePairingHandler(pairings ports.PairingRepository, logger *zap.Logger) *SavePairingHandler {
	return &SavePairingHandler{pairings: pairings, logger: logger}
}

// Handle executes the save pairing command. Recipe ids are stored as given;
// they are not checked against the recipes collection.
func (h *SavePairingHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.SavePairingCommand)
	if !ok {
		return nil, unexpected(c)
	}

	pairing, err := entities.NewPairing(cmd.Name, cmd.IDs())
	if err != nil {
		return nil, err
	}
	if err := h.pairings.Save(ctx, pairing); err != nil {
		return nil, fmt.Errorf("failed to save pairing: %w", err)
	}

	h.logger.Info("Pairing saved",
		zap.String("pairing_id", pairing.ID().String()),
		zap.Int("recipes", len(pairing.RecipeIDs())),
	)
	return commands.IDResult{ID: pairing.ID().String()}, nil
}

// DeletePairingHandler removes a pairing
type DeletePairingHandler struct {
	pairings ports.PairingRepository
	logger   *zap.Logger
}

// NewDeletePairingHandler creates a new delete pairing handler
func NewDeletePairingHandler(pairings ports.PairingRepository, logger *zap.Logger) *DeletePairingHandler {
	return &DeletePairingHandler{pairings: pairings, logger: logger}
}

// Handle executes the delete pairing command
func (h *DeletePairingHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.DeletePairingCommand)
	if !ok {
		return nil, unexpected(c)
	}
	if err := h.pairings.Delete(ctx, cmd.ID()); err != nil {
		return nil, err
	}
	h.logger.Info("Pairing deleted", zap.String("pairing_id", cmd.PairingID))
	return nil, nil
}
