package commands

import (
	"recipebook/domain/core/valueobjects"
	"recipebook/pkg/utils"
)

// SavePairingCommand bookmarks a set of recipes. It is public.
type SavePairingCommand struct {
	Name      string   `json:"name,omitempty" validate:"max=200"`
	RecipeIDs []string `json:"recipeIds"`
}

// Validate validates the command
func (c SavePairingCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// IDs returns the well-formed recipe ids, in order
func (c SavePairingCommand) IDs() []valueobjects.ID {
	ids := make([]valueobjects.ID, 0, len(c.RecipeIDs))
	for _, raw := range c.RecipeIDs {
		if id, ok := valueobjects.ParseID(raw); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Collections implements bus.WriteScoped
func (c SavePairingCommand) Collections() []string {
	return []string{valueobjects.CollectionPairings}
}

// DeletePairingCommand removes a pairing. It is public.
type DeletePairingCommand struct {
	PairingID string `json:"pairingId"`
}

// Validate validates the command
func (c DeletePairingCommand) Validate() error {
	_, err := parseID(c.PairingID, "pairing")
	return err
}

// ID returns the parsed pairing id
func (c DeletePairingCommand) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(c.PairingID)
	return id
}

// Collections implements bus.WriteScoped
func (c DeletePairingCommand) Collections() []string {
	return []string{valueobjects.CollectionPairings}
}
