package ports

import (
	"context"
	"fmt"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

// ReferenceRepository persists one collection of reference entities
// (ingredients, units or forms). Names are unique within the collection.
type ReferenceRepository interface {
	// Kind reports which collection this repository serves
	Kind() valueobjects.EntityKind

	// FindByName looks up an entity by exact, case-sensitive name.
	// It returns (nil, nil) when no entity has that name.
	FindByName(ctx context.Context, name string) (*entities.ReferenceEntity, error)

	// GetByID returns a NotFound error when the id is unknown
	GetByID(ctx context.Context, id valueobjects.ID) (*entities.ReferenceEntity, error)

	// List returns every entity ordered by name
	List(ctx context.Context) ([]*entities.ReferenceEntity, error)

	// Create inserts a new entity; a Conflict error means the name is taken
	Create(ctx context.Context, entity *entities.ReferenceEntity) error

	// Update rewrites an existing entity, including a rename
	Update(ctx context.Context, entity *entities.ReferenceEntity) error

	// Delete removes an entity by id
	Delete(ctx context.Context, id valueobjects.ID) error

	// DeleteAll empties the collection and reports how many were removed
	DeleteAll(ctx context.Context) (int, error)
}

// RecipeRepository persists recipes.
type RecipeRepository interface {
	// Save creates or replaces a recipe
	Save(ctx context.Context, recipe *entities.Recipe) error

	GetByID(ctx context.Context, id valueobjects.ID) (*entities.Recipe, error)

	// List returns every recipe in creation order
	List(ctx context.Context) ([]*entities.Recipe, error)

	Delete(ctx context.Context, id valueobjects.ID) error
	DeleteAll(ctx context.Context) (int, error)
}

// PairingRepository persists recipe pairings.
type PairingRepository interface {
	Save(ctx context.Context, pairing *entities.Pairing) error
	GetByID(ctx context.Context, id valueobjects.ID) (*entities.Pairing, error)
	List(ctx context.Context) ([]*entities.Pairing, error)
	Delete(ctx context.Context, id valueobjects.ID) error
	DeleteAll(ctx context.Context) (int, error)
}

// ReferenceRepositories indexes the reference repositories by kind.
type ReferenceRepositories map[valueobjects.EntityKind]ReferenceRepository

// For returns the repository serving kind.
func (r ReferenceRepositories) For(kind valueobjects.EntityKind) (ReferenceRepository, error) {
	repo, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no repository for entity kind %q", kind)
	}
	return repo, nil
}

// Store bundles the repositories of one storage driver.
type Store interface {
	References() ReferenceRepositories
	Recipes() RecipeRepository
	Pairings() PairingRepository

	// Ping checks that the backing storage is reachable
	Ping(ctx context.Context) error
	Close() error
}
