// Package memory is the in-process storage driver. It backs local
// development and every application-level test.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

type referenceRecord struct {
	name           string
	proteinPer100g *float64
}

type recipeRecord struct {
	title        string
	instructions string
	lines        []valueobjects.IngredientLine
	createdAt    time.Time
	updatedAt    time.Time
	seq          int64
}

type pairingRecord struct {
	name      string
	recipeIDs []valueobjects.ID
	createdAt time.Time
	seq       int64
}

// Store keeps every collection in maps guarded by a single lock.
type Store struct {
	mu         sync.RWMutex
	references map[valueobjects.EntityKind]map[valueobjects.ID]referenceRecord
	names      map[valueobjects.EntityKind]map[string]valueobjects.ID
	recipes    map[valueobjects.ID]recipeRecord
	pairings   map[valueobjects.ID]pairingRecord
	seq        int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		references: make(map[valueobjects.EntityKind]map[valueobjects.ID]referenceRecord),
		names:      make(map[valueobjects.EntityKind]map[string]valueobjects.ID),
		recipes:    make(map[valueobjects.ID]recipeRecord),
		pairings:   make(map[valueobjects.ID]pairingRecord),
	}
	for _, kind := range valueobjects.AllKinds {
		s.references[kind] = make(map[valueobjects.ID]referenceRecord)
		s.names[kind] = make(map[string]valueobjects.ID)
	}
	return s
}

var _ ports.Store = (*Store)(nil)

// References returns a repository per entity kind.
func (s *Store) References() ports.ReferenceRepositories {
	repos := make(ports.ReferenceRepositories, len(valueobjects.AllKinds))
	for _, kind := range valueobjects.AllKinds {
		repos[kind] = &referenceRepository{store: s, kind: kind}
	}
	return repos
}

func (s *Store) Recipes() ports.RecipeRepository   { return &recipeRepository{store: s} }
func (s *Store) Pairings() ports.PairingRepository { return &pairingRepository{store: s} }
func (s *Store) Ping(ctx context.Context) error    { return nil }
func (s *Store) Close() error                      { return nil }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type referenceRepository struct {
	store *Store
	kind  valueobjects.EntityKind
}

func (r *referenceRepository) Kind() valueobjects.EntityKind { return r.kind }

func (r *referenceRepository) FindByName(ctx context.Context, name string) (*entities.ReferenceEntity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.names[r.kind][name]
	if !ok {
		return nil, nil
	}
	return r.entity(id, r.store.references[r.kind][id]), nil
}

func (r *referenceRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.ReferenceEntity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.references[r.kind][id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(r.kind.Label())
	}
	return r.entity(id, rec), nil
}

func (r *referenceRepository) List(ctx context.Context) ([]*entities.ReferenceEntity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entities.ReferenceEntity, 0, len(r.store.references[r.kind]))
	for id, rec := range r.store.references[r.kind] {
		out = append(out, r.entity(id, rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *referenceRepository) Create(ctx context.Context, entity *entities.ReferenceEntity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.names[r.kind][entity.Name()]; taken {
		return duplicateName(r.kind, entity.Name())
	}
	r.store.references[r.kind][entity.ID()] = referenceRecord{name: entity.Name(), proteinPer100g: entity.ProteinPer100g()}
	r.store.names[r.kind][entity.Name()] = entity.ID()
	return nil
}

func (r *referenceRepository) Update(ctx context.Context, entity *entities.ReferenceEntity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.references[r.kind][entity.ID()]
	if !ok {
		return pkgerrors.NewNotFoundError(r.kind.Label())
	}
	if owner, taken := r.store.names[r.kind][entity.Name()]; taken && owner != entity.ID() {
		return duplicateName(r.kind, entity.Name())
	}
	delete(r.store.names[r.kind], current.name)
	r.store.names[r.kind][entity.Name()] = entity.ID()
	r.store.references[r.kind][entity.ID()] = referenceRecord{name: entity.Name(), proteinPer100g: entity.ProteinPer100g()}
	return nil
}

func (r *referenceRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.references[r.kind][id]
	if !ok {
		return pkgerrors.NewNotFoundError(r.kind.Label())
	}
	delete(r.store.references[r.kind], id)
	delete(r.store.names[r.kind], rec.name)
	return nil
}

func (r *referenceRepository) DeleteAll(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := len(r.store.references[r.kind])
	r.store.references[r.kind] = make(map[valueobjects.ID]referenceRecord)
	r.store.names[r.kind] = make(map[string]valueobjects.ID)
	return n, nil
}

func (r *referenceRepository) entity(id valueobjects.ID, rec referenceRecord) *entities.ReferenceEntity {
	return entities.ReconstructReferenceEntity(r.kind, id, rec.name, rec.proteinPer100g)
}

func duplicateName(kind valueobjects.EntityKind, name string) error {
	return pkgerrors.NewDuplicateNameError(kind.Label(), name)
}

type recipeRepository struct {
	store *Store
}

func (r *recipeRepository) Save(ctx context.Context, recipe *entities.Recipe) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec := recipeRecord{
		title:        recipe.Title(),
		instructions: recipe.Instructions(),
		lines:        recipe.Lines(),
		createdAt:    recipe.CreatedAt(),
		updatedAt:    recipe.UpdatedAt(),
	}
	if existing, ok := r.store.recipes[recipe.ID()]; ok {
		rec.seq = existing.seq
	} else {
		rec.seq = r.store.nextSeq()
	}
	r.store.recipes[recipe.ID()] = rec
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Recipe, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.recipes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("recipe")
	}
	return entities.ReconstructRecipe(id, rec.title, rec.instructions, rec.lines, rec.createdAt, rec.updatedAt), nil
}

func (r *recipeRepository) List(ctx context.Context) ([]*entities.Recipe, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]valueobjects.ID, 0, len(r.store.recipes))
	for id := range r.store.recipes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.store.recipes[ids[i]].seq < r.store.recipes[ids[j]].seq })

	out := make([]*entities.Recipe, len(ids))
	for i, id := range ids {
		rec := r.store.recipes[id]
		out[i] = entities.ReconstructRecipe(id, rec.title, rec.instructions, rec.lines, rec.createdAt, rec.updatedAt)
	}
	return out, nil
}

func (r *recipeRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.recipes[id]; !ok {
		return pkgerrors.NewNotFoundError("recipe")
	}
	delete(r.store.recipes, id)
	return nil
}

func (r *recipeRepository) DeleteAll(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := len(r.store.recipes)
	r.store.recipes = make(map[valueobjects.ID]recipeRecord)
	return n, nil
}

type pairingRepository struct {
	store *Store
}

func (r *pairingRepository) Save(ctx context.Context, pairing *entities.Pairing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec := pairingRecord{name: pairing.Name(), recipeIDs: pairing.RecipeIDs(), createdAt: pairing.CreatedAt()}
	if existing, ok := r.store.pairings[pairing.ID()]; ok {
		rec.seq = existing.seq
	} else {
		rec.seq = r.store.nextSeq()
	}
	r.store.pairings[pairing.ID()] = rec
	return nil
}

func (r *pairingRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Pairing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.pairings[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("pairing")
	}
	return entities.ReconstructPairing(id, rec.name, rec.recipeIDs, rec.createdAt), nil
}

func (r *pairingRepository) List(ctx context.Context) ([]*entities.Pairing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]valueobjects.ID, 0, len(r.store.pairings))
	for id := range r.store.pairings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.store.pairings[ids[i]].seq < r.store.pairings[ids[j]].seq })

	out := make([]*entities.Pairing, len(ids))
	for i, id := range ids {
		rec := r.store.pairings[id]
		out[i] = entities.ReconstructPairing(id, rec.name, rec.recipeIDs, rec.createdAt)
	}
	return out, nil
}

func (r *pairingRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.pairings[id]; !ok {
		return pkgerrors.NewNotFoundError("pairing")
	}
	delete(r.store.pairings, id)
	return nil
}

func (r *pairingRepository) DeleteAll(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := len(r.store.pairings)
	r.store.pairings = make(map[valueobjects.ID]pairingRecord)
	return n, nil
}
