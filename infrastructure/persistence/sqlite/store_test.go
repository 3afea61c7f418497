package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReferenceRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo, err := store.References().For(valueobjects.KindIngredient)
	require.NoError(t, err)

	egg, err := entities.NewReferenceEntity(valueobjects.KindIngredient, "Egg")
	require.NoError(t, err)
	protein := 13.0
	require.NoError(t, egg.SetProteinPer100g(&protein))
	require.NoError(t, repo.Create(ctx, egg))

	t.Run("find by name", func(t *testing.T) {
		got, err := repo.FindByName(ctx, "Egg")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, egg.ID(), got.ID())
		require.NotNil(t, got.ProteinPer100g())
		assert.Equal(t, 13.0, *got.ProteinPer100g())

		missing, err := repo.FindByName(ctx, "egg")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup, _ := entities.NewReferenceEntity(valueobjects.KindIngredient, "Egg")
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("same name in another kind", func(t *testing.T) {
		forms, _ := store.References().For(valueobjects.KindForm)
		form, _ := entities.NewReferenceEntity(valueobjects.KindForm, "Egg")
		assert.NoError(t, forms.Create(ctx, form))
	})

	t.Run("rename onto taken name", func(t *testing.T) {
		salt, _ := entities.NewReferenceEntity(valueobjects.KindIngredient, "Salt")
		require.NoError(t, repo.Create(ctx, salt))
		require.NoError(t, salt.Rename("Egg"))

		err := repo.Update(ctx, salt)
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("update clears protein", func(t *testing.T) {
		require.NoError(t, egg.SetProteinPer100g(nil))
		require.NoError(t, repo.Update(ctx, egg))

		got, err := repo.GetByID(ctx, egg.ID())
		require.NoError(t, err)
		assert.Nil(t, got.ProteinPer100g())
	})

	t.Run("update missing", func(t *testing.T) {
		ghost, _ := entities.NewReferenceEntity(valueobjects.KindIngredient, "Ghost")
		assert.True(t, pkgerrors.IsNotFound(repo.Update(ctx, ghost)))
	})

	t.Run("list sorted", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Egg", list[0].Name())
		assert.Equal(t, "Salt", list[1].Name())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, egg.ID()))
		assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, egg.ID())))

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestRecipeRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	recipes := store.Recipes()

	amount := 2.0
	first, err := entities.NewRecipe("Toast", "", []valueobjects.IngredientLine{
		{IngredientID: valueobjects.NewID(), Quantity: &valueobjects.Quantity{Amount: &amount, UnitID: valueobjects.NewID()}},
	})
	require.NoError(t, err)
	second, err := entities.NewRecipe("Salad", "Toss.", []valueobjects.IngredientLine{
		{IngredientID: valueobjects.NewID(), Core: true, FormIDs: []valueobjects.ID{valueobjects.NewID()}},
	})
	require.NoError(t, err)
	require.NoError(t, recipes.Save(ctx, first))
	require.NoError(t, recipes.Save(ctx, second))

	got, err := recipes.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, first.Lines(), got.Lines())
	assert.True(t, first.CreatedAt().Equal(got.CreatedAt()))

	require.NoError(t, first.SetTitle("Buttered toast"))
	require.NoError(t, recipes.Save(ctx, first))

	list, err := recipes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Buttered toast", list[0].Title())
	assert.Equal(t, "Salad", list[1].Title())

	assert.True(t, pkgerrors.IsNotFound(recipes.Delete(ctx, valueobjects.NewID())))
	_, err = recipes.GetByID(ctx, valueobjects.NewID())
	assert.True(t, pkgerrors.IsNotFound(err))

	n, err := recipes.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPairingRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	pairings := store.Pairings()

	ids := []valueobjects.ID{valueobjects.NewID(), valueobjects.NewID()}
	p, err := entities.NewPairing("Dinner", ids)
	require.NoError(t, err)
	require.NoError(t, pairings.Save(ctx, p))

	got, err := pairings.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Name())
	assert.Equal(t, ids, got.RecipeIDs())

	require.NoError(t, pairings.Delete(ctx, p.ID()))
	assert.True(t, pkgerrors.IsNotFound(pairings.Delete(ctx, p.ID())))
}

func TestStore_Ping(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
