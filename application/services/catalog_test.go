package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/infrastructure/persistence/memory"
	pkgerrors "recipebook/pkg/errors"
)

func TestCatalog_ListRecipesJoinsNames(t *testing.T) {
	ctx := context.Background()
	f := newOrphanFixture()
	catalog := NewCatalog(f.store.References(), f.store.Recipes(), f.store.Pairings())

	f.saveRecipe(t, "Omelette", valueobjects.RawIngredientLine{Item: "Egg", Amount: "3", Unit: "each"})

	recipes, err := catalog.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	require.Len(t, recipes[0].Ingredients, 1)

	line := recipes[0].Ingredients[0]
	assert.Equal(t, "Egg", line.Item)
	require.NotNil(t, line.Quantity)
	require.NotNil(t, line.Quantity.Amount)
	assert.Equal(t, 3.0, *line.Quantity.Amount)
	assert.Equal(t, "each", line.Quantity.Unit)
}

func TestCatalog_GetRecipeCarriesProtein(t *testing.T) {
	ctx := context.Background()
	f := newOrphanFixture()
	catalog := NewCatalog(f.store.References(), f.store.Recipes(), f.store.Pairings())

	r := f.saveRecipe(t, "Chicken", valueobjects.RawIngredientLine{Item: "Chicken breast", Amount: "200", Unit: "g", Core: true, Forms: []string{"grilled"}})
	repo, _ := f.store.References().For(valueobjects.KindIngredient)
	chicken, err := repo.GetByID(ctx, r.Lines()[0].IngredientID)
	require.NoError(t, err)
	protein := 31.0
	require.NoError(t, chicken.SetProteinPer100g(&protein))
	require.NoError(t, repo.Update(ctx, chicken))

	got, err := catalog.GetRecipe(ctx, r.ID())
	require.NoError(t, err)
	require.NotNil(t, got.Ingredients[0].ProteinPer100g)
	assert.Equal(t, 31.0, *got.Ingredients[0].ProteinPer100g)
	assert.Equal(t, []string{"grilled"}, got.Ingredients[0].Forms)

	_, err = catalog.GetRecipe(ctx, valueobjects.NewID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCatalog_ListNamesSorted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	n := NewNormalizer(store.References(), zap.NewNop())
	catalog := NewCatalog(store.References(), store.Recipes(), store.Pairings())

	for _, name := range []string{"tbsp", "cup", "g"} {
		_, err := n.ResolveUnitName(ctx, name)
		require.NoError(t, err)
	}

	got, err := catalog.ListNames(ctx, valueobjects.KindUnit)
	require.NoError(t, err)
	assert.Equal(t, []string{"cup", "g", "tbsp"}, got)
}

func TestCatalog_ListPairingsSkipsDeletedRecipes(t *testing.T) {
	ctx := context.Background()
	f := newOrphanFixture()
	catalog := NewCatalog(f.store.References(), f.store.Recipes(), f.store.Pairings())

	kept := f.saveRecipe(t, "Rice", valueobjects.RawIngredientLine{Item: "Rice"})
	dropped := f.saveRecipe(t, "Curry", valueobjects.RawIngredientLine{Item: "Curry paste"})

	p, err := entities.NewPairing("Dinner", []valueobjects.ID{kept.ID(), dropped.ID()})
	require.NoError(t, err)
	require.NoError(t, f.store.Pairings().Save(ctx, p))
	require.NoError(t, f.store.Recipes().Delete(ctx, dropped.ID()))

	pairings, err := catalog.ListPairings(ctx)
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Len(t, pairings[0].RecipeIDs, 2)
	require.Len(t, pairings[0].Recipes, 1)
	assert.Equal(t, "Rice", pairings[0].Recipes[0].Title)
}

func TestMatchNames(t *testing.T) {
	all := []string{"Chickpeas", "chicken thigh", "Dark chocolate", "Egg", "Éclair"}

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"caseless substring", "CHIC", 8, []string{"Chickpeas", "chicken thigh"}},
		{"middle of name", "choc", 8, []string{"Dark chocolate"}},
		{"blank returns first names", " ", 2, []string{"Chickpeas", "chicken thigh"}},
		{"accented letters fold", "éCLAIR", 8, []string{"Éclair"}},
		{"no match", "tofu", 8, []string{}},
		{"limit far above name count", "", 1 << 30, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchNames(all, tt.text, tt.limit))
		})
	}
}

func TestSuggester_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	n := NewNormalizer(store.References(), zap.NewNop())
	for _, c := range "abcdefghij" {
		_, err := n.ResolveFormName(ctx, "form "+strings.Repeat(string(c), 2))
		require.NoError(t, err)
	}
	s := NewSuggester(NewCatalog(store.References(), store.Recipes(), store.Pairings()))

	got, err := s.Suggest(ctx, valueobjects.KindForm, "form", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultSuggestionLimit)
}
