package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/core/valueobjects"
	"recipebook/infrastructure/persistence/memory"
)

func newImporter(store *memory.Store) *Importer {
	refs := store.References()
	return NewImporter(NewNormalizer(refs, zap.NewNop()), refs, store.Recipes(), store.Pairings(), zap.NewNop())
}

func TestDecodeRecords_JSONL(t *testing.T) {
	input := `{"item":"Chicken","proteinPer100g":31}

{"item":"Rice"}
`
	got, err := DecodeRecords[SeedIngredient](strings.NewReader(input), FormatJSONL)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chicken", got[0].Item)
	require.NotNil(t, got[0].ProteinPer100g)
	assert.Equal(t, 31.0, *got[0].ProteinPer100g)
	assert.Nil(t, got[1].ProteinPer100g)
}

func TestDecodeRecords_JSONLReportsLine(t *testing.T) {
	_, err := DecodeRecords[SeedIngredient](strings.NewReader("{\"item\":\"a\"}\n{oops\n"), FormatJSONL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeRecords_YAML(t *testing.T) {
	input := `
- title: Porridge
  instructions: |
    Boil milk
    Add oats
  ingredients:
    - item: Oats
      core: true
      quantity:
        amount: 50
        unit: g
    - item: Milk
      forms: [warm]
`
	got, err := DecodeRecords[SeedRecipe](strings.NewReader(input), FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Porridge", got[0].Title)
	require.Len(t, got[0].Ingredients, 2)
	assert.True(t, got[0].Ingredients[0].Core)
	assert.Equal(t, []string{"warm"}, got[0].Ingredients[1].Forms)

	raw := got[0].RawLines()
	assert.Equal(t, "50", raw[0].Amount)
	assert.Equal(t, "g", raw[0].Unit)
	assert.Equal(t, "", raw[1].Amount)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]SeedFormat{
		"data/recipes.jsonl": FormatJSONL,
		"seed.YAML":          FormatYAML,
		"seed.yml":           FormatYAML,
		"list.json":          FormatJSON,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("seed.csv")
	assert.Error(t, err)
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	importer := newImporter(store)
	amount := 100.0
	protein := 25.0

	seed := Seed{
		Ingredients: []SeedIngredient{{Item: "Chicken", ProteinPer100g: &protein}, {Item: " "}},
		Recipes: []SeedRecipe{
			{Title: "Grilled chicken", Instructions: "Grill", Ingredients: []SeedLine{
				{Item: "Chicken", Core: true, Quantity: &SeedQuantity{Amount: &amount, Unit: "g"}},
			}},
			{Title: "Broken", Ingredients: []SeedLine{
				{Item: "Milk", Core: true, Quantity: &SeedQuantity{Amount: &amount, Unit: "ml"}},
			}},
			{Title: "Nothing", Ingredients: []SeedLine{{}}},
		},
		Pairings: []SeedPairing{
			{Name: "Lunch", RecipeTitles: []string{"Grilled chicken", "Unknown"}},
			{RecipeTitles: []string{"Unknown"}},
		},
	}

	result, err := importer.Import(ctx, seed)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Ingredients)
	assert.Equal(t, 1, result.Recipes)
	assert.Equal(t, 1, result.Pairings)
	assert.Equal(t, 4, result.Skipped)

	catalog := NewCatalog(store.References(), store.Recipes(), store.Pairings())
	recipes, err := catalog.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	require.NotNil(t, recipes[0].Ingredients[0].ProteinPer100g)
	assert.Equal(t, 25.0, *recipes[0].Ingredients[0].ProteinPer100g)

	pairings, err := catalog.ListPairings(ctx)
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Equal(t, []valueobjects.ID{recipes[0].ID}, pairings[0].RecipeIDs)
}

func TestImporter_IngredientProteinFollowsSeed(t *testing.T) {
	ctx := context.Background()
	protein := 13.0
	changed := 12.5

	tests := []struct {
		name    string
		seeded  *float64
		want    *float64
		skipped int
	}{
		{"value replaces stored protein", &changed, &changed, 0},
		{"omitted value clears stored protein", nil, nil, 0},
		{"invalid value keeps stored protein", ptr(-1.0), &protein, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := memory.NewStore()
			importer := newImporter(store)
			_, err := importer.Import(ctx, Seed{Ingredients: []SeedIngredient{{Item: "Egg", ProteinPer100g: &protein}}})
			require.NoError(t, err)

			// Act
			result, err := importer.Import(ctx, Seed{Ingredients: []SeedIngredient{{Item: "Egg", ProteinPer100g: tt.seeded}}})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.skipped, result.Skipped)
			repo, _ := store.References().For(valueobjects.KindIngredient)
			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, tt.want, list[0].ProteinPer100g())
		})
	}
}

func TestImporter_SkipsRecipesWithInvalidLines(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	amount := 2.0

	result, err := newImporter(store).Import(ctx, Seed{Recipes: []SeedRecipe{
		{Title: "Bad core unit", Ingredients: []SeedLine{
			{Item: "Flour"},
			{Item: "Sugar", Core: true, Quantity: &SeedQuantity{Amount: &amount, Unit: "cup"}},
		}},
		{Title: "Empty"},
		{Title: "Bread", Ingredients: []SeedLine{{Item: "Flour"}}},
	}})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Recipes)
	assert.Equal(t, 2, result.Skipped)
}

func ptr(v float64) *float64 { return &v }
