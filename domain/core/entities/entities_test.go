package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/domain/core/valueobjects"
	"recipebook/pkg/errors"
)

func TestNewReferenceEntity(t *testing.T) {
	e, err := NewReferenceEntity(valueobjects.KindIngredient, "  Salt  ")
	require.NoError(t, err)
	assert.Equal(t, "Salt", e.Name())
	assert.False(t, e.ID().IsZero())
	assert.Nil(t, e.ProteinPer100g())

	_, err = NewReferenceEntity(valueobjects.KindUnit, "   ")
	assert.True(t, errors.IsValidation(err))
}

func TestReferenceEntity_SetProteinPer100g(t *testing.T) {
	ingredient, _ := NewReferenceEntity(valueobjects.KindIngredient, "Tofu")
	unit, _ := NewReferenceEntity(valueobjects.KindUnit, "g")

	tests := []struct {
		name    string
		entity  *ReferenceEntity
		value   *float64
		wantErr bool
	}{
		{"positive", ingredient, ptr(8.1), false},
		{"zero", ingredient, ptr(0), false},
		{"clear", ingredient, nil, false},
		{"negative", ingredient, ptr(-1), true},
		{"nan", ingredient, ptr(math.NaN()), true},
		{"unit rejects protein", unit, ptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.SetProteinPer100g(tt.value)
			if tt.wantErr {
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, tt.entity.ProteinPer100g())
		})
	}
}

func TestNewRecipe(t *testing.T) {
	lines := []valueobjects.IngredientLine{{IngredientID: "egg"}}

	r, err := NewRecipe(" Omelette ", "Beat\nCook", lines)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", r.Title())
	assert.Len(t, r.Lines(), 1)
	assert.False(t, r.CreatedAt().IsZero())

	_, err = NewRecipe("Empty", "", nil)
	require.Error(t, err)
	assert.Equal(t, "at least one ingredient required", errors.GetAppError(err).Message)

	_, err = NewRecipe(" ", "", lines)
	assert.True(t, errors.IsValidation(err))
}

func TestRecipe_References(t *testing.T) {
	amount := 100.0
	r, err := NewRecipe("Bowl", "", []valueobjects.IngredientLine{
		{IngredientID: "rice", Quantity: &valueobjects.Quantity{Amount: &amount, UnitID: "g"}},
		{IngredientID: "egg", FormIDs: []valueobjects.ID{"boiled"}},
	})
	require.NoError(t, err)

	used := valueobjects.IDSet{}
	r.References(valueobjects.KindIngredient, used)
	assert.True(t, used.Has("rice"))
	assert.True(t, used.Has("egg"))

	units := valueobjects.IDSet{}
	r.References(valueobjects.KindUnit, units)
	assert.Len(t, units, 1)
}

func TestNewPairing(t *testing.T) {
	p, err := NewPairing(" Sunday ", []valueobjects.ID{"a", "b", "a", ""})
	require.NoError(t, err)
	assert.Equal(t, "Sunday", p.Name())
	assert.Equal(t, []valueobjects.ID{"a", "b"}, p.RecipeIDs())

	_, err = NewPairing("", nil)
	assert.True(t, errors.IsValidation(err))
}

func ptr(v float64) *float64 { return &v }
