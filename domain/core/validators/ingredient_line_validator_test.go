package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/domain/core/valueobjects"
	"recipebook/pkg/errors"
)

func TestIngredientLineValidator_Check(t *testing.T) {
	v := NewIngredientLineValidator()

	tests := []struct {
		name    string
		raw     valueobjects.RawIngredientLine
		wantMsg string
	}{
		{"blank item with amount", valueobjects.RawIngredientLine{Amount: "2"}, MsgItemRequired},
		{"blank item with forms", valueobjects.RawIngredientLine{Forms: []string{"diced"}}, MsgItemRequired},
		{"core with ml", valueobjects.RawIngredientLine{Item: "Milk", Unit: "ml", Core: true}, MsgCoreGramOnly},
		{"amount not numeric", valueobjects.RawIngredientLine{Item: "Flour", Amount: "two"}, MsgAmountNumeric},
		{"amount infinite", valueobjects.RawIngredientLine{Item: "Flour", Amount: "Inf"}, MsgAmountNumeric},
		{"amount NaN", valueobjects.RawIngredientLine{Item: "Flour", Amount: "NaN"}, MsgAmountNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Check(4, tt.raw)

			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			idx, ok := appErr.LineIndex()
			assert.True(t, ok)
			assert.Equal(t, 4, idx)
		})
	}
}

func TestIngredientLineValidator_RuleOrder(t *testing.T) {
	v := NewIngredientLineValidator()

	// The gram rule is checked before the amount rule.
	_, err := v.Check(0, valueobjects.RawIngredientLine{Item: "Tofu", Amount: "abc", Unit: "cup", Core: true})

	require.Error(t, err)
	assert.Equal(t, MsgCoreGramOnly, errors.GetAppError(err).Message)
}

func TestIngredientLineValidator_Accepts(t *testing.T) {
	v := NewIngredientLineValidator()

	t.Run("core with gram synonym", func(t *testing.T) {
		for _, unit := range []string{"g", "Gram", " GRAMS "} {
			checked, err := v.Check(0, valueobjects.RawIngredientLine{Item: "Tofu", Amount: "200", Unit: unit, Core: true})
			require.NoError(t, err)
			assert.True(t, checked.Core)
			require.NotNil(t, checked.Amount)
			assert.Equal(t, 200.0, *checked.Amount)
		}
	})

	t.Run("core without unit", func(t *testing.T) {
		_, err := v.Check(0, valueobjects.RawIngredientLine{Item: "Egg", Amount: "2", Core: true})
		assert.NoError(t, err)
	})

	t.Run("trims and drops blank forms", func(t *testing.T) {
		checked, err := v.Check(0, valueobjects.RawIngredientLine{Item: "  Onion ", Forms: []string{" diced ", "  "}})
		require.NoError(t, err)
		assert.Equal(t, "Onion", checked.Item)
		assert.Equal(t, []string{"diced"}, checked.Forms)
		assert.False(t, checked.HasQuantity())
	})

	t.Run("unit without amount", func(t *testing.T) {
		checked, err := v.Check(0, valueobjects.RawIngredientLine{Item: "Salt", Unit: "pinch"})
		require.NoError(t, err)
		assert.Nil(t, checked.Amount)
		assert.True(t, checked.HasQuantity())
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"2", 2, true},
		{" 1.5 ", 1.5, true},
		{"1e3", 1000, true},
		{"-0.25", -0.25, true},
		{"", 0, false},
		{"1/2", 0, false},
		{"+Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
