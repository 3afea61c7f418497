package recipeview

// View is a recipe rendered for a given scale state.
type View struct {
	Recipe       Recipe     `json:"recipe"`
	Servings     int        `json:"servings"`
	ScaleFactor  float64    `json:"scaleFactor"`
	Lines        []ViewLine `json:"lines"`
	TotalProtein *float64   `json:"totalProtein"`
	Steps        []string   `json:"steps"`
}

// ViewLine is one rendered ingredient line.
type ViewLine struct {
	Index        int      `json:"index"`
	Item         string   `json:"item"`
	Core         bool     `json:"core"`
	Forms        []string `json:"forms,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	ScaledAmount string   `json:"scaledAmount"`
	CustomAmount *float64 `json:"customAmount,omitempty"`
	Customizable bool     `json:"customizable"`
}

// Render applies state to r.
func Render(r Recipe, state ScaleState) View {
	factor := state.Factor(r.Ingredients)

	lines := make([]ViewLine, len(r.Ingredients))
	for i, l := range r.Ingredients {
		vl := ViewLine{
			Index:        i,
			Item:         l.Item,
			Core:         l.Core,
			Forms:        l.Forms,
			Unit:         l.UnitName(),
			ScaledAmount: ScaleAmount(l.Amount(), factor),
			Customizable: l.Core && l.Amount() != nil,
		}
		if v, ok := state.CustomAmount(i); ok {
			custom := v
			vl.CustomAmount = &custom
		}
		lines[i] = vl
	}

	return View{
		Recipe:       r,
		Servings:     state.Servings(),
		ScaleFactor:  factor,
		Lines:        lines,
		TotalProtein: TotalProtein(r.Ingredients, factor),
		Steps:        Steps(r.Instructions),
	}
}
