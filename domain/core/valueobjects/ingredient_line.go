package valueobjects

// IngredientLine is one entry of a recipe's ingredient list. It refers to
// reference entities by id only.
type IngredientLine struct {
	IngredientID ID        `json:"ingredientId" dynamodbav:"ingredientId"`
	Core         bool      `json:"core" dynamodbav:"core"`
	FormIDs      []ID      `json:"formIds,omitempty" dynamodbav:"formIds,omitempty"`
	Quantity     *Quantity `json:"quantity,omitempty" dynamodbav:"quantity,omitempty"`
}

// References returns the ids of entities of the given kind this line uses.
func (l IngredientLine) References(kind EntityKind) []ID {
	switch kind {
	case KindIngredient:
		if l.IngredientID.IsZero() {
			return nil
		}
		return []ID{l.IngredientID}
	case KindUnit:
		if l.Quantity == nil || l.Quantity.UnitID.IsZero() {
			return nil
		}
		return []ID{l.Quantity.UnitID}
	case KindForm:
		return l.FormIDs
	}
	return nil
}

// Clone returns a deep copy of the line.
func (l IngredientLine) Clone() IngredientLine {
	out := l
	if l.FormIDs != nil {
		out.FormIDs = append([]ID(nil), l.FormIDs...)
	}
	if l.Quantity != nil {
		q := *l.Quantity
		if q.Amount != nil {
			amount := *q.Amount
			q.Amount = &amount
		}
		out.Quantity = &q
	}
	return out
}
