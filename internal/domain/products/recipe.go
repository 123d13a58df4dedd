package products

import "strings"

type RecipeState int

const (
	RecipeNew RecipeState = iota
	RecipeReleased
	RecipeRevoked
)

// RecipeClassification is a flag set.
type RecipeClassification int

const (
	ClassificationUnset        RecipeClassification = 0
	ClassificationDefault      RecipeClassification = 1
	ClassificationAlternative  RecipeClassification = 2
	ClassificationIntermediate RecipeClassification = 4
	ClassificationPart         RecipeClassification = 8
	ClassificationClone        RecipeClassification = 16

	// CloneFilter selects the recipes copied when a type is duplicated.
	CloneFilter = ClassificationDefault | ClassificationAlternative | ClassificationIntermediate | ClassificationPart
)

var classificationNames = []struct {
	flag RecipeClassification
	name string
}{
	{ClassificationDefault, "Default"},
	{ClassificationAlternative, "Alternative"},
	{ClassificationIntermediate, "Intermediate"},
	{ClassificationPart, "Part"},
	{ClassificationClone, "Clone"},
}

// Matches reports whether c shares a flag with filter. Unset matches all.
func (c RecipeClassification) Matches(filter RecipeClassification) bool {
	if filter == ClassificationUnset {
		return true
	}
	return c&filter != 0
}

func (c RecipeClassification) String() string {
	if c == ClassificationUnset {
		return "Unset"
	}
	var parts []string
	for _, n := range classificationNames {
		if c&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseClassification accepts "Default|Part" style names, case-insensitive.
func ParseClassification(s string) (RecipeClassification, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Unset") {
		return ClassificationUnset, true
	}
	var out RecipeClassification
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		found := false
		for _, n := range classificationNames {
			if strings.EqualFold(strings.TrimSpace(tok), n.name) {
				out |= n.flag
				found = true
				break
			}
		}
		if !found {
			return ClassificationUnset, false
		}
	}
	return out, true
}

// ProductRecipe is a classified production plan bound to one product type.
type ProductRecipe interface {
	Recipe() *RecipeBase
	Kind() string
}

type RecipeBase struct {
	ID             int64
	Name           string
	Revision       int
	State          RecipeState
	Classification RecipeClassification
	Product        ProductType
	Version        int64
}

func (r *RecipeBase) Recipe() *RecipeBase { return r }

// ProductionRecipe is the recipe kind without additional state.
type ProductionRecipe struct {
	RecipeBase
}

const KindProductionRecipe = "ProductionRecipe"

func (*ProductionRecipe) Kind() string { return KindProductionRecipe }
