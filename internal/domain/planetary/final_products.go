package planetary

import "fmt"

// FinalProducts is the sorted set of types a colony produces but never consumes
type FinalProducts []TypeID

// Contains reports whether typeID is a final product
func (f FinalProducts) Contains(typeID TypeID) bool {
	for _, t := range f {
		if t == typeID {
			return true
		}
	}
	return false
}

// ResolveIssue describes a pin whose contribution was skipped during resolution
type ResolveIssue struct {
	PinID    PinID
	RecipeID RecipeID
	Reason   string
}

func (i ResolveIssue) String() string {
	if i.RecipeID != 0 {
		return fmt.Sprintf("pin %d: recipe %d: %s", i.PinID, i.RecipeID, i.Reason)
	}
	return fmt.Sprintf("pin %d: %s", i.PinID, i.Reason)
}

// ResolveFinalProducts returns the types generated somewhere in the colony
// (factory outputs and extractor products) that no factory takes as input.
//
// Invalid pins are ignored. Factories with an assigned recipe id but no
// resolved recipe, and extractors without a product type, are skipped and
// reported as issues. Factories with no assignment contribute nothing.
func ResolveFinalProducts(colony *Colony) (FinalProducts, []ResolveIssue) {
	produced := make(map[TypeID]struct{})
	consumed := make(map[TypeID]struct{})
	var issues []ResolveIssue

	for _, pin := range colony.Pins {
		if !pin.IsValid() {
			continue
		}

		switch pin.Kind {
		case PinKindExtractor:
			if pin.Extractor.ProductType <= 0 {
				issues = append(issues, ResolveIssue{PinID: pin.ID, Reason: "extractor has no product type"})
				continue
			}
			produced[pin.Extractor.ProductType] = struct{}{}
		case PinKindFactory:
			if pin.Factory.RecipeID == 0 && pin.Factory.Recipe == nil {
				continue
			}
			if pin.Factory.Recipe == nil {
				issues = append(issues, ResolveIssue{PinID: pin.ID, RecipeID: pin.Factory.RecipeID, Reason: "recipe not found in reference data"})
				continue
			}
			produced[pin.Factory.Recipe.Output.Type] = struct{}{}
			for _, in := range pin.Factory.Recipe.Inputs {
				consumed[in.Type] = struct{}{}
			}
		}
	}

	result := make(FinalProducts, 0, len(produced))
	for typeID := range produced {
		if _, isInput := consumed[typeID]; !isInput {
			result = append(result, typeID)
		}
	}
	SortTypeIDs(result)

	return result, issues
}
