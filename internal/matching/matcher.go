// Package matching pairs open demands with crop listings.
//
// Crop names are compared with plain string equality: "Wheat" and "wheat"
// never match, and there is no synonym or fuzzy matching. This is a known
// limitation of the marketplace and callers must not normalize names here.
package matching

import "farmdirect/internal/domain"

// DemandMatches is one open demand with the crops that can satisfy it.
type DemandMatches struct {
	Demand  domain.Demand `json:"demand"`
	Matches []domain.Crop `json:"matches"`
}

// Eligible reports whether c can fully satisfy d. Price is not considered;
// that is left to negotiation.
func Eligible(d domain.Demand, c domain.Crop) bool {
	return d.Status == domain.DemandOpen &&
		c.Status.Sellable() &&
		c.CropName == d.CropName &&
		c.QuantityAvailable.GreaterThanOrEqual(d.QuantityRequired)
}

// MatchAllOpenDemand returns every open demand, in input order, with the
// eligible crops in input order. Demands with no eligible crop are kept with
// an empty match list.
func MatchAllOpenDemand(demands []domain.Demand, crops []domain.Crop) []DemandMatches {
	out := []DemandMatches{}
	for _, d := range demands {
		if d.Status != domain.DemandOpen {
			continue
		}
		m := DemandMatches{Demand: d, Matches: []domain.Crop{}}
		for _, c := range crops {
			if Eligible(d, c) {
				m.Matches = append(m.Matches, c)
			}
		}
		out = append(out, m)
	}
	return out
}

// MatchForFarmer returns open demands for any crop name the farmer lists,
// regardless of quantity.
func MatchForFarmer(farmerID string, demands []domain.Demand, crops []domain.Crop) []domain.Demand {
	names := map[string]struct{}{}
	for _, c := range crops {
		if c.FarmerID == farmerID {
			names[c.CropName] = struct{}{}
		}
	}
	out := []domain.Demand{}
	if len(names) == 0 {
		return out
	}
	for _, d := range demands {
		if d.Status != domain.DemandOpen {
			continue
		}
		if _, ok := names[d.CropName]; ok {
			out = append(out, d)
		}
	}
	return out
}

// MatchForBuyer returns sellable crops for any crop name among the buyer's
// open demands, regardless of quantity.
func MatchForBuyer(buyerID string, demands []domain.Demand, crops []domain.Crop) []domain.Crop {
	names := map[string]struct{}{}
	for _, d := range demands {
		if d.BuyerID == buyerID && d.Status == domain.DemandOpen {
			names[d.CropName] = struct{}{}
		}
	}
	out := []domain.Crop{}
	if len(names) == 0 {
		return out
	}
	for _, c := range crops {
		if !c.Status.Sellable() {
			continue
		}
		if _, ok := names[c.CropName]; ok {
			out = append(out, c)
		}
	}
	return out
}
