package matching

import (
	"testing"

	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
)

func crop(id, farmer, name string, qty int64, st domain.CropStatus) domain.Crop {
	return domain.Crop{ID: id, FarmerID: farmer, CropName: name, QuantityAvailable: decimal.NewFromInt(qty), PricePerUnit: decimal.NewFromInt(10), Status: st}
}

func demand(id, buyer, name string, qty int64, st domain.DemandStatus) domain.Demand {
	return domain.Demand{ID: id, BuyerID: buyer, CropName: name, QuantityRequired: decimal.NewFromInt(qty), MaxPricePerUnit: decimal.NewFromInt(1), Status: st}
}

func ids(cs []domain.Crop) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestMatchAllOpenDemand(t *testing.T) {
	demands := []domain.Demand{
		demand("d1", "b1", "Wheat", 100, domain.DemandOpen),
		demand("d2", "b1", "Rice", 10, domain.DemandOpen),
		demand("d3", "b2", "Wheat", 1, domain.DemandFulfilled),
	}
	crops := []domain.Crop{
		crop("c1", "f1", "Wheat", 150, domain.CropHarvested),
		crop("c2", "f1", "Wheat", 99, domain.CropHarvested),
		crop("c3", "f2", "Wheat", 500, domain.CropSold),
		crop("c4", "f2", "wheat", 500, domain.CropGrowing),
		crop("c5", "f2", "Wheat", 100, domain.CropPlanted),
	}

	got := MatchAllOpenDemand(demands, crops)
	if len(got) != 2 {
		t.Fatalf("want 2 open demands, got %d", len(got))
	}
	if got[0].Demand.ID != "d1" || len(got[0].Matches) != 2 || got[0].Matches[0].ID != "c1" || got[0].Matches[1].ID != "c5" {
		t.Fatalf("wheat matches wrong: %v", ids(got[0].Matches))
	}
	// demand without eligible crops is still listed
	if got[1].Demand.ID != "d2" || got[1].Matches == nil || len(got[1].Matches) != 0 {
		t.Fatalf("rice demand should have empty matches, got %+v", got[1])
	}
}

func TestMatchIgnoresMaxPrice(t *testing.T) {
	d := demand("d1", "b1", "Wheat", 10, domain.DemandOpen)
	d.MaxPricePerUnit = decimal.NewFromInt(1)
	c := crop("c1", "f1", "Wheat", 10, domain.CropHarvested)
	c.PricePerUnit = decimal.NewFromInt(1000)
	if !Eligible(d, c) {
		t.Fatal("price must not filter matches")
	}
}

func TestMatchIsCaseSensitive(t *testing.T) {
	names := [][2]string{{"Wheat", "wheat"}, {"Wheat", "WHEAT"}, {"Wheat", "Wheat "}, {"Maize", "Corn"}}
	for _, n := range names {
		d := demand("d", "b", n[0], 1, domain.DemandOpen)
		c := crop("c", "f", n[1], 100, domain.CropHarvested)
		if Eligible(d, c) {
			t.Errorf("%q must not match %q", n[0], n[1])
		}
		if len(MatchForBuyer("b", []domain.Demand{d}, []domain.Crop{c})) != 0 {
			t.Errorf("buyer view paired %q with %q", n[0], n[1])
		}
		if len(MatchForFarmer("f", []domain.Demand{d}, []domain.Crop{c})) != 0 {
			t.Errorf("farmer view paired %q with %q", n[0], n[1])
		}
	}
}

func TestMatchForFarmer(t *testing.T) {
	crops := []domain.Crop{
		crop("c1", "f1", "Wheat", 1, domain.CropPlanted),
		crop("c2", "f1", "Wheat", 1, domain.CropGrowing),
		crop("c3", "f2", "Rice", 1, domain.CropHarvested),
	}
	demands := []domain.Demand{
		demand("d1", "b1", "Wheat", 1000, domain.DemandOpen),
		demand("d2", "b1", "Rice", 1, domain.DemandOpen),
		demand("d3", "b2", "Wheat", 5, domain.DemandCancelled),
		demand("d4", "b2", "Wheat", 5, domain.DemandOpen),
	}
	got := MatchForFarmer("f1", demands, crops)
	if len(got) != 2 || got[0].ID != "d1" || got[1].ID != "d4" {
		t.Fatalf("unexpected farmer view: %+v", got)
	}
	if len(MatchForFarmer("nobody", demands, crops)) != 0 {
		t.Fatal("farmer without crops should see nothing")
	}
}

func TestMatchForBuyer(t *testing.T) {
	demands := []domain.Demand{
		demand("d1", "b1", "Tomato", 5000, domain.DemandOpen),
		demand("d2", "b1", "Rice", 1, domain.DemandCancelled),
		demand("d3", "b2", "Rice", 1, domain.DemandOpen),
	}
	crops := []domain.Crop{
		crop("c1", "f1", "Tomato", 1, domain.CropPlanted),
		crop("c2", "f1", "Tomato", 1, domain.CropSold),
		crop("c3", "f2", "Rice", 1, domain.CropHarvested),
	}
	got := MatchForBuyer("b1", demands, crops)
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("unexpected buyer view: %v", ids(got))
	}
}
