package handlers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
)

type dealView struct {
	ID           string            `json:"id"`
	Status       domain.DealStatus `json:"status"`
	SellerID     string            `json:"sellerId"`
	PricePerUnit decimal.Decimal   `json:"pricePerUnit"`
	Quantity     decimal.Decimal   `json:"quantity"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
}

// 150 Wheat available, buyer takes 100 at 20, seller confirms, buyer cancels.
func TestWheatScenarioOverHTTP(t *testing.T) {
	app, _ := newApp(t)
	farmer := login(t, app, ashaEmail)
	buyer := login(t, app, meeraEmail)

	resp, env := call(t, app, "POST", "/matching/match", buyer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("match: %d", resp.StatusCode)
	}
	var matches []struct {
		Demand  domain.Demand `json:"demand"`
		Matches []domain.Crop `json:"matches"`
	}
	decode(t, env, &matches)
	found := false
	for _, m := range matches {
		if m.Demand.ID == "demand-wheat-1" && len(m.Matches) == 1 && m.Matches[0].ID == "crop-wheat-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("wheat pairing missing from %s", env.Data)
	}

	// client-sent totals are ignored
	resp, env = call(t, app, "POST", "/deals/create", buyer, map[string]any{
		"listingId": "crop-wheat-1", "demandId": "demand-wheat-1",
		"quantity": 100, "pricePerUnit": "20", "totalAmount": "1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, env.Error)
	}
	var d dealView
	decode(t, env, &d)
	if !d.TotalAmount.Equal(decimal.NewFromInt(2000)) || d.Status != domain.DealCreated || d.SellerID != "u-farmer-asha" {
		t.Fatalf("unexpected deal %+v", d)
	}

	// the listing now shows 50 left
	_, env = call(t, app, "GET", "/farmers/crops", farmer, nil)
	var crops []domain.Crop
	decode(t, env, &crops)
	for _, c := range crops {
		if c.ID == "crop-wheat-1" && !c.QuantityAvailable.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("wheat left: %s", c.QuantityAvailable)
		}
	}

	resp, env = call(t, app, "POST", "/deals/confirm/"+d.ID, farmer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: %d %s", resp.StatusCode, env.Error)
	}
	resp, env = call(t, app, "POST", "/deals/cancel/"+d.ID, buyer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: %d %s", resp.StatusCode, env.Error)
	}
	decode(t, env, &d)
	if d.Status != domain.DealCancelled {
		t.Fatalf("status after cancel: %s", d.Status)
	}

	resp, _ = call(t, app, "PATCH", "/deals/status/"+d.ID, farmer, map[string]string{"status": "IN_TRANSIT"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("transition out of CANCELLED: expected 400, got %d", resp.StatusCode)
	}

	resp, env = call(t, app, "GET", "/deals/tracking/"+d.ID, buyer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracking: %d", resp.StatusCode)
	}
	var tr domain.Tracking
	decode(t, env, &tr)
	if tr.Status != domain.DealCancelled || len(tr.Checkpoints) != 2 {
		t.Fatalf("tracking %+v", tr)
	}
}

// a non-party confirm is rejected and leaves the deal as it was
func TestNonPartyConfirmRejected(t *testing.T) {
	app, _ := newApp(t)
	buyer := login(t, app, meeraEmail)
	stranger := login(t, app, raviEmail)

	_, env := call(t, app, "POST", "/deals/create", buyer, map[string]any{"listingId": "crop-wheat-1", "quantity": 10, "pricePerUnit": 19})
	var d dealView
	decode(t, env, &d)

	resp, env := call(t, app, "POST", "/deals/confirm/"+d.ID, stranger, nil)
	if resp.StatusCode != http.StatusUnauthorized || env.Success {
		t.Fatalf("stranger confirm: expected 401, got %d", resp.StatusCode)
	}
	if resp, _ := call(t, app, "GET", "/deals/tracking/"+d.ID, stranger, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stranger tracking: expected 401, got %d", resp.StatusCode)
	}

	_, env = call(t, app, "GET", "/deals/"+d.ID, buyer, nil)
	decode(t, env, &d)
	if d.Status != domain.DealCreated {
		t.Fatalf("status changed to %s", d.Status)
	}
}

func TestNegotiationOverHTTP(t *testing.T) {
	app, _ := newApp(t)
	farmer := login(t, app, ashaEmail)
	buyer := login(t, app, meeraEmail)

	resp, env := call(t, app, "POST", "/buyers/negotiate", buyer, map[string]any{
		"listingId": "crop-wheat-1", "quantity": 100, "pricePerUnit": 18, "message": "18 per unit?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("negotiate: %d %s", resp.StatusCode, env.Error)
	}
	var d dealView
	decode(t, env, &d)

	resp, env = call(t, app, "POST", "/deals/negotiate/"+d.ID, farmer, map[string]any{"price": 21, "message": "21"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("counter: %d %s", resp.StatusCode, env.Error)
	}
	var counter domain.NegotiationEntry
	decode(t, env, &counter)

	_, env = call(t, app, "GET", "/deals/negotiations/"+d.ID, buyer, nil)
	var hist []domain.NegotiationEntry
	decode(t, env, &hist)
	if len(hist) != 2 || hist[0].SenderID != "u-buyer-meera" || hist[1].SenderID != "u-farmer-asha" {
		t.Fatalf("history %+v", hist)
	}

	if resp, _ := call(t, app, "POST", "/deals/accept/"+d.ID, farmer, map[string]any{"seq": counter.Seq}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self-accept: expected 400, got %d", resp.StatusCode)
	}
	resp, env = call(t, app, "POST", "/deals/accept/"+d.ID, buyer, map[string]any{"seq": counter.Seq})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: %d %s", resp.StatusCode, env.Error)
	}
	decode(t, env, &d)
	if !d.TotalAmount.Equal(decimal.NewFromInt(2100)) {
		t.Fatalf("total after accept: %s", d.TotalAmount)
	}

	// a second buyer cannot take more than what is left
	other := login(t, app, kiranEmail)
	resp, env = call(t, app, "POST", "/deals/create", other, map[string]any{"listingId": "crop-wheat-1", "quantity": 60, "pricePerUnit": 20})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversell: expected 400, got %d %s", resp.StatusCode, env.Error)
	}

	_, env = call(t, app, "GET", "/deals/my-deals", farmer, nil)
	var mine []dealView
	decode(t, env, &mine)
	if len(mine) != 1 || mine[0].ID != d.ID {
		t.Fatalf("my deals %+v", mine)
	}
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	app, _ := newApp(t)
	farmer := login(t, app, raviEmail)
	buyer := login(t, app, kiranEmail)

	resp, env := call(t, app, "POST", "/farmers/crops", farmer, map[string]any{"cropName": "Tomato", "quantityAvailable": 200, "pricePerUnit": "13"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create crop: %d %s", resp.StatusCode, env.Error)
	}
	var c domain.Crop
	decode(t, env, &c)

	resp, env = call(t, app, "PATCH", "/farmers/crops/"+c.ID+"/status", farmer, map[string]string{"status": "HARVESTED"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance: %d %s", resp.StatusCode, env.Error)
	}
	if resp, _ := call(t, app, "PATCH", "/farmers/crops/"+c.ID+"/status", farmer, map[string]string{"status": "PLANTED"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("backwards: expected 400, got %d", resp.StatusCode)
	}

	// both tomato listings show up for kiran
	_, env = call(t, app, "GET", "/matching/matches/buyer", buyer, nil)
	var offers []domain.Crop
	decode(t, env, &offers)
	if len(offers) != 2 {
		t.Fatalf("buyer view: %+v", offers)
	}

	resp, env = call(t, app, "POST", "/buyers/demands", buyer, map[string]any{"cropName": "Onion", "quantityRequired": 5, "maxPricePerUnit": 9, "neededBy": "2026-11-30"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create demand: %d %s", resp.StatusCode, env.Error)
	}
	var dm domain.Demand
	decode(t, env, &dm)
	if resp, _ := call(t, app, "POST", "/buyers/demands/"+dm.ID+"/cancel", buyer, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel demand: %d", resp.StatusCode)
	}
	_, env = call(t, app, "GET", "/buyers/demands", buyer, nil)
	var demands []domain.Demand
	decode(t, env, &demands)
	if len(demands) != 2 {
		t.Fatalf("buyer demands: %+v", demands)
	}

	_, env = call(t, app, "GET", "/matching/matches/farmer", farmer, nil)
	var wanted []domain.Demand
	decode(t, env, &wanted)
	if len(wanted) != 1 || wanted[0].ID != "demand-tomato-1" {
		t.Fatalf("farmer view: %+v", wanted)
	}
}

func TestReviewAfterDelivery(t *testing.T) {
	app, _ := newApp(t)
	farmer := login(t, app, ashaEmail)
	buyer := login(t, app, meeraEmail)

	_, env := call(t, app, "POST", "/deals/create", buyer, map[string]any{"listingId": "crop-rice-1", "quantity": 40, "pricePerUnit": 30})
	var d dealView
	decode(t, env, &d)

	if resp, _ := call(t, app, "POST", "/reviews", buyer, map[string]any{"dealId": d.ID, "rating": 5}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("review before delivery: expected 400, got %d", resp.StatusCode)
	}
	for _, st := range []string{"CONFIRMED", "IN_TRANSIT", "DELIVERED"} {
		if resp, env := call(t, app, "PATCH", "/deals/status/"+d.ID, farmer, map[string]string{"status": st}); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: %d %s", st, resp.StatusCode, env.Error)
		}
	}
	if resp, env := call(t, app, "POST", "/reviews", buyer, map[string]any{"dealId": d.ID, "rating": 4, "comment": "good rice"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("review: %d %s", resp.StatusCode, env.Error)
	}
	_, env = call(t, app, "GET", "/reviews/u-farmer-asha", farmer, nil)
	var got []domain.Review
	decode(t, env, &got)
	if len(got) != 1 || got[0].Rating != 4 || got[0].AuthorID != "u-buyer-meera" {
		t.Fatalf("reviews %+v", got)
	}
}
