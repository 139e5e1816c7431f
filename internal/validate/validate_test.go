package validate

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCropNameKeepsCase(t *testing.T) {
	got, ok := CropName("  Wheat ")
	if !ok || got != "Wheat" {
		t.Fatalf("got %q %v", got, ok)
	}
	if _, ok := CropName("<script>"); ok {
		t.Fatal("markup accepted")
	}
	if _, ok := CropName(""); ok {
		t.Fatal("empty accepted")
	}
}

func TestAmounts(t *testing.T) {
	if Positive(decimal.Zero) || !NonNegative(decimal.Zero) {
		t.Fatal("zero handling wrong")
	}
	if Positive(decimal.NewFromInt(-1)) || NonNegative(decimal.NewFromInt(-1)) {
		t.Fatal("negative accepted")
	}
	if Positive(decimal.NewFromInt(2_000_000_000)) {
		t.Fatal("huge amount accepted")
	}
	if !Positive(decimal.RequireFromString("0.5")) {
		t.Fatal("fraction rejected")
	}
}

func TestAmountScale(t *testing.T) {
	for _, s := range []string{"1e-20000000", "0.0000001", "1e20000000", "-1e-20000000"} {
		d := decimal.RequireFromString(s)
		if Positive(d) || NonNegative(d) {
			t.Fatalf("%s accepted", s)
		}
	}
	for _, s := range []string{"0.000001", "12.500000000", "1e3"} {
		if !Positive(decimal.RequireFromString(s)) {
			t.Fatalf("%s rejected", s)
		}
	}
}

func TestDate(t *testing.T) {
	if _, ok := Date("2026-12-01"); !ok {
		t.Fatal("valid date rejected")
	}
	if _, ok := Date(""); !ok {
		t.Fatal("empty date rejected")
	}
	if _, ok := Date("01/12/2026"); ok {
		t.Fatal("bad format accepted")
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") || Password("password") || Password("Sh0r!") {
		t.Fatal("password rules wrong")
	}
}
