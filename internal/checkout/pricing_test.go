package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

func testCatalog() *mockCatalog {
	return &mockCatalog{products: []models.Product{
		{ProductID: 1, Title: "Clinical Periodontology", CurrentPrice: 19.99, Category: "periodontics", IsActive: true},
		{ProductID: 2, Title: "Oral Radiology Atlas", CurrentPrice: 34.50, Category: "radiology", IsActive: true},
		{ProductID: 3, Title: "Endodontics Handbook", CurrentPrice: 9.95, Category: "endodontics", IsActive: true},
	}}
}

func TestUnitAmountRoundsToMinorUnits(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{19.99, 1999}, // 19.99*100 is 1998.999... in float64
		{34.50, 3450},
		{0.1, 10},
		{0.005, 1},
		{100, 10000},
	}
	for _, tc := range cases {
		if got := UnitAmount(tc.price); got != tc.want {
			t.Fatalf("UnitAmount(%v) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

func TestResolveLinesComputesTrustedTotal(t *testing.T) {
	svc := NewService(testCatalog(), newMemLedger(), &mockProcessor{}, "usd", 0)

	resolved, total, err := svc.ResolveLines(context.Background(), []CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("ResolveLines returned error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved lines, got %d", len(resolved))
	}
	if want := int64(1999*2 + 3450); total != want {
		t.Fatalf("expected total %d, got %d", want, total)
	}
	if resolved[0].Title != "Clinical Periodontology" || resolved[0].UnitAmount != 1999 {
		t.Fatalf("unexpected first line: %+v", resolved[0])
	}
}

func TestResolveLinesDropsUnknownIDs(t *testing.T) {
	svc := NewService(testCatalog(), newMemLedger(), &mockProcessor{}, "usd", 0)

	resolved, total, err := svc.ResolveLines(context.Background(), []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 999, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("ResolveLines returned error: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ProductID != 1 {
		t.Fatalf("expected only product 1 resolved, got %+v", resolved)
	}
	if total != 1999 {
		t.Fatalf("expected total 1999, got %d", total)
	}
}

func TestResolveLinesEmptyCartWhenNothingResolves(t *testing.T) {
	svc := NewService(testCatalog(), newMemLedger(), &mockProcessor{}, "usd", 0)

	_, _, err := svc.ResolveLines(context.Background(), []CartLine{
		{ProductID: 999, Quantity: 1},
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestResolveLinesInvalidRequest(t *testing.T) {
	svc := NewService(testCatalog(), newMemLedger(), &mockProcessor{}, "usd", 0)

	if _, _, err := svc.ResolveLines(context.Background(), nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty input, got %v", err)
	}

	_, _, err := svc.ResolveLines(context.Background(), []CartLine{{ProductID: 1, Quantity: 0}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero quantity, got %v", err)
	}
}
