package checkout

import (
	"context"
	"math"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

// UnitAmount converts a catalog price to minor currency units. All
// monetary arithmetic after this point is integer only.
func UnitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ResolveLines joins the requested lines against the catalog and returns
// the trusted line items plus their total in minor units. Ids missing
// from the catalog are dropped rather than failing the whole request, to
// tolerate carts that still reference deleted products; if every line
// drops the result is ErrEmptyCart. A zero-length or malformed input is
// ErrInvalidRequest instead.
func (s *Service) ResolveLines(ctx context.Context, lines []CartLine) ([]ResolvedLine, int64, error) {
	if len(lines) == 0 {
		return nil, 0, ErrInvalidRequest
	}

	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, 0, ErrInvalidRequest
		}
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[int64]models.Product, len(products))
	for _, product := range products {
		byID[product.ProductID] = product
	}

	resolved := make([]ResolvedLine, 0, len(lines))
	var total int64
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		unit := UnitAmount(product.CurrentPrice)
		resolved = append(resolved, ResolvedLine{
			ProductID:  product.ProductID,
			Title:      product.Title,
			UnitAmount: unit,
			Quantity:   line.Quantity,
		})
		total += unit * int64(line.Quantity)
	}

	if len(resolved) == 0 {
		return nil, 0, ErrEmptyCart
	}
	return resolved, total, nil
}
