package service

import (
	"strings"

	"go-price-pilot/internal/model"
)

// FilterProducts returns the products whose name contains nameQuery
// (case-insensitive) and whose category equals categoryQuery. An empty query
// matches everything. Relative order is preserved and the input is not modified.
func FilterProducts(products []model.Product, nameQuery, categoryQuery string) []model.Product {
	needle := strings.ToLower(nameQuery)
	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if categoryQuery != "" && p.Category != categoryQuery {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}
