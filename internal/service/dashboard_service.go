package service

import (
	"go-price-pilot/internal/pricing"
)

// CatalogStats untuk overview stats
type CatalogStats struct {
	TotalProducts       int            `json:"total_products"`
	TotalCategories     int            `json:"total_categories"`
	ProductsPerCategory map[string]int `json:"products_per_category"`
	TotalFinalPrice     float64        `json:"total_final_price"`
	AverageFinalPrice   float64        `json:"average_final_price"`
	Formatted           struct {
		TotalFinalPrice   string `json:"total_final_price"`
		AverageFinalPrice string `json:"average_final_price"`
	} `json:"formatted"`
}

type DashboardService interface {
	GetCatalogStats() *CatalogStats
}

type dashboardService struct {
	catalog CatalogService
}

func NewDashboardService(catalog CatalogService) DashboardService {
	return &dashboardService{catalog: catalog}
}

// GetCatalogStats summarizes the loaded catalog; prices use the deployment strategy.
func (s *dashboardService) GetCatalogStats() *CatalogStats {
	products := s.catalog.Products()
	strategy := s.catalog.Strategy()

	stats := &CatalogStats{
		TotalProducts:       len(products),
		ProductsPerCategory: map[string]int{},
	}
	for _, p := range products {
		stats.ProductsPerCategory[p.Category]++
		stats.TotalFinalPrice += strategy.FinalPrice(PricingInputs(p, strategy))
	}
	stats.TotalCategories = len(stats.ProductsPerCategory)
	if len(products) > 0 {
		stats.AverageFinalPrice = stats.TotalFinalPrice / float64(len(products))
	}
	stats.Formatted.TotalFinalPrice = pricing.FormatPrice(stats.TotalFinalPrice)
	stats.Formatted.AverageFinalPrice = pricing.FormatPrice(stats.AverageFinalPrice)
	return stats
}
