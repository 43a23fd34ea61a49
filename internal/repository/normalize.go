package repository

import (
	"encoding/json"
	"strings"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/pricing"
)

// wireLink is the element shape of the links column.
type wireLink struct {
	Name string `json:"nombre"`
	URL  string `json:"url"`
}

// NormalizeRecord coerces a stored row into a Product: NULL numbers become 0,
// and only the margin column of the strategy is read.
func NormalizeRecord(rec model.ProductRecord, s pricing.Strategy) model.Product {
	p := model.Product{
		ID:       rec.ID,
		Name:     rec.Name,
		Category: rec.Category,
		Cost:     rec.Cost,
		Shipping: deref(rec.Shipping),
		TaxRate:  rec.TaxRate,
		Links:    NormalizeLinks(rec.Links),
	}
	switch s {
	case pricing.LaborCost:
		p.LaborCost = deref(rec.LaborCost)
	default:
		p.ProfitMarginPercent = deref(rec.ProfitMarginPercent)
	}
	return p
}

// NormalizeLinks decodes whatever the links column holds. Anything that is not
// a JSON array yields an empty list; elements that are not objects, or lack
// string fields, produce empty names and URLs.
func NormalizeLinks(raw []byte) []model.ProductLink {
	links := []model.ProductLink{}
	if len(raw) == 0 {
		return links
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return links
	}
	for _, item := range items {
		var fields map[string]interface{}
		_ = json.Unmarshal(item, &fields)
		links = append(links, model.ProductLink{
			Name: stringField(fields, "nombre", "name"),
			URL:  stringField(fields, "url"),
		})
	}
	return links
}

// RepairLinks makes normalized links acceptable as input again: a link with
// no URL is dropped and a link with no name is labeled with its URL.
func RepairLinks(links []model.ProductLink) []model.ProductLink {
	out := make([]model.ProductLink, 0, len(links))
	for _, l := range links {
		l.Name = strings.TrimSpace(l.Name)
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			continue
		}
		if l.Name == "" {
			l.Name = l.URL
		}
		out = append(out, l)
	}
	return out
}

func encodeLinks(links []model.ProductLink) model.RawLinks {
	wire := make([]wireLink, 0, len(links))
	for _, l := range links {
		wire = append(wire, wireLink{Name: l.Name, URL: l.URL})
	}
	b, _ := json.Marshal(wire)
	return model.RawLinks(b)
}

// toRecord maps input onto a row, filling defaults and leaving the margin
// column of the other strategy NULL.
func toRecord(in *model.ProductInput, s pricing.Strategy) model.ProductRecord {
	rec := model.ProductRecord{
		Name:     in.Name,
		Category: in.Category,
		Cost:     in.Cost,
		Shipping: in.Shipping,
		TaxRate:  pricing.DefaultTaxRate,
		Links:    encodeLinks(in.Links),
	}
	if in.TaxRate != nil {
		rec.TaxRate = *in.TaxRate
	}
	switch s {
	case pricing.LaborCost:
		rec.LaborCost = valueOr(in.LaborCost, 0)
	default:
		rec.ProfitMarginPercent = valueOr(in.ProfitMarginPercent, pricing.DefaultProfitMarginPercent)
	}
	return rec
}

func stringField(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok {
			return s
		}
	}
	return ""
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func valueOr(v *float64, fallback float64) *float64 {
	if v != nil {
		out := *v
		return &out
	}
	return &fallback
}
