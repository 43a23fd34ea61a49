package model

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type ProductLink struct {
	Name string `json:"name" validate:"notblank"`
	URL  string `json:"url" validate:"required,url"`
}

// Product is the normalized in-memory shape handed to the rest of the app.
// Only the margin field of the deployment's strategy is meaningful; the
// other one is always zero.
type Product struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Category            string        `json:"category"`
	Cost                float64       `json:"cost"`
	Shipping            float64       `json:"shipping"`
	TaxRate             float64       `json:"tax_rate"`
	ProfitMarginPercent float64       `json:"profit_margin_percent"`
	LaborCost           float64       `json:"labor_cost"`
	Links               []ProductLink `json:"links"`
}

// ProductInput is a product without its ID, as accepted on create and update.
// Nil numeric fields take the defaults of the pricing strategy. Amounts are
// capped at pricing.MaxAmount and percentages at pricing.MaxPercent so every
// derived price stays finite.
type ProductInput struct {
	Name                string        `json:"name" validate:"notblank"`
	Category            string        `json:"category" validate:"notblank"`
	Cost                float64       `json:"cost" validate:"gte=0,lte=1000000000"`
	Shipping            *float64      `json:"shipping" validate:"omitnil,gte=0,lte=1000000000"`
	TaxRate             *float64      `json:"tax_rate" validate:"omitnil,gte=0,lte=10000"`
	ProfitMarginPercent *float64      `json:"profit_margin_percent" validate:"omitnil,gte=0,lte=10000"`
	LaborCost           *float64      `json:"labor_cost" validate:"omitnil,gte=0,lte=1000000000"`
	Links               []ProductLink `json:"links" validate:"dive"`
}

// ProductRecord is the row stored in the productos table. Optional columns
// are nullable and links may hold anything legacy writers left behind.
type ProductRecord struct {
	BaseModel
	Name                string   `gorm:"column:nombre;type:varchar(255);not null"`
	Category            string   `gorm:"column:categoria;type:varchar(255);not null;index"`
	Cost                float64  `gorm:"column:coste;not null;default:0"`
	Shipping            *float64 `gorm:"column:envio"`
	TaxRate             float64  `gorm:"column:iva;not null;default:0"`
	ProfitMarginPercent *float64 `gorm:"column:beneficio"`
	LaborCost           *float64 `gorm:"column:mano_obra"`
	Links               RawLinks `gorm:"column:links"`
}

func (ProductRecord) TableName() string {
	return "productos"
}

// RawLinks is the links column as stored. Unlike datatypes.JSON it accepts
// SQL NULL on scan, which legacy rows contain.
type RawLinks datatypes.JSON

func (r *RawLinks) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	var j datatypes.JSON
	if err := j.Scan(value); err != nil {
		return err
	}
	*r = RawLinks(j)
	return nil
}

func (r RawLinks) Value() (driver.Value, error) {
	return datatypes.JSON(r).Value()
}

func (RawLinks) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

func (RawLinks) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON{}.GormDBDataType(db, field)
}
