package repository

import (
	"bytes"
	"context"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/pricing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRepository is the CRUD façade over the productos table. List and
// ListCategories are fail-soft; write operations return *RepositoryError.
type ProductRepository interface {
	List(ctx context.Context) []model.Product
	ListCategories(ctx context.Context) []string
	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NormalizeStored(ctx context.Context) (int, error)
}

type productRepo struct {
	db       *gorm.DB
	strategy pricing.Strategy
	log      *zap.Logger
}

func NewProductRepo(db *gorm.DB, strategy pricing.Strategy, log *zap.Logger) ProductRepository {
	return &productRepo{db: db, strategy: strategy, log: log.Named("product_repo")}
}

func (r *productRepo) List(ctx context.Context) []model.Product {
	var records []model.ProductRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		r.log.Error("Error fetching products", zap.Error(err))
		return []model.Product{}
	}

	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, NormalizeRecord(rec, r.strategy))
	}
	return products
}

func (r *productRepo) ListCategories(ctx context.Context) []string {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.ProductRecord{}).
		Distinct().
		Order("categoria").
		Pluck("categoria", &categories).Error
	if err != nil {
		r.log.Error("Error fetching categories", zap.Error(err))
		return []string{}
	}
	if categories == nil {
		categories = []string{}
	}
	return categories
}

func (r *productRepo) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	rec := toRecord(in, r.strategy)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, r.fail("create", err)
	}
	p := NormalizeRecord(rec, r.strategy)
	return &p, nil
}

// Update replaces every column of the row matching id.
func (r *productRepo) Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	rec := toRecord(in, r.strategy)
	res := r.db.WithContext(ctx).
		Model(&model.ProductRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"nombre":    rec.Name,
			"categoria": rec.Category,
			"coste":     rec.Cost,
			"envio":     rec.Shipping,
			"iva":       rec.TaxRate,
			"beneficio": rec.ProfitMarginPercent,
			"mano_obra": rec.LaborCost,
			"links":     rec.Links,
		})
	if res.Error != nil {
		return nil, r.fail("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.fail("update", ErrProductNotFound)
	}

	var stored model.ProductRecord
	if err := r.db.WithContext(ctx).First(&stored, "id = ?", id).Error; err != nil {
		return nil, r.fail("update", err)
	}
	p := NormalizeRecord(stored, r.strategy)
	return &p, nil
}

// Delete removes the row. A missing id is not an error.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.ProductRecord{}, "id = ?", id).Error; err != nil {
		return r.fail("delete", err)
	}
	return nil
}

// NormalizeStored rewrites legacy rows in place: malformed links become a
// clean array repaired by RepairLinks and a NULL margin of the active strategy
// becomes 0. It returns the number of rows rewritten.
func (r *productRepo) NormalizeStored(ctx context.Context) (int, error) {
	var records []model.ProductRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return 0, r.fail("normalize", err)
	}

	marginColumn := "beneficio"
	if r.strategy == pricing.LaborCost {
		marginColumn = "mano_obra"
	}

	rewritten := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			p := NormalizeRecord(rec, r.strategy)
			links := encodeLinks(RepairLinks(p.Links))
			updates := map[string]interface{}{}
			if !bytes.Equal(links, rec.Links) {
				updates["links"] = links
			}
			if r.marginOf(rec) == nil {
				updates[marginColumn] = 0
			}
			if len(updates) == 0 {
				continue
			}
			if err := tx.Model(&model.ProductRecord{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
				return err
			}
			rewritten++
		}
		return nil
	})
	if err != nil {
		return 0, r.fail("normalize", err)
	}
	return rewritten, nil
}

func (r *productRepo) marginOf(rec model.ProductRecord) *float64 {
	if r.strategy == pricing.LaborCost {
		return rec.LaborCost
	}
	return rec.ProfitMarginPercent
}

func (r *productRepo) fail(op string, err error) error {
	r.log.Error("Error saving product", zap.String("op", op), zap.Error(err))
	return &RepositoryError{Op: op, Err: errors.WithStack(err)}
}
