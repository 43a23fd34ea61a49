package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/pricing"
	"go-price-pilot/internal/repository"
	"go-price-pilot/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrWriteInProgress  = errors.New("another write is still in progress")
	ErrProductNotLoaded = errors.New("product not found in catalog")
)

// Notifier delivers user-visible notifications. The websocket hub implements it.
type Notifier interface {
	Notify(n model.Notification)
}

type CatalogService interface {
	Load(ctx context.Context)
	Loading() bool
	Strategy() pricing.Strategy

	Products() []model.Product
	Categories() []string
	Visible(nameQuery, categoryQuery string) []model.Product
	FindProduct(id uuid.UUID) (*model.Product, error)
	AddCategory(name string) (string, error)

	BeginEdit(id uuid.UUID) (*model.Product, error)
	Editing() *model.Product
	CancelEdit()

	CreateProduct(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	Quote(id uuid.UUID, overrides *PriceOverrides) (*Quote, error)
}

// PriceOverrides are calculator edits applied on top of a stored product.
// Margin carries either a percentage or a labor amount, so it takes the wider
// amount cap.
type PriceOverrides struct {
	Cost     *float64 `json:"cost" validate:"omitnil,gte=0,lte=1000000000"`
	Shipping *float64 `json:"shipping" validate:"omitnil,gte=0,lte=1000000000"`
	TaxRate  *float64 `json:"tax_rate" validate:"omitnil,gte=0,lte=10000"`
	Margin   *float64 `json:"margin" validate:"omitnil,gte=0,lte=1000000000"`
}

type Quote struct {
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	Strategy  pricing.Strategy  `json:"strategy"`
	Inputs    pricing.Inputs    `json:"inputs"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Formatted pricing.Formatted `json:"formatted"`
}

type catalogService struct {
	repo     repository.ProductRepository
	strategy pricing.Strategy
	notifier Notifier
	log      *zap.Logger

	mu sync.RWMutex
	// everything below is owned by the controller and guarded by mu
	products        []model.Product
	categories      []string
	localCategories []string
	editing         *model.Product
	loads           int    // loads in flight
	generation      uint64 // bumped by every Load; only the newest one applies
	writing         bool
}

func NewCatalogService(repo repository.ProductRepository, strategy pricing.Strategy, notifier Notifier, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:       repo,
		strategy:   strategy,
		notifier:   notifier,
		log:        log.Named("catalog"),
		products:   []model.Product{},
		categories: []string{},
	}
}

// Load fetches products and categories concurrently and applies both once
// they are done. A failed fetch degrades to empty without discarding the other.
// Results of a load that a newer one has overtaken are dropped.
func (s *catalogService) Load(ctx context.Context) {
	s.mu.Lock()
	s.loads++
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	var (
		products   []model.Product
		categories []string
		g          errgroup.Group
	)
	g.Go(func() error {
		products = s.repo.List(ctx)
		return nil
	})
	g.Go(func() error {
		categories = s.repo.ListCategories(ctx)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads--
	if gen != s.generation {
		s.log.Debug("Discarding superseded catalog load", zap.Uint64("generation", gen))
		return
	}
	s.products = products
	s.categories = categories
	s.localCategories = nil
	s.log.Debug("Catalog loaded", zap.Int("products", len(products)), zap.Int("categories", len(categories)))
}

func (s *catalogService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads > 0
}

func (s *catalogService) Strategy() pricing.Strategy {
	return s.strategy
}

func (s *catalogService) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product{}, s.products...)
}

// Categories is the fetched category set followed by names added locally
// since the last load.
func (s *catalogService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.categories)+len(s.localCategories))
	out = append(out, s.categories...)
	return append(out, s.localCategories...)
}

func (s *catalogService) Visible(nameQuery, categoryQuery string) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterProducts(s.products, nameQuery, categoryQuery)
}

func (s *catalogService) FindProduct(id uuid.UUID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

func (s *catalogService) findLocked(id uuid.UUID) (*model.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotLoaded
}

// AddCategory makes a new category selectable right away. Nothing is written
// to the backend; the name survives only until the next load.
func (s *catalogService) AddCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validator.NewError("category", "notblank")
	}

	s.mu.Lock()
	for _, c := range s.categories {
		if c == name {
			s.mu.Unlock()
			return name, nil
		}
	}
	for _, c := range s.localCategories {
		if c == name {
			s.mu.Unlock()
			return name, nil
		}
	}
	s.localCategories = append(s.localCategories, name)
	s.mu.Unlock()

	s.notify(model.NotifySuccess, "category_created", "Category created", fmt.Sprintf("Category %q has been created.", name))
	return name, nil
}

// BeginEdit starts an edit session on a loaded product, replacing any prior one.
func (s *catalogService) BeginEdit(id uuid.UUID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(id)
	if err != nil {
		return nil, err
	}
	s.editing = p
	target := *p
	return &target, nil
}

func (s *catalogService) Editing() *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return nil
	}
	p := *s.editing
	return &p
}

func (s *catalogService) CancelEdit() {
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
}

func (s *catalogService) CreateProduct(ctx context.Context, raw *model.ProductInput) (*model.Product, error) {
	in, err := s.validateInput(raw)
	if err != nil {
		return nil, err
	}
	if err := s.beginWrite(); err != nil {
		return nil, err
	}
	defer s.endWrite()

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		s.notify(model.NotifyError, "product_created", "Error", "An error occurred while saving the product.")
		return nil, err
	}

	s.CancelEdit()
	s.notify(model.NotifySuccess, "product_created", "Product created", fmt.Sprintf("Product %q has been created.", created.Name))
	s.Load(ctx)
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, raw *model.ProductInput) (*model.Product, error) {
	in, err := s.validateInput(raw)
	if err != nil {
		return nil, err
	}
	if err := s.beginWrite(); err != nil {
		return nil, err
	}
	defer s.endWrite()

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.notify(model.NotifyError, "product_updated", "Error", "An error occurred while saving the product.")
		return nil, err
	}

	s.mu.Lock()
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
	s.mu.Unlock()
	s.notify(model.NotifySuccess, "product_updated", "Product updated", fmt.Sprintf("Product %q has been updated.", updated.Name))
	s.Load(ctx)
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.beginWrite(); err != nil {
		return err
	}
	defer s.endWrite()

	label := id.String()
	if p, err := s.FindProduct(id); err == nil {
		label = p.Name
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.notify(model.NotifyError, "product_deleted", "Error", "An error occurred while deleting the product.")
		return err
	}

	s.mu.Lock()
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
	s.mu.Unlock()
	s.notify(model.NotifySuccess, "product_deleted", "Product deleted", fmt.Sprintf("Product %q has been deleted.", label))
	s.Load(ctx)
	return nil
}

// Quote runs a calculator seeded with the stored product and applies the overrides in turn.
func (s *catalogService) Quote(id uuid.UUID, overrides *PriceOverrides) (*Quote, error) {
	if overrides != nil {
		if err := validator.Validate(overrides); err != nil {
			return nil, err
		}
	}
	p, err := s.FindProduct(id)
	if err != nil {
		return nil, err
	}

	calc := pricing.NewCalculator(s.strategy)
	calc.Load(p.ID.String(), PricingInputs(*p, s.strategy))
	if overrides != nil {
		if overrides.Cost != nil {
			calc.SetCost(*overrides.Cost)
		}
		if overrides.Shipping != nil {
			calc.SetShipping(*overrides.Shipping)
		}
		if overrides.TaxRate != nil {
			calc.SetTaxRate(*overrides.TaxRate)
		}
		if overrides.Margin != nil {
			calc.SetMargin(*overrides.Margin)
		}
	}

	result := calc.Result()
	return &Quote{
		ProductID: p.ID,
		Name:      p.Name,
		Strategy:  s.strategy,
		Inputs:    calc.Inputs(),
		Breakdown: result,
		Formatted: result.Format(),
	}, nil
}

// PricingInputs picks the margin field that matches the strategy.
func PricingInputs(p model.Product, s pricing.Strategy) pricing.Inputs {
	in := pricing.Inputs{Cost: p.Cost, Shipping: p.Shipping, TaxRate: p.TaxRate, Margin: p.ProfitMarginPercent}
	if s == pricing.LaborCost {
		in.Margin = p.LaborCost
	}
	return in
}

// validateInput returns a trimmed copy of raw, or a ValidationError.
func (s *catalogService) validateInput(raw *model.ProductInput) (*model.ProductInput, error) {
	if raw == nil {
		return nil, validator.NewError("ProductInput", "required")
	}
	in := *raw
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}

	switch s.strategy {
	case pricing.LaborCost:
		if in.ProfitMarginPercent != nil && *in.ProfitMarginPercent != 0 {
			return nil, validator.NewError("ProductInput.ProfitMarginPercent", "unused_margin")
		}
	default:
		if in.LaborCost != nil && *in.LaborCost != 0 {
			return nil, validator.NewError("ProductInput.LaborCost", "unused_margin")
		}
	}
	return &in, nil
}

func (s *catalogService) beginWrite() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing {
		return ErrWriteInProgress
	}
	s.writing = true
	return nil
}

func (s *catalogService) endWrite() {
	s.mu.Lock()
	s.writing = false
	s.mu.Unlock()
}

func (s *catalogService) notify(level model.NotificationLevel, action, title, description string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(model.Notification{
		Type:        "catalog",
		Action:      action,
		Level:       level,
		Title:       title,
		Description: description,
	})
}
