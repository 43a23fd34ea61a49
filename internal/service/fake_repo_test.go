package service

import (
	"context"
	"sync"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// fakeRepo is an in-memory ProductRepository. Setting failWrites or
// failList makes the corresponding calls behave like a rejecting backend.
type fakeRepo struct {
	mu         sync.Mutex
	records    []model.Product
	failWrites bool
	failList   bool
	failCats   bool
	listCalls  int
	block      chan struct{}
	// afterList runs once List has taken its snapshot, outside the lock.
	afterList func(call int)
}

func (f *fakeRepo) List(ctx context.Context) []model.Product {
	f.mu.Lock()
	f.listCalls++
	call, hook := f.listCalls, f.afterList
	out := []model.Product{}
	if !f.failList {
		out = append(out, f.records...)
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return out
}

func (f *fakeRepo) ListCategories(ctx context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCats {
		return []string{}
	}
	seen := map[string]bool{}
	out := []string{}
	for _, p := range f.records {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func (f *fakeRepo) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return nil, &repository.RepositoryError{Op: "create", Err: errors.New("constraint violation")}
	}
	p := toProduct(uuid.New(), in)
	f.records = append(f.records, p)
	return &p, nil
}

func (f *fakeRepo) Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return nil, &repository.RepositoryError{Op: "update", Err: errors.New("rejected")}
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i] = toProduct(id, in)
			p := f.records[i]
			return &p, nil
		}
	}
	return nil, &repository.RepositoryError{Op: "update", Err: repository.ErrProductNotFound}
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return &repository.RepositoryError{Op: "delete", Err: errors.New("rejected")}
	}
	kept := f.records[:0]
	for _, p := range f.records {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeRepo) NormalizeStored(ctx context.Context) (int, error) {
	return 0, nil
}

func toProduct(id uuid.UUID, in *model.ProductInput) model.Product {
	p := model.Product{ID: id, Name: in.Name, Category: in.Category, Cost: in.Cost, Links: in.Links}
	if in.Shipping != nil {
		p.Shipping = *in.Shipping
	}
	if in.TaxRate != nil {
		p.TaxRate = *in.TaxRate
	}
	if in.ProfitMarginPercent != nil {
		p.ProfitMarginPercent = *in.ProfitMarginPercent
	}
	if in.LaborCost != nil {
		p.LaborCost = *in.LaborCost
	}
	return p
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (r *recordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) last() model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return model.Notification{}
	}
	return r.notes[len(r.notes)-1]
}
