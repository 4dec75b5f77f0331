package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"answerking/domain"
)

// CategoryService manages categories and keeps the product side of the
// category/product link in step.
type CategoryService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	log        *slog.Logger
}

// NewCategoryService constructs a CategoryService. A nil logger falls back
// to slog.Default.
func NewCategoryService(categories domain.CategoryRepository, products domain.ProductRepository, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{categories: categories, products: products, log: logger.With("service", "category")}
}

func (s *CategoryService) GetCategory(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	if c == nil {
		return nil, notFound(domain.AggregateCategory, id)
	}
	return c, nil
}

func (s *CategoryService) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	cs, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return cs, nil
}

// CreateCategory creates a category holding req.ProductIDs and adds the new
// category to each of those products.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	products, err := resolveProducts(ctx, s.products, req.ProductIDs, KindInvalidReference)
	if err != nil {
		return nil, err
	}

	category, err := domain.NewCategory(req.Name, req.Description, uniqueIDs(req.ProductIDs))
	if err != nil {
		return nil, fromDomain(err)
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}

	for _, id := range category.Products() {
		if err := s.link(ctx, category, products[id]); err != nil {
			return nil, err
		}
	}
	return category, nil
}

// UpdateCategory renames the category and replaces its product set with
// req.ProductIDs, updating both sides of every changed link.
func (s *CategoryService) UpdateCategory(ctx context.Context, id domain.CategoryID, req CategoryRequest) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Retired() {
		return nil, newError(KindRetired, fmt.Sprintf("category %d is retired", id), id)
	}

	requested, err := resolveProducts(ctx, s.products, req.ProductIDs, KindInvalidReference)
	if err != nil {
		return nil, err
	}
	// Validate the rename before any product is written.
	renamed, err := domain.NewCategory(req.Name, req.Description, nil)
	if err != nil {
		return nil, fromDomain(err)
	}

	linked, err := s.products.GetByCategoryID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get products for category %d: %w", id, err)
	}
	toAdd := maps.Clone(requested)

	for _, p := range linked {
		if _, ok := requested[p.ID()]; !ok {
			if err := s.unlink(ctx, category, p); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.link(ctx, category, p); err != nil {
			return nil, err
		}
		delete(toAdd, p.ID())
	}

	// Ids held only on the category side.
	for _, pid := range category.Products() {
		if _, ok := requested[pid]; !ok {
			if err := category.RemoveProduct(pid); err != nil {
				return nil, fromDomain(err)
			}
		}
	}

	for _, pid := range slices.Sorted(maps.Keys(toAdd)) {
		if err := s.link(ctx, category, toAdd[pid]); err != nil {
			return nil, err
		}
	}

	if err := category.Rename(renamed.Name(), renamed.Description()); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("save category %d: %w", id, err)
	}
	return category, nil
}

// RetireCategory retires an empty category.
func (s *CategoryService) RetireCategory(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Retired() {
		return nil, newError(KindAlreadyRetired, fmt.Sprintf("category %d is already retired", id), id)
	}
	if ids := category.Products(); len(ids) > 0 {
		return nil, newError(KindHasDependents,
			"cannot retire category whilst there are still products assigned: "+joinIDs(ids), ids...)
	}
	if err := category.Retire(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("save category %d: %w", id, err)
	}
	s.log.DebugContext(ctx, "category retired", "category_id", id)
	return category, nil
}

// link adds p to category in memory and the category to p in the store.
func (s *CategoryService) link(ctx context.Context, category *domain.Category, p *domain.Product) error {
	if err := category.AddProduct(p.ID()); err != nil {
		return fromDomain(err)
	}
	if err := p.AddCategory(category.ID()); err != nil {
		return fromDomain(err)
	}
	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return fmt.Errorf("save product %d: %w", p.ID(), err)
	}
	s.log.DebugContext(ctx, "product linked", "category_id", category.ID(), "product_id", p.ID())
	return nil
}

func (s *CategoryService) unlink(ctx context.Context, category *domain.Category, p *domain.Product) error {
	if err := category.RemoveProduct(p.ID()); err != nil {
		return fromDomain(err)
	}
	if err := p.RemoveCategory(category.ID()); err != nil {
		return fromDomain(err)
	}
	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return fmt.Errorf("save product %d: %w", p.ID(), err)
	}
	s.log.DebugContext(ctx, "product unlinked", "category_id", category.ID(), "product_id", p.ID())
	return nil
}
