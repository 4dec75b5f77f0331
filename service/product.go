package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"answerking/domain"
)

// ProductService manages products and keeps the category and tag sides of
// their links in step.
type ProductService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	tags       domain.TagRepository
	log        *slog.Logger
}

// NewProductService constructs a ProductService. A nil logger falls back
// to slog.Default.
func NewProductService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	tags domain.TagRepository,
	logger *slog.Logger,
) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		tags:       tags,
		log:        logger.With("service", "product"),
	}
}

func (s *ProductService) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p == nil {
		return nil, notFound(domain.AggregateProduct, id)
	}
	return p, nil
}

func (s *ProductService) GetProducts(ctx context.Context) ([]*domain.Product, error) {
	ps, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return ps, nil
}

// GetProductsByIDs returns the products that exist among ids.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []domain.ProductID) ([]*domain.Product, error) {
	ps, err := s.products.GetMany(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return ps, nil
}

// ListProducts returns the products matching filter in the requested order.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	var (
		ps  []*domain.Product
		err error
	)
	switch {
	case filter.CategoryID != 0:
		ps, err = s.products.GetByCategoryID(ctx, filter.CategoryID)
	case filter.TagID != 0:
		ps, err = s.products.GetByTagID(ctx, filter.TagID)
	default:
		ps, err = s.products.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return filter.apply(ps), nil
}

// CreateProduct creates a product in req.CategoryIDs and adds it to each of
// those categories.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*domain.Product, error) {
	if err := req.requireCategory(); err != nil {
		return nil, err
	}
	categories, err := resolveCategories(ctx, s.categories, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	p, err := domain.NewProduct(req.Name, req.Description, req.Price)
	if err != nil {
		return nil, fromDomain(err)
	}
	for cid := range categories {
		if err := p.AddCategory(cid); err != nil {
			return nil, fromDomain(err)
		}
	}
	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	for _, cid := range p.Categories() {
		if err := s.addToCategory(ctx, categories[cid], p.ID()); err != nil {
			return nil, err
		}
	}
	s.log.DebugContext(ctx, "product created", "product_id", p.ID())
	return p, nil
}

// UpdateProduct replaces the product's details and category set.
func (s *ProductService) UpdateProduct(ctx context.Context, id domain.ProductID, req ProductRequest) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Retired() {
		return nil, newError(KindRetired, fmt.Sprintf("product %d is retired", id), id)
	}
	if err := req.requireCategory(); err != nil {
		return nil, err
	}

	requested, err := resolveCategories(ctx, s.categories, req.CategoryIDs)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Description, req.Price); err != nil {
		return nil, fromDomain(err)
	}

	for _, cid := range p.Categories() {
		if _, ok := requested[cid]; ok {
			continue
		}
		c, err := s.categories.Get(ctx, cid)
		if err != nil {
			return nil, fmt.Errorf("get category %d: %w", cid, err)
		}
		if c != nil && !c.Retired() {
			if err := c.RemoveProduct(id); err != nil {
				return nil, fromDomain(err)
			}
			if err := s.categories.Save(ctx, c); err != nil {
				return nil, fmt.Errorf("save category %d: %w", cid, err)
			}
			s.log.DebugContext(ctx, "product unlinked", "category_id", cid, "product_id", id)
		}
		if err := p.RemoveCategory(cid); err != nil {
			return nil, fromDomain(err)
		}
	}

	for _, cid := range uniqueIDs(req.CategoryIDs) {
		if p.HasCategory(cid) {
			continue
		}
		if err := p.AddCategory(cid); err != nil {
			return nil, fromDomain(err)
		}
		if err := s.addToCategory(ctx, requested[cid], id); err != nil {
			return nil, err
		}
	}

	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return nil, fmt.Errorf("save product %d: %w", id, err)
	}
	return p, nil
}

// RetireProduct removes the product from every category and tag and
// retires it.
func (s *ProductService) RetireProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Retired() {
		return nil, newError(KindAlreadyRetired, fmt.Sprintf("product %d is already retired", id), id)
	}

	categories, err := s.categories.GetByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get categories for product %d: %w", id, err)
	}
	for _, c := range categories {
		if c.Retired() {
			continue
		}
		if err := c.RemoveProduct(id); err != nil {
			return nil, fromDomain(err)
		}
		if err := s.categories.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("save category %d: %w", c.ID(), err)
		}
		s.log.DebugContext(ctx, "product unlinked", "category_id", c.ID(), "product_id", id)
	}

	tags, err := s.tags.GetByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tags for product %d: %w", id, err)
	}
	for _, t := range tags {
		if t.Retired() {
			continue
		}
		if err := t.RemoveProduct(id); err != nil {
			return nil, fromDomain(err)
		}
		if err := s.tags.Save(ctx, t); err != nil {
			return nil, fmt.Errorf("save tag %d: %w", t.ID(), err)
		}
		s.log.DebugContext(ctx, "product unlinked", "tag_id", t.ID(), "product_id", id)
	}

	for _, cid := range p.Categories() {
		if err := p.RemoveCategory(cid); err != nil {
			return nil, fromDomain(err)
		}
	}
	for _, tid := range p.Tags() {
		if err := p.RemoveTag(tid); err != nil {
			return nil, fromDomain(err)
		}
	}
	if err := p.Retire(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return nil, fmt.Errorf("save product %d: %w", id, err)
	}
	s.log.DebugContext(ctx, "product retired", "product_id", id)
	return p, nil
}

// ImportProducts creates each product in turn. It returns the products that
// were created and the joined errors of those that were not.
func (s *ProductService) ImportProducts(ctx context.Context, reqs []ProductRequest) ([]*domain.Product, error) {
	created := make([]*domain.Product, 0, len(reqs))
	var errs []error
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		p, err := s.CreateProduct(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("product #%d (%q): %w", i+1, req.Name, err))
			continue
		}
		created = append(created, p)
	}
	s.log.InfoContext(ctx, "products imported", "created", len(created), "failed", len(errs))
	return created, errors.Join(errs...)
}

func (s *ProductService) addToCategory(ctx context.Context, c *domain.Category, id domain.ProductID) error {
	if err := c.AddProduct(id); err != nil {
		return fromDomain(err)
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return fmt.Errorf("save category %d: %w", c.ID(), err)
	}
	s.log.DebugContext(ctx, "product linked", "category_id", c.ID(), "product_id", id)
	return nil
}
