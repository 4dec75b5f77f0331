package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"answerking/domain"
)

// TagService manages tags and keeps the product side of the tag/product
// link in step.
type TagService struct {
	tags     domain.TagRepository
	products domain.ProductRepository
	log      *slog.Logger
}

// NewTagService constructs a TagService. A nil logger falls back to
// slog.Default.
func NewTagService(tags domain.TagRepository, products domain.ProductRepository, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{tags: tags, products: products, log: logger.With("service", "tag")}
}

func (s *TagService) GetTag(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	t, err := s.tags.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tag %d: %w", id, err)
	}
	if t == nil {
		return nil, notFound(domain.AggregateTag, id)
	}
	return t, nil
}

func (s *TagService) GetTags(ctx context.Context) ([]*domain.Tag, error) {
	ts, err := s.tags.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return ts, nil
}

// GetTagByName finds a tag by case-insensitive name.
func (s *TagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	ts, err := s.GetTags(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		if strings.EqualFold(t.Name(), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return nil, newError[int64](KindNotFound, fmt.Sprintf("tag %q not found", name))
}

// CreateTag creates a tag holding req.ProductIDs and tags each product.
func (s *TagService) CreateTag(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	products, err := resolveProducts(ctx, s.products, req.ProductIDs, KindInvalidReference)
	if err != nil {
		return nil, err
	}
	tag, err := domain.NewTag(req.Name, req.Description, uniqueIDs(req.ProductIDs))
	if err != nil {
		return nil, fromDomain(err)
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag: %w", err)
	}
	for _, pid := range tag.Products() {
		if err := s.tagProduct(ctx, tag.ID(), products[pid]); err != nil {
			return nil, err
		}
	}
	return tag, nil
}

// UpdateTag renames a tag. Its products are managed with AddProducts and
// RemoveProducts.
func (s *TagService) UpdateTag(ctx context.Context, id domain.TagID, req TagRequest) (*domain.Tag, error) {
	tag, err := s.activeTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tag.Rename(req.Name, req.Description); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag %d: %w", id, err)
	}
	return tag, nil
}

// AddProducts tags every product in ids.
func (s *TagService) AddProducts(ctx context.Context, id domain.TagID, ids []domain.ProductID) (*domain.Tag, error) {
	tag, err := s.activeTag(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := resolveProducts(ctx, s.products, ids, KindRetired)
	if err != nil {
		return nil, err
	}
	for _, pid := range uniqueIDs(ids) {
		if err := tag.AddProduct(pid); err != nil {
			return nil, fromDomain(err)
		}
		if err := s.tagProduct(ctx, id, products[pid]); err != nil {
			return nil, err
		}
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag %d: %w", id, err)
	}
	return tag, nil
}

// RemoveProducts untags every product in ids. Each id must currently be
// tagged.
func (s *TagService) RemoveProducts(ctx context.Context, id domain.TagID, ids []domain.ProductID) (*domain.Tag, error) {
	tag, err := s.activeTag(ctx, id)
	if err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	var unrelated []domain.ProductID
	for _, pid := range ids {
		if !tag.HasProduct(pid) {
			unrelated = append(unrelated, pid)
		}
	}
	if len(unrelated) > 0 {
		return nil, invalidReference(fmt.Sprintf("product id(s) not associated with tag %d", id), unrelated)
	}
	products, err := resolveProducts(ctx, s.products, ids, KindRetired)
	if err != nil {
		return nil, err
	}

	for _, pid := range ids {
		if err := tag.RemoveProduct(pid); err != nil {
			return nil, fromDomain(err)
		}
		p := products[pid]
		if err := p.RemoveTag(id); err != nil {
			return nil, fromDomain(err)
		}
		if err := s.products.AddOrUpdate(ctx, p); err != nil {
			return nil, fmt.Errorf("save product %d: %w", pid, err)
		}
		s.log.DebugContext(ctx, "product untagged", "tag_id", id, "product_id", pid)
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag %d: %w", id, err)
	}
	return tag, nil
}

// RetireTag retires an empty tag.
func (s *TagService) RetireTag(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.Retired() {
		return nil, newError(KindAlreadyRetired, fmt.Sprintf("tag %d is already retired", id), id)
	}
	if ids := tag.Products(); len(ids) > 0 {
		return nil, newError(KindHasDependents,
			"cannot retire tag whilst there are still products assigned: "+joinIDs(ids), ids...)
	}
	if err := tag.Retire(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag %d: %w", id, err)
	}
	return tag, nil
}

// UnretireTag brings a retired tag back into use.
func (s *TagService) UnretireTag(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tag.Unretire(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag %d: %w", id, err)
	}
	return tag, nil
}

func (s *TagService) activeTag(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.Retired() {
		return nil, newError(KindRetired, fmt.Sprintf("tag %d is retired", id), id)
	}
	return tag, nil
}

func (s *TagService) tagProduct(ctx context.Context, id domain.TagID, p *domain.Product) error {
	if err := p.AddTag(id); err != nil {
		return fromDomain(err)
	}
	if err := s.products.AddOrUpdate(ctx, p); err != nil {
		return fmt.Errorf("save product %d: %w", p.ID(), err)
	}
	s.log.DebugContext(ctx, "product tagged", "tag_id", id, "product_id", p.ID())
	return nil
}
