package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"answerking/domain"
)

// OrderService manages orders. Line items hold snapshots of the ordered
// products taken when the quantity last grew.
type OrderService struct {
	orders     domain.OrderRepository
	products   domain.ProductRepository
	categories domain.CategoryRepository
	tags       domain.TagRepository
	log        *slog.Logger
}

// NewOrderService constructs an OrderService. A nil logger falls back to
// slog.Default.
func NewOrderService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	tags domain.TagRepository,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orders:     orders,
		products:   products,
		categories: categories,
		tags:       tags,
		log:        logger.With("service", "order"),
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if o == nil {
		return nil, notFound(domain.AggregateOrder, id)
	}
	return o, nil
}

func (s *OrderService) GetOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return orders, nil
}

// CreateOrder creates an order with the requested line items. Nothing is
// saved when any product is unknown or retired.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	want, ids, err := req.quantities()
	if err != nil {
		return nil, err
	}
	snapshots, err := s.snapshots(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder()
	for _, pid := range ids {
		if err := order.AddLineItem(snapshots[pid], want[pid]); err != nil {
			return nil, fromDomain(err)
		}
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.log.DebugContext(ctx, "order created", "order_id", order.ID(), "line_items", len(ids))
	return order, nil
}

// UpdateOrder reconciles the order's line items to the requested
// quantities. Products missing from the request are removed; products whose
// quantity grows take a fresh snapshot.
func (s *OrderService) UpdateOrder(ctx context.Context, id domain.OrderID, req OrderRequest) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status() != domain.OrderCreated {
		return nil, newError(KindLifecycle, fmt.Sprintf("cannot update a %s order", order.Status()), id)
	}

	want, ids, err := req.quantities()
	if err != nil {
		return nil, err
	}
	snapshots, err := s.snapshots(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, li := range order.LineItems() {
		pid := li.Product().ID
		if _, ok := want[pid]; ok {
			continue
		}
		if err := order.RemoveLineItem(pid, li.Quantity()); err != nil {
			return nil, fromDomain(err)
		}
	}
	for _, pid := range ids {
		current := 0
		if li := order.LineItem(pid); li != nil {
			current = li.Quantity()
		}
		var err error
		switch delta := want[pid] - current; {
		case delta > 0:
			err = order.AddLineItem(snapshots[pid], delta)
		case delta < 0:
			err = order.RemoveLineItem(pid, -delta)
		}
		if err != nil {
			return nil, fromDomain(err)
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %d: %w", id, err)
	}
	s.log.DebugContext(ctx, "order updated", "order_id", id, "line_items", len(order.LineItems()))
	return order, nil
}

// CancelOrder cancels an order that has not been paid.
func (s *OrderService) CancelOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.CancelOrder(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %d: %w", id, err)
	}
	s.log.DebugContext(ctx, "order cancelled", "order_id", id)
	return order, nil
}

// snapshots resolves ids to active products and captures each with the
// names of its categories and tags. The groups are loaded concurrently.
func (s *OrderService) snapshots(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]domain.ProductSnapshot, error) {
	products, err := resolveProducts(ctx, s.products, ids, KindInvalidReference)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ProductID]domain.ProductSnapshot, len(products))
	if len(products) == 0 {
		return out, nil
	}

	productIDs := slices.Sorted(maps.Keys(products))
	var (
		categories []*domain.Category
		tags       []*domain.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.categories.GetByProductID(gctx, productIDs...)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.tags.GetByProductID(gctx, productIDs...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load product groups: %w", err)
	}

	categoryRefs := make(map[domain.CategoryID]domain.GroupRef, len(categories))
	for _, c := range categories {
		categoryRefs[c.ID()] = domain.GroupRef{ID: int64(c.ID()), Name: c.Name(), Description: c.Description()}
	}
	tagRefs := make(map[domain.TagID]domain.GroupRef, len(tags))
	for _, t := range tags {
		tagRefs[t.ID()] = domain.GroupRef{ID: int64(t.ID()), Name: t.Name(), Description: t.Description()}
	}

	for pid, p := range products {
		snap := domain.ProductSnapshot{
			ID:          pid,
			Name:        p.Name(),
			Description: p.Description(),
			Price:       p.Price(),
			Categories:  []domain.GroupRef{},
			Tags:        []domain.GroupRef{},
		}
		for _, cid := range p.Categories() {
			if ref, ok := categoryRefs[cid]; ok {
				snap.Categories = append(snap.Categories, ref)
			}
		}
		for _, tid := range p.Tags() {
			if ref, ok := tagRefs[tid]; ok {
				snap.Tags = append(snap.Tags, ref)
			}
		}
		out[pid] = snap
	}
	return out, nil
}
