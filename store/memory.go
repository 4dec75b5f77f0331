// Package store provides storage implementations for the Answer King
// repositories.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"answerking/domain"
)

// InMemoryStore is a thread-safe document store for every aggregate.
type InMemoryStore struct {
	mu   sync.RWMutex
	data *dataset
	// commit runs under the write lock after every successful write.
	commit func(*dataset) error
}

// NewInMemoryStore constructs a new InMemoryStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: newDataset()}
}

// compile-time assertion that InMemoryStore implements domain.Store
var _ domain.Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Products() domain.ProductRepository { return memProducts{s} }
func (s *InMemoryStore) Categories() domain.CategoryRepository { return memCategories{s} }
func (s *InMemoryStore) Tags() domain.TagRepository { return memTags{s} }
func (s *InMemoryStore) Orders() domain.OrderRepository { return memOrders{s} }
func (s *InMemoryStore) Payments() domain.PaymentRepository { return memPayments{s} }

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) read(ctx context.Context, fn func(*dataset) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *InMemoryStore) write(ctx context.Context, fn func(*dataset) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commit == nil {
		return fn(s.data)
	}

	// a failed commit leaves the live dataset untouched
	next := s.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.commit(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

type memProducts struct{ s *InMemoryStore }

func (r memProducts) Get(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var p *domain.Product
	err := r.s.read(ctx, func(d *dataset) error {
		doc, ok := d.products[id]
		if !ok {
			return nil
		}
		var err error
		p, err = doc.toDomain()
		return err
	})
	return p, err
}

func (r memProducts) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, func(productDoc) bool { return true })
}

func (r memProducts) GetMany(ctx context.Context, ids []domain.ProductID) ([]*domain.Product, error) {
	return r.find(ctx, func(doc productDoc) bool { return slices.Contains(ids, doc.ID) })
}

func (r memProducts) GetByCategoryID(ctx context.Context, id domain.CategoryID) ([]*domain.Product, error) {
	return r.find(ctx, func(doc productDoc) bool { return slices.Contains(doc.Categories, id) })
}

func (r memProducts) GetByTagID(ctx context.Context, id domain.TagID) ([]*domain.Product, error) {
	return r.find(ctx, func(doc productDoc) bool { return slices.Contains(doc.Tags, id) })
}

func (r memProducts) find(ctx context.Context, keep func(productDoc) bool) ([]*domain.Product, error) {
	var out []*domain.Product
	err := r.s.read(ctx, func(d *dataset) error {
		var err error
		out, err = decodeAll(slices.DeleteFunc(byID(d.products), func(doc productDoc) bool {
			return !keep(doc)
		}), productDoc.toDomain)
		return err
	})
	return out, err
}

func (r memProducts) AddOrUpdate(ctx context.Context, p *domain.Product) error {
	return r.s.write(ctx, func(d *dataset) error {
		id, err := identify(&d.seq.Product, p.ID(), p.AssignID)
		if err != nil {
			return err
		}
		d.products[id] = newProductDoc(p)
		return nil
	})
}

type memCategories struct{ s *InMemoryStore }

func (r memCategories) Get(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	var c *domain.Category
	err := r.s.read(ctx, func(d *dataset) error {
		doc, ok := d.categories[id]
		if !ok {
			return nil
		}
		var err error
		c, err = doc.toCategory()
		return err
	})
	return c, err
}

func (r memCategories) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return r.GetByProductID(ctx)
}

// GetByProductID with no ids returns every category.
func (r memCategories) GetByProductID(ctx context.Context, ids ...domain.ProductID) ([]*domain.Category, error) {
	var out []*domain.Category
	err := r.s.read(ctx, func(d *dataset) error {
		docs := byID(d.categories)
		if len(ids) > 0 {
			docs = slices.DeleteFunc(docs, func(doc groupDoc) bool { return !doc.holdsAny(ids) })
		}
		var err error
		out, err = decodeAll(docs, groupDoc.toCategory)
		return err
	})
	return out, err
}

func (r memCategories) Save(ctx context.Context, c *domain.Category) error {
	return r.s.write(ctx, func(d *dataset) error {
		id, err := identify(&d.seq.Category, c.ID(), c.AssignID)
		if err != nil {
			return err
		}
		d.categories[id] = newCategoryDoc(c)
		return nil
	})
}

type memTags struct{ s *InMemoryStore }

func (r memTags) Get(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	var t *domain.Tag
	err := r.s.read(ctx, func(d *dataset) error {
		doc, ok := d.tags[id]
		if !ok {
			return nil
		}
		var err error
		t, err = doc.toTag()
		return err
	})
	return t, err
}

func (r memTags) GetAll(ctx context.Context) ([]*domain.Tag, error) {
	return r.GetByProductID(ctx)
}

// GetByProductID with no ids returns every tag.
func (r memTags) GetByProductID(ctx context.Context, ids ...domain.ProductID) ([]*domain.Tag, error) {
	var out []*domain.Tag
	err := r.s.read(ctx, func(d *dataset) error {
		docs := byID(d.tags)
		if len(ids) > 0 {
			docs = slices.DeleteFunc(docs, func(doc groupDoc) bool { return !doc.holdsAny(ids) })
		}
		var err error
		out, err = decodeAll(docs, groupDoc.toTag)
		return err
	})
	return out, err
}

func (r memTags) Save(ctx context.Context, t *domain.Tag) error {
	return r.s.write(ctx, func(d *dataset) error {
		id, err := identify(&d.seq.Tag, t.ID(), t.AssignID)
		if err != nil {
			return err
		}
		d.tags[id] = newTagDoc(t)
		return nil
	})
}

type memOrders struct{ s *InMemoryStore }

func (r memOrders) Get(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	var o *domain.Order
	err := r.s.read(ctx, func(d *dataset) error {
		doc, ok := d.orders[id]
		if !ok {
			return nil
		}
		var err error
		o, err = doc.toDomain()
		return err
	})
	return o, err
}

func (r memOrders) GetAll(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	err := r.s.read(ctx, func(d *dataset) error {
		var err error
		out, err = decodeAll(byID(d.orders), orderDoc.toDomain)
		return err
	})
	return out, err
}

func (r memOrders) Save(ctx context.Context, o *domain.Order) error {
	return r.s.write(ctx, func(d *dataset) error {
		id, err := identify(&d.seq.Order, o.ID(), o.AssignID)
		if err != nil {
			return err
		}
		d.orders[id] = newOrderDoc(o)
		return nil
	})
}

type memPayments struct{ s *InMemoryStore }

func (r memPayments) Get(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	var p *domain.Payment
	err := r.s.read(ctx, func(d *dataset) error {
		doc, ok := d.payments[id]
		if !ok {
			return nil
		}
		var err error
		p, err = doc.toDomain()
		return err
	})
	return p, err
}

func (r memPayments) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	var out []*domain.Payment
	err := r.s.read(ctx, func(d *dataset) error {
		var err error
		out, err = decodeAll(byID(d.payments), paymentDoc.toDomain)
		return err
	})
	return out, err
}

// Add records a new payment. Payments are never updated.
func (r memPayments) Add(ctx context.Context, p *domain.Payment) error {
	return r.s.write(ctx, func(d *dataset) error {
		if _, exists := d.payments[p.ID()]; exists && p.ID() != 0 {
			return fmt.Errorf("payment %d already recorded", p.ID())
		}
		id, err := identify(&d.seq.Payment, p.ID(), p.AssignID)
		if err != nil {
			return err
		}
		d.payments[id] = newPaymentDoc(p)
		return nil
	})
}
