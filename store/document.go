package store

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"answerking/domain"
)

// Documents are the persisted form of the aggregates in the document
// stores. Aggregates are copied in on save and rehydrated on every read, so
// callers never share state with the store.

type productDoc struct {
	ID          domain.ProductID    `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Categories  []domain.CategoryID `json:"categories"`
	Tags        []domain.TagID      `json:"tags"`
	Retired     bool                `json:"retired"`
	CreatedOn   time.Time           `json:"createdOn"`
	LastUpdated time.Time           `json:"lastUpdated"`
}

func newProductDoc(p *domain.Product) productDoc {
	return productDoc{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		Categories:  p.Categories(),
		Tags:        p.Tags(),
		Retired:     p.Retired(),
		CreatedOn:   p.CreatedOn(),
		LastUpdated: p.LastUpdated(),
	}
}

func (d productDoc) toDomain() (*domain.Product, error) {
	p, err := domain.RehydrateProduct(d.ID, d.Name, d.Description, d.Price,
		d.Categories, d.Tags, d.Retired, d.CreatedOn, d.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("decode product %d: %w", d.ID, err)
	}
	return p, nil
}

// groupDoc stores categories and tags.
type groupDoc struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Products    []domain.ProductID `json:"products"`
	Retired     bool               `json:"retired"`
	CreatedOn   time.Time          `json:"createdOn"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

func (d groupDoc) holdsAny(ids []domain.ProductID) bool {
	for _, id := range ids {
		if slices.Contains(d.Products, id) {
			return true
		}
	}
	return false
}

func newCategoryDoc(c *domain.Category) groupDoc {
	return groupDoc{int64(c.ID()), c.Name(), c.Description(), c.Products(), c.Retired(), c.CreatedOn(), c.LastUpdated()}
}

func (d groupDoc) toCategory() (*domain.Category, error) {
	c, err := domain.RehydrateCategory(domain.CategoryID(d.ID), d.Name, d.Description,
		d.Products, d.Retired, d.CreatedOn, d.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("decode category %d: %w", d.ID, err)
	}
	return c, nil
}

func newTagDoc(t *domain.Tag) groupDoc {
	return groupDoc{int64(t.ID()), t.Name(), t.Description(), t.Products(), t.Retired(), t.CreatedOn(), t.LastUpdated()}
}

func (d groupDoc) toTag() (*domain.Tag, error) {
	t, err := domain.RehydrateTag(domain.TagID(d.ID), d.Name, d.Description,
		d.Products, d.Retired, d.CreatedOn, d.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("decode tag %d: %w", d.ID, err)
	}
	return t, nil
}

type lineItemDoc struct {
	Product  domain.ProductSnapshot `json:"product"`
	Quantity int                    `json:"quantity"`
}

type orderDoc struct {
	ID          domain.OrderID `json:"id"`
	Status      string         `json:"status"`
	LineItems   []lineItemDoc  `json:"lineItems"`
	CreatedOn   time.Time      `json:"createdOn"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

func newOrderDoc(o *domain.Order) orderDoc {
	items := o.LineItems()
	docs := make([]lineItemDoc, len(items))
	for i, li := range items {
		docs[i] = lineItemDoc{Product: li.Product(), Quantity: li.Quantity()}
	}
	return orderDoc{o.ID(), o.Status().String(), docs, o.CreatedOn(), o.LastUpdated()}
}

func (d orderDoc) toDomain() (*domain.Order, error) {
	status, err := domain.ParseOrderStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("decode order %d: %w", d.ID, err)
	}
	items := make([]*domain.LineItem, len(d.LineItems))
	for i, li := range d.LineItems {
		if items[i], err = domain.RehydrateLineItem(li.Product, li.Quantity); err != nil {
			return nil, fmt.Errorf("decode order %d line item %d: %w", d.ID, i, err)
		}
	}
	o, err := domain.RehydrateOrder(d.ID, status, items, d.CreatedOn, d.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("decode order %d: %w", d.ID, err)
	}
	return o, nil
}

type paymentDoc struct {
	ID         domain.PaymentID `json:"id"`
	OrderID    domain.OrderID   `json:"orderId"`
	Amount     decimal.Decimal  `json:"amount"`
	OrderTotal decimal.Decimal  `json:"orderTotal"`
	PaidOn     time.Time        `json:"date"`
}

func newPaymentDoc(p *domain.Payment) paymentDoc {
	return paymentDoc{p.ID(), p.OrderID(), p.Amount(), p.OrderTotal(), p.PaidOn()}
}

func (d paymentDoc) toDomain() (*domain.Payment, error) {
	p, err := domain.RehydratePayment(d.ID, d.OrderID, d.Amount, d.OrderTotal, d.PaidOn)
	if err != nil {
		return nil, fmt.Errorf("decode payment %d: %w", d.ID, err)
	}
	return p, nil
}

// sequences holds the last identity handed out per collection.
type sequences struct {
	Product  int64 `json:"product"`
	Category int64 `json:"category"`
	Tag      int64 `json:"tag"`
	Order    int64 `json:"order"`
	Payment  int64 `json:"payment"`
}

// dataset is the whole content of a document store.
type dataset struct {
	seq        sequences
	products   map[domain.ProductID]productDoc
	categories map[domain.CategoryID]groupDoc
	tags       map[domain.TagID]groupDoc
	orders     map[domain.OrderID]orderDoc
	payments   map[domain.PaymentID]paymentDoc
}

func newDataset() *dataset {
	return &dataset{
		products:   make(map[domain.ProductID]productDoc),
		categories: make(map[domain.CategoryID]groupDoc),
		tags:       make(map[domain.TagID]groupDoc),
		orders:     make(map[domain.OrderID]orderDoc),
		payments:   make(map[domain.PaymentID]paymentDoc),
	}
}

// clone copies the collections. Documents are replaced whole on write, so
// the maps can share them.
func (d *dataset) clone() *dataset {
	return &dataset{
		seq:        d.seq,
		products:   maps.Clone(d.products),
		categories: maps.Clone(d.categories),
		tags:       maps.Clone(d.tags),
		orders:     maps.Clone(d.orders),
		payments:   maps.Clone(d.payments),
	}
}

// identify returns the key to store an aggregate under, handing the next
// sequence value to an aggregate that has none.
func identify[T ~int64](seq *int64, id T, assign func(T) error) (T, error) {
	if id == 0 {
		next := T(*seq + 1)
		if err := assign(next); err != nil {
			return 0, err
		}
		*seq = int64(next)
		return next, nil
	}
	*seq = max(*seq, int64(id))
	return id, nil
}

// byID returns the documents of m ordered by key.
func byID[K ~int64, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}

// decodeAll rehydrates docs in order.
func decodeAll[D any, A any](docs []D, decode func(D) (A, error)) ([]A, error) {
	out := make([]A, 0, len(docs))
	for _, d := range docs {
		a, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
