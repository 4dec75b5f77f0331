// Package domain defines the Answer King aggregates and the repository
// contracts they are persisted through.
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory item. Categories and tags are referenced by id
// only; resolving them requires a repository lookup.
type Product struct {
	id          ProductID
	name        string
	description string
	price       decimal.Decimal
	categories  idSet[CategoryID]
	tags        idSet[TagID]
	retired     bool
	createdOn   time.Time
	lastUpdated time.Time
}

// NewProduct constructs an unpersisted product.
func NewProduct(name, description string, price decimal.Decimal) (*Product, error) {
	if err := firstError(
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
		guardNotNegative("price", price),
	); err != nil {
		return nil, err
	}
	ts := now()
	return &Product{
		name:        name,
		description: description,
		price:       price,
		categories:  make(idSet[CategoryID]),
		tags:        make(idSet[TagID]),
		createdOn:   ts,
		lastUpdated: ts,
	}, nil
}

func (p *Product) ID() ProductID { return p.id }
func (p *Product) Name() string { return p.name }
func (p *Product) Description() string { return p.description }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Retired() bool { return p.retired }
func (p *Product) CreatedOn() time.Time { return p.createdOn }
func (p *Product) LastUpdated() time.Time { return p.lastUpdated }
func (p *Product) Categories() []CategoryID { return p.categories.sorted() }
func (p *Product) Tags() []TagID { return p.tags.sorted() }
func (p *Product) HasCategory(id CategoryID) bool { return p.categories.has(id) }
func (p *Product) HasTag(id TagID) bool { return p.tags.has(id) }

// AssignID sets the identity of a newly persisted product.
func (p *Product) AssignID(id ProductID) error {
	return assignID(AggregateProduct, &p.id, id)
}

// Update replaces the descriptive attributes and price.
func (p *Product) Update(name, description string, price decimal.Decimal) error {
	if p.retired {
		return p.lifecycle("cannot update a retired product")
	}
	if err := firstError(
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
		guardNotNegative("price", price),
	); err != nil {
		return err
	}
	p.name = name
	p.description = description
	p.price = price
	p.touch()
	return nil
}

func (p *Product) AddCategory(id CategoryID) error {
	if p.retired {
		return p.lifecycle("cannot add category to a retired product")
	}
	if p.categories.add(id) {
		p.touch()
	}
	return nil
}

func (p *Product) RemoveCategory(id CategoryID) error {
	if p.retired {
		return p.lifecycle("cannot remove category from a retired product")
	}
	if p.categories.remove(id) {
		p.touch()
	}
	return nil
}

func (p *Product) AddTag(id TagID) error {
	if p.retired {
		return p.lifecycle("cannot add tag to a retired product")
	}
	if p.tags.add(id) {
		p.touch()
	}
	return nil
}

func (p *Product) RemoveTag(id TagID) error {
	if p.retired {
		return p.lifecycle("cannot remove tag from a retired product")
	}
	if p.tags.remove(id) {
		p.touch()
	}
	return nil
}

// Retire deactivates the product. There is no way back.
func (p *Product) Retire() error {
	if p.retired {
		return p.lifecycle("the product is already retired")
	}
	p.retired = true
	p.touch()
	return nil
}

func (p *Product) touch() { p.lastUpdated = now() }

func (p *Product) lifecycle(reason string) error {
	return NewLifecycleError(AggregateProduct, int64(p.id), reason)
}

// MarshalJSON renders the product's public state.
func (p *Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          ProductID       `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Categories  []CategoryID    `json:"categories"`
		Tags        []TagID         `json:"tags"`
		Retired     bool            `json:"retired"`
		CreatedOn   time.Time       `json:"createdOn"`
		LastUpdated time.Time       `json:"lastUpdated"`
	}{p.id, p.name, p.description, p.price, p.Categories(), p.Tags(), p.retired, p.createdOn, p.lastUpdated})
}
