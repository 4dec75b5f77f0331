package domain

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// GroupRef is a name snapshot of a category or tag taken when a product
// was added to an order.
type GroupRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductSnapshot captures what a product looked like when it was ordered.
type ProductSnapshot struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Categories  []GroupRef      `json:"categories"`
	Tags        []GroupRef      `json:"tags"`
}

func (s ProductSnapshot) validate() error {
	return firstError(
		guardNotDefault("product.id", s.ID),
		guardNotEmpty("product.name", s.Name),
		guardNotEmpty("product.description", s.Description),
		guardNotNegative("product.price", s.Price),
	)
}

func (s ProductSnapshot) clone() ProductSnapshot {
	s.Categories = slices.Clone(s.Categories)
	s.Tags = slices.Clone(s.Tags)
	return s
}

// LineItem pairs a product snapshot with the quantity ordered.
type LineItem struct {
	product  ProductSnapshot
	quantity int
}

// NewLineItem returns an empty line item; callers add quantity with AddQuantity.
func NewLineItem(product ProductSnapshot) (*LineItem, error) {
	if err := product.validate(); err != nil {
		return nil, err
	}
	return &LineItem{product: product.clone()}, nil
}

func (li *LineItem) Product() ProductSnapshot { return li.product.clone() }
func (li *LineItem) Quantity() int { return li.quantity }

// SubTotal is price × quantity.
func (li *LineItem) SubTotal() decimal.Decimal {
	return li.product.Price.Mul(decimal.NewFromInt(int64(li.quantity)))
}

func (li *LineItem) AddQuantity(delta int) error {
	if delta <= 0 {
		return NewLineItemError(li.product.ID, "cannot add a quantity less than or equal to zero")
	}
	if delta > math.MaxInt-li.quantity {
		return NewLineItemError(li.product.ID, "quantity is too large")
	}
	li.quantity += delta
	return nil
}

func (li *LineItem) RemoveQuantity(delta int) error {
	if delta <= 0 {
		return NewLineItemError(li.product.ID, "cannot remove a quantity less than or equal to zero")
	}
	if delta > li.quantity {
		return NewLineItemError(li.product.ID, "cannot remove more than the current quantity")
	}
	li.quantity -= delta
	return nil
}

func (li *LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Product  ProductSnapshot `json:"product"`
		Quantity int             `json:"quantity"`
		SubTotal decimal.Decimal `json:"subTotal"`
	}{li.product, li.quantity, li.SubTotal()})
}
