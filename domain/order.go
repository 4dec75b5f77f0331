package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order state machine: Created moves to Paid or
// Cancelled, both of which are terminal.
type OrderStatus int

const (
	OrderCreated OrderStatus = iota
	OrderPaid
	OrderCancelled
)

// OrderCompleted is the name the payment flow uses for OrderPaid.
const OrderCompleted = OrderPaid

func (s OrderStatus) String() string {
	switch s {
	case OrderCreated:
		return "Created"
	case OrderPaid:
		return "Paid"
	case OrderCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
}

// ParseOrderStatus is the inverse of String.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderCreated, OrderPaid, OrderCancelled} {
		if st.String() == s {
			return st, nil
		}
	}
	if s == "Completed" {
		return OrderCompleted, nil
	}
	return 0, NewArgumentError("status", "unknown order status", s)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Order owns its line items exclusively.
type Order struct {
	id          OrderID
	status      OrderStatus
	lineItems   []*LineItem
	createdOn   time.Time
	lastUpdated time.Time
}

// NewOrder returns an empty order in the Created state.
func NewOrder() *Order {
	ts := now()
	return &Order{status: OrderCreated, createdOn: ts, lastUpdated: ts}
}

func (o *Order) ID() OrderID { return o.id }
func (o *Order) Status() OrderStatus { return o.status }
func (o *Order) CreatedOn() time.Time { return o.createdOn }
func (o *Order) LastUpdated() time.Time { return o.lastUpdated }

// LineItems returns the line items in insertion order. The slice is a copy;
// the items are not.
func (o *Order) LineItems() []*LineItem { return slices.Clone(o.lineItems) }

// LineItem returns the line item for productID, or nil.
func (o *Order) LineItem(productID ProductID) *LineItem {
	if i := o.indexOf(productID); i >= 0 {
		return o.lineItems[i]
	}
	return nil
}

// AssignID sets the identity of a newly persisted order.
func (o *Order) AssignID(id OrderID) error {
	return assignID(AggregateOrder, &o.id, id)
}

// OrderTotal sums the line item subtotals.
func (o *Order) OrderTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.lineItems {
		total = total.Add(li.SubTotal())
	}
	return total
}

// AddLineItem adds quantity of product to the order. An existing line item
// for the same product accumulates the quantity and takes the new snapshot.
func (o *Order) AddLineItem(product ProductSnapshot, quantity int) error {
	if o.status != OrderCreated {
		return o.lifecycle("cannot add line item to a " + o.status.String() + " order")
	}
	if i := o.indexOf(product.ID); i >= 0 {
		li := o.lineItems[i]
		if err := product.validate(); err != nil {
			return err
		}
		if err := li.AddQuantity(quantity); err != nil {
			return err
		}
		li.product = product.clone()
		o.touch()
		return nil
	}

	li, err := NewLineItem(product)
	if err != nil {
		return err
	}
	if err := li.AddQuantity(quantity); err != nil {
		return err
	}
	o.lineItems = append(o.lineItems, li)
	o.touch()
	return nil
}

// RemoveLineItem takes quantity of productID off the order. Removing at
// least the current quantity drops the line item; an unknown product is a
// no-op.
func (o *Order) RemoveLineItem(productID ProductID, quantity int) error {
	if o.status != OrderCreated {
		return o.lifecycle("cannot remove line item from a " + o.status.String() + " order")
	}
	i := o.indexOf(productID)
	if i < 0 {
		return nil
	}
	li := o.lineItems[i]
	if quantity >= li.quantity {
		o.lineItems = slices.Delete(o.lineItems, i, i+1)
		o.touch()
		return nil
	}
	if err := li.RemoveQuantity(quantity); err != nil {
		return err
	}
	o.touch()
	return nil
}

// CompleteOrder marks the order as paid.
func (o *Order) CompleteOrder() error {
	if o.status != OrderCreated {
		return o.lifecycle("cannot complete a " + o.status.String() + " order")
	}
	o.status = OrderPaid
	o.touch()
	return nil
}

// CancelOrder marks the order as cancelled.
func (o *Order) CancelOrder() error {
	if o.status != OrderCreated {
		return o.lifecycle("cannot cancel a " + o.status.String() + " order")
	}
	o.status = OrderCancelled
	o.touch()
	return nil
}

func (o *Order) indexOf(productID ProductID) int {
	return slices.IndexFunc(o.lineItems, func(li *LineItem) bool {
		return li.product.ID == productID
	})
}

func (o *Order) touch() { o.lastUpdated = now() }

func (o *Order) lifecycle(reason string) error {
	return NewLifecycleError(AggregateOrder, int64(o.id), reason)
}

// MarshalJSON renders the order's public state including its total.
func (o *Order) MarshalJSON() ([]byte, error) {
	items := o.lineItems
	if items == nil {
		items = []*LineItem{}
	}
	return json.Marshal(struct {
		ID          OrderID         `json:"id"`
		Status      OrderStatus     `json:"orderStatus"`
		LineItems   []*LineItem     `json:"lineItems"`
		OrderTotal  decimal.Decimal `json:"orderTotal"`
		CreatedOn   time.Time       `json:"createdOn"`
		LastUpdated time.Time       `json:"lastUpdated"`
	}{o.id, o.status, items, o.OrderTotal(), o.createdOn, o.lastUpdated})
}
