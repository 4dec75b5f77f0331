package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// The Rehydrate functions rebuild aggregates from persisted state. They are
// meant for store implementations only: they accept a retired or terminal
// state directly and skip the lifecycle rules, but still reject data that
// could never have been saved.

// RehydrateProduct rebuilds a persisted product.
func RehydrateProduct(
	id ProductID,
	name, description string,
	price decimal.Decimal,
	categories []CategoryID,
	tags []TagID,
	retired bool,
	createdOn, lastUpdated time.Time,
) (*Product, error) {
	if err := firstError(
		guardNotDefault("id", id),
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
		guardNotNegative("price", price),
		guardNotZeroTime("createdOn", createdOn),
		guardNotZeroTime("lastUpdated", lastUpdated),
	); err != nil {
		return nil, err
	}
	return &Product{
		id:          id,
		name:        name,
		description: description,
		price:       price,
		categories:  newIDSet(categories),
		tags:        newIDSet(tags),
		retired:     retired,
		createdOn:   createdOn,
		lastUpdated: lastUpdated,
	}, nil
}

func rehydrateGroup(
	aggregate string,
	id int64,
	name, description string,
	products []ProductID,
	retired bool,
	createdOn, lastUpdated time.Time,
) (group, error) {
	if err := firstError(
		guardNotDefault("id", id),
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
		guardNotZeroTime("createdOn", createdOn),
		guardNotZeroTime("lastUpdated", lastUpdated),
	); err != nil {
		return group{}, err
	}
	return group{
		aggregate:   aggregate,
		id:          id,
		name:        name,
		description: description,
		products:    newIDSet(products),
		retired:     retired,
		createdOn:   createdOn,
		lastUpdated: lastUpdated,
	}, nil
}

// RehydrateCategory rebuilds a persisted category.
func RehydrateCategory(
	id CategoryID,
	name, description string,
	products []ProductID,
	retired bool,
	createdOn, lastUpdated time.Time,
) (*Category, error) {
	g, err := rehydrateGroup(AggregateCategory, int64(id), name, description, products, retired, createdOn, lastUpdated)
	if err != nil {
		return nil, err
	}
	return &Category{group: g}, nil
}

// RehydrateTag rebuilds a persisted tag.
func RehydrateTag(
	id TagID,
	name, description string,
	products []ProductID,
	retired bool,
	createdOn, lastUpdated time.Time,
) (*Tag, error) {
	g, err := rehydrateGroup(AggregateTag, int64(id), name, description, products, retired, createdOn, lastUpdated)
	if err != nil {
		return nil, err
	}
	return &Tag{group: g}, nil
}

// RehydrateLineItem rebuilds a persisted line item.
func RehydrateLineItem(product ProductSnapshot, quantity int) (*LineItem, error) {
	if err := product.validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, NewArgumentError("quantity", "must be positive", quantity)
	}
	return &LineItem{product: product.clone(), quantity: quantity}, nil
}

// RehydrateOrder rebuilds a persisted order.
func RehydrateOrder(
	id OrderID,
	status OrderStatus,
	lineItems []*LineItem,
	createdOn, lastUpdated time.Time,
) (*Order, error) {
	if err := firstError(
		guardNotDefault("id", id),
		guardNotZeroTime("createdOn", createdOn),
		guardNotZeroTime("lastUpdated", lastUpdated),
	); err != nil {
		return nil, err
	}
	if status < OrderCreated || status > OrderCancelled {
		return nil, NewArgumentError("status", "unknown order status", int(status))
	}
	return &Order{
		id:          id,
		status:      status,
		lineItems:   lineItems,
		createdOn:   createdOn,
		lastUpdated: lastUpdated,
	}, nil
}

// RehydratePayment rebuilds a persisted payment.
func RehydratePayment(
	id PaymentID,
	orderID OrderID,
	amount, orderTotal decimal.Decimal,
	paidOn time.Time,
) (*Payment, error) {
	if err := firstError(
		guardNotDefault("id", id),
		guardNotDefault("orderId", orderID),
		guardNotZeroTime("date", paidOn),
	); err != nil {
		return nil, err
	}
	return &Payment{id: id, orderID: orderID, amount: amount, orderTotal: orderTotal, paidOn: paidOn}, nil
}
