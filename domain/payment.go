package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money taken against an order. It never changes after
// creation.
type Payment struct {
	id         PaymentID
	orderID    OrderID
	amount     decimal.Decimal
	orderTotal decimal.Decimal
	paidOn     time.Time
}

// NewPayment records amount paid for an order totalling orderTotal.
func NewPayment(orderID OrderID, amount, orderTotal decimal.Decimal) (*Payment, error) {
	if err := firstError(
		guardNotDefault("orderId", orderID),
		guardNotNegative("amount", amount),
		guardNotNegative("orderTotal", orderTotal),
	); err != nil {
		return nil, err
	}
	if amount.LessThan(orderTotal) {
		return nil, NewArgumentError("amount", "cannot be less than the order total", amount)
	}
	return &Payment{orderID: orderID, amount: amount, orderTotal: orderTotal, paidOn: now()}, nil
}

func (p *Payment) ID() PaymentID { return p.id }
func (p *Payment) OrderID() OrderID { return p.orderID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) OrderTotal() decimal.Decimal { return p.orderTotal }
func (p *Payment) PaidOn() time.Time { return p.paidOn }

// Change is the amount handed back.
func (p *Payment) Change() decimal.Decimal { return p.amount.Sub(p.orderTotal) }

// AssignID sets the identity of a newly persisted payment.
func (p *Payment) AssignID(id PaymentID) error {
	return assignID("payment", &p.id, id)
}

func (p *Payment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         PaymentID       `json:"id"`
		OrderID    OrderID         `json:"orderId"`
		Amount     decimal.Decimal `json:"amount"`
		OrderTotal decimal.Decimal `json:"orderTotal"`
		Change     decimal.Decimal `json:"change"`
		PaidOn     time.Time       `json:"date"`
	}{p.id, p.orderID, p.amount, p.orderTotal, p.Change(), p.paidOn})
}
