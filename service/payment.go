package service

import (
	"context"
	"fmt"
	"log/slog"

	"answerking/domain"
)

// PaymentService takes payments against orders.
type PaymentService struct {
	payments domain.PaymentRepository
	orders   domain.OrderRepository
	log      *slog.Logger
}

// NewPaymentService constructs a PaymentService. A nil logger falls back to
// slog.Default.
func NewPaymentService(payments domain.PaymentRepository, orders domain.OrderRepository, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{payments: payments, orders: orders, log: logger.With("service", "payment")}
}

func (s *PaymentService) GetPayment(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	if p == nil {
		return nil, notFound("payment", id)
	}
	return p, nil
}

func (s *PaymentService) GetPayments(ctx context.Context) ([]*domain.Payment, error) {
	ps, err := s.payments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	return ps, nil
}

// MakePayment pays for an order in full and completes it. An order can be
// paid at most once.
func (s *PaymentService) MakePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error) {
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", req.OrderID, err)
	}
	if order == nil {
		return nil, invalidReference("order id does not exist", []domain.OrderID{req.OrderID})
	}
	if order.Status() != domain.OrderCreated {
		return nil, newError(KindLifecycle,
			fmt.Sprintf("cannot pay for a %s order", order.Status()), req.OrderID)
	}
	if len(order.LineItems()) == 0 {
		return nil, newError(KindInvalidRequest, "cannot pay for an order with no line items", req.OrderID)
	}

	payment, err := domain.NewPayment(order.ID(), req.Amount, order.OrderTotal())
	if err != nil {
		return nil, fromDomain(err)
	}
	if err := order.CompleteOrder(); err != nil {
		return nil, fromDomain(err)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %d: %w", order.ID(), err)
	}
	if err := s.payments.Add(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment for order %d: %w", order.ID(), err)
	}
	s.log.DebugContext(ctx, "payment taken",
		"order_id", order.ID(), "payment_id", payment.ID(), "amount", payment.Amount().String())
	return payment, nil
}
