package service

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"answerking/domain"
)

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ProductIDs  []domain.ProductID `json:"products"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	CategoryIDs []domain.CategoryID `json:"categories"`
}

func (r ProductRequest) requireCategory() error {
	if len(r.CategoryIDs) == 0 {
		return newError[int64](KindInvalidRequest, "a product must belong to at least one category")
	}
	return nil
}

// TagRequest creates a tag or renames one. ProductIDs is ignored on update.
type TagRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ProductIDs  []domain.ProductID `json:"products"`
}

// LineItemRequest asks for quantity of one product.
type LineItemRequest struct {
	ProductID domain.ProductID `json:"productId"`
	Quantity  int              `json:"quantity"`
}

// OrderRequest is the full desired content of an order.
type OrderRequest struct {
	LineItems []LineItemRequest `json:"lineItems"`
}

// PaymentRequest pays for an order.
type PaymentRequest struct {
	OrderID domain.OrderID  `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

// quantities validates the line items and sums duplicate product ids.
func (r OrderRequest) quantities() (map[domain.ProductID]int, []domain.ProductID, error) {
	want := make(map[domain.ProductID]int, len(r.LineItems))
	var ids []domain.ProductID
	for _, li := range r.LineItems {
		if li.Quantity <= 0 {
			return nil, nil, newError(KindInvalidRequest,
				fmt.Sprintf("quantity for product %d must be greater than zero", li.ProductID), li.ProductID)
		}
		current, ok := want[li.ProductID]
		if !ok {
			ids = append(ids, li.ProductID)
		}
		if li.Quantity > math.MaxInt-current {
			return nil, nil, newError(KindInvalidRequest,
				fmt.Sprintf("quantity for product %d is too large", li.ProductID), li.ProductID)
		}
		want[li.ProductID] = current + li.Quantity
	}
	return want, ids, nil
}

// uniqueIDs returns ids sorted ascending without duplicates.
func uniqueIDs[T ~int64](ids []T) []T {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func joinIDs[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int64(id))
	}
	return strings.Join(parts, ", ")
}
