package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"answerking/domain"
)

// ProductFilter allows filtering and sorting results from ListProducts
type ProductFilter struct {
	CategoryID     domain.CategoryID
	TagID          domain.TagID
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	IncludeRetired bool
	SortBy         string // "id", "name" or "price"
	Order          string // "asc" or "desc"
}

func (f ProductFilter) validate() error {
	switch f.SortBy {
	case "", "id", "name", "price":
	default:
		return newError[int64](KindInvalidRequest, "unknown sort field "+f.SortBy)
	}
	switch f.Order {
	case "", "asc", "desc":
	default:
		return newError[int64](KindInvalidRequest, "unknown sort order "+f.Order)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return newError[int64](KindInvalidRequest, "min price is greater than max price")
	}
	return nil
}

func (f ProductFilter) match(p *domain.Product) bool {
	if p.Retired() && !f.IncludeRetired {
		return false
	}
	if f.CategoryID != 0 && !p.HasCategory(f.CategoryID) {
		return false
	}
	if f.TagID != 0 && !p.HasTag(f.TagID) {
		return false
	}
	if f.MinPrice != nil && p.Price().LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price().GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func (f ProductFilter) apply(products []*domain.Product) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if f.match(p) {
			out = append(out, p)
		}
	}

	var compare func(a, b *domain.Product) int
	switch f.SortBy {
	case "name":
		compare = func(a, b *domain.Product) int {
			return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
		}
	case "price":
		compare = func(a, b *domain.Product) int { return a.Price().Cmp(b.Price()) }
	default:
		compare = func(a, b *domain.Product) int { return cmp.Compare(a.ID(), b.ID()) }
	}
	if f.Order == "desc" {
		asc := compare
		compare = func(a, b *domain.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}
