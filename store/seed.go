package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"answerking/domain"
)

type seedProduct struct {
	name, description, price string
	categories, tags         []string
}

type seedGroup struct {
	name, description string
}

var (
	seedCategories = []seedGroup{
		{"Burgers", "Flame grilled and stacked high"},
		{"Sides", "Something on the side"},
		{"Drinks", "Cold and fizzy"},
	}
	seedTags = []seedGroup{
		{"Vegan", "Non-animal products"},
		{"BOGOF", "Buy one get one free!"},
	}
	seedProducts = []seedProduct{
		{"Whopper", "A big flame grilled burger", "5.99", []string{"Burgers"}, []string{"BOGOF"}},
		{"Plant Burger", "A burger with a plant-based patty", "6.49", []string{"Burgers"}, []string{"Vegan"}},
		{"Fries", "Salted potato fries", "1.99", []string{"Sides"}, []string{"Vegan"}},
		{"Onion Rings", "Battered onion rings", "2.49", []string{"Sides"}, nil},
		{"Cola", "Regular cola", "1.49", []string{"Drinks"}, []string{"Vegan", "BOGOF"}},
	}
)

// Seed writes the starter catalog when the store holds no products. It
// reports whether anything was written.
func Seed(ctx context.Context, s domain.Store) (bool, error) {
	existing, err := s.Products().GetAll(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	products := make([]*domain.Product, len(seedProducts))
	for i, sp := range seedProducts {
		p, err := domain.NewProduct(sp.name, sp.description, decimal.RequireFromString(sp.price))
		if err != nil {
			return false, err
		}
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			return false, fmt.Errorf("seed product %q: %w", sp.name, err)
		}
		products[i] = p
	}

	members := func(name string, pick func(seedProduct) []string) []domain.ProductID {
		var ids []domain.ProductID
		for i, sp := range seedProducts {
			for _, n := range pick(sp) {
				if n == name {
					ids = append(ids, products[i].ID())
				}
			}
		}
		return ids
	}

	categoryIDs := make(map[string]domain.CategoryID, len(seedCategories))
	for _, sg := range seedCategories {
		c, err := domain.NewCategory(sg.name, sg.description,
			members(sg.name, func(sp seedProduct) []string { return sp.categories }))
		if err != nil {
			return false, err
		}
		if err := s.Categories().Save(ctx, c); err != nil {
			return false, fmt.Errorf("seed category %q: %w", sg.name, err)
		}
		categoryIDs[sg.name] = c.ID()
	}

	tagIDs := make(map[string]domain.TagID, len(seedTags))
	for _, sg := range seedTags {
		t, err := domain.NewTag(sg.name, sg.description,
			members(sg.name, func(sp seedProduct) []string { return sp.tags }))
		if err != nil {
			return false, err
		}
		if err := s.Tags().Save(ctx, t); err != nil {
			return false, fmt.Errorf("seed tag %q: %w", sg.name, err)
		}
		tagIDs[sg.name] = t.ID()
	}

	for i, sp := range seedProducts {
		p := products[i]
		for _, name := range sp.categories {
			if err := p.AddCategory(categoryIDs[name]); err != nil {
				return false, err
			}
		}
		for _, name := range sp.tags {
			if err := p.AddTag(tagIDs[name]); err != nil {
				return false, err
			}
		}
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			return false, fmt.Errorf("seed product %q: %w", sp.name, err)
		}
	}
	return true, nil
}
