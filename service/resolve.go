package service

import (
	"context"
	"fmt"

	"answerking/domain"
)

// resolveProducts loads every product in ids. Missing ids fail with
// KindInvalidReference. Retired products fail with retiredKind.
func resolveProducts(
	ctx context.Context,
	repo domain.ProductRepository,
	ids []domain.ProductID,
	retiredKind Kind,
) (map[domain.ProductID]*domain.Product, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[domain.ProductID]*domain.Product{}, nil
	}
	products, err := repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	found := make(map[domain.ProductID]*domain.Product, len(products))
	for _, p := range products {
		found[p.ID()] = p
	}
	var missing, retired []domain.ProductID
	for _, id := range ids {
		p, ok := found[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case p.Retired():
			retired = append(retired, id)
		}
	}
	if len(missing) > 0 {
		return nil, invalidReference("product id(s) does not exist", missing)
	}
	if len(retired) > 0 {
		return nil, newError(retiredKind, "product id(s) are retired: "+joinIDs(retired), retired...)
	}
	return found, nil
}

// resolveCategories loads every category in ids; missing or retired
// categories fail with KindInvalidReference.
func resolveCategories(
	ctx context.Context,
	repo domain.CategoryRepository,
	ids []domain.CategoryID,
) (map[domain.CategoryID]*domain.Category, error) {
	ids = uniqueIDs(ids)
	found := make(map[domain.CategoryID]*domain.Category, len(ids))
	var missing, retired []domain.CategoryID
	for _, id := range ids {
		c, err := repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load category %d: %w", id, err)
		}
		switch {
		case c == nil:
			missing = append(missing, id)
		case c.Retired():
			retired = append(retired, id)
		default:
			found[id] = c
		}
	}
	if len(missing) > 0 {
		return nil, invalidReference("category id(s) does not exist", missing)
	}
	if len(retired) > 0 {
		return nil, invalidReference("category id(s) are retired", retired)
	}
	return found, nil
}
