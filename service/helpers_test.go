package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"answerking/domain"
	"answerking/store"
)

type fixture struct {
	store      *store.InMemoryStore
	menu       *domain.Category
	products   *ProductService
	categories *CategoryService
	tags       *TagService
	orders     *OrderService
	payments   *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewInMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &fixture{
		store:      s,
		products:   NewProductService(s.Products(), s.Categories(), s.Tags(), log),
		categories: NewCategoryService(s.Categories(), s.Products(), log),
		tags:       NewTagService(s.Tags(), s.Products(), log),
		orders:     NewOrderService(s.Orders(), s.Products(), s.Categories(), s.Tags(), log),
		payments:   NewPaymentService(s.Payments(), s.Orders(), log),
	}
}

// product creates a product in categories, or in the shared "Menu"
// category when none are given.
func (f *fixture) product(t *testing.T, name, price string, categories ...domain.CategoryID) *domain.Product {
	t.Helper()
	if len(categories) == 0 {
		categories = []domain.CategoryID{f.menuID(t)}
	}
	p, err := f.products.CreateProduct(context.Background(), ProductRequest{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		CategoryIDs: categories,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) menuID(t *testing.T) domain.CategoryID {
	t.Helper()
	if f.menu == nil {
		f.menu = f.category(t, "Menu")
	}
	return f.menu.ID()
}

func (f *fixture) category(t *testing.T, name string, products ...domain.ProductID) *domain.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(context.Background(), CategoryRequest{
		Name:        name,
		Description: name + " description",
		ProductIDs:  products,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) tag(t *testing.T, name string, products ...domain.ProductID) *domain.Tag {
	t.Helper()
	tag, err := f.tags.CreateTag(context.Background(), TagRequest{
		Name:        name,
		Description: name + " description",
		ProductIDs:  products,
	})
	require.NoError(t, err)
	return tag
}

// reload reads the product back from the store.
func (f *fixture) reload(t *testing.T, id domain.ProductID) *domain.Product {
	t.Helper()
	p, err := f.store.Products().Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) reloadCategory(t *testing.T, id domain.CategoryID) *domain.Category {
	t.Helper()
	c, err := f.store.Categories().Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

// flakyProducts fails every AddOrUpdate from call number failAt on.
type flakyProducts struct {
	domain.ProductRepository
	calls, failAt int
	err           error
}

func (r *flakyProducts) AddOrUpdate(ctx context.Context, p *domain.Product) error {
	r.calls++
	if r.calls >= r.failAt {
		return r.err
	}
	return r.ProductRepository.AddOrUpdate(ctx, p)
}

// flakyCategories fails every Save from call number failAt on.
type flakyCategories struct {
	domain.CategoryRepository
	calls, failAt int
	err           error
}

func (r *flakyCategories) Save(ctx context.Context, c *domain.Category) error {
	r.calls++
	if r.calls >= r.failAt {
		return r.err
	}
	return r.CategoryRepository.Save(ctx, c)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, KindOf(err), "error: %v", err)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
