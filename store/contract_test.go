package store

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"answerking/domain"
)

// testStoreContract runs the behaviour every domain.Store must share.
func testStoreContract(t *testing.T, open func(t *testing.T) domain.Store) {
	t.Run("product round trip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		p := mustProduct(t, "Fries", "1.99")
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		if p.ID() == 0 {
			t.Fatal("expected an id to be assigned")
		}
		got, err := s.Products().Get(ctx, p.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected product, got nil")
		}
		if got.Name() != "Fries" || !got.Price().Equal(p.Price()) {
			t.Fatalf("unexpected product: %s %s", got.Name(), got.Price())
		}
		if !got.CreatedOn().Equal(p.CreatedOn()) || !got.LastUpdated().Equal(p.LastUpdated()) {
			t.Fatalf("timestamps changed: %v %v", got.CreatedOn(), got.LastUpdated())
		}

		if err := p.Update("Large Fries", "More fries", decimal.RequireFromString("2.49")); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			t.Fatalf("AddOrUpdate (update) failed: %v", err)
		}
		got, _ = s.Products().Get(ctx, p.ID())
		if got.Name() != "Large Fries" || got.Price().String() != "2.49" {
			t.Fatalf("update not persisted: %s %s", got.Name(), got.Price())
		}
		all, err := s.Products().GetAll(ctx)
		if err != nil || len(all) != 1 {
			t.Fatalf("expected one product, got %d (%v)", len(all), err)
		}
	})

	t.Run("absent lookups return nil", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if p, err := s.Products().Get(ctx, 99); err != nil || p != nil {
			t.Fatalf("expected nil product, got %v (%v)", p, err)
		}
		if c, err := s.Categories().Get(ctx, 99); err != nil || c != nil {
			t.Fatalf("expected nil category, got %v (%v)", c, err)
		}
		if tag, err := s.Tags().Get(ctx, 99); err != nil || tag != nil {
			t.Fatalf("expected nil tag, got %v (%v)", tag, err)
		}
		if o, err := s.Orders().Get(ctx, 99); err != nil || o != nil {
			t.Fatalf("expected nil order, got %v (%v)", o, err)
		}
		if p, err := s.Payments().Get(ctx, 99); err != nil || p != nil {
			t.Fatalf("expected nil payment, got %v (%v)", p, err)
		}
	})

	t.Run("reads are copies", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		p := mustProduct(t, "Cola", "1.49")
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		got, _ := s.Products().Get(ctx, p.ID())
		if err := got.Retire(); err != nil {
			t.Fatalf("Retire failed: %v", err)
		}
		again, _ := s.Products().Get(ctx, p.ID())
		if again.Retired() {
			t.Fatal("unsaved change leaked into the store")
		}
	})

	t.Run("product queries", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		a := mustProduct(t, "A", "1")
		b := mustProduct(t, "B", "2")
		c := mustProduct(t, "C", "3")
		_ = a.AddCategory(1)
		_ = a.AddTag(7)
		_ = b.AddCategory(1)
		_ = b.AddCategory(2)
		_ = c.AddTag(7)
		_ = c.AddTag(8)
		for _, p := range []*domain.Product{a, b, c} {
			if err := s.Products().AddOrUpdate(ctx, p); err != nil {
				t.Fatalf("AddOrUpdate failed: %v", err)
			}
		}

		cases := []struct {
			name  string
			query func() ([]*domain.Product, error)
			want  []domain.ProductID
		}{
			{"by category", func() ([]*domain.Product, error) { return s.Products().GetByCategoryID(ctx, 1) }, []domain.ProductID{a.ID(), b.ID()}},
			{"by other category", func() ([]*domain.Product, error) { return s.Products().GetByCategoryID(ctx, 2) }, []domain.ProductID{b.ID()}},
			{"by tag", func() ([]*domain.Product, error) { return s.Products().GetByTagID(ctx, 7) }, []domain.ProductID{a.ID(), c.ID()}},
			{"by unknown tag", func() ([]*domain.Product, error) { return s.Products().GetByTagID(ctx, 9) }, nil},
			{"many skips missing", func() ([]*domain.Product, error) {
				return s.Products().GetMany(ctx, []domain.ProductID{c.ID(), 42, a.ID()})
			}, []domain.ProductID{a.ID(), c.ID()}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				out, err := tc.query()
				if err != nil {
					t.Fatalf("query failed: %v", err)
				}
				assertProductIDs(t, out, tc.want)
			})
		}

		got, _ := s.Products().Get(ctx, c.ID())
		if tags := got.Tags(); len(tags) != 2 || tags[0] != 7 || tags[1] != 8 {
			t.Fatalf("unexpected tags: %v", tags)
		}
	})

	t.Run("groups by product", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		burgers, _ := domain.NewCategory("Burgers", "Grilled", []domain.ProductID{1, 2})
		drinks, _ := domain.NewCategory("Drinks", "Cold", []domain.ProductID{3})
		for _, c := range []*domain.Category{burgers, drinks} {
			if err := s.Categories().Save(ctx, c); err != nil {
				t.Fatalf("Save category failed: %v", err)
			}
		}
		vegan, _ := domain.NewTag("Vegan", "Non-animal products", []domain.ProductID{2, 3})
		if err := s.Tags().Save(ctx, vegan); err != nil {
			t.Fatalf("Save tag failed: %v", err)
		}

		cats, err := s.Categories().GetByProductID(ctx, 2)
		if err != nil || len(cats) != 1 || cats[0].ID() != burgers.ID() {
			t.Fatalf("unexpected categories for product 2: %v (%v)", cats, err)
		}
		cats, _ = s.Categories().GetByProductID(ctx, 1, 3)
		if len(cats) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(cats))
		}
		cats, _ = s.Categories().GetAll(ctx)
		if len(cats) != 2 || cats[0].Name() != "Burgers" {
			t.Fatalf("unexpected categories: %v", cats)
		}
		tags, _ := s.Tags().GetByProductID(ctx, 1)
		if len(tags) != 0 {
			t.Fatalf("expected no tags for product 1, got %d", len(tags))
		}

		if err := burgers.RemoveProduct(1); err != nil {
			t.Fatalf("RemoveProduct failed: %v", err)
		}
		if err := s.Categories().Save(ctx, burgers); err != nil {
			t.Fatalf("Save category failed: %v", err)
		}
		got, _ := s.Categories().Get(ctx, burgers.ID())
		if ps := got.Products(); len(ps) != 1 || ps[0] != 2 {
			t.Fatalf("link rewrite not persisted: %v", ps)
		}
	})

	t.Run("order round trip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		o := domain.NewOrder()
		snap := domain.ProductSnapshot{
			ID: 1, Name: "Whopper", Description: "Big", Price: decimal.RequireFromString("5.99"),
			Categories: []domain.GroupRef{{ID: 1, Name: "Burgers", Description: "Grilled"}},
		}
		if err := o.AddLineItem(snap, 2); err != nil {
			t.Fatalf("AddLineItem failed: %v", err)
		}
		if err := s.Orders().Save(ctx, o); err != nil {
			t.Fatalf("Save order failed: %v", err)
		}
		got, err := s.Orders().Get(ctx, o.ID())
		if err != nil || got == nil {
			t.Fatalf("Get order failed: %v", err)
		}
		if got.Status() != domain.OrderCreated || !got.OrderTotal().Equal(decimal.RequireFromString("11.98")) {
			t.Fatalf("unexpected order: %s %s", got.Status(), got.OrderTotal())
		}
		items := got.LineItems()
		if len(items) != 1 || items[0].Quantity() != 2 || items[0].Product().Categories[0].Name != "Burgers" {
			t.Fatalf("unexpected line items: %+v", items)
		}

		if err := o.RemoveLineItem(1, 2); err != nil {
			t.Fatalf("RemoveLineItem failed: %v", err)
		}
		if err := o.CancelOrder(); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		if err := s.Orders().Save(ctx, o); err != nil {
			t.Fatalf("Save order failed: %v", err)
		}
		got, _ = s.Orders().Get(ctx, o.ID())
		if got.Status() != domain.OrderCancelled || len(got.LineItems()) != 0 {
			t.Fatalf("unexpected order after cancel: %s %d", got.Status(), len(got.LineItems()))
		}
		all, _ := s.Orders().GetAll(ctx)
		if len(all) != 1 {
			t.Fatalf("expected 1 order, got %d", len(all))
		}
	})

	t.Run("payments", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		p, err := domain.NewPayment(3, decimal.RequireFromString("10"), decimal.RequireFromString("7.5"))
		if err != nil {
			t.Fatalf("NewPayment failed: %v", err)
		}
		if err := s.Payments().Add(ctx, p); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if p.ID() == 0 {
			t.Fatal("expected payment id")
		}
		if err := s.Payments().Add(ctx, p); err == nil {
			t.Fatal("expected error adding the same payment twice")
		}
		got, _ := s.Payments().Get(ctx, p.ID())
		if got == nil || got.OrderID() != 3 || got.Change().String() != "2.5" {
			t.Fatalf("unexpected payment: %+v", got)
		}
		all, _ := s.Payments().GetAll(ctx)
		if len(all) != 1 {
			t.Fatalf("expected 1 payment, got %d", len(all))
		}
	})

	t.Run("explicit ids", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		src := mustProduct(t, "Old", "1")
		p, err := domain.RehydrateProduct(10, "Old", "Imported", decimal.NewFromInt(1),
			nil, nil, false, src.CreatedOn(), src.LastUpdated())
		if err != nil {
			t.Fatalf("RehydrateProduct failed: %v", err)
		}
		if err := s.Products().AddOrUpdate(ctx, p); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		next := mustProduct(t, "New", "1")
		if err := s.Products().AddOrUpdate(ctx, next); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		if next.ID() != 11 {
			t.Fatalf("expected id 11 after explicit id 10, got %d", next.ID())
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := s.Products().AddOrUpdate(ctx, mustProduct(t, "X", "1")); err == nil {
			t.Fatal("expected error on canceled context")
		}
		if _, err := s.Products().GetAll(ctx); err == nil {
			t.Fatal("expected error on canceled context")
		}
	})

	t.Run("concurrent writes", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		var wg sync.WaitGroup

		n := 50
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				p, _ := domain.NewProduct("P"+strconv.Itoa(i), "D", decimal.NewFromInt(int64(i)))
				if err := s.Products().AddOrUpdate(ctx, p); err != nil {
					t.Errorf("AddOrUpdate failed: %v", err)
					return
				}
				_, _ = s.Products().Get(ctx, p.ID())
			}(i)
		}
		wg.Wait()

		all, err := s.Products().GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if len(all) != n {
			t.Fatalf("expected %d products, got %d", n, len(all))
		}
		for i, p := range all {
			if p.ID() != domain.ProductID(i+1) {
				t.Fatalf("expected dense ids, got %d at %d", p.ID(), i)
			}
		}
	})
}

func mustProduct(t testing.TB, name, price string) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(name, name+" description", decimal.RequireFromString(price))
	if err != nil {
		t.Fatalf("NewProduct failed: %v", err)
	}
	return p
}

func assertProductIDs(t *testing.T, got []*domain.Product, want []domain.ProductID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d products, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.ID() != want[i] {
			t.Fatalf("expected product %d at %d, got %d", want[i], i, p.ID())
		}
	}
}
