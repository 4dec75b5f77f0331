package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"answerking/domain"
)

func TestFileStore_Contract(t *testing.T) {
	testStoreContract(t, func(t *testing.T) domain.Store {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		return s
	})
}

func TestFileStore_ReloadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	p := mustProduct(t, "Fries", "1.99")
	if err := s.Products().AddOrUpdate(ctx, p); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	c, _ := domain.NewCategory("Sides", "On the side", []domain.ProductID{p.ID()})
	if err := s.Categories().Save(ctx, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	o := domain.NewOrder()
	if err := s.Orders().Save(ctx, o); err != nil {
		t.Fatalf("Save order failed: %v", err)
	}

	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore (load) failed: %v", err)
	}
	got, err := s2.Products().Get(ctx, p.ID())
	if err != nil || got == nil {
		t.Fatalf("expected product after reload, got %v (%v)", got, err)
	}
	if got.Price().String() != "1.99" {
		t.Fatalf("unexpected price after reload: %s", got.Price())
	}
	cats, _ := s2.Categories().GetByProductID(ctx, p.ID())
	if len(cats) != 1 || cats[0].Name() != "Sides" {
		t.Fatalf("unexpected categories after reload: %v", cats)
	}
	if o2, _ := s2.Orders().Get(ctx, o.ID()); o2 == nil || o2.Status() != domain.OrderCreated {
		t.Fatalf("unexpected order after reload: %v", o2)
	}

	// identities continue from the persisted sequence
	next := mustProduct(t, "Cola", "1.49")
	if err := s2.Products().AddOrUpdate(ctx, next); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if next.ID() != p.ID()+1 {
		t.Fatalf("expected id %d, got %d", p.ID()+1, next.ID())
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestFileStore_SnapshotLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if s.Path() != path {
		t.Fatalf("unexpected path %q", s.Path())
	}
	for _, name := range []string{"B", "A"} {
		if err := s.Products().AddOrUpdate(context.Background(), mustProduct(t, name, "1")); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	var snap fileSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatalf("file content is not a snapshot: %v", err)
	}
	if snap.Sequences.Product != 2 || len(snap.Products) != 2 || snap.Products[0].Name != "B" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestFileStore_LoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty file", "", false},
		{"not json", "{", true},
		{"invalid product", `{"products":[{"id":1,"name":"","description":"x","price":"1","createdOn":"2024-01-01T00:00:00Z","lastUpdated":"2024-01-01T00:00:00Z"}]}`, true},
		{"unknown order status", `{"orders":[{"id":1,"status":"Lost","createdOn":"2024-01-01T00:00:00Z","lastUpdated":"2024-01-01T00:00:00Z"}]}`, true},
		{"valid", `{"sequences":{"product":5},"products":[{"id":2,"name":"A","description":"x","price":"1","createdOn":"2024-01-01T00:00:00Z","lastUpdated":"2024-01-01T00:00:00Z"}]}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			_, err := NewFileStore(path)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for case %s", tc.name)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileStore_SequenceNeverMovesBackwards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	content := `{"sequences":{"product":5},"products":[{"id":2,"name":"A","description":"x","price":"1","createdOn":"2024-01-01T00:00:00Z","lastUpdated":"2024-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	p := mustProduct(t, "B", "1")
	if err := s.Products().AddOrUpdate(context.Background(), p); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if p.ID() != 6 {
		t.Fatalf("expected id 6, got %d", p.ID())
	}
}

func TestFileStore_FailedSnapshotDiscardsWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	// a directory where the temp snapshot goes makes the write fail
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := s.Products().AddOrUpdate(ctx, mustProduct(t, "Lost", "1")); err == nil {
		t.Fatalf("expected snapshot error")
	}
	all, err := s.Products().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("failed save is visible: %d products", len(all))
	}

	if err := os.Remove(path + ".tmp"); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	c, err := domain.NewCategory("Sides", "On the side", nil)
	if err != nil {
		t.Fatalf("NewCategory failed: %v", err)
	}
	if err := s.Categories().Save(ctx, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	products, err := reloaded.Products().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("failed save reached disk: %d products", len(products))
	}
	categories, err := reloaded.Categories().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected the category on disk, got %d", len(categories))
	}
}
