package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductCreateGetListUpdateRetire(t *testing.T) {
	useMemoryStore(t)
	menuCategory(t)

	// CREATE
	created := decode[productOut](t, execute(t, "product", "create",
		"--name", "Fries", "--description", "Salted", "--price", "1.99", "--category", "1"))
	if created.ID != 1 || created.Name != "Fries" {
		t.Fatalf("unexpected created product: %+v", created)
	}

	// GET
	got := decode[productOut](t, execute(t, "product", "get", "1"))
	if !got.Price.Equal(decimal.RequireFromString("1.99")) {
		t.Fatalf("got price %s", got.Price)
	}

	// LIST
	out := execute(t, "product", "list")
	if !strings.Contains(out, "1 | Fries | 1.99") {
		t.Fatalf("list output missing product: %q", out)
	}

	// UPDATE keeps what was not given
	updated := decode[productOut](t, execute(t, "product", "update", "1", "--price", "2.49"))
	if updated.Name != "Fries" || updated.Description != "Salted" {
		t.Fatalf("update dropped fields: %+v", updated)
	}
	if !updated.Price.Equal(decimal.RequireFromString("2.49")) {
		t.Fatalf("update price = %s", updated.Price)
	}

	// RETIRE
	retired := decode[productOut](t, execute(t, "product", "retire", "1", "--force"))
	if !retired.Retired {
		t.Fatalf("expected retired product")
	}
	if out := execute(t, "product", "list"); out != "" {
		t.Fatalf("retired product listed by default: %q", out)
	}
	if out := execute(t, "product", "list", "--include-retired"); !strings.Contains(out, "Fries") {
		t.Fatalf("--include-retired should list it: %q", out)
	}
}

func TestProductGetMissingIsNotAnError(t *testing.T) {
	useMemoryStore(t)

	if out := execute(t, "product", "get", "42"); out != "" {
		t.Fatalf("expected nothing on stdout, got %q", out)
	}
	if err := executeErr("product", "get", "abc"); err == nil {
		t.Fatalf("expected error for malformed id")
	}
}

func TestProductRejections(t *testing.T) {
	useMemoryStore(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"product", "create", "--description", "d", "--price", "1", "--category", "1"}},
		{"no category", []string{"product", "create", "--name", "n", "--description", "d", "--price", "1"}},
		{"bad price", []string{"product", "create", "--name", "n", "--description", "d", "--price", "cheap"}},
		{"negative price", []string{"product", "create", "--name", "n", "--description", "d", "--price", "-1"}},
		{"unknown category", []string{"product", "create", "--name", "n", "--description", "d", "--price", "1", "--category", "9"}},
		{"update missing", []string{"product", "update", "5", "--name", "x"}},
		{"bad min price", []string{"product", "list", "--min-price", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := executeErr(tt.args...); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCategoryAndProductLinks(t *testing.T) {
	useMemoryStore(t)

	category := decode[groupOut](t, execute(t, "category", "create", "--name", "Sides", "--description", "On the side"))
	product := decode[productOut](t, execute(t, "product", "create",
		"--name", "Fries", "--description", "Salted", "--price", "1.99", "--category", "1"))
	if len(product.Categories) != 1 || product.Categories[0] != category.ID {
		t.Fatalf("product categories = %v", product.Categories)
	}

	got := decode[groupOut](t, execute(t, "category", "get", "1"))
	if len(got.Products) != 1 || got.Products[0] != product.ID {
		t.Fatalf("category products = %v", got.Products)
	}

	out := execute(t, "product", "list", "--category", "1", "--output", "json")
	listed := decode[[]productOut](t, out)
	if len(listed) != 1 {
		t.Fatalf("expected one product in category, got %d", len(listed))
	}

	// a category that still holds products cannot be retired
	if err := executeErr("category", "retire", "1"); err == nil {
		t.Fatalf("expected retire of non-empty category to fail")
	}
	execute(t, "product", "retire", "1", "--force")
	retired := decode[groupOut](t, execute(t, "category", "retire", "1"))
	if !retired.Retired || len(retired.Products) != 0 {
		t.Fatalf("unexpected retired category: %+v", retired)
	}
}

func TestTagMembership(t *testing.T) {
	useMemoryStore(t)

	menuCategory(t)
	execute(t, "product", "create", "--name", "Cola", "--description", "Fizzy", "--price", "1.49", "--category", "1")
	tag := decode[groupOut](t, execute(t, "tag", "create", "--name", "Vegan", "--description", "Plant based"))

	added := decode[groupOut](t, execute(t, "tag", "add-products", "1", "--product", "1"))
	if len(added.Products) != 1 {
		t.Fatalf("tag products = %v", added.Products)
	}
	found := decode[groupOut](t, execute(t, "tag", "find", "vegan"))
	if found.ID != tag.ID {
		t.Fatalf("find returned tag %d", found.ID)
	}

	if err := executeErr("tag", "add-products", "1"); err == nil {
		t.Fatalf("expected --product to be required")
	}
	removed := decode[groupOut](t, execute(t, "tag", "remove-products", "1", "--product", "1"))
	if len(removed.Products) != 0 {
		t.Fatalf("tag products after remove = %v", removed.Products)
	}

	retired := decode[groupOut](t, execute(t, "tag", "retire", "1"))
	if !retired.Retired {
		t.Fatalf("expected retired tag")
	}
	back := decode[groupOut](t, execute(t, "tag", "unretire", "1"))
	if back.Retired {
		t.Fatalf("expected tag back in use")
	}
}

func TestOrderAndPaymentFlow(t *testing.T) {
	useMemoryStore(t)

	menuCategory(t)
	execute(t, "product", "create", "--name", "Whopper", "--description", "Big", "--price", "5.50", "--category", "1")
	execute(t, "product", "create", "--name", "Fries", "--description", "Salted", "--price", "1.50", "--category", "1")

	order := decode[orderOut](t, execute(t, "order", "create", "--item", "1:2", "--item", "2"))
	if order.Status != "Created" || len(order.LineItems) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.OrderTotal.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("order total = %s", order.OrderTotal)
	}

	// price change after ordering does not touch the snapshot
	execute(t, "product", "update", "1", "--price", "9.99")
	order = decode[orderOut](t, execute(t, "order", "update", "1", "--item", "1:1", "--item", "2:1"))
	if !order.LineItems[0].Product.Price.Equal(decimal.RequireFromString("5.50")) {
		t.Fatalf("snapshot price changed to %s", order.LineItems[0].Product.Price)
	}

	if err := executeErr("payment", "pay", "--order", "1", "--amount", "1"); err == nil {
		t.Fatalf("expected underpayment to fail")
	}
	payment := decode[paymentOut](t, execute(t, "payment", "pay", "--order", "1", "--amount", "10"))
	if !payment.Change.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("change = %s", payment.Change)
	}

	paid := decode[orderOut](t, execute(t, "order", "get", "1"))
	if paid.Status != "Paid" {
		t.Fatalf("order status = %s", paid.Status)
	}
	if err := executeErr("order", "cancel", "1"); err == nil {
		t.Fatalf("expected cancel of paid order to fail")
	}
	if err := executeErr("payment", "pay", "--order", "1", "--amount", "10"); err == nil {
		t.Fatalf("expected second payment to fail")
	}

	if out := execute(t, "payment", "list"); !strings.Contains(out, "1 | 1 | 10.00 | 3.00") {
		t.Fatalf("payment list = %q", out)
	}
	if out := execute(t, "order", "list"); !strings.Contains(out, "1 | Paid | 2 | 7.00") {
		t.Fatalf("order list = %q", out)
	}
}

func TestOrderCancel(t *testing.T) {
	useMemoryStore(t)

	menuCategory(t)
	execute(t, "product", "create", "--name", "Cola", "--description", "Fizzy", "--price", "1.49", "--category", "1")
	execute(t, "order", "create", "--item", "1:3")
	cancelled := decode[orderOut](t, execute(t, "order", "cancel", "1"))
	if cancelled.Status != "Cancelled" {
		t.Fatalf("status = %s", cancelled.Status)
	}
	if err := executeErr("payment", "pay", "--order", "1", "--amount", "10"); err == nil {
		t.Fatalf("expected payment for cancelled order to fail")
	}
}

func TestSeedCommand(t *testing.T) {
	useMemoryStore(t)

	if out := execute(t, "seed"); !strings.Contains(out, "seeded") {
		t.Fatalf("seed output = %q", out)
	}
	if out := execute(t, "seed"); !strings.Contains(out, "nothing seeded") {
		t.Fatalf("second seed output = %q", out)
	}
	if out := execute(t, "product", "list"); !strings.Contains(out, "Whopper") {
		t.Fatalf("seeded catalog missing: %q", out)
	}
}

func TestShell(t *testing.T) {
	useMemoryStore(t)

	rootCmd.SetIn(strings.NewReader(
		"category create --name Sides --description Sides\n" +
			"product create --name Fries --description Salted --price 1.99 --category 1\n" +
			"product get 1\n" +
			"not-a-command\n" +
			"exit\n"))
	out := execute(t, "shell")
	if strings.Count(out, `"name": "Fries"`) != 2 {
		t.Fatalf("shell output = %q", out)
	}
	if strings.Count(out, "answerking> ") != 5 {
		t.Fatalf("expected five prompts: %q", out)
	}
}

func TestFileStoreAcrossExecutions(t *testing.T) {
	resetCLI()
	t.Cleanup(resetCLI)
	path := filepath.Join(t.TempDir(), "data", "answerking.json")

	_, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"--store", "file", "--store-file", path, "--seed",
			"product", "create", "--name", "Cola Zero", "--description", "Fizzy", "--price", "1.49", "--category", "3"})
		return Execute()
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resetCLI()

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"--store", "file", "--store-file", path, "product", "list"})
		return Execute()
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Cola Zero") {
		t.Fatalf("product not persisted: %q", out)
	}
}

func TestSQLiteStoreWithSeed(t *testing.T) {
	resetCLI()
	t.Cleanup(resetCLI)
	dsn := filepath.Join(t.TempDir(), "answerking.db")

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"--store", "sqlite", "--dsn", dsn, "--seed", "tag", "find", "bogof"})
		return Execute()
	})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	tag := decode[groupOut](t, out)
	if tag.Name != "BOGOF" || len(tag.Products) != 2 {
		t.Fatalf("unexpected tag: %+v", tag)
	}
	if dataStore != nil {
		t.Fatalf("Execute should close and clear the store")
	}
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    [][2]int64
		wantErr bool
	}{
		{"id and quantity", []string{"3:2"}, [][2]int64{{3, 2}}, false},
		{"bare id", []string{"7"}, [][2]int64{{7, 1}}, false},
		{"several", []string{"1:1", " 2 : 4 "}, [][2]int64{{1, 1}, {2, 4}}, false},
		{"none", nil, nil, false},
		{"bad id", []string{"x:1"}, nil, true},
		{"zero id", []string{"0:1"}, nil, true},
		{"bad quantity", []string{"1:many"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseItems(tt.specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(req.LineItems) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(req.LineItems), len(tt.want))
			}
			for i, w := range tt.want {
				li := req.LineItems[i]
				if int64(li.ProductID) != w[0] || int64(li.Quantity) != w[1] {
					t.Fatalf("item %d = %+v, want %v", i, li, w)
				}
			}
		})
	}
}
