package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"answerking/store"
)

// capture stdout during cobra execution
func captureOutput(f func() error) (string, error) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	err := f()

	w.Close()
	os.Stdout = old
	return <-done, err
}

// reset cobra + global state between tests
func resetCLI() {
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
	dataStore = nil
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	resetFlags(rootCmd)
	viper.Reset()
	bindConfig()
}

// useMemoryStore injects a fresh store. Commands run through rootCmd.Execute
// so the injected store survives between them.
func useMemoryStore(t *testing.T) {
	t.Helper()
	resetCLI()
	dataStore = store.NewInMemoryStore()
	t.Cleanup(resetCLI)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := captureOutput(func() error {
		rootCmd.SetArgs(args)
		defer resetFlags(rootCmd)
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func executeErr(args ...string) error {
	_, err := captureOutput(func() error {
		rootCmd.SetArgs(args)
		defer resetFlags(rootCmd)
		return rootCmd.Execute()
	})
	return err
}

// menuCategory creates the category products in a test are filed under.
func menuCategory(t *testing.T) {
	t.Helper()
	execute(t, "category", "create", "--name", "Menu", "--description", "Everything we sell")
}

type productOut struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Categories  []int64         `json:"categories"`
	Tags        []int64         `json:"tags"`
	Retired     bool            `json:"retired"`
}

type groupOut struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Products []int64 `json:"products"`
	Retired  bool    `json:"retired"`
}

type orderOut struct {
	ID        int64  `json:"id"`
	Status    string `json:"orderStatus"`
	LineItems []struct {
		Product struct {
			ID    int64           `json:"id"`
			Price decimal.Decimal `json:"price"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"lineItems"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

type paymentOut struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
	Change  decimal.Decimal `json:"change"`
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid output %q: %v", out, err)
	}
	return v
}
