package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"answerking/domain"
	"answerking/service"
)

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// reportNotFound prints a not-found error to stderr and swallows it.
func reportNotFound(cmd *cobra.Command, err error) error {
	if service.KindOf(err) == service.KindNotFound {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return nil
	}
	return err
}

func parseID[T ~int64](s string) (T, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return T(n), nil
}

func toIDs[T ~int64](ns []int64) []T {
	out := make([]T, len(ns))
	for i, n := range ns {
		out[i] = T(n)
	}
	return out
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}

// parseItems reads "productId:quantity" pairs. A bare id orders one.
func parseItems(items []string) (service.OrderRequest, error) {
	var req service.OrderRequest
	for _, item := range items {
		idPart, qtyPart, hasQty := strings.Cut(item, ":")
		id, err := parseID[domain.ProductID](idPart)
		if err != nil {
			return req, fmt.Errorf("invalid item %q: %w", item, err)
		}
		qty := 1
		if hasQty {
			if qty, err = strconv.Atoi(strings.TrimSpace(qtyPart)); err != nil {
				return req, fmt.Errorf("invalid item %q: quantity is not a number", item)
			}
		}
		req.LineItems = append(req.LineItems, service.LineItemRequest{ProductID: id, Quantity: qty})
	}
	return req, nil
}

func joinInts[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

func confirm(cmd *cobra.Command, in io.Reader, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", prompt)
	var resp string
	if _, err := fmt.Fscanln(in, &resp); err != nil {
		return false
	}
	return resp == "y" || resp == "Y"
}
