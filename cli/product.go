package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"answerking/domain"
	"answerking/service"
)

func init() {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}
	rootCmd.AddCommand(productCmd)

	// create
	var name, description, price string
	var categories []int64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("name required")
			}
			amount, err := parseMoney("price", price)
			if err != nil {
				return err
			}
			p, err := svc.products.CreateProduct(ctx, service.ProductRequest{
				Name:        name,
				Description: description,
				Price:       amount,
				CategoryIDs: toIDs[domain.CategoryID](categories),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "name")
	createCmd.Flags().StringVar(&description, "description", "", "description")
	createCmd.Flags().StringVar(&price, "price", "0", "price")
	createCmd.Flags().Int64SliceVar(&categories, "category", nil, "category id (repeatable, at least one)")
	productCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get product by id",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.ProductID](args[0])
			if err != nil {
				return err
			}
			p, err := svc.products.GetProduct(ctx, id)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, p)
		}),
	}
	productCmd.AddCommand(getCmd)

	// update
	var uName, uDescription, uPrice string
	var uCategories []int64
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.ProductID](args[0])
			if err != nil {
				return err
			}
			p, err := svc.products.GetProduct(ctx, id)
			if err != nil {
				return err
			}

			req := service.ProductRequest{
				Name:        p.Name(),
				Description: p.Description(),
				Price:       p.Price(),
				CategoryIDs: p.Categories(),
			}
			if cmd.Flags().Changed("name") {
				req.Name = uName
			}
			if cmd.Flags().Changed("description") {
				req.Description = uDescription
			}
			if cmd.Flags().Changed("price") {
				if req.Price, err = parseMoney("price", uPrice); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("category") {
				req.CategoryIDs = toIDs[domain.CategoryID](uCategories)
			}

			updated, err := svc.products.UpdateProduct(ctx, id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, updated)
		}),
	}
	updateCmd.Flags().StringVar(&uName, "name", "", "name")
	updateCmd.Flags().StringVar(&uDescription, "description", "", "description")
	updateCmd.Flags().StringVar(&uPrice, "price", "", "price")
	updateCmd.Flags().Int64SliceVar(&uCategories, "category", nil, "replacement category ids")
	productCmd.AddCommand(updateCmd)

	// list
	var lCategory, lTag int64
	var lMin, lMax, lSort, lOrder, lOutput string
	var lRetired bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			filter := service.ProductFilter{
				CategoryID:     domain.CategoryID(lCategory),
				TagID:          domain.TagID(lTag),
				IncludeRetired: lRetired,
				SortBy:         lSort,
				Order:          lOrder,
			}
			if cmd.Flags().Changed("min-price") {
				v, err := parseMoney("min price", lMin)
				if err != nil {
					return err
				}
				filter.MinPrice = &v
			}
			if cmd.Flags().Changed("max-price") {
				v, err := parseMoney("max price", lMax)
				if err != nil {
					return err
				}
				filter.MaxPrice = &v
			}
			out, err := svc.products.ListProducts(ctx, filter)
			if err != nil {
				return err
			}
			if lOutput == "json" {
				return printJSON(cmd, out)
			}
			for _, p := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "%d | %s | %s | %s | %t\n",
					p.ID(), p.Name(), p.Price().StringFixed(2), joinInts(p.Categories()), p.Retired())
			}
			return nil
		}),
	}
	listCmd.Flags().Int64Var(&lCategory, "category", 0, "category id")
	listCmd.Flags().Int64Var(&lTag, "tag", 0, "tag id")
	listCmd.Flags().StringVar(&lMin, "min-price", "", "min price")
	listCmd.Flags().StringVar(&lMax, "max-price", "", "max price")
	listCmd.Flags().StringVar(&lSort, "sort-by", "", "sort field: id|name|price")
	listCmd.Flags().StringVar(&lOrder, "order", "asc", "sort order")
	listCmd.Flags().BoolVar(&lRetired, "include-retired", false, "include retired products")
	listCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	productCmd.AddCommand(listCmd)

	// retire
	var force bool
	retireCmd := &cobra.Command{
		Use:   "retire <id>",
		Short: "Retire a product",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.ProductID](args[0])
			if err != nil {
				return err
			}
			if !force && !confirm(cmd, cmd.InOrStdin(), fmt.Sprintf("Retire product %d?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			p, err := svc.products.RetireProduct(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	retireCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	productCmd.AddCommand(retireCmd)

	// import
	var importFile string
	importCmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Import products from JSON or NDJSON",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return errors.New("--file required")
			}
			b, err := os.ReadFile(importFile)
			if err != nil {
				return err
			}
			reqs, err := decodeProductRequests(b)
			if err != nil {
				return err
			}
			created, err := svc.products.ImportProducts(ctx, reqs)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d products\n", len(created), len(reqs))
			return err
		}),
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "input file")
	productCmd.AddCommand(importCmd)

	// export
	var exportFile string
	var exportCategory int64
	exportCmd := &cobra.Command{
		Use:   "export --file <file>",
		Short: "Export products to JSON",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if exportFile == "" {
				return errors.New("--file required")
			}
			out, err := svc.products.ListProducts(ctx, service.ProductFilter{
				CategoryID: domain.CategoryID(exportCategory),
			})
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(exportFile, b, 0o644)
		}),
	}
	exportCmd.Flags().StringVar(&exportFile, "file", "", "output file")
	exportCmd.Flags().Int64Var(&exportCategory, "category", 0, "category id")
	productCmd.AddCommand(exportCmd)
}

// decodeProductRequests accepts a JSON array, a single object or NDJSON.
func decodeProductRequests(b []byte) ([]service.ProductRequest, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty file")
	}

	var reqs []service.ProductRequest
	if b[0] == '[' {
		if err := json.Unmarshal(b, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	for {
		var req service.ProductRequest
		err := dec.Decode(&req)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

