package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"answerking/domain"
	"answerking/service"
)

func init() {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	rootCmd.AddCommand(categoryCmd)

	var name, description string
	var products []int64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("name required")
			}
			c, err := svc.categories.CreateCategory(ctx, service.CategoryRequest{
				Name:        name,
				Description: description,
				ProductIDs:  toIDs[domain.ProductID](products),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, c)
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "name")
	createCmd.Flags().StringVar(&description, "description", "", "description")
	createCmd.Flags().Int64SliceVar(&products, "product", nil, "product id (repeatable)")
	categoryCmd.AddCommand(createCmd)

	categoryCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get category by id",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.CategoryID](args[0])
			if err != nil {
				return err
			}
			c, err := svc.categories.GetCategory(ctx, id)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, c)
		}),
	})

	categoryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			cs, err := svc.categories.GetCategories(ctx)
			if err != nil {
				return err
			}
			for _, c := range cs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d | %s | %s | %t\n",
					c.ID(), c.Name(), joinInts(c.Products()), c.Retired())
			}
			return nil
		}),
	})

	// update replaces the whole category; flags left unset keep their
	// current value.
	var uName, uDescription string
	var uProducts []int64
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.CategoryID](args[0])
			if err != nil {
				return err
			}
			c, err := svc.categories.GetCategory(ctx, id)
			if err != nil {
				return err
			}
			req := service.CategoryRequest{Name: c.Name(), Description: c.Description(), ProductIDs: c.Products()}
			if cmd.Flags().Changed("name") {
				req.Name = uName
			}
			if cmd.Flags().Changed("description") {
				req.Description = uDescription
			}
			if cmd.Flags().Changed("product") {
				req.ProductIDs = toIDs[domain.ProductID](uProducts)
			}
			updated, err := svc.categories.UpdateCategory(ctx, id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, updated)
		}),
	}
	updateCmd.Flags().StringVar(&uName, "name", "", "name")
	updateCmd.Flags().StringVar(&uDescription, "description", "", "description")
	updateCmd.Flags().Int64SliceVar(&uProducts, "product", nil, "replacement product ids")
	categoryCmd.AddCommand(updateCmd)

	categoryCmd.AddCommand(&cobra.Command{
		Use:   "retire <id>",
		Short: "Retire an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.CategoryID](args[0])
			if err != nil {
				return err
			}
			c, err := svc.categories.RetireCategory(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, c)
		}),
	})
}
