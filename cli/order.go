package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"answerking/domain"
)

func init() {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}
	rootCmd.AddCommand(orderCmd)

	var createItems []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			req, err := parseItems(createItems)
			if err != nil {
				return err
			}
			o, err := svc.orders.CreateOrder(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		}),
	}
	createCmd.Flags().StringArrayVar(&createItems, "item", nil, "line item as productId:quantity (repeatable)")
	orderCmd.AddCommand(createCmd)

	orderCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get order by id",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.OrderID](args[0])
			if err != nil {
				return err
			}
			o, err := svc.orders.GetOrder(ctx, id)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, o)
		}),
	})

	orderCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			orders, err := svc.orders.GetOrders(ctx)
			if err != nil {
				return err
			}
			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%d | %s | %d | %s\n",
					o.ID(), o.Status(), len(o.LineItems()), o.OrderTotal().StringFixed(2))
			}
			return nil
		}),
	})

	// update sets the order's full content
	var updateItems []string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the line items of an order",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.OrderID](args[0])
			if err != nil {
				return err
			}
			req, err := parseItems(updateItems)
			if err != nil {
				return err
			}
			o, err := svc.orders.UpdateOrder(ctx, id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		}),
	}
	updateCmd.Flags().StringArrayVar(&updateItems, "item", nil, "line item as productId:quantity (repeatable)")
	orderCmd.AddCommand(updateCmd)

	orderCmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.OrderID](args[0])
			if err != nil {
				return err
			}
			o, err := svc.orders.CancelOrder(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		}),
	})
}

