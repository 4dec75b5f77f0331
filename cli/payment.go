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
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Take and inspect payments",
	}
	rootCmd.AddCommand(paymentCmd)

	var orderID int64
	var amount string
	payCmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay for an order",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if orderID <= 0 {
				return errors.New("--order required")
			}
			paid, err := parseMoney("amount", amount)
			if err != nil {
				return err
			}
			p, err := svc.payments.MakePayment(ctx, service.PaymentRequest{
				OrderID: domain.OrderID(orderID),
				Amount:  paid,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	payCmd.Flags().Int64Var(&orderID, "order", 0, "order id")
	payCmd.Flags().StringVar(&amount, "amount", "0", "amount tendered")
	paymentCmd.AddCommand(payCmd)

	paymentCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get payment by id",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.PaymentID](args[0])
			if err != nil {
				return err
			}
			p, err := svc.payments.GetPayment(ctx, id)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, p)
		}),
	})

	paymentCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List payments",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			ps, err := svc.payments.GetPayments(ctx)
			if err != nil {
				return err
			}
			for _, p := range ps {
				fmt.Fprintf(cmd.OutOrStdout(), "%d | %d | %s | %s\n",
					p.ID(), p.OrderID(), p.Amount().StringFixed(2), p.Change().StringFixed(2))
			}
			return nil
		}),
	})
}
