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
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	rootCmd.AddCommand(tagCmd)

	var name, description string
	var products []int64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tag",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("name required")
			}
			t, err := svc.tags.CreateTag(ctx, service.TagRequest{
				Name:        name,
				Description: description,
				ProductIDs:  toIDs[domain.ProductID](products),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "name")
	createCmd.Flags().StringVar(&description, "description", "", "description")
	createCmd.Flags().Int64SliceVar(&products, "product", nil, "product id (repeatable)")
	tagCmd.AddCommand(createCmd)

	tagCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get tag by id",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.TagID](args[0])
			if err != nil {
				return err
			}
			t, err := svc.tags.GetTag(ctx, id)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, t)
		}),
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "find <name>",
		Short: "Find a tag by name",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			t, err := svc.tags.GetTagByName(ctx, args[0])
			if err != nil {
				return reportNotFound(cmd, err)
			}
			return printJSON(cmd, t)
		}),
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			ts, err := svc.tags.GetTags(ctx)
			if err != nil {
				return err
			}
			for _, t := range ts {
				fmt.Fprintf(cmd.OutOrStdout(), "%d | %s | %s | %t\n",
					t.ID(), t.Name(), joinInts(t.Products()), t.Retired())
			}
			return nil
		}),
	})

	var uName, uDescription string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.TagID](args[0])
			if err != nil {
				return err
			}
			t, err := svc.tags.GetTag(ctx, id)
			if err != nil {
				return err
			}
			req := service.TagRequest{Name: t.Name(), Description: t.Description()}
			if cmd.Flags().Changed("name") {
				req.Name = uName
			}
			if cmd.Flags().Changed("description") {
				req.Description = uDescription
			}
			updated, err := svc.tags.UpdateTag(ctx, id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, updated)
		}),
	}
	updateCmd.Flags().StringVar(&uName, "name", "", "name")
	updateCmd.Flags().StringVar(&uDescription, "description", "", "description")
	tagCmd.AddCommand(updateCmd)

	// add-products and remove-products share their flag shape
	membership := func(use, short string, apply func(*services) func(context.Context, domain.TagID, []domain.ProductID) (*domain.Tag, error)) {
		var ids []int64
		c := &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
				id, err := parseID[domain.TagID](args[0])
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					return errors.New("--product required")
				}
				t, err := apply(svc)(ctx, id, toIDs[domain.ProductID](ids))
				if err != nil {
					return err
				}
				return printJSON(cmd, t)
			}),
		}
		c.Flags().Int64SliceVar(&ids, "product", nil, "product id (repeatable)")
		tagCmd.AddCommand(c)
	}
	membership("add-products", "Tag products", func(s *services) func(context.Context, domain.TagID, []domain.ProductID) (*domain.Tag, error) {
		return s.tags.AddProducts
	})
	membership("remove-products", "Untag products", func(s *services) func(context.Context, domain.TagID, []domain.ProductID) (*domain.Tag, error) {
		return s.tags.RemoveProducts
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "retire <id>",
		Short: "Retire an empty tag",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.TagID](args[0])
			if err != nil {
				return err
			}
			t, err := svc.tags.RetireTag(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		}),
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "unretire <id>",
		Short: "Bring a retired tag back",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			id, err := parseID[domain.TagID](args[0])
			if err != nil {
				return err
			}
			t, err := svc.tags.UnretireTag(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		}),
	})
}
