package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"answerking/store"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Write the starter catalog into an empty store",
		RunE: run(func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error {
			seeded, err := store.Seed(ctx, dataStore)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has products; nothing seeded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded")
			return nil
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(cmd.InOrStdin())
			for {
				fmt.Fprint(cmd.OutOrStdout(), "answerking> ")
				line, err := r.ReadString('\n')
				line = strings.TrimSpace(line)
				if line == "exit" || line == "quit" {
					return nil
				}
				if line != "" && line != "shell" {
					rootCmd.SetArgs(strings.Fields(line))
					if err := rootCmd.ExecuteContext(commandContext(cmd)); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
					}
					rootCmd.SetArgs(nil)
					resetFlags(rootCmd)
				}
				if err != nil {
					return nil
				}
			}
		},
	})
}
