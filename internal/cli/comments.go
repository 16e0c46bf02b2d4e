package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func commentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, edit and delete ticket comments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add TICKET_ID TEXT...",
			Short: "Comment on a ticket",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := ids(args, "ticket id")
				if err != nil {
					return err
				}
				c, err := a.comments.Create(cmd.Context(), a.actor, id[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added comment #%d\n", c.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit ID TEXT...",
			Short: "Replace the text of your comment",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := ids(args, "comment id")
				if err != nil {
					return err
				}
				c, err := a.comments.Update(cmd.Context(), a.actor, id[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated comment #%d\n", c.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete your comment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := ids(args, "comment id")
				if err != nil {
					return err
				}
				if err := a.comments.Delete(cmd.Context(), a.actor, id[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted comment #%d\n", id[0])
				return nil
			},
		},
	)
	return cmd
}
