package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bugtracker/internal/models"
)

func projectsCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List your projects (--all for every project, admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []models.Project
				err  error
			)
			if all {
				list, err = a.projects.ListAll(cmd.Context(), a.actor)
			} else {
				list, err = a.projects.ListForUser(cmd.Context(), a.actor, a.actor.UserID)
			}
			if err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every project")
	return cmd
}

func projectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show, create and manage projects",
	}

	var name, desc string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project; you join its team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d *string
			if cmd.Flags().Changed("description") {
				d = &desc
			}
			p, err := a.projects.Create(cmd.Context(), a.actor, name, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created project #%d %s\n", p.ID, p.Name)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "project name")
	create.Flags().StringVar(&desc, "description", "", "project description")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a project with its tickets and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "project id")
			if err != nil {
				return err
			}
			d, err := a.views.ProjectDetails(cmd.Context(), id[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project #%d %s (owner %s, team %s)\n", d.Project.ID, d.Project.Name,
				d.Project.CreatedByName, joinIDs(d.Project.TeamMemberIDs))
			fmt.Fprintf(out, "%s\n\n", optional(d.Project.Description))
			printSummary(out, d.Summary)
			fmt.Fprintln(out)
			printTickets(out, d.Tickets)
			return nil
		},
	}

	member := func(use, short string, add bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := ids(args, "project id", "user id")
				if err != nil {
					return err
				}
				op := a.projects.RemoveMember
				if add {
					op = a.projects.AddMember
				}
				p, err := op(cmd.Context(), a.actor, id[0], id[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "project #%d team: %s\n", p.ID, joinIDs(p.TeamMemberIDs))
				return nil
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project with all its tickets (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "project id")
			if err != nil {
				return err
			}
			if err := a.projects.Delete(cmd.Context(), a.actor, id[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted project #%d\n", id[0])
			return nil
		},
	}

	cmd.AddCommand(create, show, del,
		member("add-member ID USER_ID", "Add a user to the team (admin)", true),
		member("remove-member ID USER_ID", "Remove a user from the team (admin)", false),
	)
	return cmd
}
