package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bugtracker/internal/aggregate"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
)

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show ticket stats and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.views.Dashboard(cmd.Context(), a.actor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSummary(out, d.Summary)
			fmt.Fprintf(out, "\nRecent projects (%d of %d)\n", len(d.RecentProjects), len(d.Projects))
			printProjects(out, d.RecentProjects)
			fmt.Fprintf(out, "\nRecent tickets (%d of %d)\n", len(d.RecentTickets), len(d.Tickets))
			printTickets(out, d.RecentTickets)
			return nil
		},
	}
}

func ticketsCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List the tickets you can see, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.views.TicketList(cmd.Context(), a.actor)
			if err != nil {
				return err
			}
			size := a.cfg.PageSize
			if size <= 0 {
				size = aggregate.DefaultPageSize
			}
			p := l.Page(page, size)
			out := cmd.OutOrStdout()
			printTickets(out, p.Items)
			fmt.Fprintf(out, "\nPage %d of %d (%d tickets)\n", p.Page.Page, max(p.TotalPages, 1), p.TotalItems)
			if line := pageLine(p.Window, p.TotalPages); line != "" {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func ticketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Show, create and move tickets",
	}
	cmd.AddCommand(
		ticketShowCmd(a),
		ticketCreateCmd(a),
		ticketUpdateCmd(a),
		ticketActionCmd("close ID", "Close a ticket (admin)", a.closeTicket),
		ticketActionCmd("reopen ID", "Reopen a closed ticket (admin)", a.reopenTicket),
		ticketAssignCmd(a, "assign ID USER_ID", "Assign a developer (admin)", true),
		ticketAssignCmd(a, "unassign ID USER_ID", "Remove a developer (admin)", false),
		ticketDeleteCmd(a),
	)
	return cmd
}

func (a *app) closeTicket(cmd *cobra.Command, id int64) (*models.Ticket, error) {
	return a.tickets.CloseTicket(cmd.Context(), a.actor, id)
}

func (a *app) reopenTicket(cmd *cobra.Command, id int64) (*models.Ticket, error) {
	return a.tickets.ReopenTicket(cmd.Context(), a.actor, id)
}

func ticketShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a ticket with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "ticket id")
			if err != nil {
				return err
			}
			d, err := a.views.TicketDetails(cmd.Context(), id[0])
			if err != nil {
				return err
			}
			printTicketDetails(cmd.OutOrStdout(), d, a.now())
			return nil
		},
	}
}

func ticketCreateCmd(a *app) *cobra.Command {
	var (
		projectID     int64
		title, desc   string
		typ, prio     string
		estimateHours int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a new ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.NewTicket{ProjectID: projectID, Title: title}
			var err error
			if in.Type, err = models.ParseType(typ); err != nil {
				return err
			}
			if in.Priority, err = models.ParsePriority(prio); err != nil {
				return err
			}
			if cmd.Flags().Changed("description") {
				in.Description = &desc
			}
			if cmd.Flags().Changed("estimate") {
				in.TimeEstimate = &estimateHours
			}
			t, err := a.tickets.CreateTicket(cmd.Context(), a.actor, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created ticket #%d (%s)\n", t.ID, t.Status.Label())
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	cmd.Flags().StringVar(&title, "title", "", "ticket title")
	cmd.Flags().StringVar(&desc, "description", "", "ticket description")
	cmd.Flags().StringVar(&typ, "type", "", "BUG|FEATURE|ENHANCEMENT|DOCUMENTATION (default BUG)")
	cmd.Flags().StringVar(&prio, "priority", "", "LOW|MEDIUM|HIGH (default MEDIUM)")
	cmd.Flags().IntVar(&estimateHours, "estimate", 0, "time estimate in hours")
	return cmd
}

func ticketUpdateCmd(a *app) *cobra.Command {
	var (
		title, desc, typ, prio, status string
		estimateHours                  int
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit ticket fields; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "ticket id")
			if err != nil {
				return err
			}
			var p gateway.TicketPatch
			f := cmd.Flags()
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("description") {
				p.Description = &desc
			}
			if f.Changed("type") {
				v, err := models.ParseType(typ)
				if err != nil {
					return err
				}
				p.Type = &v
			}
			if f.Changed("priority") {
				v, err := models.ParsePriority(prio)
				if err != nil {
					return err
				}
				p.Priority = &v
			}
			if f.Changed("status") {
				v, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				p.Status = &v
			}
			if f.Changed("estimate") {
				p.TimeEstimate = &estimateHours
			}
			t, err := a.tickets.UpdateTicket(cmd.Context(), a.actor, id[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated ticket #%d (%s)\n", t.ID, t.Status.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringVar(&typ, "type", "", "new type")
	cmd.Flags().StringVar(&prio, "priority", "", "new priority")
	cmd.Flags().StringVar(&status, "status", "", "new status (admin)")
	cmd.Flags().IntVar(&estimateHours, "estimate", 0, "new time estimate in hours")
	return cmd
}

func ticketActionCmd(use, short string, op func(*cobra.Command, int64) (*models.Ticket, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "ticket id")
			if err != nil {
				return err
			}
			t, err := op(cmd, id[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket #%d is %s\n", t.ID, t.Status.Label())
			return nil
		},
	}
}

func ticketAssignCmd(a *app, use, short string, assign bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "ticket id", "user id")
			if err != nil {
				return err
			}
			op := a.tickets.UnassignDeveloper
			if assign {
				op = a.tickets.AssignDeveloper
			}
			t, err := op(cmd.Context(), a.actor, id[0], id[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket #%d is %s, assigned: %s\n", t.ID, t.Status.Label(), joinIDs(t.AssignedDeveloperIDs))
			return nil
		},
	}
}

func ticketDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ticket and its comments (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids(args, "ticket id")
			if err != nil {
				return err
			}
			if err := a.tickets.DeleteTicket(cmd.Context(), a.actor, id[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted ticket #%d\n", id[0])
			return nil
		},
	}
}
