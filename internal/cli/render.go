package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"bugtracker/internal/aggregate"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
	"bugtracker/internal/timeutil"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func estimate(h *int) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%dh", *h)
}

func joinIDs(set models.IDSet) string {
	if len(set) == 0 {
		return "-"
	}
	parts := make([]string, len(set))
	for i, id := range set {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func printTickets(w io.Writer, tickets []models.Ticket) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tTYPE\tPROJECT\tTITLE\tASSIGNED")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status.Label(), t.Priority, t.Type, t.ProjectName, t.Title, joinIDs(t.AssignedDeveloperIDs))
	}
	tw.Flush()
}

func printProjects(w io.Writer, projects []models.Project) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tTICKETS\tTEAM")
	for _, p := range projects {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.CreatedByName, p.TicketCount, joinIDs(p.TeamMemberIDs))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s aggregate.Summary) {
	tw := table(w)
	fmt.Fprintf(tw, "Total\t%d\n", s.Total)
	fmt.Fprintf(tw, "Open / In progress / Closed\t%d / %d / %d\n", s.Status.Open, s.Status.InProgress, s.Status.Closed)
	fmt.Fprintf(tw, "Bug / Feature / Enhancement / Docs\t%d / %d / %d / %d\n",
		s.Type.Bug, s.Type.Feature, s.Type.Enhancement, s.Type.Documentation)
	fmt.Fprintf(tw, "Low / Medium / High\t%d / %d / %d\n", s.Priority.Low, s.Priority.Medium, s.Priority.High)
	fmt.Fprintf(tw, "Unassigned\t%d\n", s.Unassigned)
	fmt.Fprintf(tw, "Oldest open\t%d days\n", s.OldestOpenDays)
	fmt.Fprintf(tw, "Mean open age\t%.1f days\n", s.MeanOpenDays)
	tw.Flush()
}

// pageLine renders the selector, e.g. "< 1 ... 4 5 [6] 7 8 ... 20 >".
func pageLine(win aggregate.Window, totalPages int) string {
	if !win.Visible {
		return ""
	}
	var parts []string
	if win.HasPrevious {
		parts = append(parts, "<")
	}
	if win.ShowFirst {
		parts = append(parts, "1")
		if win.LeadingEllipsis {
			parts = append(parts, "...")
		}
	}
	for _, p := range win.Pages {
		if p == win.Current {
			parts = append(parts, fmt.Sprintf("[%d]", p))
		} else {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	if win.ShowLast {
		if win.TrailingEllipsis {
			parts = append(parts, "...")
		}
		parts = append(parts, fmt.Sprint(totalPages))
	}
	if win.HasNext {
		parts = append(parts, ">")
	}
	return strings.Join(parts, " ")
}

func printTicketDetails(w io.Writer, d *service.TicketDetails, now time.Time) {
	t := d.Ticket
	tw := table(w)
	fmt.Fprintf(tw, "Ticket\t#%d %s\n", t.ID, t.Title)
	fmt.Fprintf(tw, "Project\t%s\n", t.ProjectName)
	fmt.Fprintf(tw, "Status\t%s\n", t.Status.Label())
	fmt.Fprintf(tw, "Type / Priority\t%s / %s\n", t.Type, t.Priority)
	fmt.Fprintf(tw, "Estimate\t%s\n", estimate(t.TimeEstimate))
	fmt.Fprintf(tw, "Assigned\t%s\n", joinIDs(t.AssignedDeveloperIDs))
	fmt.Fprintf(tw, "Reporter\t%s\n", t.CreatedByName)
	fmt.Fprintf(tw, "Created\t%s (%s, %d days outstanding)\n", timeutil.FormatDate(t.CreatedAt), d.Age, d.DaysOutstanding)
	fmt.Fprintf(tw, "Updated\t%s\n", timeutil.FormatDateTime(t.UpdatedAt))
	fmt.Fprintf(tw, "Description\t%s\n", optional(t.Description))
	tw.Flush()

	if len(d.Comments) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Comments (%d)\n", len(d.Comments))
	for _, c := range d.Comments {
		fmt.Fprintf(w, "  #%d %s, %s\n    %s\n", c.ID, c.UserName, timeutil.TimeAgo(c.CreatedAt, now), c.Content)
	}
}
