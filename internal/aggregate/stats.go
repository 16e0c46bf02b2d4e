// Package aggregate derives read-only summaries and pages from ticket
// collections. Nothing here mutates its input.
package aggregate

import (
	"time"

	"bugtracker/internal/models"
	"bugtracker/internal/timeutil"
)

type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

func (c StatusCounts) Total() int { return c.Open + c.InProgress + c.Closed }

type TypeCounts struct {
	Bug           int `json:"bug"`
	Feature       int `json:"feature"`
	Enhancement   int `json:"enhancement"`
	Documentation int `json:"documentation"`
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func CountStatuses(tickets []models.Ticket) StatusCounts {
	var c StatusCounts
	for _, t := range tickets {
		switch t.Status {
		case models.StatusOpen:
			c.Open++
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusClosed:
			c.Closed++
		}
	}
	return c
}

func CountTypes(tickets []models.Ticket) TypeCounts {
	var c TypeCounts
	for _, t := range tickets {
		switch t.Type {
		case models.TypeBug:
			c.Bug++
		case models.TypeFeature:
			c.Feature++
		case models.TypeEnhancement:
			c.Enhancement++
		case models.TypeDocumentation:
			c.Documentation++
		}
	}
	return c
}

func CountPriorities(tickets []models.Ticket) PriorityCounts {
	var c PriorityCounts
	for _, t := range tickets {
		switch t.Priority {
		case models.PriorityLow:
			c.Low++
		case models.PriorityMedium:
			c.Medium++
		case models.PriorityHigh:
			c.High++
		}
	}
	return c
}

// DaysOutstanding is the whole days since the ticket was filed.
func DaysOutstanding(t models.Ticket, now time.Time) int {
	return timeutil.DaysSince(t.CreatedAt, now)
}

// Summary is what the dashboard and the reports endpoint show.
type Summary struct {
	Total      int            `json:"total"`
	Status     StatusCounts   `json:"status"`
	Type       TypeCounts     `json:"type"`
	Priority   PriorityCounts `json:"priority"`
	Unassigned int            `json:"unassigned"`
	// over tickets that are not CLOSED
	OldestOpenDays int     `json:"oldestOpenDays"`
	MeanOpenDays   float64 `json:"meanOpenDays"`
}

func Summarize(tickets []models.Ticket, now time.Time) Summary {
	s := Summary{
		Total:    len(tickets),
		Status:   CountStatuses(tickets),
		Type:     CountTypes(tickets),
		Priority: CountPriorities(tickets),
	}
	var open, days int
	for _, t := range tickets {
		if len(t.AssignedDeveloperIDs) == 0 {
			s.Unassigned++
		}
		if t.Status == models.StatusClosed {
			continue
		}
		d := DaysOutstanding(t, now)
		open++
		days += d
		if d > s.OldestOpenDays {
			s.OldestOpenDays = d
		}
	}
	if open > 0 {
		s.MeanOpenDays = float64(days) / float64(open)
	}
	return s
}

// Recent returns at most n leading items without copying the tail.
func Recent[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
