package models

import "time"

type Ticket struct {
	ID                   int64      `json:"id"`
	ProjectID            int64      `json:"projectId"`
	ProjectName          string     `json:"projectName"`
	Title                string     `json:"title"`
	Description          *string    `json:"description"`
	Type                 TicketType `json:"type"`
	Priority             Priority   `json:"priority"`
	Status               Status     `json:"status"`
	CreatedByID          int64      `json:"createdById"`
	CreatedByName        string     `json:"createdByName"`
	AssignedDeveloperIDs IDSet      `json:"assignedDeveloperIds"`
	TimeEstimate         *int       `json:"timeEstimate"` // hours
	CommentCount         int        `json:"commentCount"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticketId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
