package models

import "time"

type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	CreatedByID   int64     `json:"createdById"`
	CreatedByName string    `json:"createdByName"`
	TeamMemberIDs IDSet     `json:"teamMemberIds"`
	TicketCount   int       `json:"ticketCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
