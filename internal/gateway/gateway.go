// Package gateway defines the contract the tracker core uses to read and write
// entities. Implementations live in subpackages (memory, HTTP client) and in
// repository/postgres; the core never knows which one it is talking to.
package gateway

import (
	"context"

	"bugtracker/internal/models"
)

type ProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type TicketInput struct {
	ProjectID    int64             `json:"projectId"`
	Title        string            `json:"title"`
	Description  *string           `json:"description"`
	Type         models.TicketType `json:"type"`
	Priority     models.Priority   `json:"priority"`
	TimeEstimate *int              `json:"timeEstimate"`
}

// TicketPatch carries only the fields being changed; nil means untouched.
type TicketPatch struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Type         *models.TicketType `json:"type,omitempty"`
	Priority     *models.Priority   `json:"priority,omitempty"`
	Status       *models.Status     `json:"status,omitempty"`
	TimeEstimate *int               `json:"timeEstimate,omitempty"`
}

func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil &&
		p.Priority == nil && p.Status == nil && p.TimeEstimate == nil
}

type Gateway interface {
	// users
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// projects
	ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error)
	ListAllProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, creatorID int64, in ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, in ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	AddTeamMember(ctx context.Context, projectID, userID int64) error
	RemoveTeamMember(ctx context.Context, projectID, userID int64) error

	// tickets
	ListTicketsForProject(ctx context.Context, projectID int64) ([]models.Ticket, error)
	ListTicketsForUser(ctx context.Context, userID int64) ([]models.Ticket, error)
	ListAllTickets(ctx context.Context) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	CreateTicket(ctx context.Context, creatorID int64, in TicketInput) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, p TicketPatch) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
	AssignDeveloper(ctx context.Context, ticketID, userID int64) error
	UnassignDeveloper(ctx context.Context, ticketID, userID int64) error

	// comments
	ListCommentsForTicket(ctx context.Context, ticketID int64) ([]models.Comment, error)
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	CreateComment(ctx context.Context, authorID, ticketID int64, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// AtomicAssigner is an optional capability: add the developer and, when start
// is set, move the ticket to IN_PROGRESS as one unit of work.
type AtomicAssigner interface {
	AssignDeveloperAndStart(ctx context.Context, ticketID, userID int64, start bool) error
}
