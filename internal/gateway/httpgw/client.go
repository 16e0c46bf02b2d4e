// Package httpgw implements gateway.Gateway against the tracker REST API.
// Creation calls ignore the creator/author id: the server takes it from the
// bearer token.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

type Client struct {
	base  string
	token string
	hc    *http.Client
	log   zerolog.Logger
}

var (
	_ gateway.Gateway        = (*Client)(nil)
	_ gateway.AtomicAssigner = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l zerolog.Logger) Option    { return func(c *Client) { c.log = l } }
func WithTimeout(d time.Duration) Option    { return func(c *Client) { c.hc.Timeout = d } }

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		base:  baseURL,
		token: token,
		hc:    &http.Client{Timeout: 10 * time.Second},
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

// do sends one request. Non-2xx replies are turned back into apperr kinds
// from the error envelope; transport and decode failures are Gateway errors.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.Gateway(err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return apperr.Gateway(err, "%s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		return apperr.Gateway(err, "%s %s", method, path)
	}
	defer res.Body.Close()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).
		Dur("dur", time.Since(start)).Msg("api call")

	if res.StatusCode >= 400 {
		var env apperr.Body
		_ = json.NewDecoder(res.Body).Decode(&env)
		return apperr.FromStatus(res.StatusCode, env.Error.Message)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Gateway(err, "decode %s %s", method, path)
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, method, path string, in any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return get[[]models.User](ctx, c, "/api/users")
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return send[models.User](ctx, c, http.MethodGet, "/api/users/"+id(userID), nil)
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	return send[models.User](ctx, c, http.MethodGet, "/api/users/me", nil)
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (c *Client) ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error) {
	return get[[]models.Project](ctx, c, "/api/projects/user/"+id(userID))
}

func (c *Client) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	return get[[]models.Project](ctx, c, "/api/projects")
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	return send[models.Project](ctx, c, http.MethodGet, "/api/projects/"+id(projectID), nil)
}

func (c *Client) CreateProject(ctx context.Context, _ int64, in gateway.ProjectInput) (*models.Project, error) {
	return send[models.Project](ctx, c, http.MethodPost, "/api/projects", in)
}

func (c *Client) UpdateProject(ctx context.Context, projectID int64, in gateway.ProjectInput) (*models.Project, error) {
	return send[models.Project](ctx, c, http.MethodPut, "/api/projects/"+id(projectID), in)
}

func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+id(projectID), nil, nil)
}

func (c *Client) AddTeamMember(ctx context.Context, projectID, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/projects/%d/members/%d", projectID, userID), nil, nil)
}

func (c *Client) RemoveTeamMember(ctx context.Context, projectID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d/members/%d", projectID, userID), nil, nil)
}

// -----------------------------------------------------------------------------
// Tickets
// -----------------------------------------------------------------------------

func (c *Client) ListTicketsForProject(ctx context.Context, projectID int64) ([]models.Ticket, error) {
	return get[[]models.Ticket](ctx, c, "/api/tickets/project/"+id(projectID))
}

func (c *Client) ListTicketsForUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	return get[[]models.Ticket](ctx, c, "/api/tickets/user/"+id(userID))
}

func (c *Client) ListAllTickets(ctx context.Context) ([]models.Ticket, error) {
	return get[[]models.Ticket](ctx, c, "/api/tickets")
}

func (c *Client) GetTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	return send[models.Ticket](ctx, c, http.MethodGet, "/api/tickets/"+id(ticketID), nil)
}

func (c *Client) CreateTicket(ctx context.Context, _ int64, in gateway.TicketInput) (*models.Ticket, error) {
	return send[models.Ticket](ctx, c, http.MethodPost, "/api/tickets", in)
}

func (c *Client) UpdateTicket(ctx context.Context, ticketID int64, p gateway.TicketPatch) (*models.Ticket, error) {
	return send[models.Ticket](ctx, c, http.MethodPut, "/api/tickets/"+id(ticketID), p)
}

func (c *Client) DeleteTicket(ctx context.Context, ticketID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tickets/"+id(ticketID), nil, nil)
}

// AssignDeveloper posts the assignment. The server runs the same engine, so
// a first assignment on an OPEN ticket starts it there too.
func (c *Client) AssignDeveloper(ctx context.Context, ticketID, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tickets/%d/assign/%d", ticketID, userID), nil, nil)
}

// AssignDeveloperAndStart is AssignDeveloper: the server decides and applies
// the status change in one request.
func (c *Client) AssignDeveloperAndStart(ctx context.Context, ticketID, userID int64, _ bool) error {
	return c.AssignDeveloper(ctx, ticketID, userID)
}

func (c *Client) UnassignDeveloper(ctx context.Context, ticketID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tickets/%d/assign/%d", ticketID, userID), nil, nil)
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

type commentBody struct {
	TicketID int64  `json:"ticketId,omitempty"`
	Content  string `json:"content"`
}

func (c *Client) ListCommentsForTicket(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	return get[[]models.Comment](ctx, c, "/api/comments/ticket/"+id(ticketID))
}

func (c *Client) GetComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	return send[models.Comment](ctx, c, http.MethodGet, "/api/comments/"+id(commentID), nil)
}

func (c *Client) CreateComment(ctx context.Context, _ int64, ticketID int64, content string) (*models.Comment, error) {
	return send[models.Comment](ctx, c, http.MethodPost, "/api/comments", commentBody{TicketID: ticketID, Content: content})
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	return send[models.Comment](ctx, c, http.MethodPut, "/api/comments/"+id(commentID), commentBody{Content: content})
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+id(commentID), nil, nil)
}
