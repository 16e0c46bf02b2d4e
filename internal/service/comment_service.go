package service

import (
	"context"
	"strings"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

type CommentService struct {
	gw gateway.Gateway
}

func NewCommentService(gw gateway.Gateway) *CommentService {
	return &CommentService{gw: gw}
}

// List returns the ticket's comments oldest first.
func (s *CommentService) List(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	return s.gw.ListCommentsForTicket(ctx, ticketID)
}

func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	return s.gw.GetComment(ctx, id)
}

func (s *CommentService) Create(ctx context.Context, actor models.Actor, ticketID int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("comment content is required")
	}
	if _, err := s.gw.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.gw.CreateComment(ctx, actor.UserID, ticketID, content)
}

func (s *CommentService) Update(ctx context.Context, actor models.Actor, id int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("comment content is required")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.gw.UpdateComment(ctx, id, content)
}

func (s *CommentService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.gw.DeleteComment(ctx, id)
}

// owned loads the comment and checks the actor wrote it or is an admin.
func (s *CommentService) owned(ctx context.Context, actor models.Actor, id int64) (*models.Comment, error) {
	c, err := s.gw.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only the author or an admin may change a comment")
	}
	return c, nil
}
