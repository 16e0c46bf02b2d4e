package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

type ProjectService struct {
	gw  gateway.Gateway
	log zerolog.Logger
}

func NewProjectService(gw gateway.Gateway, log zerolog.Logger) *ProjectService {
	return &ProjectService{gw: gw, log: log}
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	return s.gw.GetProject(ctx, id)
}

// ListForUser lists the projects userID is a team member of. Non-admins may
// only ask about themselves.
func (s *ProjectService) ListForUser(ctx context.Context, actor models.Actor, userID int64) ([]models.Project, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, apperr.Forbidden("cannot list projects of another user")
	}
	return s.gw.ListProjectsForUser(ctx, userID)
}

func (s *ProjectService) ListAll(ctx context.Context, actor models.Actor) ([]models.Project, error) {
	if err := requireAdmin(actor, "list all projects"); err != nil {
		return nil, err
	}
	return s.gw.ListAllProjects(ctx)
}

func cleanProjectInput(name string, description *string) (gateway.ProjectInput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return gateway.ProjectInput{}, apperr.Validation("project name is required")
	}
	return gateway.ProjectInput{Name: name, Description: trimOptional(description)}, nil
}

// Create files a project owned by the actor, who also joins its team.
func (s *ProjectService) Create(ctx context.Context, actor models.Actor, name string, description *string) (*models.Project, error) {
	in, err := cleanProjectInput(name, description)
	if err != nil {
		return nil, err
	}
	if _, err := s.gw.GetUser(ctx, actor.UserID); err != nil {
		return nil, err
	}
	p, err := s.gw.CreateProject(ctx, actor.UserID, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("project", p.ID).Int64("by", actor.UserID).Msg("project created")
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, actor models.Actor, id int64, name string, description *string) (*models.Project, error) {
	in, err := cleanProjectInput(name, description)
	if err != nil {
		return nil, err
	}
	cur, err := s.gw.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && cur.CreatedByID != actor.UserID {
		return nil, apperr.Forbidden("only the project owner or an admin may edit it")
	}
	if _, err := s.gw.UpdateProject(ctx, id, in); err != nil {
		return nil, err
	}
	return s.gw.GetProject(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := requireAdmin(actor, "delete projects"); err != nil {
		return err
	}
	if err := s.gw.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("project", id).Int64("by", actor.UserID).Msg("project deleted")
	return nil
}

func (s *ProjectService) AddMember(ctx context.Context, actor models.Actor, projectID, userID int64) (*models.Project, error) {
	return s.member(ctx, actor, projectID, userID, true)
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor models.Actor, projectID, userID int64) (*models.Project, error) {
	return s.member(ctx, actor, projectID, userID, false)
}

func (s *ProjectService) member(ctx context.Context, actor models.Actor, projectID, userID int64, add bool) (*models.Project, error) {
	if err := requireAdmin(actor, "manage project teams"); err != nil {
		return nil, err
	}
	p, err := s.gw.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gw.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if p.TeamMemberIDs.Contains(userID) == add {
		return p, nil
	}
	if add {
		err = s.gw.AddTeamMember(ctx, projectID, userID)
	} else {
		err = s.gw.RemoveTeamMember(ctx, projectID, userID)
	}
	if err != nil {
		return nil, err
	}
	return s.gw.GetProject(ctx, projectID)
}
