package services

import (
	"context"
	"strings"

	"imovelBack/internal/models"
	"imovelBack/internal/normalize"
	"imovelBack/internal/repositories"

	"errors"
)

type TeamService struct {
	TeamRepo *repositories.TeamRepository
	UserRepo *repositories.UserRepository
}

// CreateTeam makes the caller the owner and first member. A broker
// can belong to at most one team.
func (s *TeamService) CreateTeam(ctx context.Context, ownerID int, req models.CreateTeamRequest) (models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.Team{}, errors.New("team name is required")
	}

	owner, err := s.UserRepo.GetUserByID(ctx, ownerID)
	if err != nil {
		return models.Team{}, err
	}
	if owner.TeamID != nil {
		return models.Team{}, models.ErrAlreadyInTeam
	}

	team, err := s.TeamRepo.CreateTeam(ctx, models.Team{
		Name:        strings.TrimSpace(req.Name),
		OwnerUserID: ownerID,
	})
	if err != nil {
		return models.Team{}, err
	}

	if err := s.UserRepo.SetTeam(ctx, ownerID, &team.ID); err != nil {
		return models.Team{}, err
	}
	return s.TeamRepo.GetTeamByID(ctx, team.ID)
}

func (s *TeamService) GetTeamByID(ctx context.Context, id int) (models.Team, error) {
	return s.TeamRepo.GetTeamByID(ctx, id)
}

// AddMember joins a user, looked up by email, to the caller's team.
// Owner-only.
func (s *TeamService) AddMember(ctx context.Context, callerID, teamID int, req models.TeamMemberRequest) (models.Team, error) {
	team, err := s.TeamRepo.GetTeamByID(ctx, teamID)
	if err != nil {
		return models.Team{}, err
	}
	if team.OwnerUserID != callerID {
		return models.Team{}, models.ErrNotTeamOwner
	}

	member, err := s.UserRepo.GetUserByEmail(ctx, normalize.Email(req.Email))
	if err != nil {
		return models.Team{}, err
	}
	if member.TeamID != nil {
		return models.Team{}, models.ErrAlreadyInTeam
	}

	if err := s.UserRepo.SetTeam(ctx, member.ID, &teamID); err != nil {
		return models.Team{}, err
	}
	return s.TeamRepo.GetTeamByID(ctx, teamID)
}

// RemoveMember detaches a member. The owner can remove anyone;
// members can remove themselves (leave).
func (s *TeamService) RemoveMember(ctx context.Context, callerID, teamID, memberID int) error {
	team, err := s.TeamRepo.GetTeamByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerUserID != callerID && callerID != memberID {
		return models.ErrNotTeamOwner
	}
	if team.OwnerUserID == memberID {
		return errors.New("the owner cannot leave their own team")
	}

	member, err := s.UserRepo.GetUserByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.TeamID == nil || *member.TeamID != teamID {
		return models.ErrNoRecord
	}

	return s.UserRepo.SetTeam(ctx, memberID, nil)
}

func (s *TeamService) DeleteTeam(ctx context.Context, callerID, teamID int) error {
	team, err := s.TeamRepo.GetTeamByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerUserID != callerID {
		return models.ErrNotTeamOwner
	}
	return s.TeamRepo.DeleteTeam(ctx, teamID)
}
