package team

import (
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	teamDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/team"
)

type RepositoryAPI interface {
	GetAll(orgID int64) ([]*teamDatamodel.Team, error)
	GetByID(id int64) (*teamDatamodel.Team, error)
	Create(team *teamDatamodel.Team) error
	Update(team *teamDatamodel.Team) error
	Delete(id int64) error
	GetMembers(teamID int64) ([]*teamDatamodel.TeamMember, error)
	AddMember(member *teamDatamodel.TeamMember) error
	RemoveMember(teamID, userID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(orgID int64) ([]TeamResponse, error) {
	rows, err := s.repo.GetAll(orgID)
	if err != nil {
		s.logger.Error("failed to list teams", "error", err)
		return nil, err
	}

	responses := make([]TeamResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*TeamResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrTeamNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreateTeamDTO) (*TeamResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := ToDataModel(&Team{
		Name:           dto.Name,
		Description:    dto.Description,
		OrganizationID: dto.OrganizationID,
		IsActive:       true,
	})
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create team", "name", dto.Name, "error", err)
		return nil, err
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrTeamNotFound
	}
	return s.repo.Delete(id)
}

func (s *Service) Members(teamID int64) ([]MemberResponse, error) {
	if _, err := s.GetByID(teamID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(teamID)
	if err != nil {
		return nil, err
	}

	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, MemberResponse{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return responses, nil
}

func (s *Service) AddMember(teamID int64, dto AddMemberDTO) error {
	if dto.UserID <= 0 {
		return ValidationError{Msg: "user_id is required"}
	}
	if _, err := s.GetByID(teamID); err != nil {
		return err
	}

	role := dto.Role
	if role == "" {
		role = "member"
	}

	return s.repo.AddMember(&teamDatamodel.TeamMember{
		TeamID: teamID,
		UserID: dto.UserID,
		Role:   role,
	})
}

func (s *Service) RemoveMember(teamID, userID int64) error {
	if _, err := s.GetByID(teamID); err != nil {
		return err
	}
	return s.repo.RemoveMember(teamID, userID)
}
