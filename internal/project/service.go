package project

import (
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	projectDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/project"
)

type RepositoryAPI interface {
	GetAll(orgID int64) ([]*projectDatamodel.Project, error)
	GetByID(id int64) (*projectDatamodel.Project, error)
	Create(project *projectDatamodel.Project) error
	Update(project *projectDatamodel.Project) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(orgID int64) ([]ProjectResponse, error) {
	rows, err := s.repo.GetAll(orgID)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, err
	}

	responses := make([]ProjectResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*ProjectResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrProjectNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreateProjectDTO) (*ProjectResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	env := dto.Environment
	if env == "" {
		env = "production"
	}

	row := ToDataModel(&Project{
		Name:           dto.Name,
		Description:    dto.Description,
		OrganizationID: dto.OrganizationID,
		TeamID:         dto.TeamID,
		RepositoryURL:  dto.RepositoryURL,
		Environment:    env,
		IsActive:       true,
	})
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create project", "name", dto.Name, "error", err)
		return nil, err
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Update(id int64, dto UpdateProjectDTO) (*ProjectResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrProjectNotFound
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.TeamID != nil {
		row.TeamID = *dto.TeamID
	}
	if dto.RepositoryURL != nil {
		row.RepositoryURL = *dto.RepositoryURL
	}
	if dto.Environment != nil {
		row.Environment = *dto.Environment
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update project", "project_id", id, "error", err)
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
		return internal.ErrProjectNotFound
	}
	return s.repo.Delete(id)
}
