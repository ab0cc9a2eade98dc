package organization

import (
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	orgDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/organization"
)

type RepositoryAPI interface {
	GetAll() ([]*orgDatamodel.Organization, error)
	GetByID(id int64) (*orgDatamodel.Organization, error)
	GetBySlug(slug string) (*orgDatamodel.Organization, error)
	Create(org *orgDatamodel.Organization) error
	Update(org *orgDatamodel.Organization) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List() ([]OrganizationResponse, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, err
	}

	responses := make([]OrganizationResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*OrganizationResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrOrganizationNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreateOrganizationDTO) (*OrganizationResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	slug := Slugify(dto.Name)
	if existing, err := s.repo.GetBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, internal.NewConflictError("organization already exists", internal.ErrCodeValidationFailed)
	}

	row := ToDataModel(&Organization{
		Name:        dto.Name,
		Slug:        slug,
		Description: dto.Description,
		IsActive:    true,
	})
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create organization", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("organization created", "organization_id", row.ID, "slug", slug)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Update(id int64, dto UpdateOrganizationDTO) (*OrganizationResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrOrganizationNotFound
	}

	if dto.Name != nil {
		row.Name = *dto.Name
		row.Slug = Slugify(*dto.Name)
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update organization", "organization_id", id, "error", err)
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
		return internal.ErrOrganizationNotFound
	}
	return s.repo.Delete(id)
}
