package project

import (
	"strings"
	"time"

	projectDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/project"
)

type Project struct {
	ID             int64
	Name           string
	Description    string
	OrganizationID int64
	TeamID         int64
	RepositoryURL  string
	Environment    string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateProjectDTO struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	OrganizationID int64  `json:"organization_id"`
	TeamID         int64  `json:"team_id"`
	RepositoryURL  string `json:"repository_url"`
	Environment    string `json:"environment"`
}

func (d CreateProjectDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.OrganizationID <= 0 {
		return ValidationError{Msg: "organization_id is required"}
	}
	return nil
}

type UpdateProjectDTO struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	TeamID        *int64  `json:"team_id"`
	RepositoryURL *string `json:"repository_url"`
	Environment   *string `json:"environment"`
	IsActive      *bool   `json:"is_active"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type ProjectResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	TeamID         int64     `json:"team_id,omitempty"`
	RepositoryURL  string    `json:"repository_url,omitempty"`
	Environment    string    `json:"environment"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		OrganizationID: p.OrganizationID,
		TeamID:         p.TeamID,
		RepositoryURL:  p.RepositoryURL,
		Environment:    p.Environment,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		OrganizationID: p.OrganizationID,
		TeamID:         p.TeamID,
		RepositoryURL:  p.RepositoryURL,
		Environment:    p.Environment,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		OrganizationID: p.OrganizationID,
		TeamID:         p.TeamID,
		RepositoryURL:  p.RepositoryURL,
		Environment:    p.Environment,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
