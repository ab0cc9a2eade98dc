package team

import (
	"strings"
	"time"

	teamDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/team"
)

type Team struct {
	ID             int64
	Name           string
	Description    string
	OrganizationID int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateTeamDTO struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	OrganizationID int64  `json:"organization_id"`
}

func (d CreateTeamDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.OrganizationID <= 0 {
		return ValidationError{Msg: "organization_id is required"}
	}
	return nil
}

type AddMemberDTO struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type TeamResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type TeamsResponse struct {
	Teams []TeamResponse `json:"teams"`
	Total int            `json:"total"`
}

func (t *Team) ToResponse() TeamResponse {
	return TeamResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt,
	}
}

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
