package user

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/opsvista/opsvista/internal"
	userDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/user"
	"github.com/opsvista/opsvista/internal/rbac"
)

type RepositoryAPI interface {
	GetAll(orgID int64) ([]*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	Create(user *userDatamodel.User) error
	Update(user *userDatamodel.User) error
}

type Service struct {
	repo       RepositoryAPI
	registry   *rbac.Registry
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, registry *rbac.Registry, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, registry: registry, bcryptCost: bcryptCost, logger: logger}
}

func (s *Service) List(orgID int64) ([]UserResponse, error) {
	rows, err := s.repo.GetAll(orgID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	responses := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*UserResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := dto.Role
	if role == "" {
		role = "viewer"
	}
	if _, ok := s.registry.Get(role); !ok {
		return nil, internal.NewValidationError("unknown role "+role, internal.ErrCodeUnknownRole)
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, internal.NewConflictError("email already registered", internal.ErrCodeValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Email:          dto.Email,
		Name:           dto.Name,
		PasswordHash:   string(hash),
		Role:           role,
		OrganizationID: dto.OrganizationID,
		IsActive:       true,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "role", role)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*UserResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Role != nil {
		if _, ok := s.registry.Get(*dto.Role); !ok {
			return nil, internal.NewValidationError("unknown role "+*dto.Role, internal.ErrCodeUnknownRole)
		}
		row.Role = *dto.Role
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, err
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Deactivate(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrUserNotFound
	}
	row.IsActive = false
	return s.repo.Update(row)
}
