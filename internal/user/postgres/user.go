package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/user"
	"github.com/opsvista/opsvista/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll(orgID int64) ([]*userDatamodel.User, error) {
	query := r.db.Order("email ASC")
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var users []*userDatamodel.User
	err := query.Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) Create(row *userDatamodel.User) error {
	return r.db.Create(row).Error
}

func (r *UserRepository) Update(row *userDatamodel.User) error {
	return r.db.Save(row).Error
}
