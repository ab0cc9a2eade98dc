package postgres

import (
	"errors"

	"gorm.io/gorm"

	orgDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/organization"
	"github.com/opsvista/opsvista/internal/organization"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetAll() ([]*orgDatamodel.Organization, error) {
	var orgs []*orgDatamodel.Organization
	err := r.db.Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) GetByID(id int64) (*orgDatamodel.Organization, error) {
	var row orgDatamodel.Organization
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *OrganizationRepository) GetBySlug(slug string) (*orgDatamodel.Organization, error) {
	var row orgDatamodel.Organization
	err := r.db.Where("slug = ?", slug).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *OrganizationRepository) Create(row *orgDatamodel.Organization) error {
	return r.db.Create(row).Error
}

func (r *OrganizationRepository) Update(row *orgDatamodel.Organization) error {
	return r.db.Save(row).Error
}

func (r *OrganizationRepository) Delete(id int64) error {
	return r.db.Model(&orgDatamodel.Organization{}).Where("id = ?", id).Update("is_active", false).Error
}
