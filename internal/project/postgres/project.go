package postgres

import (
	"errors"

	"gorm.io/gorm"

	projectDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/project"
	"github.com/opsvista/opsvista/internal/project"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.RepositoryAPI {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetAll(orgID int64) ([]*projectDatamodel.Project, error) {
	query := r.db.Order("name ASC")
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var projects []*projectDatamodel.Project
	err := query.Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetByID(id int64) (*projectDatamodel.Project, error) {
	var row projectDatamodel.Project
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ProjectRepository) Create(row *projectDatamodel.Project) error {
	return r.db.Create(row).Error
}

func (r *ProjectRepository) Update(row *projectDatamodel.Project) error {
	return r.db.Save(row).Error
}

func (r *ProjectRepository) Delete(id int64) error {
	return r.db.Model(&projectDatamodel.Project{}).Where("id = ?", id).Update("is_active", false).Error
}
