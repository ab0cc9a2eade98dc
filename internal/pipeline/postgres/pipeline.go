package postgres

import (
	"errors"

	"gorm.io/gorm"

	pipelineDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/pipeline"
	"github.com/opsvista/opsvista/internal/pipeline"
)

type PipelineRepository struct {
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) pipeline.RepositoryAPI {
	return &PipelineRepository{db: db}
}

func (r *PipelineRepository) GetAll(projectID int64) ([]*pipelineDatamodel.Pipeline, error) {
	query := r.db.Order("name ASC")
	if projectID > 0 {
		query = query.Where("project_id = ?", projectID)
	}

	var pipelines []*pipelineDatamodel.Pipeline
	err := query.Find(&pipelines).Error
	return pipelines, err
}

func (r *PipelineRepository) GetByID(id int64) (*pipelineDatamodel.Pipeline, error) {
	var row pipelineDatamodel.Pipeline
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PipelineRepository) Create(row *pipelineDatamodel.Pipeline) error {
	return r.db.Create(row).Error
}

func (r *PipelineRepository) Update(row *pipelineDatamodel.Pipeline) error {
	return r.db.Save(row).Error
}

func (r *PipelineRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&pipelineDatamodel.Pipeline{}).Error
}
