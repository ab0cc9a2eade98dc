package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/opsvista/opsvista/internal/cluster"
	clusterDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/cluster"
)

type ClusterRepository struct {
	db *gorm.DB
}

func NewClusterRepository(db *gorm.DB) cluster.RepositoryAPI {
	return &ClusterRepository{db: db}
}

func (r *ClusterRepository) GetAll(orgID int64) ([]*clusterDatamodel.Cluster, error) {
	query := r.db.Order("name ASC")
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var clusters []*clusterDatamodel.Cluster
	err := query.Find(&clusters).Error
	return clusters, err
}

func (r *ClusterRepository) GetByID(id int64) (*clusterDatamodel.Cluster, error) {
	var row clusterDatamodel.Cluster
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ClusterRepository) Create(row *clusterDatamodel.Cluster) error {
	return r.db.Create(row).Error
}

func (r *ClusterRepository) Update(row *clusterDatamodel.Cluster) error {
	return r.db.Save(row).Error
}

func (r *ClusterRepository) Delete(id int64) error {
	return r.db.Model(&clusterDatamodel.Cluster{}).Where("id = ?", id).Update("is_active", false).Error
}
