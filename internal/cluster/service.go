package cluster

import (
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	clusterDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/cluster"
)

type RepositoryAPI interface {
	GetAll(orgID int64) ([]*clusterDatamodel.Cluster, error)
	GetByID(id int64) (*clusterDatamodel.Cluster, error)
	Create(cluster *clusterDatamodel.Cluster) error
	Update(cluster *clusterDatamodel.Cluster) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(orgID int64) ([]ClusterResponse, error) {
	rows, err := s.repo.GetAll(orgID)
	if err != nil {
		s.logger.Error("failed to list clusters", "error", err)
		return nil, err
	}

	responses := make([]ClusterResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*ClusterResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrClusterNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreateClusterDTO) (*ClusterResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	domain := &Cluster{
		Name:           dto.Name,
		Provider:       dto.Provider,
		Region:         dto.Region,
		OrganizationID: dto.OrganizationID,
		NodeCount:      dto.NodeCount,
		ReadyNodes:     dto.NodeCount,
		Version:        dto.Version,
		IsActive:       true,
	}
	domain.RecalculateHealth()

	row := ToDataModel(domain)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to register cluster", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("cluster registered", "cluster_id", row.ID, "name", row.Name)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Update(id int64, dto UpdateClusterDTO) (*ClusterResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrClusterNotFound
	}

	domain := FromDataModel(row)
	if dto.NodeCount != nil {
		domain.NodeCount = *dto.NodeCount
	}
	if dto.ReadyNodes != nil {
		domain.ReadyNodes = *dto.ReadyNodes
	}
	if dto.Version != nil {
		domain.Version = *dto.Version
	}
	if dto.IsActive != nil {
		domain.IsActive = *dto.IsActive
	}
	domain.RecalculateHealth()

	if err := s.repo.Update(ToDataModel(domain)); err != nil {
		s.logger.Error("failed to update cluster", "cluster_id", id, "error", err)
		return nil, err
	}
	resp := domain.ToResponse()
	return &resp, nil
}

func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrClusterNotFound
	}
	return s.repo.Delete(id)
}
