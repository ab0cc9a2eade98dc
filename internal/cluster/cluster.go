package cluster

import (
	"strings"
	"time"

	clusterDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/cluster"
)

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthUnknown  = "unknown"
)

type Cluster struct {
	ID             int64
	Name           string
	Provider       string
	Region         string
	OrganizationID int64
	NodeCount      int
	ReadyNodes     int
	Version        string
	Health         string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecalculateHealth derives health from node readiness.
func (c *Cluster) RecalculateHealth() {
	switch {
	case c.NodeCount == 0:
		c.Health = HealthUnknown
	case c.ReadyNodes >= c.NodeCount:
		c.Health = HealthHealthy
	default:
		c.Health = HealthDegraded
	}
}

type CreateClusterDTO struct {
	Name           string `json:"name"`
	Provider       string `json:"provider"`
	Region         string `json:"region"`
	OrganizationID int64  `json:"organization_id"`
	NodeCount      int    `json:"node_count"`
	Version        string `json:"version"`
}

func (d CreateClusterDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.OrganizationID <= 0 {
		return ValidationError{Msg: "organization_id is required"}
	}
	if d.NodeCount < 0 {
		return ValidationError{Msg: "node_count cannot be negative"}
	}
	return nil
}

type UpdateClusterDTO struct {
	NodeCount  *int    `json:"node_count"`
	ReadyNodes *int    `json:"ready_nodes"`
	Version    *string `json:"version"`
	IsActive   *bool   `json:"is_active"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type ClusterResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Provider       string    `json:"provider,omitempty"`
	Region         string    `json:"region,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	NodeCount      int       `json:"node_count"`
	ReadyNodes     int       `json:"ready_nodes"`
	Version        string    `json:"version,omitempty"`
	Health         string    `json:"health"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type ClustersResponse struct {
	Clusters []ClusterResponse `json:"clusters"`
	Total    int               `json:"total"`
}

func (c *Cluster) ToResponse() ClusterResponse {
	return ClusterResponse{
		ID:             c.ID,
		Name:           c.Name,
		Provider:       c.Provider,
		Region:         c.Region,
		OrganizationID: c.OrganizationID,
		NodeCount:      c.NodeCount,
		ReadyNodes:     c.ReadyNodes,
		Version:        c.Version,
		Health:         c.Health,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

func ToDataModel(c *Cluster) *clusterDatamodel.Cluster {
	return &clusterDatamodel.Cluster{
		ID:             c.ID,
		Name:           c.Name,
		Provider:       c.Provider,
		Region:         c.Region,
		OrganizationID: c.OrganizationID,
		NodeCount:      c.NodeCount,
		ReadyNodes:     c.ReadyNodes,
		Version:        c.Version,
		Health:         c.Health,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromDataModel(c *clusterDatamodel.Cluster) *Cluster {
	return &Cluster{
		ID:             c.ID,
		Name:           c.Name,
		Provider:       c.Provider,
		Region:         c.Region,
		OrganizationID: c.OrganizationID,
		NodeCount:      c.NodeCount,
		ReadyNodes:     c.ReadyNodes,
		Version:        c.Version,
		Health:         c.Health,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
