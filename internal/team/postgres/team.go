package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	teamDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/team"
	"github.com/opsvista/opsvista/internal/team"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetAll(orgID int64) ([]*teamDatamodel.Team, error) {
	query := r.db.Order("name ASC")
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var teams []*teamDatamodel.Team
	err := query.Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) GetByID(id int64) (*teamDatamodel.Team, error) {
	var row teamDatamodel.Team
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TeamRepository) Create(row *teamDatamodel.Team) error {
	return r.db.Create(row).Error
}

func (r *TeamRepository) Update(row *teamDatamodel.Team) error {
	return r.db.Save(row).Error
}

func (r *TeamRepository) Delete(id int64) error {
	return r.db.Model(&teamDatamodel.Team{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *TeamRepository) GetMembers(teamID int64) ([]*teamDatamodel.TeamMember, error) {
	var members []*teamDatamodel.TeamMember
	err := r.db.Where("team_id = ?", teamID).Order("joined_at ASC").Find(&members).Error
	return members, err
}

func (r *TeamRepository) AddMember(member *teamDatamodel.TeamMember) error {
	// Re-adding an existing member is a no-op.
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *TeamRepository) RemoveMember(teamID, userID int64) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&teamDatamodel.TeamMember{}).Error
}
