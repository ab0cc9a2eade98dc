package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"rbac_audit_log", "user_permissions", "team_members", "alerts", "pipelines", "clusters", "projects", "teams", "users", "organizations"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		orgID := seedOrganization(db, "Acme Platform", "acme-platform", "Main engineering organization")

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"admin@acme.dev", "Ada Admin", "super_admin"},
			{"orgadmin@acme.dev", "Olivia Orgadmin", "org_admin"},
			{"lead@acme.dev", "Liam Lead", "team_lead"},
			{"dev@acme.dev", "Devi Developer", "developer"},
			{"ops@acme.dev", "Omar Operator", "operator"},
			{"viewer@acme.dev", "Vera Viewer", "viewer"},
		}

		userIDs := make(map[string]int64, len(users))
		for _, u := range users {
			userIDs[u.Email] = seedUser(db, u.Email, u.Name, string(hash), u.Role, orgID)
		}

		// ad-hoc grants on top of role permissions
		grants := []struct {
			Email      string
			Permission string
		}{
			{"dev@acme.dev", "deployment:execute:staging"},
			{"viewer@acme.dev", "cost:read"},
		}
		for _, g := range grants {
			uid := userIDs[g.Email]
			var exists int
			if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission = ?", uid, g.Permission).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO user_permissions (user_id, permission, granted_by, granted_at) VALUES (?, ?, ?, now())",
				uid, g.Permission, userIDs["admin@acme.dev"]).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", g.Permission, g.Email, err)
			}
			fmt.Printf("Granted %s to %s\n", g.Permission, g.Email)
		}

		seedPlatformData(db, orgID, userIDs)

		fmt.Println("Seeding complete. All users authenticate with password:", password)
	},
}

func seedOrganization(db *gorm.DB, name, slug, description string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM organizations WHERE slug = ?", slug).Row().Scan(&id); err == nil {
		fmt.Println("organization already exists:", slug)
		return id
	}

	if err := db.Exec("INSERT INTO organizations (name, slug, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		name, slug, description).Error; err != nil {
		log.Fatalf("failed to insert organization: %v", err)
	}
	if err := db.Raw("SELECT id FROM organizations WHERE slug = ?", slug).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup organization id: %v", err)
	}
	fmt.Println("Seeded organization:", slug)
	return id
}

func seedUser(db *gorm.DB, email, name, passwordHash, role string, orgID int64) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
		fmt.Println("user already exists:", email)
		return id
	}

	if err := db.Exec("INSERT INTO users (email, name, password_hash, role, organization_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
		email, name, passwordHash, role, orgID).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup user id for %s: %v", email, err)
	}
	fmt.Printf("Seeded user: %s (%s)\n", email, role)
	return id
}

func seedPlatformData(db *gorm.DB, orgID int64, userIDs map[string]int64) {
	var count int64
	db.Raw("SELECT count(*) FROM teams WHERE organization_id = ?", orgID).Row().Scan(&count)
	if count > 0 {
		fmt.Println("platform data already seeded")
		return
	}

	if err := db.Exec("INSERT INTO teams (name, description, organization_id, created_at, updated_at) VALUES ('platform', 'Platform engineering', ?, now(), now())", orgID).Error; err != nil {
		log.Fatalf("failed to insert team: %v", err)
	}
	var teamID int64
	if err := db.Raw("SELECT id FROM teams WHERE name = 'platform' AND organization_id = ?", orgID).Row().Scan(&teamID); err != nil {
		log.Fatalf("failed to lookup team id: %v", err)
	}
	for _, email := range []string{"lead@acme.dev", "dev@acme.dev", "ops@acme.dev"} {
		role := "member"
		if email == "lead@acme.dev" {
			role = "lead"
		}
		if err := db.Exec("INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, now())",
			teamID, userIDs[email], role).Error; err != nil {
			log.Fatalf("failed to insert team member %s: %v", email, err)
		}
	}

	if err := db.Exec("INSERT INTO projects (name, description, repository_url, environment, team_id, organization_id, created_at, updated_at) VALUES ('api-gateway', 'Public API gateway', 'https://git.acme.dev/acme/api-gateway', 'production', ?, ?, now(), now())",
		teamID, orgID).Error; err != nil {
		log.Fatalf("failed to insert project: %v", err)
	}
	var projectID int64
	if err := db.Raw("SELECT id FROM projects WHERE name = 'api-gateway' AND organization_id = ?", orgID).Row().Scan(&projectID); err != nil {
		log.Fatalf("failed to lookup project id: %v", err)
	}

	pipelines := []struct {
		Name   string
		Branch string
	}{
		{"api-gateway-deploy", "main"},
		{"api-gateway-preview", "develop"},
		{"api-gateway-nightly", "main"},
	}
	for _, p := range pipelines {
		if err := db.Exec("INSERT INTO pipelines (name, project_id, branch, status, created_at, updated_at) VALUES (?, ?, ?, 'idle', now(), now())",
			p.Name, projectID, p.Branch).Error; err != nil {
			log.Fatalf("failed to insert pipeline %s: %v", p.Name, err)
		}
	}

	clusters := []struct {
		Name     string
		Provider string
		Region   string
		Nodes    int
	}{
		{"prod-us-east", "aws", "us-east-1", 12},
		{"prod-eu-west", "aws", "eu-west-1", 8},
		{"staging", "gcp", "europe-west4", 3},
	}
	for _, c := range clusters {
		if err := db.Exec("INSERT INTO clusters (name, provider, region, node_count, ready_nodes, health, is_active, organization_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 'healthy', true, ?, now(), now())",
			c.Name, c.Provider, c.Region, c.Nodes, c.Nodes, orgID).Error; err != nil {
			log.Fatalf("failed to insert cluster %s: %v", c.Name, err)
		}
	}

	alerts := []struct {
		Title    string
		Severity string
		Source   string
	}{
		{"High error rate on api-gateway", "critical", "prometheus"},
		{"Disk usage above 80% on db-01", "warning", "node-exporter"},
		{"Certificate expires in 14 days", "info", "cert-renewer"},
	}
	for _, a := range alerts {
		if err := db.Exec("INSERT INTO alerts (title, severity, status, source, organization_id, created_at, updated_at) VALUES (?, ?, 'firing', ?, ?, now(), now())",
			a.Title, a.Severity, a.Source, orgID).Error; err != nil {
			log.Fatalf("failed to insert alert %s: %v", a.Title, err)
		}
	}

	fmt.Println("Seeded team, project, pipelines, clusters and alerts")
}
