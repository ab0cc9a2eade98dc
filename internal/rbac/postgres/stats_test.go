package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	rbacPostgres "github.com/opsvista/opsvista/internal/rbac/postgres"
)

var _ = Describe("Stats Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *rbacPostgres.StatsRepository
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE rbac_audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			organization_id INTEGER,
			permission TEXT NOT NULL,
			granted BOOLEAN NOT NULL,
			reason TEXT,
			ip_address TEXT,
			user_agent TEXT,
			checked_at DATETIME
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		repo = rbacPostgres.NewStatsRepository(db)
	})

	Describe("RoleDistribution", func() {
		It("counts active users per role", func() {
			for _, row := range []struct {
				role   string
				active bool
			}{
				{"viewer", true},
				{"viewer", true},
				{"developer", true},
				{"developer", false},
			} {
				err := db.Exec("INSERT INTO users (role, is_active) VALUES (?, ?)", row.role, row.active).Error
				Expect(err).NotTo(HaveOccurred())
			}

			distribution, err := repo.RoleDistribution(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(distribution).To(HaveKeyWithValue("viewer", int64(2)))
			Expect(distribution).To(HaveKeyWithValue("developer", int64(1)))
		})

		It("returns an empty map with no users", func() {
			distribution, err := repo.RoleDistribution(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(distribution).To(BeEmpty())
		})
	})

	Describe("RecentAuditEntries", func() {
		It("returns the newest entries first, capped at the limit", func() {
			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			for i := 0; i < 5; i++ {
				err := db.Exec(
					"INSERT INTO rbac_audit_log (user_id, organization_id, permission, granted, reason, checked_at) VALUES (?, ?, ?, ?, ?, ?)",
					int64(i+1), 10, "alert:read", true, "granted by role", base.Add(time.Duration(i)*time.Minute),
				).Error
				Expect(err).NotTo(HaveOccurred())
			}

			entries, err := repo.RecentAuditEntries(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].UserID).To(Equal(int64(5)))
			Expect(entries[0].Permission).To(Equal("alert:read"))
		})
	})
})
