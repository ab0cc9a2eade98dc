package rbac

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// AuditEntry is one recorded permission decision.
type AuditEntry struct {
	UserID         int64
	OrganizationID int64
	Permission     string
	Granted        bool
	Reason         string
	IPAddress      string
	UserAgent      string
	CheckedAt      time.Time
}

// AuditRecorder persists decision trail entries. Recording is best
// effort: implementations must never block a permission check or
// propagate failures to the caller.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// LogAuditRecorder writes entries to the structured log. Used as the
// default sink and as the fallback when the database recorder fails.
type LogAuditRecorder struct {
	logger *slog.Logger
}

func NewLogAuditRecorder(logger *slog.Logger) *LogAuditRecorder {
	return &LogAuditRecorder{logger: logger}
}

func (r *LogAuditRecorder) Record(entry AuditEntry) {
	r.logger.Info("permission check",
		"user_id", entry.UserID,
		"organization_id", entry.OrganizationID,
		"permission", entry.Permission,
		"granted", entry.Granted,
		"reason", entry.Reason,
		"ip", entry.IPAddress,
	)
}

type auditRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	UserID         int64     `gorm:"column:user_id;index"`
	OrganizationID int64     `gorm:"column:organization_id"`
	Permission     string    `gorm:"column:permission"`
	Granted        bool      `gorm:"column:granted"`
	Reason         string    `gorm:"column:reason"`
	IPAddress      string    `gorm:"column:ip_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	CheckedAt      time.Time `gorm:"column:checked_at"`
}

func (auditRow) TableName() string { return "rbac_audit_log" }

// DBAuditRecorder persists entries asynchronously through a buffered
// channel so the evaluator never waits on the database. When the buffer
// is full the entry falls back to the log.
type DBAuditRecorder struct {
	db       *gorm.DB
	logger   *slog.Logger
	fallback *LogAuditRecorder
	queue    chan AuditEntry
	done     chan struct{}
}

func NewDBAuditRecorder(db *gorm.DB, logger *slog.Logger, bufferSize int) *DBAuditRecorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &DBAuditRecorder{
		db:       db,
		logger:   logger,
		fallback: NewLogAuditRecorder(logger),
		queue:    make(chan AuditEntry, bufferSize),
		done:     make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *DBAuditRecorder) Record(entry AuditEntry) {
	select {
	case r.queue <- entry:
	default:
		r.fallback.Record(entry)
	}
}

// Close stops the writer after the queue drains.
func (r *DBAuditRecorder) Close() {
	close(r.queue)
	<-r.done
}

func (r *DBAuditRecorder) drain() {
	defer close(r.done)
	for entry := range r.queue {
		row := auditRow{
			UserID:         entry.UserID,
			OrganizationID: entry.OrganizationID,
			Permission:     entry.Permission,
			Granted:        entry.Granted,
			Reason:         entry.Reason,
			IPAddress:      entry.IPAddress,
			UserAgent:      entry.UserAgent,
			CheckedAt:      entry.CheckedAt,
		}
		if err := r.db.Create(&row).Error; err != nil {
			r.logger.Warn("audit write failed, falling back to log", "error", err)
			r.fallback.Record(entry)
		}
	}
}
