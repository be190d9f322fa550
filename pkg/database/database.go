package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pulseai-health/clinic-api/internal/config"
	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
	"github.com/pulseai-health/clinic-api/internal/domain/notification"
	"github.com/pulseai-health/clinic-api/internal/domain/pharmacy"
	"github.com/pulseai-health/clinic-api/internal/domain/prescription"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:          true,
		TranslateError:       true,
		DisableAutomaticPing: false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinic", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&notification.Notification{},
		&prescription.Prescription{},
		&prescription.Item{},
		&pharmacy.Medication{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes installs the partial unique indexes the services rely on.
// These two are correctness-critical, not performance tuning: the slot index
// is the sole mechanism preventing double-booking under concurrent requests,
// and the reminder index is the sole mechanism preventing duplicate sends
// under overlapping sweep runs. A failure here must abort startup.
func createIndexes(db *gorm.DB) error {
	unique := []struct {
		name  string
		query string
	}{
		{
			name:  "uq_appointments_slot",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_appointments_slot ON clinic.appointments (doctor_id, appointment_date, appointment_time) WHERE status IN ('pending', 'confirmed')`,
		},
		{
			name:  "uq_notifications_reminder",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_notifications_reminder ON clinic.notifications (appointment_id, kind) WHERE status = 'sent'`,
		},
	}

	for _, idx := range unique {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	// Best-effort secondary indexes for the hot queries.
	secondary := []string{
		`CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON clinic.appointments (doctor_id, appointment_date) WHERE status IN ('pending', 'confirmed')`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_upcoming ON clinic.appointments (appointment_date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_appointment ON clinic.notifications (appointment_id, kind, status)`,
	}
	for _, q := range secondary {
		_ = db.Exec(q).Error
	}

	return nil
}
