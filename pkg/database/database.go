package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
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

	schemas := []string{"booking", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&schedule.WeeklyAvailability{},
		&appointment.Appointment{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createConstraints(db); err != nil {
		return fmt.Errorf("creating constraints: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createConstraints(db *gorm.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		// Conflict lookup: the booking path filters by doctor + date and
		// compares time ranges against non-cancelled rows only.
		{
			name:  "idx_appointments_conflict",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_conflict ON booking.appointments (doctor_id, appointment_date, start_time, end_time) WHERE status <> 'cancelled'`,
		},
		{
			name:  "idx_schedules_doctor_weekday",
			query: `CREATE INDEX IF NOT EXISTS idx_schedules_doctor_weekday ON booking.doctor_schedules (doctor_id, day_of_week, start_time)`,
		},
		// Removing a doctor account removes their windows and bookings.
		{
			name:  "fk_schedules_doctor",
			query: `ALTER TABLE booking.doctor_schedules ADD CONSTRAINT fk_schedules_doctor FOREIGN KEY (doctor_id) REFERENCES auth.users (id) ON DELETE CASCADE`,
		},
		{
			name:  "fk_appointments_doctor",
			query: `ALTER TABLE booking.appointments ADD CONSTRAINT fk_appointments_doctor FOREIGN KEY (doctor_id) REFERENCES auth.users (id) ON DELETE CASCADE`,
		},
		{
			name:  "fk_appointments_patient",
			query: `ALTER TABLE booking.appointments ADD CONSTRAINT fk_appointments_patient FOREIGN KEY (patient_id) REFERENCES auth.users (id) ON DELETE CASCADE`,
		},
	}

	for _, stmt := range statements {
		// Constraints may already exist from a previous run; tolerate that.
		_ = db.Exec(stmt.query).Error
	}

	return nil
}
