package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"emergency-alert-service/config"

	_ "github.com/go-sql-driver/mysql"
)

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection and ensures the schema exists
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := verifyAndCreateTables(db); err != nil {
		return nil, fmt.Errorf("failed to verify/create tables: %w", err)
	}

	log.Printf("Database connected successfully to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &Database{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests
func NewWithDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// verifyAndCreateTables creates the schema if it does not exist yet
func verifyAndCreateTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL,
			city VARCHAR(128) NOT NULL DEFAULT '',
			state VARCHAR(128) NOT NULL DEFAULT '',
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_admins_role_state_city (role, state, city)
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id VARCHAR(36) NOT NULL,
			reporter_id VARCHAR(36) NOT NULL DEFAULT '',
			kind VARCHAR(16) NOT NULL,
			content TEXT NOT NULL,
			city VARCHAR(128) NOT NULL,
			state VARCHAR(128) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			severity INT NOT NULL DEFAULT 0,
			scorer_result JSON NULL,
			assigned_admin VARCHAR(36) NOT NULL DEFAULT '',
			help_details JSON NULL,
			review JSON NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_reports_reporter (reporter_id),
			INDEX idx_reports_status (status)
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id VARCHAR(36) NOT NULL,
			report_id VARCHAR(36) NOT NULL,
			target_role VARCHAR(32) NOT NULL,
			target_city VARCHAR(128) NOT NULL DEFAULT '',
			target_state VARCHAR(128) NOT NULL DEFAULT '',
			acknowledged_by JSON NOT NULL,
			active TINYINT(1) NOT NULL DEFAULT 1,
			escalation_level INT NOT NULL DEFAULT 0,
			help_requested TINYINT(1) NOT NULL DEFAULT 0,
			escalation_history JSON NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_alerts_report (report_id),
			INDEX idx_alerts_target (target_state, target_city, active),
			CONSTRAINT fk_alerts_report FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS news (
			id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			related_report_id VARCHAR(36) NOT NULL DEFAULT '',
			author_id VARCHAR(36) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}
