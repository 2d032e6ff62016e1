package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing report-analytics database schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		id VARCHAR(64) NOT NULL,
		category ENUM('general_waste', 'recyclable', 'hazardous', 'organic', 'bulky', 'other') NOT NULL,
		address VARCHAR(512),
		description TEXT,
		latitude DOUBLE,
		longitude DOUBLE,
		created_ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		current_status ENUM('pending', 'assigned', 'in_progress', 'resolved', 'rejected') NOT NULL DEFAULT 'pending',
		assigned_driver_id VARCHAR(64),
		PRIMARY KEY (id),
		INDEX created_ts_index (created_ts),
		INDEX driver_index (assigned_driver_id)
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	statusLogTableSQL := `
	CREATE TABLE IF NOT EXISTS report_status_log(
		seq BIGINT NOT NULL AUTO_INCREMENT,
		report_id VARCHAR(64) NOT NULL,
		from_status ENUM('pending', 'assigned', 'in_progress', 'resolved', 'rejected'),
		to_status ENUM('pending', 'assigned', 'in_progress', 'resolved', 'rejected') NOT NULL,
		ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		actor_id VARCHAR(64) NOT NULL,
		actor_role ENUM('admin', 'driver', 'system') NOT NULL,
		rejection_message TEXT,
		PRIMARY KEY (seq),
		INDEX report_ts_index (report_id, ts),
		INDEX ts_index (ts)
	)`

	if _, err := db.Exec(statusLogTableSQL); err != nil {
		return fmt.Errorf("failed to create report_status_log table: %w", err)
	}
	log.Info("Report_status_log table created/verified")

	return nil
}
