package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"report-analytics/config"
	"report-analytics/models"

	_ "github.com/go-sql-driver/mysql"
)

// Database is the read-only accessor over persisted reports and their
// append-only status logs.
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
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

	log.Printf("Database connected successfully to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &Database{db: db}, nil
}

// NewDatabaseWithDB wraps an existing connection. Used by tests.
func NewDatabaseWithDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// DB exposes the underlying connection for schema initialization.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks that the underlying store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// CountReports returns the total number of persisted reports.
func (d *Database) CountReports(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// GetReportsInWindow retrieves reports created inside [start, end] or
// carrying at least one status transition inside it, with their full
// histories. The engine's window filter still classifies the snapshot;
// this query only keeps the fetch from scanning the whole table.
func (d *Database) GetReportsInWindow(ctx context.Context, start, end time.Time) ([]models.Report, error) {
	endExclusive := end.AddDate(0, 0, 1)

	reportsQuery := `
		SELECT r.id, r.category, r.address, r.description,
			r.latitude, r.longitude, r.created_ts, r.current_status, r.assigned_driver_id
		FROM reports r
		WHERE (r.created_ts >= ? AND r.created_ts < ?)
			OR EXISTS (
				SELECT 1 FROM report_status_log l
				WHERE l.report_id = r.id AND l.ts >= ? AND l.ts < ?
			)
		ORDER BY r.created_ts ASC
	`

	rows, err := d.db.QueryContext(ctx, reportsQuery, start, endExclusive, start, endExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	var reportIDs []string
	for rows.Next() {
		var report models.Report
		var address, description sql.NullString
		var lat, lon sql.NullFloat64
		var driverID sql.NullString

		err := rows.Scan(
			&report.ID,
			&report.Category,
			&address,
			&description,
			&lat,
			&lon,
			&report.CreatedAt,
			&report.CurrentStatus,
			&driverID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		report.Address = address.String
		report.Description = description.String
		if lat.Valid {
			report.Latitude = &lat.Float64
		}
		if lon.Valid {
			report.Longitude = &lon.Float64
		}
		if driverID.Valid && driverID.String != "" {
			report.AssignedDriverID = &driverID.String
		}

		reports = append(reports, report)
		reportIDs = append(reportIDs, report.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	if len(reports) == 0 {
		return []models.Report{}, nil
	}

	historyBySeq, err := d.getHistories(ctx, reportIDs)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].StatusHistory = historyBySeq[reports[i].ID]
	}

	return reports, nil
}

// getHistories loads the ordered status logs for the given report ids.
func (d *Database) getHistories(ctx context.Context, reportIDs []string) (map[string][]models.StatusEvent, error) {
	placeholders := make([]string, len(reportIDs))
	args := make([]interface{}, len(reportIDs))
	for i, id := range reportIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	historyQuery := fmt.Sprintf(`
		SELECT l.report_id, l.from_status, l.to_status, l.ts,
			l.actor_id, l.actor_role, l.rejection_message
		FROM report_status_log l
		WHERE l.report_id IN (%s)
		ORDER BY l.report_id ASC, l.ts ASC, l.seq ASC
	`, strings.Join(placeholders, ","))

	rows, err := d.db.QueryContext(ctx, historyQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status log: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]models.StatusEvent)
	for rows.Next() {
		var reportID string
		var event models.StatusEvent
		var fromStatus, rejection sql.NullString

		err := rows.Scan(
			&reportID,
			&fromStatus,
			&event.ToStatus,
			&event.Timestamp,
			&event.ActorID,
			&event.ActorRole,
			&rejection,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status event: %w", err)
		}

		if fromStatus.Valid {
			event.FromStatus = &fromStatus.String
		}
		if rejection.Valid {
			event.RejectionMessage = &rejection.String
		}

		histories[reportID] = append(histories[reportID], event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status log: %w", err)
	}

	return histories, nil
}
