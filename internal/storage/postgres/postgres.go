package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/Defantinis/flowlens/internal/config"
)

// ReportRow is one persisted analysis result.
type ReportRow struct {
	ID        string          `json:"id"`
	Workflow  string          `json:"workflow"`
	Metadata  json.RawMessage `json:"metadata"`
	Summary   string          `json:"summary"`
	CreatedAt time.Time       `json:"createdAt"`
}

// EventRow is one persisted service event.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	ServiceID string                 `json:"service_id"`
}

// Client manages the Postgres connection for report and event storage.
type Client struct {
	db        *sql.DB
	serviceID string

	mu          sync.Mutex
	errorLogged bool
}

// New creates a new Postgres client using environment variables.
// PGPASSWORD supports the *_FILE secret convention.
func New(serviceID string) (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "flowlens")
	dbname := getEnv("PGDATABASE", "flowlens")

	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return nil, err
	}

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			host, port, user, dbname)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:        db,
		serviceID: serviceID,
	}

	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id         UUID PRIMARY KEY,
			workflow   TEXT NOT NULL,
			metadata   JSONB NOT NULL,
			summary    TEXT NOT NULL,
			service_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_created_at ON analysis_reports(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_reports_workflow ON analysis_reports(workflow);

		CREATE TABLE IF NOT EXISTS service_events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB,
			service_id TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_service_events_ts ON service_events(ts DESC);
	`
	_, err := c.db.Exec(query)
	return err
}

// SaveReport inserts one analysis report.
func (c *Client) SaveReport(r ReportRow) error {
	query := `
		INSERT INTO analysis_reports (id, workflow, metadata, summary, service_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.Exec(query, r.ID, r.Workflow, []byte(r.Metadata), r.Summary, c.serviceID, r.CreatedAt)
	return err
}

// RecentReports returns the last N reports, newest first.
func (c *Client) RecentReports(limit int) ([]ReportRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	query := `
		SELECT id, workflow, metadata, summary, created_at
		FROM analysis_reports
		WHERE service_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.Query(query, c.serviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []ReportRow
	for rows.Next() {
		var r ReportRow
		var metadata []byte
		if err := rows.Scan(&r.ID, &r.Workflow, &metadata, &r.Summary, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Metadata = json.RawMessage(metadata)
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// AppendEvent inserts a service event. Returns error if insert fails.
func (c *Client) AppendEvent(ts time.Time, level, event, msg string, fields map[string]interface{}) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	query := `
		INSERT INTO service_events (ts, level, event, msg, fields, service_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.serviceID)
	return err
}

// QueryEvents returns the last N events, newest first.
func (c *Client) QueryEvents(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, msg, fields, service_id
		FROM service_events
		WHERE service_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := c.db.Query(query, c.serviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.ServiceID); err != nil {
			return nil, err
		}

		if msg.Valid {
			e.Message = &msg.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// MarkErrorLogged marks that an error has been logged (to avoid spam).
func (c *Client) MarkErrorLogged() {
	c.mu.Lock()
	c.errorLogged = true
	c.mu.Unlock()
}

// HasLoggedError returns true if an error has been logged.
func (c *Client) HasLoggedError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorLogged
}
