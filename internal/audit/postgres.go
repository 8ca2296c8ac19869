package audit

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRecorder implements Recorder backed by a PostgreSQL database.
type PostgresRecorder struct {
	db *sql.DB
}

// Compile-time check that PostgresRecorder implements Recorder.
var _ Recorder = (*PostgresRecorder)(nil)

// NewPostgres opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func NewPostgres(databaseURL string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRecorder{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "deck_schema_migrations"})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}

func (r *PostgresRecorder) Record(ctx context.Context, e *model.Event) error {
	var payload []byte
	if len(e.Payload) > 0 {
		payload = []byte(e.Payload)
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO events (id, topic, subject, actor, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.Topic, e.Subject, e.Actor, payload,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record event %s: %w", e.ID, err)
	}
	return nil
}

func (r *PostgresRecorder) List(ctx context.Context, f Filter) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, topic, subject, actor, payload, created_at
		FROM events
		WHERE ($1 = '' OR subject = $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		f.Subject, f.limit(),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []*model.Event{}
	for rows.Next() {
		var e model.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Topic, &e.Subject, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(payload) > 0 {
			e.Payload = json.RawMessage(payload)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
