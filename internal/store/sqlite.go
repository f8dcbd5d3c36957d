package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

const (
	sqliteInsertRow = `
		INSERT INTO scenario_choices(
			ts, choice_date, session_id, round,
			option_a_id, option_a_text, option_b_id, option_b_text,
			chosen, chosen_scenario_id, language
		)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`

	sqliteSelectRows = `
		SELECT ts, choice_date, session_id, round,
		       option_a_id, option_a_text, option_b_id, option_b_text,
		       chosen, chosen_scenario_id, language
		FROM scenario_choices
		ORDER BY id`
)

// SQLiteStore keeps the choices table in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// EnsureSchema creates the choices table. Safe to call multiple times.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQLite); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// Open pins one connection for the lifetime of the session.
func (s *SQLiteStore) Open(ctx context.Context) (Table, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqliteTable{conn: conn}, nil
}

type sqliteTable struct {
	conn *sql.Conn
}

func (t *sqliteTable) AppendRow(ctx context.Context, row Row) error {
	if err := checkWidth(row); err != nil {
		return err
	}
	_, err := t.conn.ExecContext(ctx, sqliteInsertRow, row...)
	return err
}

func (t *sqliteTable) Rows(ctx context.Context) ([]Row, error) {
	rows, err := t.conn.QueryContext(ctx, sqliteSelectRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *sqliteTable) Close() error {
	return t.conn.Close()
}
