package store

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaPostgres is embedded so the service can self-bootstrap its table.
//
//go:embed schema_postgres.sql
var schemaPostgres string

const (
	pgInsertRow = `
		INSERT INTO scenario_choices(
			ts, choice_date, session_id, round,
			option_a_id, option_a_text, option_b_id, option_b_text,
			chosen, chosen_scenario_id, language
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	pgSelectRows = `
		SELECT ts, choice_date, session_id, round,
		       option_a_id, option_a_text, option_b_id, option_b_text,
		       chosen, chosen_scenario_id, language
		FROM scenario_choices
		ORDER BY id`
)

// PostgresStore keeps the choices table in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema_postgres.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaPostgres)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Open acquires one pooled connection for the lifetime of the session.
func (p *PostgresStore) Open(ctx context.Context) (Table, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTable{conn: conn}, nil
}

type pgTable struct {
	conn *pgxpool.Conn
}

func (t *pgTable) AppendRow(ctx context.Context, row Row) error {
	if err := checkWidth(row); err != nil {
		return err
	}
	_, err := t.conn.Exec(ctx, pgInsertRow, row...)
	return err
}

func (t *pgTable) Rows(ctx context.Context) ([]Row, error) {
	rows, err := t.conn.Query(ctx, pgSelectRows)
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

func (t *pgTable) Close() error {
	t.conn.Release()
	return nil
}

// scanRow reads the 11 text columns through the given scan function.
func scanRow(scan func(dest ...any) error) (Row, error) {
	var cells [NumColumns]string
	dest := make([]any, NumColumns)
	for i := range cells {
		dest[i] = &cells[i]
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	row := make(Row, NumColumns)
	for i, c := range cells {
		row[i] = c
	}
	return row, nil
}
