package store

import (
	"context"
	"errors"
	"fmt"
)

// Column offsets of the choices table. Readers index rows by these positions,
// never by header name.
const (
	ColTimestamp = iota
	ColDate
	ColSessionID
	ColRound
	ColOptionAID
	ColOptionAText
	ColOptionBID
	ColOptionBText
	ColChosen
	ColChosenScenarioID
	ColLanguage

	NumColumns
)

// Header is the fixed first row of the table.
var Header = []string{
	"Timestamp",
	"Date",
	"SessionID",
	"Round",
	"OptionA_ID",
	"OptionA_Text",
	"OptionB_ID",
	"OptionB_Text",
	"Chosen",
	"ChosenScenarioID",
	"Language",
}

// ErrRowWidth is returned when a row does not have exactly NumColumns cells.
var ErrRowWidth = errors.New("row must have 11 columns")

// Row is one table row. Cells are usually strings; the date cell may also be
// a time.Time when the backend keeps native date values.
type Row []any

// Table is a per-request session on the backing table.
type Table interface {
	// AppendRow adds row after the last existing row.
	AppendRow(ctx context.Context, row Row) error
	// Rows returns every data row in insertion order. The header is excluded.
	Rows(ctx context.Context) ([]Row, error)
	// Close releases the session.
	Close() error
}

// Store opens table sessions on a backend.
type Store interface {
	Open(ctx context.Context) (Table, error)
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

func checkWidth(row Row) error {
	if len(row) != NumColumns {
		return ErrRowWidth
	}
	return nil
}

// New opens the store for driver ("postgres", "sqlite" or "memory").
func New(driver, dbURL string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgresStore(dbURL)
	case "sqlite":
		return NewSQLiteStore(dbURL)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
