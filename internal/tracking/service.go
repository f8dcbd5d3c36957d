package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/models"
	"github.com/reintausend/rfs/internal/store"
)

// TopLimit is the maximum number of entries in a top-scenarios result.
const TopLimit = 10

// ErrStore wraps every failure of the backing table.
var ErrStore = errors.New("store unavailable")

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service records choice events and aggregates them.
type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a tracking service on top of st.
func NewService(st store.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withTable opens a table session, runs fn and closes the session.
func (s *Service) withTable(ctx context.Context, fn func(store.Table) error) error {
	tbl, err := s.store.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: open table: %w", ErrStore, err)
	}
	defer func() {
		if err := tbl.Close(); err != nil {
			s.log.Warn("Failed to close table session", zap.Error(err))
		}
	}()
	return fn(tbl)
}

// EventRow lays a choice event out in table column order.
func EventRow(req *models.ChoiceEventRequest) store.Row {
	row := make(store.Row, store.NumColumns)
	row[store.ColTimestamp] = string(req.Timestamp)
	row[store.ColDate] = req.Date
	row[store.ColSessionID] = req.SessionID
	row[store.ColRound] = string(req.Round)
	row[store.ColOptionAID] = req.OptionAID
	row[store.ColOptionAText] = req.TextA()
	row[store.ColOptionBID] = req.OptionBID
	row[store.ColOptionBText] = req.TextB()
	row[store.ColChosen] = req.Chosen
	row[store.ColChosenScenarioID] = req.ChosenScenarioID
	row[store.ColLanguage] = req.Language
	return row
}

// Record appends one choice event as a new table row.
func (s *Service) Record(ctx context.Context, req *models.ChoiceEventRequest) error {
	return s.withTable(ctx, func(tbl store.Table) error {
		if err := tbl.AppendRow(ctx, EventRow(req)); err != nil {
			return fmt.Errorf("%w: append row: %w", ErrStore, err)
		}
		return nil
	})
}

// readAll returns every data row of the table.
func (s *Service) readAll(ctx context.Context) ([]store.Row, error) {
	var rows []store.Row
	err := s.withTable(ctx, func(tbl store.Table) error {
		var err error
		rows, err = tbl.Rows(ctx)
		if err != nil {
			return fmt.Errorf("%w: read rows: %w", ErrStore, err)
		}
		return nil
	})
	return rows, err
}

// TopScenarios counts today's chosen scenarios over a full table scan and
// returns the TopLimit most chosen, by count descending. Equal counts keep
// the order in which the scenarios first appear in the table.
func (s *Service) TopScenarios(ctx context.Context) (*models.TopScenariosResponse, error) {
	today := Today(s.now())

	rows, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	total := 0

	for _, row := range rows {
		if len(row) <= store.ColChosenScenarioID {
			continue
		}
		if NormalizeDate(row[store.ColDate]) != today {
			continue
		}
		id := cellString(row[store.ColChosenScenarioID])
		if id == "" {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
		total++
	}

	top := make([]models.ScenarioCount, 0, len(order))
	for _, id := range order {
		top = append(top, models.ScenarioCount{ScenarioID: id, Count: counts[id]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > TopLimit {
		top = top[:TopLimit]
	}

	s.log.Debug("Top scenarios computed",
		zap.String("date", today),
		zap.Int("rows", len(rows)),
		zap.Int("total_selections", total),
		zap.Int("distinct_scenarios", len(order)))

	return &models.TopScenariosResponse{
		Success:         true,
		Date:            today,
		TotalSelections: total,
		TopScenarios:    top,
	}, nil
}

// DailyStats counts rows per raw date cell. Unlike TopScenarios the date is
// not normalized, so "2026-10-19" and "2026-10-19T08:00:00Z" are separate keys.
func (s *Service) DailyStats(ctx context.Context) (*models.DailyStatsResponse, error) {
	rows, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, row := range rows {
		if len(row) <= store.ColDate {
			continue
		}
		date := cellString(row[store.ColDate])
		if date == "" {
			continue
		}
		stats[date]++
	}

	return &models.DailyStatsResponse{
		Success:    true,
		DailyStats: stats,
	}, nil
}
