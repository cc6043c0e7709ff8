package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type HistoryMode string

const (
	// ModeEpoch keeps one simulated history for the lifetime of an epoch.
	ModeEpoch HistoryMode = "epoch"
	// ModePerRequest simulates a fresh history on every call.
	ModePerRequest HistoryMode = "per_request"
)

func ParseHistoryMode(s string) (HistoryMode, error) {
	switch HistoryMode(s) {
	case ModeEpoch, ModePerRequest:
		return HistoryMode(s), nil
	case "":
		return ModeEpoch, nil
	}
	return "", fmt.Errorf("unknown history mode %q", s)
}

// Snapshot is one simulated history together with the epoch it belongs to.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Report    HistoricalReport
}

// HistoryStore persists epoch snapshots so an epoch can outlive the process.
type HistoryStore interface {
	Save(ctx context.Context, snap Snapshot) error
	// Latest returns the most recent snapshot; ok is false when the store is empty.
	Latest(ctx context.Context) (snap Snapshot, ok bool, err error)
}

type DemandConfig struct {
	Years  []int
	Dishes []string
	Mode   HistoryMode
	// EpochTTL bounds an epoch. Zero keeps the first snapshot for the process lifetime.
	EpochTTL time.Duration
	// TargetYear defaults to the latest configured year plus one.
	TargetYear int
}

type DemandService struct {
	sim    *HistorySimulator
	store  HistoryStore
	cfg    DemandConfig
	now    func() time.Time
	group  singleflight.Group
	mu     sync.RWMutex
	epoch  *Snapshot
	resume bool
}

func NewDemandService(sim *HistorySimulator, store HistoryStore, cfg DemandConfig) *DemandService {
	if cfg.Mode == "" {
		cfg.Mode = ModeEpoch
	}
	if cfg.TargetYear == 0 {
		cfg.TargetYear = DefaultTargetYear(cfg.Years)
	}
	return &DemandService{
		sim:    sim,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		resume: store != nil,
	}
}

// DefaultTargetYear is the year after the latest configured one.
func DefaultTargetYear(years []int) int {
	latest := 0
	for i, y := range years {
		if i == 0 || y > latest {
			latest = y
		}
	}
	return latest + 1
}

func (s *DemandService) TargetYear() int { return s.cfg.TargetYear }

func (s *DemandService) Dishes() []string { return append([]string(nil), s.cfg.Dishes...) }

// History returns the snapshot that answers the current request.
func (s *DemandService) History(ctx context.Context) (Snapshot, error) {
	if s.cfg.Mode == ModePerRequest {
		return s.simulate(), nil
	}

	// fast epoch path
	s.mu.RLock()
	if s.epoch != nil && s.alive(*s.epoch) {
		snap := *s.epoch
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	// waiters share this flight, so one caller going away must not fail it for the rest
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("epoch", func() (any, error) {
		return s.rollEpoch(flightCtx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (s *DemandService) rollEpoch(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	if s.epoch != nil && s.alive(*s.epoch) {
		snap := *s.epoch
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	if s.resume {
		snap, ok, err := s.store.Latest(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("service.History: load snapshot: %w", err)
		}
		s.resume = false
		if ok && s.alive(snap) && s.matches(snap.Report) {
			slog.Info("history epoch resumed", "snapshot", snap.ID, "created_at", snap.CreatedAt)
			s.setEpoch(snap)
			return snap, nil
		}
	}

	snap := s.simulate()
	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			return Snapshot{}, fmt.Errorf("service.History: save snapshot: %w", err)
		}
	}
	slog.Info("history epoch started", "snapshot", snap.ID, "total_units", snap.Report.TotalUnits)
	s.setEpoch(snap)
	return snap, nil
}

func (s *DemandService) setEpoch(snap Snapshot) {
	s.mu.Lock()
	s.epoch = &snap
	s.mu.Unlock()
}

func (s *DemandService) alive(snap Snapshot) bool {
	if s.cfg.EpochTTL <= 0 {
		return true
	}
	return s.now().Before(snap.CreatedAt.Add(s.cfg.EpochTTL))
}

// matches reports whether a stored report covers exactly the configured years and dishes.
func (s *DemandService) matches(r HistoricalReport) bool {
	if len(r.ByYear) != len(s.cfg.Years) {
		return false
	}
	for i, yr := range r.ByYear {
		if yr.Year != s.cfg.Years[i] || len(yr.SalesByDish) != len(s.cfg.Dishes) {
			return false
		}
		for j, rec := range yr.SalesByDish {
			if rec.Dish != s.cfg.Dishes[j] {
				return false
			}
		}
	}
	return true
}

func (s *DemandService) simulate() Snapshot {
	return Snapshot{
		ID:        uuid.New().String(),
		CreatedAt: s.now().UTC(),
		Report:    s.sim.Generate(s.cfg.Years, s.cfg.Dishes),
	}
}

// Predict forecasts one dish against the current history.
func (s *DemandService) Predict(ctx context.Context, dish string) (ForecastResult, Snapshot, error) {
	snap, err := s.History(ctx)
	if err != nil {
		return ForecastResult{}, Snapshot{}, err
	}
	res, err := ForecastNextYear(snap.Report, dish, s.cfg.TargetYear)
	if err != nil {
		return ForecastResult{}, snap, err
	}
	return res, snap, nil
}

// PredictAll forecasts every configured dish against a single snapshot, in dish order.
func (s *DemandService) PredictAll(ctx context.Context) ([]ForecastResult, Snapshot, error) {
	snap, err := s.History(ctx)
	if err != nil {
		return nil, Snapshot{}, err
	}

	out := make([]ForecastResult, len(s.cfg.Dishes))
	g, ctx := errgroup.WithContext(ctx)
	for i, dish := range s.cfg.Dishes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ForecastNextYear(snap.Report, dish, s.cfg.TargetYear)
			if err != nil {
				return fmt.Errorf("%s: %w", dish, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, snap, err
	}
	return out, snap, nil
}
