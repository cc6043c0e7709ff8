package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

const (
	DefaultMinUnits = 300
	DefaultMaxUnits = 900
)

// DefaultYears is the period axis used when none is configured.
var DefaultYears = []int{2023, 2024, 2025}

type SalesRecord struct {
	Dish  string `json:"dish"`
	Year  int    `json:"-"`
	Units int    `json:"sales"`
}

type YearlyReport struct {
	Year        int           `json:"period"`
	SalesByDish []SalesRecord `json:"sales_by_dish"`
}

type HistoricalReport struct {
	TotalUnits int            `json:"total_units_simulated"`
	ByYear     []YearlyReport `json:"report_by_period"`
}

type SimulatorConfig struct {
	MinUnits int
	MaxUnits int
	// Seed fixes the draw sequence. Zero means a random seed.
	Seed uint64
}

// HistorySimulator produces a synthetic, random per-year per-dish sales history.
// Unlike the flight history it is not deterministic: every Generate call is a new draw.
type HistorySimulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	minUnits int
	maxUnits int
}

func NewHistorySimulator(cfg SimulatorConfig) (*HistorySimulator, error) {
	if cfg.MinUnits == 0 && cfg.MaxUnits == 0 {
		cfg.MinUnits, cfg.MaxUnits = DefaultMinUnits, DefaultMaxUnits
	}
	if cfg.MinUnits < 0 || cfg.MinUnits > cfg.MaxUnits {
		return nil, fmt.Errorf("service.NewHistorySimulator: invalid units range [%d, %d]", cfg.MinUnits, cfg.MaxUnits)
	}
	seed1, seed2 := cfg.Seed, cfg.Seed
	if cfg.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	return &HistorySimulator{
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		minUnits: cfg.MinUnits,
		maxUnits: cfg.MaxUnits,
	}, nil
}

// Generate draws one units value per (year, dish) pair, in input order.
// Empty years or dishes give a zero report.
func (h *HistorySimulator) Generate(years []int, dishes []string) HistoricalReport {
	report := HistoricalReport{ByYear: make([]YearlyReport, 0, len(years))}
	if len(dishes) == 0 {
		return report
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, year := range years {
		yr := YearlyReport{Year: year, SalesByDish: make([]SalesRecord, 0, len(dishes))}
		for _, dish := range dishes {
			units := h.minUnits + h.rng.IntN(h.maxUnits-h.minUnits+1)
			yr.SalesByDish = append(yr.SalesByDish, SalesRecord{Dish: dish, Year: year, Units: units})
			report.TotalUnits += units
		}
		report.ByYear = append(report.ByYear, yr)
	}
	return report
}

// Records flattens the report in year-then-dish order.
func (r HistoricalReport) Records() []SalesRecord {
	var out []SalesRecord
	for _, yr := range r.ByYear {
		out = append(out, yr.SalesByDish...)
	}
	return out
}

// LatestYear returns the largest period in the report, or 0 when empty.
func (r HistoricalReport) LatestYear() int {
	latest := 0
	for i, yr := range r.ByYear {
		if i == 0 || yr.Year > latest {
			latest = yr.Year
		}
	}
	return latest
}
