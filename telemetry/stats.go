package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Population at window end
	Population    int `csv:"population"`
	Food          int `csv:"food"`
	OldestActions int `csv:"oldest_actions"`

	// Events during window
	Births      int     `csv:"births"`
	Deaths      int     `csv:"deaths"`
	Kills       int     `csv:"kills"`
	Meals       int     `csv:"meals"`
	FoodEaten   int     `csv:"food_eaten"`
	Moves       int     `csv:"moves"`
	Failed      int     `csv:"failed"`
	FailRate    float64 `csv:"fail_rate"`
	Extinctions int     `csv:"extinctions"`

	// Action choices during window
	ChoseEat       int `csv:"chose_eat"`
	ChoseDown      int `csv:"chose_down"`
	ChoseUp        int `csv:"chose_up"`
	ChoseRight     int `csv:"chose_right"`
	ChoseLeft      int `csv:"chose_left"`
	ChoseAttack    int `csv:"chose_attack"`
	ChoseReproduce int `csv:"chose_reproduce"`

	// Energy distribution (sampled at window end)
	EnergyMin  float64 `csv:"energy_min"`
	EnergyMax  float64 `csv:"energy_max"`
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// EnergyStats summarizes a set of energy values.
type EnergyStats struct {
	Min, Max  float64
	Mean, Std float64
	P10, P50  float64
	P90       float64
}

// ComputeEnergyStats calculates the distribution of energy values.
// An empty slice yields all zeros; a single value has zero deviation.
func ComputeEnergyStats(values []float64) EnergyStats {
	n := len(values)
	if n == 0 {
		return EnergyStats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var es EnergyStats
	es.Min, es.Max = sorted[0], sorted[n-1]
	if n > 1 {
		es.Mean, es.Std = stat.MeanStdDev(sorted, nil)
	} else {
		es.Mean = sorted[0]
	}
	es.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	es.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	es.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return es
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("population", s.Population),
		slog.Int("food", s.Food),
		slog.Int("oldest_actions", s.OldestActions),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("kills", s.Kills),
		slog.Int("meals", s.Meals),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("moves", s.Moves),
		slog.Float64("fail_rate", s.FailRate),
		slog.Int("extinctions", s.Extinctions),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
