package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/game"
	"github.com/pthm-cable/blobsim/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastSurvival   float64 // mean survival from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. baseCfg is never modified.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastSurvival returns the mean ticks to extinction of the most recent evaluation.
func (fe *FitnessEvaluator) LastSurvival() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSurvival
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int   // ticks before the first extinction, or maxTicks if it never came
	populations   []int // window-end populations collected via StatsCallback
	hallOfFame    *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better). Seeds
// run in parallel; each run owns its simulation.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalSurvival float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	for _, r := range results {
		f := computeFitness(r)
		totalFitness += f
		totalSurvival += float64(r.survivalTicks)
		if f < bestSeedFitness {
			bestSeedFitness = f
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastSurvival = totalSurvival / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation runs until the first extinction or maxTicks, whichever
// comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{survivalTicks: fe.maxTicks}
	sim, err := game.New(game.Options{
		Seed:   seed,
		Config: cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.populations = append(result.populations, stats.Population)
		},
	})
	if err != nil {
		// Unusable parameters never survive.
		result.survivalTicks = 0
		return result
	}
	defer sim.Close()

	for sim.Tick() < fe.maxTicks {
		sim.Step()
		if sim.Extinctions() > 0 {
			result.survivalTicks = sim.LastExtinction()
			break
		}
	}
	result.hallOfFame = sim.HallOfFame()
	return result
}

// computeFitness is the negative survival time. Stability adds under one
// tick, so it only separates runs that survived equally long.
func computeFitness(r *runResult) float64 {
	return -(float64(r.survivalTicks) + computeStability(r.populations))
}

// stabilityWarmupWindows are skipped while the founders die back.
const stabilityWarmupWindows = 2

// computeStability scores window populations in [0, 1): exp(-cv^2)
// discounted to stay below one tick. Empty windows score zero.
func computeStability(pops []int) float64 {
	if len(pops) <= stabilityWarmupWindows+1 {
		return 0
	}
	values := make([]float64, 0, len(pops)-stabilityWarmupWindows)
	for _, p := range pops[stabilityWarmupWindows:] {
		values = append(values, float64(p))
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	cv := std / mean
	return 0.99 * math.Exp(-cv*cv)
}
