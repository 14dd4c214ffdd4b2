package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"canteenopt/internal/agent"
	"canteenopt/internal/bundle"
	"canteenopt/internal/config"
	"canteenopt/internal/dataset"
	"canteenopt/internal/decision"
	"canteenopt/internal/estimator"
	"canteenopt/internal/evaluation"
	"canteenopt/internal/features"
	"canteenopt/internal/quantize"
	"canteenopt/internal/sim"
	"canteenopt/internal/training"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	episodes   = flag.Int("episodes", 0, "Number of training episodes (overrides config)")
	out        = flag.String("out", "", "Output bundle path (overrides config)")
	bundleIn   = flag.String("bundle-in", "", "Existing bundle to take the estimator from")
	history    = flag.String("history", "data/rl_training_history.csv", "Episode history CSV path")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *episodes != 0 {
		cfg.Training.Episodes = *episodes
	}
	outPath := cfg.Bundle
	if *out != "" {
		outPath = *out
	}

	store, err := dataset.Load(cfg.Data)
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}

	est, err := loadEstimator(*bundleIn)
	if err != nil {
		log.Fatalf("Failed to prepare estimator: %v", err)
	}

	env, err := sim.NewEnv(store, est, sim.Config{
		ActionLevels: cfg.Training.ActionLevels,
		Economics:    cfg.Training.Economics,
		Spread:       sim.Spread(cfg.Training.Spread),
	})
	if err != nil {
		log.Fatalf("Failed to build environment: %v", err)
	}

	quant := quantize.New(features.ReducedRanges)
	ag := agent.New(quant, env.ActionCount(), cfg.Training.Agent)
	if cfg.Training.Seed != 0 {
		ag.Seed(cfg.Training.Seed)
	}

	log.Printf("Training over %d dates, %d actions, %d episodes",
		env.MaxSteps(), env.ActionCount(), cfg.Training.Episodes)

	trainer := &training.Trainer{
		Env:      env,
		Agent:    ag,
		MaxSteps: cfg.Training.MaxSteps,
	}
	res, err := trainer.Run(cfg.Training.Episodes)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	log.Printf("Training completed: best reward %.0f, final epsilon %.3f, %d q-table states",
		res.BestReward, res.FinalEpsilon, res.QTableStates)

	b := &bundle.Bundle{
		SchemaVersion:  features.SchemaVersion,
		FeatureColumns: features.ColumnNames(),
		Estimator:      *est,
		Agent:          ag.Snapshot(),
		ActionLevels:   env.ActionLevels(),
		ReducedRanges:  features.ReducedRanges,
		Episodes:       res.Episodes,
		EpisodeRewards: res.EpisodeRewards,
		EpsilonHistory: res.EpsilonHistory,
		TrainedAt:      time.Now().UTC(),
	}
	if err := bundle.Save(outPath, b); err != nil {
		log.Fatalf("Failed to save bundle: %v", err)
	}
	log.Printf("Model bundle saved to %s", outPath)

	if err := writeHistory(*history, res); err != nil {
		log.Printf("Failed to write training history: %v", err)
	} else {
		log.Printf("Training history saved to %s", *history)
	}

	backtest(store, b, cfg.Training.Economics)
}

// backtest scores the freshly trained artifact on the trailing 20% of
// the sales calendar and logs the headline numbers.
func backtest(store *dataset.Store, b *bundle.Bundle, econ sim.Economics) {
	fusion, err := decision.New(store, b)
	if err != nil {
		log.Printf("Backtest skipped, pipeline assembly failed: %v", err)
		return
	}
	ev := evaluation.New(store, fusion, econ)
	report, err := ev.Evaluate(ev.Holdout(0.2))
	if err != nil {
		log.Printf("Backtest failed: %v", err)
		return
	}
	log.Printf("Backtest over %d days: MAE %.1f, profit %.0f, service level %.1f%%, waste %.0f units",
		report.Days, report.MAE, report.TotalProfit, report.ServiceLevel*100, report.WasteUnits)
}

// loadEstimator takes the demand estimator from an existing bundle, or
// falls back to the passthrough baseline (the 3-day trailing average),
// which needs no offline fitting step.
func loadEstimator(bundlePath string) (*estimator.Linear, error) {
	if bundlePath != "" {
		b, err := bundle.Load(bundlePath)
		if err != nil {
			return nil, err
		}
		return estimator.NewLinear(b.Estimator.Weights, b.Estimator.Intercept, b.Estimator.Scaler)
	}

	weights := make([]float64, features.NumColumns)
	weights[features.ColSales3DayAvg] = 1
	scaler := estimator.Scaler{
		Mean:  make([]float64, features.NumColumns),
		Scale: ones(features.NumColumns),
	}
	return estimator.NewLinear(weights, 0, scaler)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func writeHistory(path string, res *training.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"episode", "reward", "epsilon"}); err != nil {
		return err
	}
	for i := range res.EpisodeRewards {
		row := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.2f", res.EpisodeRewards[i]),
			fmt.Sprintf("%.4f", res.EpsilonHistory[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
