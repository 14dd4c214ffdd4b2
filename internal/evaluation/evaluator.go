package evaluation

import (
	"fmt"
	"math"
	"time"

	"canteenopt/internal/dataset"
	"canteenopt/internal/decision"
	"canteenopt/internal/sim"
)

// Evaluator replays historical dates through the decision pipeline and
// scores the decided quantities against what actually sold. It is the
// offline counterpart of the live audit log: same pipeline, known
// outcomes.
type Evaluator struct {
	store  *dataset.Store
	fusion *decision.Fusion
	econ   sim.Economics
}

// ItemReport aggregates the backtest outcome for one catalogue item
type ItemReport struct {
	ItemID       string  `json:"item_id"`
	Days         int     `json:"days"`
	MAE          float64 `json:"mae"`
	Profit       float64 `json:"profit"`
	WasteUnits   float64 `json:"waste_units"`
	UnmetUnits   float64 `json:"unmet_units"`
	ServiceLevel float64 `json:"service_level"`
}

// Report is the full backtest outcome over a date range
type Report struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Days  int       `json:"days"`
	Items int       `json:"items"`

	MAE          float64 `json:"mae"`
	TotalProfit  float64 `json:"total_profit"`
	WasteUnits   float64 `json:"waste_units"`
	UnmetUnits   float64 `json:"unmet_units"`
	ServiceLevel float64 `json:"service_level"`

	PerItem map[string]ItemReport `json:"per_item"`
}

// New creates an evaluator over a dataset store and an assembled
// pipeline. The economics weight the profit figure the same way the
// training reward does.
func New(store *dataset.Store, fusion *decision.Fusion, econ sim.Economics) *Evaluator {
	if econ == (sim.Economics{}) {
		econ = sim.DefaultEconomics()
	}
	return &Evaluator{store: store, fusion: fusion, econ: econ}
}

// Holdout returns the trailing fraction of the sales calendar, the
// conventional backtest window. Fraction is clamped to (0,1]; at least
// one date is always returned.
func (e *Evaluator) Holdout(fraction float64) []time.Time {
	dates := e.store.OrderedDates()
	if len(dates) == 0 {
		return nil
	}
	if fraction <= 0 || fraction > 1 {
		fraction = 0.2
	}
	n := int(math.Round(float64(len(dates)) * fraction))
	if n < 1 {
		n = 1
	}
	return dates[len(dates)-n:]
}

// Evaluate backtests every catalogue item over the given dates
func (e *Evaluator) Evaluate(dates []time.Time) (*Report, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("no dates to evaluate")
	}
	items := e.store.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("empty item catalogue")
	}

	report := &Report{
		From:    dates[0],
		To:      dates[len(dates)-1],
		Days:    len(dates),
		Items:   len(items),
		PerItem: make(map[string]ItemReport, len(items)),
	}

	var absErrSum, soldSum, demandSum float64
	var observations int

	for _, item := range items {
		ir := ItemReport{ItemID: item.ID}
		var itemAbsErr, itemSold, itemDemand float64

		for _, date := range dates {
			rec, err := e.fusion.Decide(decision.Request{Date: date, ItemID: item.ID})
			if err != nil {
				return nil, fmt.Errorf("deciding %s on %s: %w", item.ID, date.Format("2006-01-02"), err)
			}

			prepared := float64(rec.PredictedQuantity)
			demand := e.store.SoldOn(date, item.ID)

			sold := math.Min(prepared, demand)
			waste := math.Max(0, prepared-demand)
			unmet := math.Max(0, demand-prepared)

			ir.Days++
			itemAbsErr += math.Abs(prepared - demand)
			itemSold += sold
			itemDemand += demand
			ir.WasteUnits += waste
			ir.UnmetUnits += unmet
			ir.Profit += sold*e.econ.RevenuePerUnit -
				prepared*e.econ.CostPerUnit -
				waste*e.econ.WastePenaltyPerUnit -
				unmet*e.econ.UnderPenaltyPerUnit
		}

		if ir.Days > 0 {
			ir.MAE = itemAbsErr / float64(ir.Days)
		}
		if itemDemand > 0 {
			ir.ServiceLevel = itemSold / itemDemand
		} else {
			ir.ServiceLevel = 1
		}
		report.PerItem[item.ID] = ir

		absErrSum += itemAbsErr
		soldSum += itemSold
		demandSum += itemDemand
		observations += ir.Days
		report.TotalProfit += ir.Profit
		report.WasteUnits += ir.WasteUnits
		report.UnmetUnits += ir.UnmetUnits
	}

	if observations > 0 {
		report.MAE = absErrSum / float64(observations)
	}
	if demandSum > 0 {
		report.ServiceLevel = soldSum / demandSum
	} else {
		report.ServiceLevel = 1
	}
	return report, nil
}
