// Package forecast projects short-horizon product demand per region.
package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetgrid/supplyline/core/model"
)

// window is the number of trailing observations used for the moving
// average and trend.
const window = 3

const (
	fullConfidence    = 0.85
	reducedConfidence = 0.5
)

// Engine is an unweighted short-window linear-trend estimator. It holds
// the per-region demand history it was seeded with: region -> product
// -> ordered past-period observations, oldest first.
type Engine struct {
	history map[string]map[string][]int
}

// NewEngine seeds the estimator. The history map is not copied; callers
// hand over ownership.
func NewEngine(history map[string]map[string][]int) *Engine {
	if history == nil {
		history = map[string]map[string][]int{}
	}
	return &Engine{history: history}
}

// Regions lists the seeded region keys.
func (e *Engine) Regions() []string {
	out := make([]string, 0, len(e.history))
	for r := range e.history {
		out = append(out, r)
	}
	return out
}

// Forecast projects demand for every product of the region. With at
// least three observations the prediction is mean(last 3) plus a trend
// of (latest - third-latest)/2 at 0.85 confidence; with fewer it falls
// back to the last observation at 0.5 confidence. Negative predictions
// clamp to zero.
func (e *Engine) Forecast(region string, horizonDays int) (model.RegionForecast, error) {
	products, ok := e.history[region]
	if !ok {
		return model.RegionForecast{}, &model.UnknownRegionError{Region: region}
	}

	out := model.RegionForecast{
		Region:      region,
		HorizonDays: horizonDays,
		Products:    make(map[string]model.ProductForecast, len(products)),
	}
	for product, series := range products {
		pf := forecastProduct(series)
		out.Products[product] = pf
		out.TotalPredicted += pf.PredictedDemand
	}
	return out, nil
}

func forecastProduct(series []int) model.ProductForecast {
	if len(series) < window {
		last := 0
		if len(series) > 0 {
			last = series[len(series)-1]
		}
		return model.ProductForecast{
			PredictedDemand: last,
			Confidence:      reducedConfidence,
			Trend:           model.TrendInsufficientData,
		}
	}

	recent := make([]float64, window)
	for i := 0; i < window; i++ {
		recent[i] = float64(series[len(series)-window+i])
	}
	avg := stat.Mean(recent, nil)
	trend := (recent[window-1] - recent[0]) / 2
	predicted := math.Max(0, avg+trend)

	label := model.TrendStable
	switch {
	case trend > 0:
		label = model.TrendIncreasing
	case trend < 0:
		label = model.TrendDecreasing
	}
	// Ties round to even, so a .5 prediction lands on the nearer even
	// integer rather than always away from zero.
	return model.ProductForecast{
		PredictedDemand: int(math.RoundToEven(predicted)),
		Confidence:      fullConfidence,
		Trend:           label,
	}
}
