package forecast

import (
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// trendVariance simulates future trend changes and returns, for each scaled
// time, the variance of the trend deviation across samples. Points inside
// the fitted range (ts <= 1) get zero. Changes arrive at the fitted rate of
// changepoints and their magnitude follows the mean absolute fitted change.
// Every draw comes from src.
func (m *Model) trendVariance(ts []float64, src xrand.Source) []float64 {
	out := make([]float64, len(ts))
	samples := m.cfg.UncertaintySamples
	if samples == 0 || len(m.design.changepoints) == 0 {
		return out
	}

	horizon := 1.0
	for _, t := range ts {
		horizon = math.Max(horizon, t)
	}
	if horizon <= 1 {
		return out
	}

	deltas := m.beta[2 : 2+len(m.design.changepoints)]
	meanAbs := 0.0
	for _, d := range deltas {
		meanAbs += math.Abs(d)
	}
	meanAbs = meanAbs/float64(len(deltas)) + 1e-8
	count := distuv.Poisson{Lambda: float64(len(deltas)) * (horizon - 1), Src: src}
	location := distuv.Uniform{Min: 1, Max: horizon, Src: src}
	change := distuv.Laplace{Mu: 0, Scale: meanAbs, Src: src}

	sum := make([]float64, len(ts))
	sumSq := make([]float64, len(ts))
	var locations, changes []float64
	for s := 0; s < samples; s++ {
		k := int(count.Rand())
		locations, changes = locations[:0], changes[:0]
		for i := 0; i < k; i++ {
			locations = append(locations, location.Rand())
			changes = append(changes, change.Rand())
		}
		for i, t := range ts {
			if t <= 1 {
				continue
			}
			dev := 0.0
			for j, c := range locations {
				if c < t {
					dev += changes[j] * (t - c)
				}
			}
			sum[i] += dev
			sumSq[i] += dev * dev
		}
	}

	n := float64(samples)
	for i := range out {
		mean := sum[i] / n
		out[i] = math.Max(0, sumSq[i]/n-mean*mean)
	}
	return out
}
