package forecast

import "math"

const (
	weeklyPeriod = 7.0
	dailyPeriod  = 1.0

	// ridgeBase scales the prior penalties relative to the data term
	ridgeBase = 0.01
	// unpenalized columns still get a tiny ridge to keep the system solvable
	trendRidge = 1e-6
)

// design describes the regression columns of the additive model:
// intercept, slope, one hinge per changepoint, then Fourier pairs.
type design struct {
	changepoints []float64 // in scaled time
	weeklyOrder  int
	dailyOrder   int
}

func (d design) width() int {
	return 2 + len(d.changepoints) + 2*d.weeklyOrder + 2*d.dailyOrder
}

// row fills the feature vector of a point at ts (scaled time) and days
// (absolute days since the first observation)
func (d design) row(dst []float64, ts, days float64) {
	dst[0] = 1
	dst[1] = ts
	j := 2
	for _, cp := range d.changepoints {
		dst[j] = math.Max(0, ts-cp)
		j++
	}
	j = fourier(dst, j, days, weeklyPeriod, d.weeklyOrder)
	fourier(dst, j, days, dailyPeriod, d.dailyOrder)
}

func fourier(dst []float64, j int, days, period float64, order int) int {
	for k := 1; k <= order; k++ {
		x := 2 * math.Pi * float64(k) * days / period
		dst[j] = math.Sin(x)
		dst[j+1] = math.Cos(x)
		j += 2
	}
	return j
}

// penalties returns the ridge weight of every column
func (d design) penalties(cfg Config) []float64 {
	out := make([]float64, d.width())
	out[0], out[1] = trendRidge, trendRidge
	cp := ridgeBase / (cfg.ChangepointPriorScale * cfg.ChangepointPriorScale)
	season := ridgeBase / (cfg.SeasonalityPriorScale * cfg.SeasonalityPriorScale)
	j := 2
	for range d.changepoints {
		out[j] = cp
		j++
	}
	for ; j < len(out); j++ {
		out[j] = season
	}
	return out
}

// placeChangepoints spreads potential changepoints evenly over the first
// changepointRange of the observations, never on the first one.
func placeChangepoints(ts []float64, requested int, changepointRange float64) []float64 {
	histSize := int(math.Floor(float64(len(ts)) * changepointRange))
	n := requested
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		out = append(out, ts[idx])
	}
	return out
}
