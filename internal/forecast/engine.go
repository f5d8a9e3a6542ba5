// Package forecast fits a seasonal additive model to the daily defect-rate
// series and projects it forward with symmetric uncertainty intervals.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/models"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Engine fits models with a fixed configuration. It holds no per-fit state
// and is safe for concurrent use.
type Engine struct {
	cfg Config
	log *logger.ForecastLogger
}

// FitSummary describes a fitted model
type FitSummary struct {
	Observations    int     `json:"observations"`
	Changepoints    int     `json:"changepoints"`
	SpanDays        float64 `json:"span_days"`
	// EffectiveParams is the trace of the ridge hat matrix
	EffectiveParams float64 `json:"effective_params"`
	Sigma           float64 `json:"sigma"`
	Scale           float64 `json:"scale"`
}

// Result is a forecast over the observed dates and the requested horizon
type Result struct {
	Points  []models.ForecastPoint `json:"points"`
	Horizon int                    `json:"horizon_days"`
	Seed    int64                  `json:"seed"`
	Summary FitSummary             `json:"summary"`
}

// NewEngine creates a forecast engine
func NewEngine(cfg Config, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast config: %w", err)
	}
	return &Engine{cfg: cfg, log: logger.NewForecastLogger(log)}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Forecast fits history and predicts every observed date followed by horizon
// consecutive days after the last one. A zero horizon uses the configured
// default; a negative one is rejected.
func (e *Engine) Forecast(history []models.DefectRatePoint, horizon int) (*Result, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("%w: %d days", models.ErrInvalidHorizon, horizon)
	}
	if horizon == 0 {
		horizon = e.cfg.Horizon
	}

	model, err := e.Fit(history)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(model.dates)+horizon)
	dates = append(dates, model.dates...)
	last := model.dates[len(model.dates)-1]
	for i := 1; i <= horizon; i++ {
		dates = append(dates, last.AddDate(0, 0, i))
	}

	return &Result{
		Points:  model.Predict(dates),
		Horizon: horizon,
		Seed:    e.cfg.Seed,
		Summary: model.Summary(),
	}, nil
}

// Model is a fitted additive model. It is immutable.
type Model struct {
	cfg    Config
	design design
	dates  []time.Time
	origin time.Time
	span   float64 // days from first to last observation, at least 1
	scale  float64
	beta   []float64
	dof    float64 // effective number of fitted parameters
	sigma  float64 // residual deviation in scaled units
}

// Fit estimates trend and seasonality on a private copy of history
func (e *Engine) Fit(history []models.DefectRatePoint) (*Model, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: got %d points, need at least 2", models.ErrInsufficientHistory, len(history))
	}
	started := time.Now()

	points := append([]models.DefectRatePoint(nil), history...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	m := &Model{cfg: e.cfg, origin: points[0].Date, scale: 1}
	n := len(points)
	m.dates = make([]time.Time, n)
	days := make([]float64, n)
	y := make([]float64, n)
	for i, p := range points {
		m.dates[i] = p.Date
		days[i] = p.Date.Sub(m.origin).Hours() / 24
		y[i] = p.DefectRate
	}

	m.span = days[n-1]
	if m.span <= 0 {
		m.span = 1
	}
	if maxAbs := math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y))); maxAbs > 0 {
		m.scale = maxAbs
	}
	floats.Scale(1/m.scale, y)

	ts := make([]float64, n)
	for i := range days {
		ts[i] = days[i] / m.span
	}
	m.design = design{
		changepoints: placeChangepoints(ts, e.cfg.Changepoints, e.cfg.ChangepointRange),
		weeklyOrder:  e.cfg.WeeklyOrder,
		dailyOrder:   e.cfg.DailyOrder,
	}

	p := m.design.width()
	x := mat.NewDense(n, p, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		m.design.row(row, ts[i], days[i])
		x.SetRow(i, row)
	}

	var gram, normal mat.Dense
	gram.Mul(x.T(), x)
	normal.CloneFrom(&gram)
	for j, penalty := range m.design.penalties(e.cfg) {
		normal.Set(j, j, normal.At(j, j)+penalty)
	}
	var rhs mat.VecDense
	rhs.MulVec(x.T(), mat.NewVecDense(n, y))

	var beta mat.VecDense
	if err := e.tolerate(beta.SolveVec(&normal, &rhs)); err != nil {
		return nil, fmt.Errorf("failed to solve model: %w", err)
	}
	var hat mat.Dense
	if err := e.tolerate(hat.Solve(&normal, &gram)); err != nil {
		return nil, fmt.Errorf("failed to solve hat matrix: %w", err)
	}
	m.dof = mat.Trace(&hat)
	m.beta = make([]float64, p)
	for j := range m.beta {
		m.beta[j] = beta.AtVec(j)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	residuals := make([]float64, n)
	for i := range residuals {
		residuals[i] = y[i] - fitted.AtVec(i)
	}
	m.sigma = math.Sqrt(floats.Dot(residuals, residuals) / math.Max(float64(n)-m.dof, 1))

	e.log.LogFit(n, len(m.design.changepoints), m.sigma*m.scale, time.Since(started))
	return m, nil
}

// tolerate lets ill-conditioned solves through with a debug log
func (e *Engine) tolerate(err error) error {
	var cond mat.Condition
	if err != nil && errors.As(err, &cond) {
		e.log.WithField("condition", float64(cond)).Debug("Forecast normal equations ill-conditioned")
		return nil
	}
	return err
}

// Summary describes the fitted model
func (m *Model) Summary() FitSummary {
	return FitSummary{
		Observations:    len(m.dates),
		Changepoints:    len(m.design.changepoints),
		SpanDays:        m.span,
		EffectiveParams: m.dof,
		Sigma:           m.sigma * m.scale,
		Scale:           m.scale,
	}
}

// Predict returns an estimate and symmetric interval for every date. The
// interval combines residual noise with simulated future trend changes drawn
// from the configured seed, so equal inputs give equal outputs.
func (m *Model) Predict(dates []time.Time) []models.ForecastPoint {
	src := xrand.NewSource(uint64(m.cfg.Seed))
	z := distuv.UnitNormal.Quantile(0.5 + m.cfg.IntervalWidth/2)

	ts := make([]float64, len(dates))
	days := make([]float64, len(dates))
	for i, d := range dates {
		days[i] = d.Sub(m.origin).Hours() / 24
		ts[i] = days[i] / m.span
	}
	trendVar := m.trendVariance(ts, src)

	row := make([]float64, m.design.width())
	out := make([]models.ForecastPoint, len(dates))
	for i, d := range dates {
		m.design.row(row, ts[i], days[i])
		estimate := floats.Dot(row, m.beta) * m.scale
		half := z * math.Sqrt(m.sigma*m.sigma+trendVar[i]) * m.scale
		out[i] = models.ForecastPoint{
			Date:     d,
			Estimate: estimate,
			Lower:    estimate - half,
			Upper:    estimate + half,
		}
	}
	return out
}
