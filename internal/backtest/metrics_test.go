package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-quality/internal/models"
)

func prediction(day int, actual, estimate, halfWidth float64) models.BacktestPrediction {
	return models.BacktestPrediction{
		HorizonDay: day,
		Actual:     actual,
		Estimate:   estimate,
		Lower:      estimate - halfWidth,
		Upper:      estimate + halfWidth,
	}
}

func TestAccuracy(t *testing.T) {
	m := Accuracy([]models.BacktestPrediction{
		prediction(1, 0.2, 0.1, 0.05),
		prediction(1, 0.1, 0.1, 0.05),
		prediction(2, 0, 0.1, 0.2),
	})

	assert.Equal(t, 3, m.Count)
	require.NotNil(t, m.MAPE)
	// zero actual is excluded from MAPE
	assert.InDelta(t, 0.25, *m.MAPE, 1e-12)
	assert.InDelta(t, 0.0816496580927726, m.RMSE, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.Coverage, 1e-12)
}

func TestAccuracyAllZeroActuals(t *testing.T) {
	m := Accuracy([]models.BacktestPrediction{prediction(1, 0, 0.01, 0.1)})
	assert.Nil(t, m.MAPE)
	assert.Equal(t, 1.0, m.Coverage)
}

func TestAccuracyEmpty(t *testing.T) {
	m := Accuracy(nil)
	assert.Equal(t, models.AccuracyMetrics{}, m)
}

func TestByHorizon(t *testing.T) {
	metrics := ByHorizon([]models.BacktestPrediction{
		prediction(1, 0.2, 0.2, 0.01),
		prediction(3, 0.1, 0.2, 0.01),
		prediction(3, 0.1, 0.1, 0.01),
		prediction(9, 0.1, 0.1, 0.01),
	}, 3)

	require.Len(t, metrics, 2)
	assert.Equal(t, 1, metrics[0].HorizonDay)
	assert.Equal(t, 1, metrics[0].Count)
	assert.Equal(t, 0.0, metrics[0].RMSE)
	assert.Equal(t, 3, metrics[1].HorizonDay)
	assert.Equal(t, 2, metrics[1].Count)
	assert.InDelta(t, 0.5, metrics[1].Coverage, 1e-12)
}
