package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/stratvalid/internal/config"
)

func testWalkForwardConfig() config.WalkForwardConfig {
	return config.WalkForwardConfig{TrainPeriods: 252, TestPeriods: 63, MinWindows: 3, MinOOSSharpe: 0.5}
}

func TestWalkForwardExactWindowCount(t *testing.T) {
	// 945 periods with 252-train/63-test fits exactly three 315-period windows
	a := NewWalkForwardAnalyzer(testWalkForwardConfig(), testCalibration())
	result, err := a.Analyze(sharpeSeries(t, 2.0, 945))
	require.NoError(t, err)
	require.Len(t, result.Windows, 3)

	for i, w := range result.Windows {
		assert.Equal(t, i*315, w.TrainStart)
		assert.Equal(t, i*315+252, w.TrainEnd)
		assert.Equal(t, (i+1)*315, w.TestEnd)
		if i > 0 {
			// Each window starts exactly where the previous test slice ended
			assert.Equal(t, result.Windows[i-1].TestEnd, w.TrainStart)
		}
	}
}

func TestWalkForwardDropsPartialTrailingWindow(t *testing.T) {
	a := NewWalkForwardAnalyzer(testWalkForwardConfig(), testCalibration())

	// 1000 periods: three full windows plus 55 leftover periods
	result, err := a.Analyze(sharpeSeries(t, 2.0, 1000))
	require.NoError(t, err)
	assert.Len(t, result.Windows, 3)
	assert.Equal(t, 945, result.Windows[2].TestEnd)
}

func TestWalkForwardInsufficientData(t *testing.T) {
	a := NewWalkForwardAnalyzer(testWalkForwardConfig(), testCalibration())

	// Shorter than one full window
	_, err := a.Analyze(sharpeSeries(t, 2.0, 314))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	var ide *InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 314, ide.Have)
	assert.Equal(t, 315, ide.Need)

	// Enough for two windows but min_windows is three
	_, err = a.Analyze(sharpeSeries(t, 2.0, 900))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestWalkForwardValidateVerdict(t *testing.T) {
	a := NewWalkForwardAnalyzer(testWalkForwardConfig(), testCalibration())

	good, err := a.Validate("good", sharpeSeries(t, 2.0, 945))
	require.NoError(t, err)
	assert.True(t, good.Passed)
	assert.Equal(t, ValidatorWalkForward, good.Validator)
	assert.Greater(t, good.Statistic, good.Threshold)
	assert.Equal(t, 945, good.NPeriods)

	flat, err := a.Validate("flat", sharpeSeries(t, 0.0, 945))
	require.NoError(t, err)
	assert.False(t, flat.Passed)
	assert.Less(t, flat.Statistic, 0.5)
}
