package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseFilterColumn(t *testing.T) {
	tests := []struct {
		name    string
		want    FilterColumn
		wantErr bool
	}{
		{"serial_number", FilterSerialNumber, false},
		{"Num_Serie", FilterSerialNumber, false},
		{" machine_id ", FilterMachineID, false},
		{"Id_Operateur", FilterOperatorID, false},
		{"TypeTest", FilterTestType, false},
		{"Result", FilterResultCode, false},
		{"reference_code", FilterReferenceCode, false},
		{"board_id", FilterBoardID, false},
		{"DateDebut", FilterUnknown, true},
		{"serial_number; DROP TABLE test_events", FilterUnknown, true},
		{"", FilterUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterColumn(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFilterColumn))
				assert.False(t, got.Valid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestFilterColumnsAreAllNamed(t *testing.T) {
	for _, col := range FilterColumns() {
		parsed, err := ParseFilterColumn(col.String())
		require.NoError(t, err)
		assert.Equal(t, col, parsed)
	}
	assert.Equal(t, "unknown", FilterUnknown.String())
}

func TestFilterColumnParseValue(t *testing.T) {
	v, err := FilterResultCode.ParseValue("1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = FilterBoardID.ParseValue("abc")
	assert.True(t, errors.Is(err, ErrInvalidFilterValue))

	_, err = FilterUnknown.ParseValue("x")
	assert.True(t, errors.Is(err, ErrInvalidFilterColumn))
}

func TestFilterColumnMatches(t *testing.T) {
	row := TestEventRow{
		TestEvent:     TestEvent{BoardID: 7, SerialNumber: "SN1", ResultCode: intPtr(1), MachineID: "M2"},
		ReferenceCode: "REF-A",
	}

	assert.True(t, FilterResultCode.Matches(row, " 1"))
	assert.True(t, FilterBoardID.Matches(row, "7"))
	assert.True(t, FilterReferenceCode.Matches(row, "REF-A"))
	assert.False(t, FilterMachineID.Matches(row, "M3"))
	assert.False(t, FilterResultCode.Matches(TestEventRow{}, "1"))
}

func TestPassed(t *testing.T) {
	assert.True(t, TestEvent{ResultCode: intPtr(1)}.Passed())
	assert.False(t, TestEvent{ResultCode: intPtr(0)}.Passed())
	assert.False(t, TestEvent{ResultCode: intPtr(2)}.Passed())
	assert.False(t, TestEvent{}.Passed())
	assert.False(t, TestOutcome{}.Passed())
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-03-05 14:02:09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 2, 9, 0, time.UTC), ts)
	assert.Equal(t, "2024-03-05 14:02:09", FormatTimestamp(ts))

	padded, err := ParseTimestamp(" 2024-03-05 14:02:09\t\n")
	require.NoError(t, err)
	assert.Equal(t, ts, padded)
	assert.Equal(t, "2024-03-05 14:02:09", TrimTimestamp("\r 2024-03-05 14:02:09 "))

	for _, raw := range []string{"", "2024-03-05", "05/03/2024 14:02:09", "2024-13-05 14:02:09"} {
		_, err := ParseTimestamp(raw)
		assert.True(t, errors.Is(err, ErrUnparseableTimestamp), raw)
	}
}

func TestTimeWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := TimeWindow{Start: start, End: start.Add(time.Hour)}
	require.NoError(t, w.Validate())
	assert.True(t, w.Contains(start))
	assert.False(t, w.Contains(start.Add(time.Hour)))

	assert.True(t, errors.Is(TimeWindow{Start: start, End: start}.Validate(), ErrInvalidTimeWindow))
	assert.True(t, errors.Is(TimeWindow{Start: start.Add(time.Second), End: start}.Validate(), ErrInvalidTimeWindow))
}

func TestBacktestPredictionCovered(t *testing.T) {
	p := BacktestPrediction{Actual: 0.2, Lower: 0.1, Upper: 0.2}
	assert.True(t, p.Covered())
	p.Actual = 0.25
	assert.False(t, p.Covered())
}
