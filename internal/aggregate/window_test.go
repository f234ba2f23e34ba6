package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicos/internal/core"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Period6Months, p)

	for _, s := range []string{"3months", "6months", "12months", "all"} {
		p, err := ParsePeriod(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(p))
	}

	_, err = ParsePeriod("24months")
	assert.Error(t, err)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 2, 18, 15, 30, 0, 0, loc)

	start, ok := WindowStart(Period3Months, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, loc), start)

	start, ok = WindowStart(Period12Months, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, loc), start)

	_, ok = WindowStart(PeriodAll, now)
	assert.False(t, ok)
}

func TestFilterWindow(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, loc)
	records := []core.ServiceRecord{
		rec("in-edge", "1", "A", 100, "u", time.Date(2026, 7, 1, 0, 0, 0, 0, loc), true),
		rec("out-edge", "2", "A", 100, "u", time.Date(2026, 6, 30, 23, 59, 59, 0, loc), true),
		rec("recent", "3", "A", 100, "u", now, true),
		rec("unparsed", "4", "A", 100, "u", time.Time{}, true),
	}

	got := FilterWindow(records, Period3Months, now)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"in-edge", "recent"}, ids)

	assert.Len(t, FilterWindow(records, PeriodAll, now), len(records))
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, loc)
	records := []core.ServiceRecord{
		rec("1", "100", "A", 500, "ana", now, true),
		rec("2", "100", "B", 200, "bia", now, false),
		rec("3", "old", "A", 900, "ana", time.Date(2024, 1, 5, 0, 0, 0, 0, loc), true),
	}

	a := Analyze(records, Period6Months, now, false)
	assert.Equal(t, 2, a.Overall.ServiceCount)
	assert.Equal(t, int64(700), a.Overall.TotalAmount.Cents)
	assert.Equal(t, int64(350), a.Overall.AvgServiceValue.Cents)
	assert.Len(t, a.Months, 1)
	assert.Nil(t, a.Users)

	a = Analyze(records, PeriodAll, now, true)
	assert.Equal(t, 3, a.Overall.ServiceCount)
	assert.Len(t, a.Months, 2)
	require.Len(t, a.Users, 2)
	assert.Equal(t, "ana", a.Users[0].Username)

	empty := Analyze(nil, Period3Months, now, true)
	assert.Zero(t, empty.Overall.ServiceCount)
	assert.Empty(t, empty.Types)
}
