package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicos/internal/core"
)

var loc = time.FixedZone("BRT", -3*60*60)

func rec(id, title string, typ core.ServiceType, cents int64, user string, at time.Time, included bool) core.ServiceRecord {
	return core.ServiceRecord{
		ID:             id,
		Title:          title,
		ServiceType:    typ,
		Price:          core.Money{Cents: cents},
		UserID:         "id-" + user,
		Username:       user,
		CreatedAt:      at,
		IncludeInTotal: included,
	}
}

func TestMonthKey(t *testing.T) {
	// 02:00 UTC on the 1st is still the previous month at UTC-3.
	at := time.Date(2026, 10, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10", MonthKey(at, time.UTC))
	assert.Equal(t, "2026-09", MonthKey(at, loc))
	assert.Equal(t, "1970-01", MonthKey(time.Time{}, time.UTC))
}

func TestIsCurrentMonth(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, loc)
	assert.True(t, IsCurrentMonth(time.Date(2026, 10, 1, 0, 0, 0, 0, loc), now))
	assert.False(t, IsCurrentMonth(time.Date(2026, 9, 30, 23, 59, 0, 0, loc), now))
	assert.False(t, IsCurrentMonth(time.Date(2025, 10, 18, 12, 0, 0, 0, loc), now))
	assert.False(t, IsCurrentMonth(time.Time{}, now))
}

func TestByMonthExampleScenario(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, loc)
	records := []core.ServiceRecord{
		rec("1", "100", "A", 500, "user1", now.Add(-3*time.Hour), true),
		rec("2", "100", "B", 200, "user2", now.Add(-2*time.Hour), false),
		rec("3", "200", "A", 500, "user1", now.Add(-1*time.Hour), true),
	}

	buckets := ByMonth(records, loc)
	require.Len(t, buckets, 1)
	b := buckets[0]
	assert.Equal(t, "2026-10", b.Key)
	assert.Equal(t, 3, b.ServiceCount)
	assert.Equal(t, int64(1200), b.TotalAmount.Cents)
	assert.Equal(t, int64(1000), b.AuthorizedAmount.Cents)
	assert.Equal(t, int64(200), b.PendingAmount.Cents)
	assert.Equal(t, int64(400), b.AvgServiceValue.Cents)

	records[1].IncludeInTotal = true
	records[1].AdminOverride = true
	b = ByMonth(records, loc)[0]
	assert.Equal(t, int64(1200), b.AuthorizedAmount.Cents)
	assert.Equal(t, int64(0), b.PendingAmount.Cents)
}

func TestByMonthPartitionAndOrder(t *testing.T) {
	records := []core.ServiceRecord{
		rec("1", "1", "A", 100, "u", time.Date(2026, 8, 3, 0, 0, 0, 0, loc), true),
		rec("2", "2", "A", 250, "u", time.Date(2026, 10, 3, 0, 0, 0, 0, loc), false),
		rec("3", "3", "B", 300, "u", time.Date(2025, 12, 31, 0, 0, 0, 0, loc), true),
		rec("4", "4", "B", 50, "u", time.Time{}, true),
		rec("5", "5", "B", 75, "u", time.Date(2026, 10, 9, 0, 0, 0, 0, loc), true),
	}

	buckets := ByMonth(records, loc)
	keys := make([]string, 0, len(buckets))
	var count int
	var total, authorized, pending int64
	for _, b := range buckets {
		keys = append(keys, b.Key)
		count += b.ServiceCount
		total += b.TotalAmount.Cents
		authorized += b.AuthorizedAmount.Cents
		pending += b.PendingAmount.Cents
		assert.Equal(t, b.TotalAmount.Cents, b.AuthorizedAmount.Cents+b.PendingAmount.Cents, "bucket %s", b.Key)
		assert.Len(t, b.Records, b.ServiceCount)
	}
	epochKey := MonthKey(time.Unix(0, 0), loc)
	assert.Equal(t, []string{"2026-10", "2026-08", "2025-12", epochKey}, keys)
	assert.Equal(t, len(records), count)

	overall := Overall(records)
	assert.Equal(t, overall.TotalAmount.Cents, total)
	assert.Equal(t, overall.AuthorizedAmount.Cents, authorized)
	assert.Equal(t, overall.PendingAmount.Cents, pending)
	assert.Equal(t, 4, overall.AuthorizedCount)
	assert.Equal(t, 1, overall.PendingCount)

	// Input order is preserved inside a bucket.
	assert.Equal(t, "2", buckets[0].Records[0].ID)
	assert.Equal(t, "5", buckets[0].Records[1].ID)
}

func TestEmptyCollections(t *testing.T) {
	o := Overall(nil)
	assert.Equal(t, 0, o.ServiceCount)
	assert.True(t, o.AvgServiceValue.IsZero())
	assert.Empty(t, ByMonth(nil, loc))
	assert.Empty(t, ByType(nil))
	assert.Empty(t, ByUser(nil))
}

func TestByType(t *testing.T) {
	at := time.Date(2026, 10, 3, 0, 0, 0, 0, loc)
	records := []core.ServiceRecord{
		rec("1", "1", "MONTAGEM", 500, "u", at, true),
		rec("2", "2", "PREPARO", 200, "u", at, true),
		rec("3", "3", "", 600, "u", at, false),
	}
	stats := ByType(records)
	require.Len(t, stats, 3)
	assert.Equal(t, UntypedLabel, stats[0].Type)
	assert.Equal(t, "MONTAGEM", stats[1].Type)
	assert.Equal(t, "PREPARO", stats[2].Type)

	var sum float64
	for _, s := range stats {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.0001)
	assert.InDelta(t, 33.3333, stats[0].Percentage, 0.001)
}

func TestByUser(t *testing.T) {
	at := time.Date(2026, 10, 3, 0, 0, 0, 0, loc)
	records := []core.ServiceRecord{
		rec("1", "1", "A", 500, "ana", at, true),
		rec("2", "1", "A", 500, "bia", at, false),
		rec("3", "2", "A", 600, "bia", at, true),
		rec("4", "3", "A", 100, "", at, true),
	}
	stats := ByUser(records)
	require.Len(t, stats, 3)
	assert.Equal(t, "bia", stats[0].Username)
	assert.Equal(t, int64(1100), stats[0].TotalAmount.Cents)
	assert.Equal(t, int64(600), stats[0].AuthorizedAmount.Cents)
	assert.Equal(t, int64(500), stats[0].PendingAmount.Cents)
	assert.Equal(t, int64(550), stats[0].AvgServiceValue.Cents)
	assert.Equal(t, "ana", stats[1].Username)
	assert.Equal(t, UnknownUserLabel, stats[2].Username)
}
