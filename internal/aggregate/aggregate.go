// Package aggregate rolls service records up into month, type and user
// buckets. Every function is pure: callers pass the collection and the
// reference time, and get fresh slices back.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"servicos/internal/core"
)

const (
	UntypedLabel     = "Sem Tipo"
	UnknownUserLabel = "Usuário Desconhecido"
)

// Totals is the rollup shared by month, user and overall views.
// TotalAmount always equals AuthorizedAmount + PendingAmount.
type Totals struct {
	ServiceCount     int
	AuthorizedCount  int
	PendingCount     int
	TotalAmount      core.Money
	AuthorizedAmount core.Money
	PendingAmount    core.Money
	AvgServiceValue  core.Money
}

func (t *Totals) add(r core.ServiceRecord) {
	t.ServiceCount++
	t.TotalAmount = t.TotalAmount.Add(r.Price)
	if r.Pending() {
		t.PendingCount++
		t.PendingAmount = t.PendingAmount.Add(r.Price)
	} else {
		t.AuthorizedCount++
		t.AuthorizedAmount = t.AuthorizedAmount.Add(r.Price)
	}
}

func (t *Totals) finish() {
	t.AvgServiceValue = t.TotalAmount.DivideBy(t.ServiceCount)
}

// MonthBucket groups the records created in one calendar month.
type MonthBucket struct {
	Key     string // "2006-01"
	Records []core.ServiceRecord
	Totals
}

// TypeStats is the per service type rollup.
type TypeStats struct {
	Type        string
	Count       int
	TotalAmount core.Money
	Percentage  float64
}

// UserStats is the per user rollup, keyed by the snapshotted username.
type UserStats struct {
	Username string
	Totals
}

// MonthKey returns the year-month bucket key of t in loc. A zero time is
// bucketed under the epoch.
func MonthKey(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

// IsCurrentMonth reports whether t falls in the calendar month of now, using
// now's location.
func IsCurrentMonth(t, now time.Time) bool {
	return MonthKey(t, now.Location()) == MonthKey(now, now.Location())
}

// Overall rolls the whole collection into one Totals.
func Overall(records []core.ServiceRecord) Totals {
	var t Totals
	for _, r := range records {
		t.add(r)
	}
	t.finish()
	return t
}

// ByMonth partitions records by creation month in loc, most recent month
// first. Records keep their input order inside a bucket.
func ByMonth(records []core.ServiceRecord, loc *time.Location) []MonthBucket {
	index := map[string]int{}
	var buckets []MonthBucket
	for _, r := range records {
		key := MonthKey(r.CreatedAt, loc)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, MonthBucket{Key: key})
		}
		buckets[i].Records = append(buckets[i].Records, r)
		buckets[i].add(r)
	}
	for i := range buckets {
		buckets[i].finish()
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Key > buckets[j].Key
	})
	return buckets
}

// ByType groups records by service type, highest total first. Percentage is
// the share of the record count and is 0 for an empty collection.
func ByType(records []core.ServiceRecord) []TypeStats {
	index := map[string]int{}
	var stats []TypeStats
	for _, r := range records {
		label := strings.TrimSpace(string(r.ServiceType))
		if label == "" {
			label = UntypedLabel
		}
		i, ok := index[label]
		if !ok {
			i = len(stats)
			index[label] = i
			stats = append(stats, TypeStats{Type: label})
		}
		stats[i].Count++
		stats[i].TotalAmount = stats[i].TotalAmount.Add(r.Price)
	}
	total := len(records)
	for i := range stats {
		if total > 0 {
			stats[i].Percentage = float64(stats[i].Count) / float64(total) * 100
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalAmount.Cents > stats[j].TotalAmount.Cents
	})
	return stats
}

// ByUser groups records by username, highest total first.
func ByUser(records []core.ServiceRecord) []UserStats {
	index := map[string]int{}
	var stats []UserStats
	for _, r := range records {
		name := strings.TrimSpace(r.Username)
		if name == "" {
			name = UnknownUserLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(stats)
			index[name] = i
			stats = append(stats, UserStats{Username: name})
		}
		stats[i].add(r)
	}
	for i := range stats {
		stats[i].finish()
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalAmount.Cents > stats[j].TotalAmount.Cents
	})
	return stats
}
