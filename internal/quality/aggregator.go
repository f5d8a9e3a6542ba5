// Package quality computes window-scoped test rollups.
package quality

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/repository"
	"github.com/yourusername/line-quality/internal/resolver"
)

// Request scopes one rollup. SerialNumber, when set, restricts the defect
// histogram to interventions on that unit.
type Request struct {
	Window         models.TimeWindow
	SerialNumber   string
	IncludeDetails bool
}

// Aggregator computes quality rollups from the record store
type Aggregator struct {
	events        repository.TestEventRepository
	interventions repository.InterventionRepository
	log           *logger.QualityLogger
}

// NewAggregator creates an aggregator over repos
func NewAggregator(repos *repository.Repositories, log *logrus.Logger) (*Aggregator, error) {
	if repos == nil || repos.TestEvent == nil || repos.Intervention == nil {
		return nil, fmt.Errorf("test event and intervention repositories are required")
	}
	return &Aggregator{
		events:        repos.TestEvent,
		interventions: repos.Intervention,
		log:           logger.NewQualityLogger(log),
	}, nil
}

// Aggregate computes the rollup of req.Window. An invalid window is rejected
// before the store is queried.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*models.QualityMetrics, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}

	rows, err := a.events.ListInWindow(ctx, req.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to list test events: %w", err)
	}

	interventions, err := a.interventions.ListInWindow(ctx, req.Window, req.SerialNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}

	records, dropped := resolver.Parse(rows, "quality", a.log)
	result := Summarize(req.Window, records, interventions, req.IncludeDetails)
	result.UnparseableCount = dropped

	a.log.LogAggregation(models.FormatTimestamp(req.Window.Start), models.FormatTimestamp(req.Window.End),
		result.TotalCount, result.GoodCount, result.BadCount, dropped)
	return result, nil
}

// Summarize reduces parsed records and interventions to a rollup of window.
// Records and interventions outside window are ignored.
func Summarize(window models.TimeWindow, records []resolver.Record, interventions []models.InterventionLog, includeDetails bool) *models.QualityMetrics {
	result := &models.QualityMetrics{
		Window:           window,
		DefectHistogram:  DefectHistogram(window, interventions),
		ReferenceStats:   []models.ReferenceStat{},
		ReferenceRevenue: []models.ReferenceRevenue{},
	}

	inWindow := make([]resolver.Record, 0, len(records))
	for _, rec := range records {
		if window.Contains(rec.Start) {
			inWindow = append(inWindow, rec)
		}
	}

	for _, rec := range inWindow {
		result.TotalCount++
		if rec.Row.Passed() {
			result.GoodCount++
		}
	}
	result.BadCount = result.TotalCount - result.GoodCount

	result.ReferenceStats = referenceStats(inWindow)
	result.ReferenceRevenue = referenceRevenue(inWindow)

	if includeDetails {
		details := append([]resolver.Record(nil), inWindow...)
		sort.SliceStable(details, func(i, j int) bool { return details[i].Start.After(details[j].Start) })
		result.TestDetails = make([]models.TestEventRow, len(details))
		for i, rec := range details {
			result.TestDetails[i] = rec.Row
		}
	}

	return result
}

// DefectHistogram counts defect codes of the interventions inside window.
// Null and blank codes are skipped.
func DefectHistogram(window models.TimeWindow, interventions []models.InterventionLog) map[string]int {
	histogram := make(map[string]int)
	for _, entry := range interventions {
		if entry.DefectCode == nil || !window.Contains(entry.InterventionTime) {
			continue
		}
		code := strings.TrimSpace(*entry.DefectCode)
		if code == "" {
			continue
		}
		histogram[code]++
	}
	return histogram
}

func referenceStats(records []resolver.Record) []models.ReferenceStat {
	byRef := make(map[string]*models.ReferenceStat)
	var withRef []resolver.Record
	for _, rec := range records {
		ref := rec.Row.ReferenceCode
		if ref == "" {
			continue
		}
		withRef = append(withRef, rec)
		stat, ok := byRef[ref]
		if !ok {
			stat = &models.ReferenceStat{ReferenceCode: ref}
			byRef[ref] = stat
		}
		if rec.Row.Passed() {
			stat.GoodCount++
		} else {
			stat.BadCount++
		}
	}

	for _, latest := range resolver.LatestBy(withRef, models.FilterReferenceCode.Key) {
		byRef[latest.Row.ReferenceCode].LatestSerialNumber = latest.Row.SerialNumber
	}

	stats := make([]models.ReferenceStat, 0, len(byRef))
	for _, stat := range byRef {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ReferenceCode < stats[j].ReferenceCode })
	return stats
}

// referenceRevenue reports one line per distinct (reference, unit price) pair.
// Lines with the same reference and different prices are never merged.
func referenceRevenue(records []resolver.Record) []models.ReferenceRevenue {
	type lineKey struct {
		ref   string
		price string
	}
	lines := make(map[lineKey]*models.ReferenceRevenue)
	for _, rec := range records {
		ref := rec.Row.ReferenceCode
		if ref == "" {
			continue
		}
		key := lineKey{ref: ref, price: priceKey(rec.Row.UnitPrice)}
		line, ok := lines[key]
		if !ok {
			line = &models.ReferenceRevenue{ReferenceCode: ref, UnitPrice: rec.Row.UnitPrice}
			lines[key] = line
		}
		if rec.Row.Passed() {
			line.GoodCount++
		} else {
			line.BadCount++
		}
	}

	out := make([]models.ReferenceRevenue, 0, len(lines))
	for _, line := range lines {
		if line.UnitPrice.Valid {
			line.TotalPrice = decimal.NewNullDecimal(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.GoodCount))))
		}
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReferenceCode != out[j].ReferenceCode {
			return out[i].ReferenceCode < out[j].ReferenceCode
		}
		return lessPrice(out[i].UnitPrice, out[j].UnitPrice)
	})
	return out
}

// priceKey normalizes a price so 12.5 and 12.50 share a line
func priceKey(price decimal.NullDecimal) string {
	if !price.Valid {
		return "null"
	}
	return price.Decimal.String()
}

// lessPrice orders null prices first
func lessPrice(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return !a.Valid && b.Valid
	}
	return a.Decimal.LessThan(b.Decimal)
}
