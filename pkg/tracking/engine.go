package tracking

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
)

// GroupTotalCode is the synthetic branch code holding the sum of all branches
// in the overview report.
const GroupTotalCode = "AM"

// PartsLedger aggregates matched parts rows per person
type PartsLedger interface {
	AggregateByPerson(ctx context.Context, q models.PartsAggregateQuery) ([]models.PersonAggregate, error)
}

// BusinessLedger counts matched work orders per service advisor
type BusinessLedger interface {
	CountByAdvisor(ctx context.Context, q models.BusinessCountQuery) ([]models.PersonAggregate, error)
}

// ItemCatalog resolves the active tracked items for a report surface
type ItemCatalog interface {
	ListActive(ctx context.Context, surface models.ReportSurface) ([]models.TrackedItem, error)
}

// Engine computes tracked-item statistics across report surfaces
type Engine struct {
	items    ItemCatalog
	parts    PartsLedger
	business BusinessLedger
	branches []string
	logger   ectologger.Logger
}

func NewEngine(items ItemCatalog, parts PartsLedger, business BusinessLedger, branches []string, logger ectologger.Logger) *Engine {
	return &Engine{
		items:    items,
		parts:    parts,
		business: business,
		branches: branches,
		logger:   logger,
	}
}

// ItemStats computes one item's per-person aggregate for a period, optionally
// narrowed to a branch. Rules are partitioned by source: all parts rules run
// as one OR-combined query, each business rule runs as its own count query,
// and rows are merged per person by summing. A query failure aborts the whole
// computation.
func (e *Engine) ItemStats(ctx context.Context, item models.TrackedItem, period string, branch *string, groupBy models.PersonColumn) ([]models.PersonAggregate, error) {
	ctx, span := tracing.StartSpan(ctx, "tracking.Engine.ItemStats")
	defer span.End()

	if len(item.MatchRules) == 0 {
		return []models.PersonAggregate{}, nil
	}

	var rows []models.PersonAggregate

	partsRules := item.MatchRules.BySource(models.RuleSourcePartsSales)
	if len(partsRules) > 0 {
		partsRows, err := e.parts.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      period,
			Branch:      branch,
			GroupBy:     groupBy,
			CountMethod: item.CountMethod,
			Rules:       partsRules,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, partsRows...)
	}

	for _, rule := range item.MatchRules.BySource(models.RuleSourceBusinessQuery) {
		if !ValidBusinessRule(rule) {
			e.logger.WithContext(ctx).WithFields(map[string]any{
				"item_id":         item.ID,
				"condition_field": rule.ConditionField,
			}).Warn("skipping malformed business rule")
			continue
		}

		businessRows, err := e.business.CountByAdvisor(ctx, models.BusinessCountQuery{
			Period: period,
			Branch: branch,
			Field:  rule.ConditionField,
			Value:  rule.ConditionValue,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, businessRows...)
	}

	return mergeByPerson(rows), nil
}

// mergeByPerson sums values that landed on the same person from different
// rules, preserving first-seen order.
func mergeByPerson(rows []models.PersonAggregate) []models.PersonAggregate {
	merged := []models.PersonAggregate{}
	index := map[string]int{}

	for _, row := range rows {
		if row.PersonName == "" {
			continue
		}
		if i, ok := index[row.PersonName]; ok {
			merged[i].Value += row.Value
			continue
		}
		index[row.PersonName] = len(merged)
		merged = append(merged, row)
	}

	return merged
}

// ReportData computes every active item of a surface. The technician summary
// groups parts rows by the pickup person; every other surface groups by the
// sales person.
func (e *Engine) ReportData(ctx context.Context, surface models.ReportSurface, period string, branch *string) ([]models.ItemReport, error) {
	ctx, span := tracing.StartSpan(ctx, "tracking.Engine.ReportData")
	defer span.End()

	items, err := e.items.ListActive(ctx, surface)
	if err != nil {
		return nil, err
	}

	groupBy := models.PersonColumnSalesPerson
	if surface == models.SurfaceTechSummary {
		groupBy = models.PersonColumnPickupPerson
	}

	reports := make([]models.ItemReport, 0, len(items))
	for _, item := range items {
		stats, err := e.ItemStats(ctx, item, period, branch, groupBy)
		if err != nil {
			return nil, err
		}
		reports = append(reports, models.ItemReport{
			ItemID:      item.ID,
			ItemName:    item.ItemName,
			CountMethod: item.CountMethod,
			Stats:       stats,
		})
	}

	return reports, nil
}

// BranchOverview computes each branch-overview item's totals per branch plus
// the synthetic group total.
func (e *Engine) BranchOverview(ctx context.Context, period string) ([]models.BranchOverviewItem, error) {
	ctx, span := tracing.StartSpan(ctx, "tracking.Engine.BranchOverview")
	defer span.End()

	items, err := e.items.ListActive(ctx, models.SurfaceBranchOverview)
	if err != nil {
		return nil, err
	}

	overview := make([]models.BranchOverviewItem, 0, len(items))
	for _, item := range items {
		branchTotals := map[string]float64{}
		total := 0.0

		for _, branch := range e.branches {
			branch := branch
			stats, err := e.ItemStats(ctx, item, period, &branch, models.PersonColumnSalesPerson)
			if err != nil {
				return nil, err
			}

			branchTotal := 0.0
			for _, stat := range stats {
				branchTotal += stat.Value
			}
			branchTotals[branch] = branchTotal
			total += branchTotal
		}
		branchTotals[GroupTotalCode] = total

		overview = append(overview, models.BranchOverviewItem{
			ItemID:      item.ID,
			ItemName:    item.ItemName,
			CountMethod: item.CountMethod,
			Branches:    branchTotals,
		})
	}

	return overview, nil
}
