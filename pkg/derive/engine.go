// Package derive applies the fixed post-load enrichment rules to the fact
// tables: self-pay bodywork flags, warranty and tire flags, tiered promo
// bonuses, beauty work flags and per-vehicle count flags.
package derive

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
)

const (
	selfPayBodyworkSQL = `
		UPDATE repair_income SET is_self_pay_bodywork = true
		WHERE period = $1 AND branch = $2
		  AND account_type IN ('一般', 'C')
		  AND (bodywork_income > 0 OR paint_income > 0)`

	warrantyExtSQL = `
		UPDATE parts_sales SET is_warranty_ext = true
		WHERE period = $1 AND ($2::text IS NULL OR branch = $2)
		  AND part_number LIKE '7013%'`

	pirelliSQL = `
		UPDATE parts_sales SET is_pirelli = true
		WHERE period = $1 AND ($2::text IS NULL OR branch = $2)
		  AND part_number LIKE '7489%'`

	promoBonusSQL = `
		UPDATE parts_sales SET promo_bonus = sale_price_untaxed * $1
		WHERE period = $2 AND ($3::text IS NULL OR branch = $3)
		  AND part_type = $4
		  AND discount_rate >= $5 AND discount_rate <= $6
		  AND promo_bonus = 0`

	beautySQL = `
		UPDATE tech_performance tp SET is_beauty = true
		FROM work_hour_master wh
		WHERE tp.work_code = wh.work_code
		  AND wh.definition = '美容'
		  AND tp.period = $1 AND tp.branch = $2`

	carCountSQL = `
		WITH ranked AS (
			SELECT id, ROW_NUMBER() OVER (
				PARTITION BY dispatch_date, work_order, branch
				ORDER BY id
			) AS rn
			FROM tech_performance
			WHERE period = $1 AND branch = $2
		)
		UPDATE tech_performance SET car_count_flag = CASE WHEN ranked.rn = 1 THEN 1 ELSE 0 END
		FROM ranked WHERE tech_performance.id = ranked.id`

	activePromoRulesSQL = `
		SELECT id, rule_name, applicable_types, discount_min, discount_max, bonus_rate, is_active, created_at
		FROM promo_rules WHERE is_active = true ORDER BY discount_min`
)

// Engine runs the enrichment statements inside the load transaction
type Engine struct {
	logger ectologger.Logger
}

func NewEngine(logger ectologger.Logger) *Engine {
	return &Engine{logger: logger}
}

// RepairIncome flags self-pay bodywork orders for one period and branch
func (e *Engine) RepairIncome(ctx context.Context, tx database.Tx, period, branch string) (models.DeriveSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "derive.Engine.RepairIncome")
	defer span.End()

	var summary models.DeriveSummary

	result, err := tx.ExecContext(ctx, selfPayBodyworkSQL, period, branch)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to flag self-pay bodywork")
		return summary, httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive repair income flags")
	}
	summary.SelfPayBodywork, _ = result.RowsAffected()

	return summary, nil
}

// PartsSales flags warranty extension and Pirelli rows, then applies the
// tiered promo bonus schedule
func (e *Engine) PartsSales(ctx context.Context, tx database.Tx, period string, branch *string) (models.DeriveSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "derive.Engine.PartsSales")
	defer span.End()

	var summary models.DeriveSummary

	result, err := tx.ExecContext(ctx, warrantyExtSQL, period, branch)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to flag warranty extensions")
		return summary, httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive parts sales flags")
	}
	summary.WarrantyExt, _ = result.RowsAffected()

	result, err = tx.ExecContext(ctx, pirelliSQL, period, branch)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to flag Pirelli sales")
		return summary, httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive parts sales flags")
	}
	summary.Pirelli, _ = result.RowsAffected()

	if err := e.applyPromoBonus(ctx, tx, period, branch); err != nil {
		return summary, err
	}
	summary.PromoBonusApplied = true

	return summary, nil
}

// applyPromoBonus walks the active tiers in discount_min order. A row keeps
// the first bonus that lands on it because later tiers require promo_bonus
// to still be zero.
func (e *Engine) applyPromoBonus(ctx context.Context, tx database.Tx, period string, branch *string) error {
	var rules []models.PromoRule
	if err := tx.SelectContext(ctx, &rules, activePromoRulesSQL); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to load promo rules")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load promo rules")
	}

	for _, rule := range rules {
		if _, err := tx.ExecContext(ctx, promoBonusSQL,
			rule.BonusRate, period, branch, rule.ApplicableTypes,
			rule.DiscountMin, rule.DiscountMax); err != nil {
			e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"rule_id": rule.ID,
			}).Error("Failed to apply promo bonus tier")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to apply promo bonus")
		}
	}

	return nil
}

// TechPerformance flags beauty work lines via the work hour master and marks
// the first line of each (dispatch date, work order, branch) group as the
// vehicle-count carrier
func (e *Engine) TechPerformance(ctx context.Context, tx database.Tx, period, branch string) (models.DeriveSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "derive.Engine.TechPerformance")
	defer span.End()

	var summary models.DeriveSummary

	result, err := tx.ExecContext(ctx, beautySQL, period, branch)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to flag beauty work lines")
		return summary, httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive tech performance flags")
	}
	summary.Beauty, _ = result.RowsAffected()

	if _, err := tx.ExecContext(ctx, carCountSQL, period, branch); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to set vehicle count flags")
		return summary, httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive tech performance flags")
	}
	summary.CarCountApplied = true

	return summary, nil
}
