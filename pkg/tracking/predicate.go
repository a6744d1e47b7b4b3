package tracking

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

// CompilePartsRule renders one parts-ledger rule into a condition on the
// given builder. The builder owns placeholder numbering, so every value is
// bound as a parameter. Malformed rules produce an empty string.
func CompilePartsRule(sb *sqlbuilder.SelectBuilder, rule models.MatchRule) string {
	switch rule.Kind {
	case models.RuleKindCategoryCode:
		if rule.CategoryCode == "" {
			return ""
		}
		return sb.Equal("category_code", rule.CategoryCode)
	case models.RuleKindFunctionCode:
		if rule.FunctionCode == "" {
			return ""
		}
		return sb.Equal("function_code", rule.FunctionCode)
	case models.RuleKindBoth:
		if rule.CategoryCode == "" || rule.FunctionCode == "" {
			return ""
		}
		return sb.And(
			sb.Equal("category_code", rule.CategoryCode),
			sb.Equal("function_code", rule.FunctionCode),
		)
	case models.RuleKindPartNumber:
		if rule.PartNumber == "" {
			return ""
		}
		if strings.Contains(rule.PartNumber, "%") {
			return sb.Like("part_number", rule.PartNumber)
		}
		return sb.Equal("part_number", rule.PartNumber)
	default:
		return ""
	}
}

// CompilePartsRules ORs the compiled conditions of all well-formed rules.
// Returns an empty string when nothing compiles, which callers treat as
// "run no query".
func CompilePartsRules(sb *sqlbuilder.SelectBuilder, rules models.MatchRules) string {
	var conditions []string
	for _, rule := range rules {
		if cond := CompilePartsRule(sb, rule); cond != "" {
			conditions = append(conditions, cond)
		}
	}

	switch len(conditions) {
	case 0:
		return ""
	case 1:
		return conditions[0]
	default:
		return sb.Or(conditions...)
	}
}

// ValidBusinessRule reports whether a business-ledger rule is well formed:
// a condition rule with both field and value present, and the field inside
// the fixed whitelist.
func ValidBusinessRule(rule models.MatchRule) bool {
	if rule.Kind != models.RuleKindCondition {
		return false
	}
	if rule.ConditionField == "" || rule.ConditionValue == "" {
		return false
	}
	return models.ConditionFields[rule.ConditionField]
}
