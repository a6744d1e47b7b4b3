package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportSurface identifies a dashboard view that may include a tracked item
type ReportSurface string

const (
	SurfaceSASummary      ReportSurface = "sa_summary"
	SurfaceTechSummary    ReportSurface = "tech_summary"
	SurfaceBeauty         ReportSurface = "beauty"
	SurfaceBodywork       ReportSurface = "bodywork"
	SurfaceBranchOverview ReportSurface = "branch_overview"
)

// SurfaceColumn returns the tracking_items visibility column for a surface.
// Unknown surfaces return false, which callers treat as "no surface filter".
func SurfaceColumn(surface ReportSurface) (string, bool) {
	switch surface {
	case SurfaceSASummary:
		return "show_in_sa_summary", true
	case SurfaceTechSummary:
		return "show_in_tech_summary", true
	case SurfaceBeauty:
		return "show_in_beauty", true
	case SurfaceBodywork:
		return "show_in_bodywork", true
	case SurfaceBranchOverview:
		return "show_in_branch_overview", true
	default:
		return "", false
	}
}

// CountMethod determines which numeric column of a matched fact row
// contributes to the aggregate
type CountMethod string

const (
	CountMethodQuantity     CountMethod = "quantity"
	CountMethodAmount       CountMethod = "amount"
	CountMethodLiters       CountMethod = "liters"
	CountMethodVehicleCount CountMethod = "vehicle_count"
)

// RuleSource identifies the fact table a match rule applies to
type RuleSource string

const (
	RuleSourcePartsSales    RuleSource = "parts_sales"
	RuleSourceBusinessQuery RuleSource = "business_query"
)

// RuleKind identifies the matching strategy of a rule
type RuleKind string

const (
	RuleKindCategoryCode RuleKind = "category_code"
	RuleKindFunctionCode RuleKind = "function_code"
	RuleKindBoth         RuleKind = "both"
	RuleKindPartNumber   RuleKind = "part_number"
	RuleKindCondition    RuleKind = "condition"
)

// MatchRule is one atomic-or-compound matching condition of a tracked item.
// Rules belonging to the same item are combined with OR. A rule missing the
// fields its kind requires contributes nothing; it is never an error.
type MatchRule struct {
	Source         RuleSource `json:"data_source"`
	Kind           RuleKind   `json:"match_type"`
	CategoryCode   string     `json:"category_code,omitempty"`
	FunctionCode   string     `json:"function_code,omitempty"`
	PartNumber     string     `json:"part_number,omitempty"`
	ConditionField string     `json:"condition_field,omitempty"`
	ConditionValue string     `json:"condition_value,omitempty"`
}

// MatchRules is the JSONB rule list stored on a tracked item
type MatchRules []MatchRule

// Value implements driver.Valuer for JSONB storage
func (m MatchRules) Value() (driver.Value, error) {
	if m == nil {
		m = MatchRules{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *MatchRules) Scan(src any) error {
	if src == nil {
		*m = MatchRules{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MatchRules", src)
	}

	return json.Unmarshal(data, m)
}

// BySource partitions the rules by fact source
func (m MatchRules) BySource(source RuleSource) MatchRules {
	var out MatchRules
	for _, rule := range m {
		if rule.Source == source {
			out = append(out, rule)
		}
	}
	return out
}

// TrackedItem is an administrator-defined metric computed via match rules
// against the fact tables
type TrackedItem struct {
	ID                   int64       `json:"id" db:"id"`
	ItemName             string      `json:"item_name" db:"item_name"`
	ItemCategory         string      `json:"item_category" db:"item_category"`
	CountMethod          CountMethod `json:"count_method" db:"count_method"`
	MatchRules           MatchRules  `json:"match_rules" db:"match_rules"`
	ShowInSASummary      bool        `json:"show_in_sa_summary" db:"show_in_sa_summary"`
	ShowInTechSummary    bool        `json:"show_in_tech_summary" db:"show_in_tech_summary"`
	ShowInBeauty         bool        `json:"show_in_beauty" db:"show_in_beauty"`
	ShowInBodywork       bool        `json:"show_in_bodywork" db:"show_in_bodywork"`
	ShowInBranchOverview bool        `json:"show_in_branch_overview" db:"show_in_branch_overview"`
	IsActive             bool        `json:"is_active" db:"is_active"`
	SortOrder            int         `json:"sort_order" db:"sort_order"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateTrackedItemRequest is the request to create a tracked item
type CreateTrackedItemRequest struct {
	ItemName             string      `json:"item_name" validate:"required"`
	ItemCategory         string      `json:"item_category"`
	CountMethod          CountMethod `json:"count_method" validate:"omitempty,oneof=quantity amount liters vehicle_count"`
	MatchRules           MatchRules  `json:"match_rules"`
	ShowInSASummary      bool        `json:"show_in_sa_summary"`
	ShowInTechSummary    bool        `json:"show_in_tech_summary"`
	ShowInBeauty         bool        `json:"show_in_beauty"`
	ShowInBodywork       bool        `json:"show_in_bodywork"`
	ShowInBranchOverview bool        `json:"show_in_branch_overview"`
	SortOrder            int         `json:"sort_order"`
}

// UpdateTrackedItemRequest is the request to update a tracked item
type UpdateTrackedItemRequest struct {
	ItemName             *string      `json:"item_name,omitempty"`
	ItemCategory         *string      `json:"item_category,omitempty"`
	CountMethod          *CountMethod `json:"count_method,omitempty" validate:"omitempty,oneof=quantity amount liters vehicle_count"`
	MatchRules           MatchRules   `json:"match_rules,omitempty"`
	ShowInSASummary      *bool        `json:"show_in_sa_summary,omitempty"`
	ShowInTechSummary    *bool        `json:"show_in_tech_summary,omitempty"`
	ShowInBeauty         *bool        `json:"show_in_beauty,omitempty"`
	ShowInBodywork       *bool        `json:"show_in_bodywork,omitempty"`
	ShowInBranchOverview *bool        `json:"show_in_branch_overview,omitempty"`
	IsActive             *bool        `json:"is_active,omitempty"`
	SortOrder            *int         `json:"sort_order,omitempty"`
}
