package models

// PersonColumn is the grouping identity column of a report query. Only the
// known columns are ever interpolated into SQL; anything else falls back to
// sales_person.
type PersonColumn string

const (
	PersonColumnSalesPerson    PersonColumn = "sales_person"
	PersonColumnPickupPerson   PersonColumn = "pickup_person"
	PersonColumnServiceAdvisor PersonColumn = "service_advisor"
)

// Column returns the SQL column name for the grouping identity.
func (p PersonColumn) Column() string {
	switch p {
	case PersonColumnPickupPerson:
		return "pickup_person"
	case PersonColumnServiceAdvisor:
		return "service_advisor"
	default:
		return "sales_person"
	}
}

// PersonAggregate is one person's aggregated value for a tracked item
type PersonAggregate struct {
	PersonName string  `json:"person_name" db:"person_name"`
	Value      float64 `json:"value" db:"value"`
}

// ItemReport is one tracked item's per-person breakdown on a report surface
type ItemReport struct {
	ItemID      int64             `json:"item_id"`
	ItemName    string            `json:"item_name"`
	CountMethod CountMethod       `json:"count_method"`
	Stats       []PersonAggregate `json:"stats"`
}

// BranchOverviewItem is one tracked item's per-branch totals, including the
// synthetic group total
type BranchOverviewItem struct {
	ItemID      int64              `json:"item_id"`
	ItemName    string             `json:"item_name"`
	CountMethod CountMethod        `json:"count_method"`
	Branches    map[string]float64 `json:"branches"`
}

// PartsAggregateQuery is a grouped sum over the parts ledger for a set of
// OR-combined rules
type PartsAggregateQuery struct {
	Period      string
	Branch      *string
	GroupBy     PersonColumn
	CountMethod CountMethod
	Rules       MatchRules
}

// BusinessCountQuery is a grouped count over the business ledger for a single
// whitelisted field condition
type BusinessCountQuery struct {
	Period string
	Branch *string
	Field  string
	Value  string
}
