package models

// Dataset identifies one ingestible fact table
type Dataset string

const (
	DatasetPartsSales      Dataset = "parts_sales"
	DatasetBusinessQuery   Dataset = "business_query"
	DatasetRepairIncome    Dataset = "repair_income"
	DatasetTechPerformance Dataset = "tech_performance"
	DatasetPartsCatalog    Dataset = "parts_catalog"
)

// IngestPartsSalesRequest replaces one period of the parts ledger. The source
// export merges all branches, so the delete is period-wide.
type IngestPartsSalesRequest struct {
	FileName string      `json:"file_name"`
	Period   string      `json:"period" validate:"required,len=6,numeric"`
	Branch   *string     `json:"branch,omitempty"`
	Rows     []PartsSale `json:"rows" validate:"required,dive"`
}

// IngestBusinessOrdersRequest replaces one period (optionally one branch) of
// the business ledger
type IngestBusinessOrdersRequest struct {
	FileName string          `json:"file_name"`
	Period   string          `json:"period" validate:"required,len=6,numeric"`
	Branch   *string         `json:"branch,omitempty"`
	Rows     []BusinessOrder `json:"rows" validate:"required,dive"`
}

// IngestRepairIncomeRequest replaces one period and branch of repair income
type IngestRepairIncomeRequest struct {
	FileName string         `json:"file_name"`
	Period   string         `json:"period" validate:"required,len=6,numeric"`
	Branch   string         `json:"branch" validate:"required"`
	Rows     []RepairIncome `json:"rows" validate:"required,dive"`
}

// IngestTechPerformanceRequest replaces one period and branch of technician
// work lines
type IngestTechPerformanceRequest struct {
	FileName string            `json:"file_name"`
	Period   string            `json:"period" validate:"required,len=6,numeric"`
	Branch   string            `json:"branch" validate:"required"`
	Rows     []TechPerformance `json:"rows" validate:"required,dive"`
}

// IngestPartsCatalogRequest upserts catalog entries by part number
type IngestPartsCatalogRequest struct {
	FileName string              `json:"file_name"`
	Rows     []PartsCatalogEntry `json:"rows" validate:"required,dive"`
}

// IngestResult summarizes one completed load
type IngestResult struct {
	Dataset  Dataset       `json:"dataset"`
	Period   *string       `json:"period,omitempty"`
	Branch   *string       `json:"branch,omitempty"`
	RowCount int           `json:"row_count"`
	Derived  DeriveSummary `json:"derived"`
}
