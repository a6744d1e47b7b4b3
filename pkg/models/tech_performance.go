package models

import "time"

// TechPerformance is one technician work line. is_beauty and car_count_flag
// are derived after load.
type TechPerformance struct {
	ID            int64      `json:"id,omitempty" db:"id"`
	Period        string     `json:"period" db:"period"`
	Branch        string     `json:"branch" db:"branch"`
	TechNameRaw   string     `json:"tech_name_raw" db:"tech_name_raw"`
	TechNameClean string     `json:"tech_name_clean" db:"tech_name_clean"`
	DispatchDate  *time.Time `json:"dispatch_date" db:"dispatch_date"`
	WorkOrder     string     `json:"work_order" db:"work_order"`
	WorkCode      string     `json:"work_code" db:"work_code"`
	TaskContent   string     `json:"task_content" db:"task_content"`
	StandardHours float64    `json:"standard_hours" db:"standard_hours"`
	Wage          float64    `json:"wage" db:"wage"`
	AccountType   string     `json:"account_type" db:"account_type"`
	Discount      float64    `json:"discount" db:"discount"`
	WageCategory  string     `json:"wage_category" db:"wage_category"`
	IsBeauty      bool       `json:"is_beauty,omitempty" db:"is_beauty"`
	CarCountFlag  int        `json:"car_count_flag,omitempty" db:"car_count_flag"`
	CreatedAt     time.Time  `json:"created_at,omitempty" db:"created_at"`
}
