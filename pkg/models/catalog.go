package models

import "time"

// PartsCatalogEntry maps a part number onto its category and function codes.
// Entries are upserted by part number.
type PartsCatalogEntry struct {
	PartNumber   string    `json:"part_number" db:"part_number" validate:"required"`
	PartName     string    `json:"part_name" db:"part_name"`
	PartCategory string    `json:"part_category" db:"part_category"`
	FunctionCode string    `json:"function_code" db:"function_code"`
	CategoryCode string    `json:"category_code" db:"category_code"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// WorkHourDefinition classifies a work code. The derivation pass flags beauty
// work lines through it.
type WorkHourDefinition struct {
	WorkCode   string `json:"work_code" db:"work_code"`
	Definition string `json:"definition" db:"definition"`
	Detail     string `json:"detail" db:"detail"`
}
