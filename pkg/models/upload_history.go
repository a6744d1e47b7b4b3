package models

import (
	"time"

	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
)

// DeriveSummary records what the derivation pass touched during one load
type DeriveSummary struct {
	SelfPayBodywork   int64 `json:"self_pay_bodywork,omitempty"`
	WarrantyExt       int64 `json:"warranty_ext,omitempty"`
	Pirelli           int64 `json:"pirelli,omitempty"`
	PromoBonusApplied bool  `json:"promo_bonus_applied,omitempty"`
	Beauty            int64 `json:"beauty,omitempty"`
	CarCountApplied   bool  `json:"car_count_applied,omitempty"`
}

// UploadRecord is one entry of the ingestion audit trail
type UploadRecord struct {
	ID         int64                         `json:"id" db:"id"`
	FileName   string                        `json:"file_name" db:"file_name"`
	FileType   string                        `json:"file_type" db:"file_type"`
	Branch     *string                       `json:"branch" db:"branch"`
	Period     *string                       `json:"period" db:"period"`
	RowCount   int                           `json:"row_count" db:"row_count"`
	Status     string                        `json:"status" db:"status"`
	UploadedBy string                        `json:"uploaded_by" db:"uploaded_by"`
	Details    database.JSONB[DeriveSummary] `json:"details" db:"details"`
	CreatedAt  time.Time                     `json:"created_at" db:"created_at"`
}
