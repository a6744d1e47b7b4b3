package models

import "time"

// RepairIncome is one settled work order's income breakdown
type RepairIncome struct {
	ID                int64      `json:"id,omitempty" db:"id"`
	Period            string     `json:"period" db:"period"`
	Branch            string     `json:"branch" db:"branch"`
	WorkOrder         string     `json:"work_order" db:"work_order"`
	SettleDate        *time.Time `json:"settle_date" db:"settle_date"`
	Customer          string     `json:"customer" db:"customer"`
	PlateNo           string     `json:"plate_no" db:"plate_no"`
	AccountTypeCode   string     `json:"account_type_code" db:"account_type_code"`
	AccountType       string     `json:"account_type" db:"account_type"`
	PartsIncome       float64    `json:"parts_income" db:"parts_income"`
	AccessoriesIncome float64    `json:"accessories_income" db:"accessories_income"`
	BoutiqueIncome    float64    `json:"boutique_income" db:"boutique_income"`
	EngineWage        float64    `json:"engine_wage" db:"engine_wage"`
	BodyworkIncome    float64    `json:"bodywork_income" db:"bodywork_income"`
	PaintIncome       float64    `json:"paint_income" db:"paint_income"`
	CarwashIncome     float64    `json:"carwash_income" db:"carwash_income"`
	OutsourceIncome   float64    `json:"outsource_income" db:"outsource_income"`
	AddonIncome       float64    `json:"addon_income" db:"addon_income"`
	TotalUntaxed      float64    `json:"total_untaxed" db:"total_untaxed"`
	TotalTaxed        float64    `json:"total_taxed" db:"total_taxed"`
	PartsCost         float64    `json:"parts_cost" db:"parts_cost"`
	ServiceAdvisor    string     `json:"service_advisor" db:"service_advisor"`
	IsSelfPayBodywork bool       `json:"is_self_pay_bodywork,omitempty" db:"is_self_pay_bodywork"`
	CreatedAt         time.Time  `json:"created_at,omitempty" db:"created_at"`
}
