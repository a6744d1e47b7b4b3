package models

import "time"

// BusinessOrder is one row of the business ledger (work-order register).
// repair_type, is_ev, status and car_series are the only columns tracked-item
// condition rules may reference.
type BusinessOrder struct {
	ID             int64      `json:"id,omitempty" db:"id"`
	Period         string     `json:"period" db:"period"`
	Branch         *string    `json:"branch" db:"branch"`
	WorkOrder      string     `json:"work_order" db:"work_order"`
	OpenTime       *time.Time `json:"open_time" db:"open_time"`
	SettleDate     *time.Time `json:"settle_date" db:"settle_date"`
	PlateNo        string     `json:"plate_no" db:"plate_no"`
	VIN            string     `json:"vin" db:"vin"`
	Status         string     `json:"status" db:"status"`
	RepairItem     string     `json:"repair_item" db:"repair_item"`
	ServiceAdvisor string     `json:"service_advisor" db:"service_advisor"`
	AssignedTech   string     `json:"assigned_tech" db:"assigned_tech"`
	RepairTech     string     `json:"repair_tech" db:"repair_tech"`
	RepairType     string     `json:"repair_type" db:"repair_type"`
	CarSeries      string     `json:"car_series" db:"car_series"`
	CarModel       string     `json:"car_model" db:"car_model"`
	ModelYear      string     `json:"model_year" db:"model_year"`
	Owner          string     `json:"owner" db:"owner"`
	IsEV           string     `json:"is_ev" db:"is_ev"`
	MileageIn      *int       `json:"mileage_in" db:"mileage_in"`
	MileageOut     *int       `json:"mileage_out" db:"mileage_out"`
	CreatedAt      time.Time  `json:"created_at,omitempty" db:"created_at"`
}

// ConditionFields are the business ledger columns a condition rule may match
// against. Anything outside this set is skipped at compile time.
var ConditionFields = map[string]bool{
	"repair_type": true,
	"is_ev":       true,
	"status":      true,
	"car_series":  true,
}
