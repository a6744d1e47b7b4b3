package models

import "time"

// PartsSale is one row of the parts ledger. The is_warranty_ext, is_pirelli
// and promo_bonus columns are derived after load, never supplied by callers.
type PartsSale struct {
	ID               int64     `json:"id,omitempty" db:"id"`
	Period           string    `json:"period" db:"period"`
	Branch           *string   `json:"branch" db:"branch"`
	Category         string    `json:"category" db:"category"`
	CategoryDetail   string    `json:"category_detail" db:"category_detail"`
	OrderNo          string    `json:"order_no" db:"order_no"`
	WorkOrder        string    `json:"work_order" db:"work_order"`
	PartNumber       string    `json:"part_number" db:"part_number"`
	PartName         string    `json:"part_name" db:"part_name"`
	PartType         string    `json:"part_type" db:"part_type"`
	CategoryCode     string    `json:"category_code" db:"category_code"`
	FunctionCode     string    `json:"function_code" db:"function_code"`
	SaleQty          float64   `json:"sale_qty" db:"sale_qty"`
	RetailPrice      float64   `json:"retail_price" db:"retail_price"`
	SalePriceUntaxed float64   `json:"sale_price_untaxed" db:"sale_price_untaxed"`
	CostUntaxed      float64   `json:"cost_untaxed" db:"cost_untaxed"`
	DiscountRate     float64   `json:"discount_rate" db:"discount_rate"`
	Department       string    `json:"department" db:"department"`
	PickupPerson     string    `json:"pickup_person" db:"pickup_person"`
	SalesPerson      string    `json:"sales_person" db:"sales_person"`
	PlateNo          string    `json:"plate_no" db:"plate_no"`
	IsWarrantyExt    bool      `json:"is_warranty_ext,omitempty" db:"is_warranty_ext"`
	IsPirelli        bool      `json:"is_pirelli,omitempty" db:"is_pirelli"`
	PromoBonus       float64   `json:"promo_bonus,omitempty" db:"promo_bonus"`
	CreatedAt        time.Time `json:"created_at,omitempty" db:"created_at"`
}
