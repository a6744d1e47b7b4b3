package models

import "time"

// PromoRule is one tier of the promo bonus schedule. Tiers apply in
// discount_min order; a row keeps the first bonus that lands on it.
type PromoRule struct {
	ID              int64     `json:"id" db:"id"`
	RuleName        string    `json:"rule_name" db:"rule_name"`
	ApplicableTypes string    `json:"applicable_types" db:"applicable_types"`
	DiscountMin     float64   `json:"discount_min" db:"discount_min"`
	DiscountMax     float64   `json:"discount_max" db:"discount_max"`
	BonusRate       float64   `json:"bonus_rate" db:"bonus_rate"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at,omitempty" db:"created_at"`
}
