package model

import "time"

// Transaction types. The stored amount is a magnitude; the sign applied to
// balances is implied by the type.
const (
	// TxDeposit credits a member's balance. The only type that may be
	// edited or deleted directly after the fact.
	TxDeposit = "deposit"
	// TxMeal debits a member's balance for their share of a meal.
	TxMeal = "meal"
	// TxOverheadAccrual credits the group overhead pool with a meal's
	// rounding remainder. Group-level, no member.
	TxOverheadAccrual = "overhead_accrual"
	// TxOverheadUsage debits the group overhead pool. Group-level, no member.
	TxOverheadUsage = "overhead_usage"
)

// Transaction is one row of the append-oriented audit log. Meal-derived rows
// (meal, overhead_accrual) are created and removed only by the meal
// lifecycle, never edited in place.
type Transaction struct {
	ID            int64     `json:"id"`
	GroupID       *int64    `json:"group_id"`
	MemberID      *int64    `json:"member_id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Note          string    `json:"note"`
	RelatedMealID *int64    `json:"related_meal_id"`
	CreatedAt     time.Time `json:"created_at"`
}
