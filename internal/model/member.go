package model

import "time"

// Member is a person in a group. Balance is in integer currency units:
// negative means the member owes the group, positive is prepaid credit.
// Balance only changes through transaction-producing ledger operations;
// withdrawing (IsActive=false) freezes it as the settlement amount.
type Member struct {
	ID          int64      `json:"id"`
	GroupID     int64      `json:"group_id"`
	Name        string     `json:"name"`
	Balance     int64      `json:"balance"`
	IsActive    bool       `json:"is_active"`
	JoinedAt    time.Time  `json:"joined_at"`
	WithdrawnAt *time.Time `json:"withdrawn_at"`
}
