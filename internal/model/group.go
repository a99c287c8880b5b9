package model

import "time"

// Group is a dining group owned by a single user. OverheadBalance pools the
// rounding remainders collected from meals; it never goes negative.
type Group struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	OverheadBalance int64      `json:"overhead_balance"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	DissolvedAt     *time.Time `json:"dissolved_at"`
}

// GroupSummary is the display aggregate for a group's finances.
type GroupSummary struct {
	GroupID          int64 `json:"group_id"`
	OverheadBalance  int64 `json:"overhead_balance"`
	MemberBalanceSum int64 `json:"member_balance_sum"`
	ActiveMembers    int   `json:"active_members"`
}
