package model

import "time"

// Meal is a recorded shared meal. AmountPerPerson is the rounded-up charge
// applied to each participant; AmountPerPerson * participant count is always
// >= TotalAmount, with the difference accrued as group overhead.
type Meal struct {
	ID              int64     `json:"id"`
	GroupID         int64     `json:"group_id"`
	RestaurantName  string    `json:"restaurant_name"`
	Date            string    `json:"date"` // calendar date, YYYY-MM-DD
	TotalAmount     int64     `json:"total_amount"`
	AmountPerPerson int64     `json:"amount_per_person"`
	CreatedAt       time.Time `json:"created_at"`
}

// MealWithParticipants is a meal joined with its participant member ids.
type MealWithParticipants struct {
	Meal
	ParticipantIDs []int64 `json:"participant_ids"`
}

// MealListItem is a meal row for group history views, with participant
// names pre-joined.
type MealListItem struct {
	Meal
	ParticipantNames []string `json:"participant_names"`
}
