package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/moimapp/moim/internal/model"
)

type MealStore struct {
	db *sql.DB
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db}
}

const mealCols = `id, group_id, restaurant_name, date, total_amount, amount_per_person, created_at`

// GetByID returns the meal with its participant member ids, or nil if it
// does not exist.
func (s *MealStore) GetByID(id int64) (*model.MealWithParticipants, error) {
	var m model.MealWithParticipants
	err := s.db.QueryRow(
		`SELECT `+mealCols+` FROM meals WHERE id = ?`, id,
	).Scan(&m.ID, &m.GroupID, &m.RestaurantName, &m.Date, &m.TotalAmount, &m.AmountPerPerson, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT member_id FROM meal_participants WHERE meal_id = ? ORDER BY member_id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID int64
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		m.ParticipantIDs = append(m.ParticipantIDs, memberID)
	}
	return &m, rows.Err()
}

// ListByGroup returns the group's most recent meals with participant names
// joined in, newest date first.
func (s *MealStore) ListByGroup(groupID int64, limit int) ([]model.MealListItem, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT m.id, m.group_id, m.restaurant_name, m.date, m.total_amount, m.amount_per_person, m.created_at,
		        COALESCE(GROUP_CONCAT(mem.name), '')
		 FROM meals m
		 LEFT JOIN meal_participants mp ON m.id = mp.meal_id
		 LEFT JOIN members mem ON mp.member_id = mem.id
		 WHERE m.group_id = ?
		 GROUP BY m.id
		 ORDER BY m.date DESC, m.id DESC
		 LIMIT ?`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []model.MealListItem
	for rows.Next() {
		var m model.MealListItem
		var names string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.RestaurantName, &m.Date, &m.TotalAmount, &m.AmountPerPerson, &m.CreatedAt, &names); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		if names != "" {
			m.ParticipantNames = strings.Split(names, ",")
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}
