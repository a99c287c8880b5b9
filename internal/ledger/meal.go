package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/moimapp/moim/internal/model"
	"github.com/moimapp/moim/internal/split"
)

// MealInput carries the caller-supplied fields for recording or editing a
// meal. The per-person charge is never accepted from the caller; it is
// recomputed from TotalAmount and the participant count so the stored value
// cannot drift from the split calculation.
type MealInput struct {
	RestaurantName string
	Date           string // YYYY-MM-DD
	TotalAmount    int64
	ParticipantIDs []int64
}

func (in *MealInput) validate() error {
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	if in.RestaurantName == "" {
		return fmt.Errorf("%w: restaurant name is required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if in.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	}
	if len(in.ParticipantIDs) == 0 {
		return fmt.Errorf("%w: at least one participant is required", ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		if seen[id] {
			return fmt.Errorf("%w: duplicate participant %d", ErrInvalidInput, id)
		}
		seen[id] = true
	}
	return nil
}

// checkParticipants verifies every participant id is an active member of the
// group. Withdrawn members keep their frozen balance and may not be charged.
func checkParticipants(tx *sql.Tx, groupID int64, participantIDs []int64) error {
	for _, id := range participantIDs {
		var active bool
		err := tx.QueryRow(
			`SELECT is_active FROM members WHERE id = ? AND group_id = ?`,
			id, groupID,
		).Scan(&active)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: member %d is not in the group", ErrInvalidInput, id)
		}
		if err != nil {
			return fmt.Errorf("query participant %d: %w", id, err)
		}
		if !active {
			return fmt.Errorf("%w: member %d has withdrawn", ErrInvalidInput, id)
		}
	}
	return nil
}

// applyMealEffects charges each participant, writes their meal transaction,
// and accrues the rounding overhead on the group. Shared by RecordMeal and
// UpdateMeal so create and reapply cannot diverge.
func applyMealEffects(tx *sql.Tx, groupID, mealID int64, in MealInput, s split.Split) error {
	for _, memberID := range in.ParticipantIDs {
		if _, err := tx.Exec(
			`INSERT INTO meal_participants (meal_id, member_id) VALUES (?, ?)`,
			mealID, memberID,
		); err != nil {
			return fmt.Errorf("insert participant %d: %w", memberID, err)
		}
		if _, err := tx.Exec(
			`UPDATE members SET balance = balance - ? WHERE id = ?`,
			s.PerPerson, memberID,
		); err != nil {
			return fmt.Errorf("charge member %d: %w", memberID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO transactions (group_id, member_id, type, amount, note, related_meal_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			groupID, memberID, model.TxMeal, s.PerPerson,
			fmt.Sprintf("Meal at %s", in.RestaurantName), mealID,
		); err != nil {
			return fmt.Errorf("insert meal transaction for member %d: %w", memberID, err)
		}
	}

	if s.Overhead > 0 {
		if _, err := tx.Exec(
			`UPDATE groups SET overhead_balance = overhead_balance + ? WHERE id = ?`,
			s.Overhead, groupID,
		); err != nil {
			return fmt.Errorf("accrue overhead: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO transactions (group_id, type, amount, note, related_meal_id)
			 VALUES (?, ?, ?, ?, ?)`,
			groupID, model.TxOverheadAccrual, s.Overhead,
			fmt.Sprintf("Rounding overhead from %s", in.RestaurantName), mealID,
		); err != nil {
			return fmt.Errorf("insert overhead accrual: %w", err)
		}
	}
	return nil
}

// reverseMealEffects refunds the meal's participants, reverses its overhead
// accrual, and deletes the derived transaction and participant rows. The
// meal row itself is left for the caller to update or delete.
func reverseMealEffects(tx *sql.Tx, meal *model.Meal) error {
	rows, err := tx.Query(
		`SELECT member_id FROM meal_participants WHERE meal_id = ?`, meal.ID,
	)
	if err != nil {
		return fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participantIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		participantIDs = append(participantIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate participants: %w", err)
	}

	for _, memberID := range participantIDs {
		if _, err := tx.Exec(
			`UPDATE members SET balance = balance + ? WHERE id = ?`,
			meal.AmountPerPerson, memberID,
		); err != nil {
			return fmt.Errorf("refund member %d: %w", memberID, err)
		}
	}

	overhead := meal.AmountPerPerson*int64(len(participantIDs)) - meal.TotalAmount
	if overhead > 0 {
		if _, err := tx.Exec(
			`UPDATE groups SET overhead_balance = overhead_balance - ? WHERE id = ?`,
			overhead, meal.GroupID,
		); err != nil {
			return fmt.Errorf("reverse overhead: %w", err)
		}
	}

	if _, err := tx.Exec(
		`DELETE FROM transactions WHERE related_meal_id = ?`, meal.ID,
	); err != nil {
		return fmt.Errorf("delete meal transactions: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM meal_participants WHERE meal_id = ?`, meal.ID,
	); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}

// loadMeal fetches a meal and authorizes the actor against its group's owner.
func loadMeal(tx *sql.Tx, mealID, actorID int64) (*model.Meal, error) {
	var m model.Meal
	var ownerID int64
	err := tx.QueryRow(
		`SELECT m.id, m.group_id, m.restaurant_name, m.date, m.total_amount, m.amount_per_person, m.created_at, g.user_id
		 FROM meals m JOIN groups g ON m.group_id = g.id
		 WHERE m.id = ?`,
		mealID,
	).Scan(&m.ID, &m.GroupID, &m.RestaurantName, &m.Date, &m.TotalAmount, &m.AmountPerPerson, &m.CreatedAt, &ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("meal %d: %w", mealID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query meal: %w", err)
	}
	if ownerID != actorID {
		return nil, fmt.Errorf("meal %d: %w", mealID, ErrUnauthorized)
	}
	return &m, nil
}

// RecordMeal creates a meal, charges every participant the rounded
// per-person share, and accrues the rounding remainder on the group
// overhead pool, all in one transaction. Returns the new meal id.
func (l *Ledger) RecordMeal(actorID, groupID int64, in MealInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := ownGroup(tx, groupID, actorID); err != nil {
		return 0, err
	}
	if err := checkParticipants(tx, groupID, in.ParticipantIDs); err != nil {
		return 0, err
	}

	s := split.Compute(in.TotalAmount, int64(len(in.ParticipantIDs)))

	result, err := tx.Exec(
		`INSERT INTO meals (group_id, restaurant_name, date, total_amount, amount_per_person)
		 VALUES (?, ?, ?, ?, ?)`,
		groupID, in.RestaurantName, in.Date, in.TotalAmount, s.PerPerson,
	)
	if err != nil {
		return 0, fmt.Errorf("insert meal: %w", err)
	}
	mealID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := applyMealEffects(tx, groupID, mealID, in, s); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return mealID, nil
}

// UpdateMeal rewrites a meal as if the old record never existed: refund old
// participants, reverse the old overhead, drop the derived rows, then apply
// the new fields and effects. Reverse-then-reapply keeps the audit trail
// correct even when the old and new participant sets overlap.
func (l *Ledger) UpdateMeal(actorID, mealID int64, in MealInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	meal, err := loadMeal(tx, mealID, actorID)
	if err != nil {
		return err
	}
	if err := checkParticipants(tx, meal.GroupID, in.ParticipantIDs); err != nil {
		return err
	}

	if err := reverseMealEffects(tx, meal); err != nil {
		return err
	}

	s := split.Compute(in.TotalAmount, int64(len(in.ParticipantIDs)))
	if _, err := tx.Exec(
		`UPDATE meals SET restaurant_name = ?, date = ?, total_amount = ?, amount_per_person = ?
		 WHERE id = ?`,
		in.RestaurantName, in.Date, in.TotalAmount, s.PerPerson, mealID,
	); err != nil {
		return fmt.Errorf("update meal: %w", err)
	}

	if err := applyMealEffects(tx, meal.GroupID, mealID, in, s); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteMeal reverses the meal's balance and overhead effects, removes its
// transactions and participant rows, and deletes the meal itself.
func (l *Ledger) DeleteMeal(actorID, mealID int64) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	meal, err := loadMeal(tx, mealID, actorID)
	if err != nil {
		return err
	}

	if err := reverseMealEffects(tx, meal); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM meals WHERE id = ?`, mealID); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}

	return tx.Commit()
}
