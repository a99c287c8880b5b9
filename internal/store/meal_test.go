package store

import (
	"database/sql"
	"testing"

	"github.com/moimapp/moim/internal/database"
)

func setupMealTestDB(t *testing.T) (*sql.DB, *MealStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("hana", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	group, err := NewGroupStore(db).Create(user.ID, "Lunch crew")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return db, NewMealStore(db), group.ID
}

func seedMeal(t *testing.T, db *sql.DB, groupID int64, restaurant, date string, total, perPerson int64, participants ...int64) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO meals (group_id, restaurant_name, date, total_amount, amount_per_person) VALUES (?, ?, ?, ?, ?)`,
		groupID, restaurant, date, total, perPerson,
	)
	if err != nil {
		t.Fatalf("seed meal: %v", err)
	}
	mealID, _ := res.LastInsertId()
	for _, memberID := range participants {
		if _, err := db.Exec(
			`INSERT INTO meal_participants (meal_id, member_id) VALUES (?, ?)`,
			mealID, memberID,
		); err != nil {
			t.Fatalf("seed participant: %v", err)
		}
	}
	return mealID
}

func TestMealGetByID(t *testing.T) {
	db, ms, groupID := setupMealTestDB(t)

	alice := seedMember(t, db, groupID, "Alice", 0, 1)
	bob := seedMember(t, db, groupID, "Bob", 0, 1)
	mealID := seedMeal(t, db, groupID, "Galbi House", "2026-03-14", 10000, 5000, alice, bob)

	meal, err := ms.GetByID(mealID)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if meal == nil {
		t.Fatal("expected meal, got nil")
	}
	if meal.RestaurantName != "Galbi House" || meal.Date != "2026-03-14" {
		t.Errorf("got %q/%q, want Galbi House/2026-03-14", meal.RestaurantName, meal.Date)
	}
	if meal.TotalAmount != 10000 || meal.AmountPerPerson != 5000 {
		t.Errorf("amounts = %d/%d, want 10000/5000", meal.TotalAmount, meal.AmountPerPerson)
	}
	if len(meal.ParticipantIDs) != 2 {
		t.Fatalf("got %d participants, want 2", len(meal.ParticipantIDs))
	}
	if meal.ParticipantIDs[0] != alice || meal.ParticipantIDs[1] != bob {
		t.Errorf("participants = %v, want [%d %d]", meal.ParticipantIDs, alice, bob)
	}

	meal, err = ms.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing meal: %v", err)
	}
	if meal != nil {
		t.Errorf("expected nil for missing meal, got %+v", meal)
	}
}

func TestMealListByGroup(t *testing.T) {
	db, ms, groupID := setupMealTestDB(t)

	alice := seedMember(t, db, groupID, "Alice", 0, 1)
	bob := seedMember(t, db, groupID, "Bob", 0, 1)

	seedMeal(t, db, groupID, "Old Place", "2026-03-01", 9000, 4500, alice, bob)
	newest := seedMeal(t, db, groupID, "New Place", "2026-03-20", 10000, 10000, alice)

	meals, err := ms.ListByGroup(groupID, 0)
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("got %d meals, want 2", len(meals))
	}
	// Newest date first
	if meals[0].ID != newest {
		t.Errorf("first meal = %d, want %d", meals[0].ID, newest)
	}
	if len(meals[0].ParticipantNames) != 1 || meals[0].ParticipantNames[0] != "Alice" {
		t.Errorf("participant names = %v, want [Alice]", meals[0].ParticipantNames)
	}
	if len(meals[1].ParticipantNames) != 2 {
		t.Errorf("participant names = %v, want 2 names", meals[1].ParticipantNames)
	}

	meals, err = ms.ListByGroup(groupID, 1)
	if err != nil {
		t.Fatalf("list meals with limit: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != newest {
		t.Errorf("limited list = %v, want just meal %d", meals, newest)
	}
}
