package store

import (
	"database/sql"
	"testing"

	"github.com/moimapp/moim/internal/database"
)

func setupGroupTestDB(t *testing.T) (*sql.DB, *GroupStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewGroupStore(db), NewUserStore(db)
}

func TestGroupCRUD(t *testing.T) {
	_, gs, us := setupGroupTestDB(t)

	user, err := us.Create("hana", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	group, err := gs.Create(user.ID, "Lunch crew")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if group.Name != "Lunch crew" {
		t.Errorf("name = %q, want %q", group.Name, "Lunch crew")
	}
	if group.OverheadBalance != 0 {
		t.Errorf("overhead = %d, want 0", group.OverheadBalance)
	}
	if !group.IsActive {
		t.Error("new group should be active")
	}
	if group.DissolvedAt != nil {
		t.Error("new group should have nil dissolved_at")
	}

	got, err := gs.GetByID(group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if got == nil || got.Name != "Lunch crew" {
		t.Fatalf("got %+v, want Lunch crew", got)
	}

	got, err = gs.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing group: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing group, got %+v", got)
	}

	renamed, err := gs.Rename(group.ID, "Dinner crew")
	if err != nil {
		t.Fatalf("rename group: %v", err)
	}
	if renamed.Name != "Dinner crew" {
		t.Errorf("name = %q, want %q", renamed.Name, "Dinner crew")
	}
}

func TestGroupListByUser(t *testing.T) {
	_, gs, us := setupGroupTestDB(t)

	a, _ := us.Create("a", "hash")
	b, _ := us.Create("b", "hash")

	g1, _ := gs.Create(a.ID, "First")
	g2, _ := gs.Create(a.ID, "Second")
	gs.Create(b.ID, "Theirs")

	groups, err := gs.ListByUser(a.ID)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Newest first
	if groups[0].ID != g2.ID || groups[1].ID != g1.ID {
		t.Errorf("order = [%d %d], want [%d %d]", groups[0].ID, groups[1].ID, g2.ID, g1.ID)
	}
}

func TestGroupDissolve(t *testing.T) {
	_, gs, us := setupGroupTestDB(t)

	user, _ := us.Create("hana", "hash")
	group, _ := gs.Create(user.ID, "Lunch crew")

	if err := gs.Dissolve(group.ID); err != nil {
		t.Fatalf("dissolve group: %v", err)
	}

	got, err := gs.GetByID(group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if got.IsActive {
		t.Error("dissolved group should be inactive")
	}
	if got.DissolvedAt == nil {
		t.Error("dissolved_at should be stamped")
	}
}

func TestGroupSummary(t *testing.T) {
	db, gs, us := setupGroupTestDB(t)

	user, _ := us.Create("hana", "hash")
	group, _ := gs.Create(user.ID, "Lunch crew")

	if _, err := db.Exec(
		`UPDATE groups SET overhead_balance = 300 WHERE id = ?`, group.ID,
	); err != nil {
		t.Fatalf("seed overhead: %v", err)
	}
	for _, m := range []struct {
		name    string
		balance int64
		active  int
	}{
		{"Alice", 5000, 1},
		{"Bob", -2000, 1},
		{"Carol", 1000, 0},
	} {
		if _, err := db.Exec(
			`INSERT INTO members (group_id, name, balance, is_active) VALUES (?, ?, ?, ?)`,
			group.ID, m.name, m.balance, m.active,
		); err != nil {
			t.Fatalf("seed member %s: %v", m.name, err)
		}
	}

	summary, err := gs.Summary(group.ID)
	if err != nil {
		t.Fatalf("group summary: %v", err)
	}
	if summary.OverheadBalance != 300 {
		t.Errorf("overhead = %d, want 300", summary.OverheadBalance)
	}
	if summary.MemberBalanceSum != 4000 {
		t.Errorf("balance sum = %d, want 4000", summary.MemberBalanceSum)
	}
	if summary.ActiveMembers != 2 {
		t.Errorf("active members = %d, want 2", summary.ActiveMembers)
	}
}
