package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moimapp/moim/internal/model"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

func scanGroup(scanner interface{ Scan(...any) error }) (*model.Group, error) {
	var g model.Group
	var active int
	var dissolvedAt sql.NullTime

	err := scanner.Scan(&g.ID, &g.UserID, &g.Name, &g.OverheadBalance, &active, &g.CreatedAt, &dissolvedAt)
	if err != nil {
		return nil, err
	}

	g.IsActive = active != 0
	if dissolvedAt.Valid {
		g.DissolvedAt = &dissolvedAt.Time
	}
	return &g, nil
}

const groupCols = `id, user_id, name, overhead_balance, is_active, created_at, dissolved_at`

func (s *GroupStore) Create(userID int64, name string) (*model.Group, error) {
	result, err := s.db.Exec(
		`INSERT INTO groups (user_id, name) VALUES (?, ?)`,
		userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroupStore) GetByID(id int64) (*model.Group, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// ListByUser returns the user's groups, newest first.
func (s *GroupStore) ListByUser(userID int64) ([]model.Group, error) {
	rows, err := s.db.Query(
		`SELECT `+groupCols+` FROM groups WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (s *GroupStore) Rename(id int64, name string) (*model.Group, error) {
	_, err := s.db.Exec(`UPDATE groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	return s.GetByID(id)
}

// Dissolve marks the group inactive and stamps dissolution time. Records are
// kept for history; no balances change.
func (s *GroupStore) Dissolve(id int64) error {
	_, err := s.db.Exec(
		`UPDATE groups SET is_active = 0, dissolved_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("dissolve group: %w", err)
	}
	return nil
}

// Summary aggregates the group's overhead pool, the sum of member balances,
// and the active-member count for display.
func (s *GroupStore) Summary(groupID int64) (*model.GroupSummary, error) {
	summary := &model.GroupSummary{GroupID: groupID}

	err := s.db.QueryRow(
		`SELECT overhead_balance FROM groups WHERE id = ?`, groupID,
	).Scan(&summary.OverheadBalance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get overhead balance: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(balance), 0), COALESCE(SUM(is_active), 0) FROM members WHERE group_id = ?`,
		groupID,
	).Scan(&summary.MemberBalanceSum, &summary.ActiveMembers)
	if err != nil {
		return nil, fmt.Errorf("sum member balances: %w", err)
	}

	return summary, nil
}
