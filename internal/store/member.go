package store

import (
	"database/sql"
	"fmt"

	"github.com/moimapp/moim/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var active int
	var withdrawnAt sql.NullTime

	err := scanner.Scan(&m.ID, &m.GroupID, &m.Name, &m.Balance, &active, &m.JoinedAt, &withdrawnAt)
	if err != nil {
		return nil, err
	}

	m.IsActive = active != 0
	if withdrawnAt.Valid {
		m.WithdrawnAt = &withdrawnAt.Time
	}
	return &m, nil
}

const memberCols = `id, group_id, name, balance, is_active, joined_at, withdrawn_at`

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// ListByGroup returns the group's members, active members first, then by
// join time.
func (s *MemberStore) ListByGroup(groupID int64) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE group_id = ? ORDER BY is_active DESC, joined_at ASC, id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
