package store

import (
	"database/sql"
	"fmt"

	"github.com/moimapp/moim/internal/model"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var groupID, memberID, mealID sql.NullInt64

	err := scanner.Scan(&t.ID, &groupID, &memberID, &t.Type, &t.Amount, &t.Note, &mealID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		t.GroupID = &groupID.Int64
	}
	if memberID.Valid {
		t.MemberID = &memberID.Int64
	}
	if mealID.Valid {
		t.RelatedMealID = &mealID.Int64
	}
	return &t, nil
}

const transactionCols = `id, group_id, member_id, type, amount, note, related_meal_id, created_at`

func (s *TransactionStore) GetByID(id int64) (*model.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListByMember returns a member's transaction history, newest first.
func (s *TransactionStore) ListByMember(memberID int64) ([]model.Transaction, error) {
	return s.list(`SELECT `+transactionCols+` FROM transactions WHERE member_id = ? ORDER BY created_at DESC, id DESC`, memberID)
}

// ListByGroup returns all of a group's transactions, member-level and
// group-level alike, newest first.
func (s *TransactionStore) ListByGroup(groupID int64) ([]model.Transaction, error) {
	return s.list(`SELECT `+transactionCols+` FROM transactions WHERE group_id = ? ORDER BY created_at DESC, id DESC`, groupID)
}

// ListByMeal returns the transactions tied to a meal. Used to audit that a
// meal's derived rows track its lifecycle.
func (s *TransactionStore) ListByMeal(mealID int64) ([]model.Transaction, error) {
	return s.list(`SELECT `+transactionCols+` FROM transactions WHERE related_meal_id = ? ORDER BY id ASC`, mealID)
}

func (s *TransactionStore) list(query string, arg int64) ([]model.Transaction, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}
