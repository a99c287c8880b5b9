package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/moimapp/moim/internal/model"
)

// AddDeposit credits a member's balance and records the deposit in the
// transaction log.
func (l *Ledger) AddDeposit(actorID, memberID, amount int64, note string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = "Deposit"
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	groupID, err := ownMember(tx, memberID, actorID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		`UPDATE members SET balance = balance + ? WHERE id = ?`,
		amount, memberID,
	); err != nil {
		return 0, fmt.Errorf("credit member: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO transactions (group_id, member_id, type, amount, note)
		 VALUES (?, ?, ?, ?, ?)`,
		groupID, memberID, model.TxDeposit, amount, note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert deposit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// UseOverhead spends from the group overhead pool. The balance floor is
// checked inside the transaction: a request exceeding the pool fails with
// ErrInsufficientFunds and changes nothing. This is the only way overhead
// decreases outside a meal edit or delete.
func (l *Ledger) UseOverhead(actorID, groupID, amount int64, note string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = "Used overhead funds"
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := ownGroup(tx, groupID, actorID); err != nil {
		return err
	}

	var balance int64
	if err := tx.QueryRow(
		`SELECT overhead_balance FROM groups WHERE id = ?`, groupID,
	).Scan(&balance); err != nil {
		return fmt.Errorf("query overhead balance: %w", err)
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientFunds, balance, amount)
	}

	if _, err := tx.Exec(
		`UPDATE groups SET overhead_balance = overhead_balance - ? WHERE id = ?`,
		amount, groupID,
	); err != nil {
		return fmt.Errorf("debit overhead: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO transactions (group_id, type, amount, note)
		 VALUES (?, ?, ?, ?)`,
		groupID, model.TxOverheadUsage, amount, note,
	); err != nil {
		return fmt.Errorf("insert overhead usage: %w", err)
	}

	return tx.Commit()
}

// loadDeposit fetches a transaction, authorizes the actor, and rejects any
// type other than deposit. Meal and overhead rows are derived state and may
// only change through the meal lifecycle or overhead usage.
func loadDeposit(tx *sql.Tx, txnID, actorID int64) (*model.Transaction, error) {
	var t model.Transaction
	var ownerID int64
	err := tx.QueryRow(
		`SELECT t.id, t.group_id, t.member_id, t.type, t.amount, t.note, g.user_id
		 FROM transactions t JOIN groups g ON t.group_id = g.id
		 WHERE t.id = ?`,
		txnID,
	).Scan(&t.ID, &t.GroupID, &t.MemberID, &t.Type, &t.Amount, &t.Note, &ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", txnID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	if ownerID != actorID {
		return nil, fmt.Errorf("transaction %d: %w", txnID, ErrUnauthorized)
	}
	if t.Type != model.TxDeposit {
		return nil, fmt.Errorf("transaction %d is %s: %w", txnID, t.Type, ErrInvalidOperation)
	}
	return &t, nil
}

// EditDeposit corrects a deposit's amount and note, adjusting the member's
// balance by the difference between old and new.
func (l *Ledger) EditDeposit(actorID, txnID, newAmount int64, newNote string) error {
	if newAmount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	t, err := loadDeposit(tx, txnID, actorID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE members SET balance = balance - ? + ? WHERE id = ?`,
		t.Amount, newAmount, *t.MemberID,
	); err != nil {
		return fmt.Errorf("adjust member balance: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE transactions SET amount = ?, note = ? WHERE id = ?`,
		newAmount, strings.TrimSpace(newNote), txnID,
	); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	return tx.Commit()
}

// DeleteDeposit removes a deposit and takes its amount back off the
// member's balance.
func (l *Ledger) DeleteDeposit(actorID, txnID int64) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	t, err := loadDeposit(tx, txnID, actorID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE members SET balance = balance - ? WHERE id = ?`,
		t.Amount, *t.MemberID,
	); err != nil {
		return fmt.Errorf("revert member balance: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM transactions WHERE id = ?`, txnID,
	); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	return tx.Commit()
}
