package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/moimapp/moim/internal/model"
)

// AddMember adds a person to a group. A positive initial balance is recorded
// as both the starting balance and a deposit transaction so the ledger's
// sum-of-deposits invariant holds from the member's first moment.
// initialBalance is explicit: zero means "no opening deposit", never "absent".
func (l *Ledger) AddMember(actorID, groupID int64, name string, initialBalance int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: member name is required", ErrInvalidInput)
	}
	if initialBalance < 0 {
		return 0, fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidInput)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := ownGroup(tx, groupID, actorID); err != nil {
		return 0, err
	}

	result, err := tx.Exec(
		`INSERT INTO members (group_id, name, balance) VALUES (?, ?, ?)`,
		groupID, name, initialBalance,
	)
	if err != nil {
		return 0, fmt.Errorf("insert member: %w", err)
	}
	memberID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if initialBalance > 0 {
		if _, err := tx.Exec(
			`INSERT INTO transactions (group_id, member_id, type, amount, note)
			 VALUES (?, ?, ?, ?, ?)`,
			groupID, memberID, model.TxDeposit, initialBalance, "Opening deposit",
		); err != nil {
			return 0, fmt.Errorf("insert opening deposit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return memberID, nil
}

// SetMemberActive toggles membership. Deactivating stamps withdrawn_at and
// freezes the balance as the member's settlement amount; reactivating clears
// the stamp. Balance is untouched either way.
func (l *Ledger) SetMemberActive(actorID, memberID int64, active bool) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := ownMember(tx, memberID, actorID); err != nil {
		return err
	}

	var isActive int
	var withdrawnAt *time.Time
	if active {
		isActive = 1
	} else {
		now := time.Now().UTC()
		withdrawnAt = &now
	}
	if _, err := tx.Exec(
		`UPDATE members SET is_active = ?, withdrawn_at = ? WHERE id = ?`,
		isActive, withdrawnAt, memberID,
	); err != nil {
		return fmt.Errorf("update member status: %w", err)
	}

	return tx.Commit()
}
