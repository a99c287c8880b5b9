// Package ledger implements the settlement core: the atomic operations that
// turn recorded meals, deposits, and overhead spending into member balance
// deltas and audit-log transaction rows.
//
// Every mutating operation runs in a single database transaction and checks
// group ownership at entry. Balances are never written outside these
// operations, so the transaction log always reconciles with the live
// balance columns.
package ledger

import (
	"database/sql"
	"fmt"
)

// Ledger performs the atomic settlement operations against the backing
// store. The *sql.DB handle is injected; each operation opens its own
// transaction so no state is shared between invocations.
type Ledger struct {
	db *sql.DB
}

func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// ownGroup verifies the group exists and belongs to actorID.
// Runs inside the caller's transaction so the check and the mutation are
// one serializable unit.
func ownGroup(tx *sql.Tx, groupID, actorID int64) error {
	var ownerID int64
	err := tx.QueryRow(`SELECT user_id FROM groups WHERE id = ?`, groupID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("group %d: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query group owner: %w", err)
	}
	if ownerID != actorID {
		return fmt.Errorf("group %d: %w", groupID, ErrUnauthorized)
	}
	return nil
}

// ownMember verifies the member exists and its group belongs to actorID,
// returning the member's group id.
func ownMember(tx *sql.Tx, memberID, actorID int64) (int64, error) {
	var groupID, ownerID int64
	err := tx.QueryRow(
		`SELECT m.group_id, g.user_id
		 FROM members m JOIN groups g ON m.group_id = g.id
		 WHERE m.id = ?`,
		memberID,
	).Scan(&groupID, &ownerID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query member owner: %w", err)
	}
	if ownerID != actorID {
		return 0, fmt.Errorf("member %d: %w", memberID, ErrUnauthorized)
	}
	return groupID, nil
}
