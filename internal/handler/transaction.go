package handler

import (
	"log/slog"
	"net/http"

	"github.com/moimapp/moim/internal/auth"
	"github.com/moimapp/moim/internal/ledger"
	"github.com/moimapp/moim/internal/store"
	"github.com/moimapp/moim/internal/websocket"
)

type TransactionHandler struct {
	groups  *store.GroupStore
	members *store.MemberStore
	txns    *store.TransactionStore
	ledger  *ledger.Ledger
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewTransactionHandler(groups *store.GroupStore, members *store.MemberStore, txns *store.TransactionStore, lg *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{groups: groups, members: members, txns: txns, ledger: lg, hub: hub, logger: logger}
}

type depositRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// AddDeposit credits a member's balance.
func (h *TransactionHandler) AddDeposit(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req depositRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actorID := auth.UserID(r.Context())
	txnID, err := h.ledger.AddDeposit(actorID, memberID, req.Amount, req.Note)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	txn, err := h.txns.GetByID(txnID)
	if err != nil || txn == nil {
		h.logger.Error("transaction reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	var groupID int64
	if txn.GroupID != nil {
		groupID = *txn.GroupID
	}
	h.hub.Notify(actorID, websocket.NewMessage("deposit", "added", txnID, groupID, map[string]any{"amount": req.Amount}))
	writeJSON(w, http.StatusCreated, txn)
}

// EditDeposit corrects a deposit's amount or note. Meal and overhead
// transactions are derived rows and cannot be edited here.
func (h *TransactionHandler) EditDeposit(w http.ResponseWriter, r *http.Request) {
	txnID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req depositRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actorID := auth.UserID(r.Context())
	if err := h.ledger.EditDeposit(actorID, txnID, req.Amount, req.Note); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	txn, err := h.txns.GetByID(txnID)
	if err != nil || txn == nil {
		h.logger.Error("transaction reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	var groupID int64
	if txn.GroupID != nil {
		groupID = *txn.GroupID
	}
	h.hub.Notify(actorID, websocket.NewMessage("deposit", "updated", txnID, groupID, nil))
	writeJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) DeleteDeposit(w http.ResponseWriter, r *http.Request) {
	txnID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	actorID := auth.UserID(r.Context())
	txn, err := h.txns.GetByID(txnID)
	if err != nil {
		h.logger.Error("transaction lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.ledger.DeleteDeposit(actorID, txnID); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	if txn != nil && txn.GroupID != nil {
		h.hub.Notify(actorID, websocket.NewMessage("deposit", "deleted", txnID, *txn.GroupID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListByMember returns a member's transaction history, newest first.
func (h *TransactionHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid member id")
		return
	}
	member, err := h.members.GetByID(memberID)
	if err != nil {
		h.logger.Error("member lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	if !h.ownsGroup(w, r, member.GroupID) {
		return
	}

	txns, err := h.txns.ListByMember(memberID)
	if err != nil {
		h.logger.Error("list member transactions", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// ListByGroup returns all of a group's transactions, newest first,
// including group-level overhead rows.
func (h *TransactionHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	if !h.ownsGroup(w, r, groupID) {
		return
	}

	txns, err := h.txns.ListByGroup(groupID)
	if err != nil {
		h.logger.Error("list group transactions", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *TransactionHandler) ownsGroup(w http.ResponseWriter, r *http.Request, groupID int64) bool {
	group, err := h.groups.GetByID(groupID)
	if err != nil {
		h.logger.Error("group lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if group == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return false
	}
	if group.UserID != auth.UserID(r.Context()) {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}
