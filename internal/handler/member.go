package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/moimapp/moim/internal/auth"
	"github.com/moimapp/moim/internal/ledger"
	"github.com/moimapp/moim/internal/store"
	"github.com/moimapp/moim/internal/websocket"
)

type MemberHandler struct {
	groups  *store.GroupStore
	members *store.MemberStore
	ledger  *ledger.Ledger
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(groups *store.GroupStore, members *store.MemberStore, lg *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{groups: groups, members: members, ledger: lg, hub: hub, logger: logger}
}

type addMemberRequest struct {
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
}

func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	var req addMemberRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "member name is required")
		return
	}

	actorID := auth.UserID(r.Context())
	memberID, err := h.ledger.AddMember(actorID, groupID, req.Name, req.InitialBalance)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil || member == nil {
		h.logger.Error("member reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.hub.Notify(actorID, websocket.NewMessage("member", "added", memberID, groupID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	group, err := h.groups.GetByID(groupID)
	if err != nil {
		h.logger.Error("group lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if group == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	if group.UserID != auth.UserID(r.Context()) {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	members, err := h.members.ListByGroup(groupID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive withdraws or reinstates a member. Balance is untouched either way.
func (h *MemberHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req setActiveRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Active == nil {
		writeErrorMessage(w, http.StatusBadRequest, "active is required")
		return
	}

	actorID := auth.UserID(r.Context())
	if err := h.ledger.SetMemberActive(actorID, memberID, *req.Active); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil || member == nil {
		h.logger.Error("member reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	action := "withdrawn"
	if *req.Active {
		action = "rejoined"
	}
	h.hub.Notify(actorID, websocket.NewMessage("member", action, memberID, member.GroupID, nil))
	writeJSON(w, http.StatusOK, member)
}
