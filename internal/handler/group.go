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

type GroupHandler struct {
	groups *store.GroupStore
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewGroupHandler(groups *store.GroupStore, lg *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, ledger: lg, hub: hub, logger: logger}
}

// ownGroup loads the group and verifies the caller owns it.
func (h *GroupHandler) ownGroup(w http.ResponseWriter, r *http.Request) (int64, bool) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return 0, false
	}
	group, err := h.groups.GetByID(groupID)
	if err != nil {
		h.logger.Error("group lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return 0, false
	}
	if group == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return 0, false
	}
	if group.UserID != auth.UserID(r.Context()) {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return groupID, true
}

type groupRequest struct {
	Name string `json:"name"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "group name is required")
		return
	}

	group, err := h.groups.Create(auth.UserID(r.Context()), req.Name)
	if err != nil {
		h.logger.Error("create group", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list groups", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.ownGroup(w, r)
	if !ok {
		return
	}
	group, err := h.groups.GetByID(groupID)
	if err != nil || group == nil {
		h.logger.Error("group reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.ownGroup(w, r)
	if !ok {
		return
	}
	var req groupRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "group name is required")
		return
	}

	group, err := h.groups.Rename(groupID, req.Name)
	if err != nil {
		h.logger.Error("rename group", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Dissolve marks the group inactive. History is retained.
func (h *GroupHandler) Dissolve(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.ownGroup(w, r)
	if !ok {
		return
	}
	if err := h.groups.Dissolve(groupID); err != nil {
		h.logger.Error("dissolve group", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.hub.Notify(auth.UserID(r.Context()), websocket.NewMessage("group", "dissolved", groupID, groupID, nil))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *GroupHandler) Summary(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.ownGroup(w, r)
	if !ok {
		return
	}
	summary, err := h.groups.Summary(groupID)
	if err != nil {
		h.logger.Error("group summary", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type useOverheadRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

func (h *GroupHandler) UseOverhead(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	var req useOverheadRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actorID := auth.UserID(r.Context())
	if err := h.ledger.UseOverhead(actorID, groupID, req.Amount, req.Note); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	h.hub.Notify(actorID, websocket.NewMessage("overhead", "used", 0, groupID, map[string]any{"amount": req.Amount}))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
