package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moimapp/moim/internal/auth"
	"github.com/moimapp/moim/internal/ledger"
	"github.com/moimapp/moim/internal/split"
	"github.com/moimapp/moim/internal/store"
	"github.com/moimapp/moim/internal/websocket"
)

type MealHandler struct {
	groups *store.GroupStore
	meals  *store.MealStore
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMealHandler(groups *store.GroupStore, meals *store.MealStore, lg *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *MealHandler {
	return &MealHandler{groups: groups, meals: meals, ledger: lg, hub: hub, logger: logger}
}

type mealRequest struct {
	RestaurantName string  `json:"restaurant_name"`
	Date           string  `json:"date"`
	TotalAmount    int64   `json:"total_amount"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

func (req mealRequest) toInput() ledger.MealInput {
	return ledger.MealInput{
		RestaurantName: req.RestaurantName,
		Date:           req.Date,
		TotalAmount:    req.TotalAmount,
		ParticipantIDs: req.ParticipantIDs,
	}
}

func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	var req mealRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actorID := auth.UserID(r.Context())
	mealID, err := h.ledger.RecordMeal(actorID, groupID, req.toInput())
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	meal, err := h.meals.GetByID(mealID)
	if err != nil || meal == nil {
		h.logger.Error("meal reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.hub.Notify(actorID, websocket.NewMessage("meal", "recorded", mealID, groupID, map[string]any{
		"total_amount": meal.TotalAmount,
	}))
	writeJSON(w, http.StatusCreated, meal)
}

func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	mealID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid meal id")
		return
	}
	var req mealRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actorID := auth.UserID(r.Context())
	if err := h.ledger.UpdateMeal(actorID, mealID, req.toInput()); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	meal, err := h.meals.GetByID(mealID)
	if err != nil || meal == nil {
		h.logger.Error("meal reload", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.hub.Notify(actorID, websocket.NewMessage("meal", "updated", mealID, meal.GroupID, nil))
	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mealID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid meal id")
		return
	}

	actorID := auth.UserID(r.Context())
	meal, err := h.meals.GetByID(mealID)
	if err != nil {
		h.logger.Error("meal lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.ledger.DeleteMeal(actorID, mealID); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	if meal != nil {
		h.hub.Notify(actorID, websocket.NewMessage("meal", "deleted", mealID, meal.GroupID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	mealID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid meal id")
		return
	}
	meal, err := h.meals.GetByID(mealID)
	if err != nil {
		h.logger.Error("meal lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if meal == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	if !h.ownsGroup(w, r, meal.GroupID) {
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// List returns recent meals for a group, newest first. The limit query
// parameter caps the page size.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}
	if !h.ownsGroup(w, r, groupID) {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	meals, err := h.meals.ListByGroup(groupID, limit)
	if err != nil {
		h.logger.Error("list meals", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

type previewRequest struct {
	TotalAmount      int64 `json:"total_amount"`
	ParticipantCount int64 `json:"participant_count"`
}

// Preview computes the per-person share and overhead for a hypothetical
// meal without touching any balances.
func (h *MealHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s := split.Compute(req.TotalAmount, req.ParticipantCount)
	writeJSON(w, http.StatusOK, map[string]int64{
		"amount_per_person": s.PerPerson,
		"overhead":          s.Overhead,
	})
}

func (h *MealHandler) ownsGroup(w http.ResponseWriter, r *http.Request, groupID int64) bool {
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
