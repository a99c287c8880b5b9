package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moimapp/moim/internal/ledger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps domain errors onto HTTP status codes. Unknown
// errors are logged and returned as an opaque 500.
func writeLedgerError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, ledger.ErrUnauthorized):
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidOperation):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		logger.Error("internal error", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// readJSON decodes the request body, rejecting unknown fields.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID parses the named path parameter as an int64 id.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
