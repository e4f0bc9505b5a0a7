package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/habmon/habmon/internal/api/middleware"
	"github.com/habmon/habmon/internal/api/types"
	"github.com/habmon/habmon/internal/apperr"
)

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(types.APIResponse{
			Success: false,
			Error:   types.FromAppError(apperr.Wrap(err, apperr.CodeInternal, "encoding response")),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, types.APIResponse{
		Success: true,
		Data:    data,
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context())},
	})
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context()), Total: len(items)},
	})
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := types.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, types.APIResponse{
		Success: false,
		Error:   types.FromAppError(err),
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context())},
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "invalid json")
	}
	return nil
}
