package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hearthhq/hearth/internal/suggest"
)

// suggestionsRequest covers both request modes of the suggestion endpoint.
// A non-nil batch selects batch mode; otherwise the single-mode fields apply.
type suggestionsRequest struct {
	Batch    []suggest.Pair `json:"batch"`
	Make     string         `json:"make"`
	Model    string         `json:"model"`
	Category string         `json:"category"`
	Name     string         `json:"name"`
}

func handleSuggestions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Batch != nil {
			// Batch mode is best-effort by contract: lookup failures degrade
			// to an empty map inside the service, never to an error response.
			results := deps.Suggestions.Batch(r.Context(), req.Batch)
			writeJSON(w, http.StatusOK, map[string]any{"results": results})
			return
		}

		// Category and name describe what is being asked about and are
		// required even when make/model are too vague to form a cache key.
		if req.Category == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "category is required")
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		result, err := deps.Suggestions.Get(r.Context(), suggest.Request{
			Make:     req.Make,
			Model:    req.Model,
			Category: req.Category,
			Name:     req.Name,
		})
		switch {
		case errors.Is(err, suggest.ErrNotConfigured):
			httpError(w, http.StatusInternalServerError, "config_error", "suggestion generator is not configured")
			return
		case errors.Is(err, suggest.ErrBadResponse):
			httpError(w, http.StatusBadGateway, "parse_error", "%v", err)
			return
		case err != nil:
			httpError(w, http.StatusBadGateway, "upstream_error", "%v", err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleBackfill(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Fire-and-forget: the pass runs detached and the response returns
		// before any thumbnail work completes.
		deps.Backfill.Kick(r.Context())
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}
