// Package api exposes hearth's HTTP surface: the suggestion endpoint, the
// backfill trigger, and record CRUD.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthhq/hearth/internal/backfill"
	"github.com/hearthhq/hearth/internal/storage"
	"github.com/hearthhq/hearth/internal/suggest"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the collaborators the handlers close over.
type Deps struct {
	Store       *storage.Store
	Suggestions *suggest.Service
	Backfill    *backfill.Runner
	Token       string
}

// NewHandler builds the hearth router. The health endpoint is public;
// everything under /api/v1 requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/suggestions", handleSuggestions(deps))
		r.Post("/backfill/thumbnails", handleBackfill(deps))

		r.Post("/assets", handleCreateAsset(deps))
		r.Get("/assets", handleListAssets(deps))
		r.Get("/assets/{id}", handleGetAsset(deps))

		r.Post("/items", handleCreateItem(deps))
		r.Get("/items", handleListItems(deps))

		r.Post("/service-records", handleCreateServiceRecord(deps))
		r.Get("/service-records", handleListServiceRecords(deps))
		r.Post("/service-records/{id}/complete", handleCompleteServiceRecord(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
