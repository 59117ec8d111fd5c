package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hearthhq/hearth/internal/schedule"
	"github.com/hearthhq/hearth/internal/storage"
)

func handleCreateAsset(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req struct {
			Name     string `json:"name"`
			Category string `json:"category"`
			Make     string `json:"make"`
			Model    string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		asset := storage.Asset{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Category:  req.Category,
			Make:      req.Make,
			Model:     req.Model,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.CreateAsset(r.Context(), asset); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save asset: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

func handleListAssets(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := deps.Store.ListAssets(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list assets: %v", err)
			return
		}
		if assets == nil {
			assets = []storage.Asset{}
		}
		writeJSON(w, http.StatusOK, assets)
	}
}

func handleGetAsset(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, err := deps.Store.GetAsset(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "asset not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get asset: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

func handleCreateItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req struct {
			AssetID  string `json:"assetId"`
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.Quantity < 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "quantity must not be negative")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		item := storage.Item{
			ID:        uuid.New().String(),
			AssetID:   req.AssetID,
			Name:      req.Name,
			Quantity:  req.Quantity,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.CreateItem(r.Context(), item); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save item: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func handleListItems(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := deps.Store.ListItems(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list items: %v", err)
			return
		}
		if items == nil {
			items = []storage.Item{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleCreateServiceRecord(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req struct {
			AssetID         string  `json:"assetId"`
			Name            string  `json:"name"`
			FrequencyMonths float64 `json:"frequencyMonths"`
			LastDate        string  `json:"lastDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.FrequencyMonths <= 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "frequencyMonths must be positive")
			return
		}
		if req.LastDate == "" {
			req.LastDate = time.Now().UTC().Format(schedule.ISODate)
		}

		nextDate, err := schedule.NextDateISO(req.LastDate, req.FrequencyMonths)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid lastDate: %v", err)
			return
		}

		rec := storage.ServiceRecord{
			ID:              uuid.New().String(),
			AssetID:         req.AssetID,
			Name:            req.Name,
			FrequencyMonths: req.FrequencyMonths,
			LastDate:        req.LastDate,
			NextDate:        nextDate,
			CreatedAt:       time.Now().UTC(),
		}
		if err := deps.Store.CreateServiceRecord(r.Context(), rec); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save service record: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func handleListServiceRecords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListServiceRecords(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list service records: %v", err)
			return
		}
		if records == nil {
			records = []storage.ServiceRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// handleCompleteServiceRecord marks a task done on a given date (today if
// absent) and advances the next reminder via the scheduler.
func handleCompleteServiceRecord(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req struct {
			Date string `json:"date"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
				return
			}
		}
		if req.Date == "" {
			req.Date = time.Now().UTC().Format(schedule.ISODate)
		}

		rec, err := deps.Store.GetServiceRecord(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "service record not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get service record: %v", err)
			return
		}

		nextDate, err := schedule.NextDateISO(req.Date, rec.FrequencyMonths)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid date: %v", err)
			return
		}

		if err := deps.Store.UpdateServiceDates(r.Context(), id, req.Date, nextDate); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update service record: %v", err)
			return
		}

		rec.LastDate = req.Date
		rec.NextDate = nextDate
		writeJSON(w, http.StatusOK, rec)
	}
}
