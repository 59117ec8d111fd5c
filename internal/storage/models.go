package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Asset is an appliance or fixture in the household.
type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item is an inventory entry (a consumable kept in stock), optionally linked
// to the asset it belongs to.
type Item struct {
	ID           string    `json:"id"`
	AssetID      string    `json:"assetId"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ServiceRecord is a recurring maintenance task for an asset. LastDate and
// NextDate are ISO dates (YYYY-MM-DD); NextDate is derived from LastDate and
// FrequencyMonths by the reminder scheduler.
type ServiceRecord struct {
	ID              string    `json:"id"`
	AssetID         string    `json:"assetId"`
	Name            string    `json:"name"`
	FrequencyMonths float64   `json:"frequencyMonths"`
	LastDate        string    `json:"lastDate"`
	NextDate        string    `json:"nextDate"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ThumbnailCandidate is an inventory item missing a thumbnail whose linked
// asset has both make and model, i.e. eligible for the backfill pipeline.
type ThumbnailCandidate struct {
	ItemID   string
	ItemName string
	Make     string
	Model    string
}
