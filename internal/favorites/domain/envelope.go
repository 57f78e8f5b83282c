package domain

import "time"

// Envelope is the single persisted record holding a visitor's favorites.
// Count mirrors len(Products) and is never trusted on read.
type Envelope struct {
	Products    []FavoriteItem `json:"products"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Version     string         `json:"version"`
	Count       int            `json:"count"`
}

// Export is the downloadable snapshot of a visitor's favorites
type Export struct {
	Favorites  []FavoriteItem `json:"favorites"`
	ExportedAt time.Time      `json:"exportedAt"`
	Count      int            `json:"count"`
	Version    string         `json:"version"`
}

// Result reports the outcome of a mutation. Favorites is the collection after
// the call: the updated one on success, the untouched one otherwise.
type Result struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Favorites []FavoriteItem `json:"favorites"`
}

// ImportResult reports the outcome of an import
type ImportResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Messages returned in results
const (
	MsgAdded          = "Product added to favorites"
	MsgAlreadyExists  = "Product already in favorites"
	MsgRemoved        = "Product removed from favorites"
	MsgCleared        = "All favorites cleared"
	MsgSaveFailed     = "Failed to save favorites"
	MsgClearFailed    = "Failed to clear favorites"
	MsgInvalidImport  = "Invalid import data"
	MsgImported       = "Favorites imported successfully"
	MsgImportFailed   = "Failed to import favorites"
	MsgInvalidProduct = "Invalid product"
)
