package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// StorageKey is the key holding the favorites envelope in a visitor's key space
	StorageKey = "furniture_favorites"

	// CurrentVersion is the envelope schema version written by this build
	CurrentVersion = "1.0"

	// UnknownCategory is used for products saved without a category
	UnknownCategory = "Unknown"

	// PlaceholderImage is used for products saved without an image
	PlaceholderImage = "/images/placeholder-product.jpg"

	// DefaultRecentLimit is the number of items returned by recent lookups
	DefaultRecentLimit = 5
)

var (
	ErrMissingProductID   = errors.New("product id is required")
	ErrMissingProductName = errors.New("product name is required")
	ErrMissingVisitorID   = errors.New("visitor id is required")
	ErrNothingToShare     = errors.New("no favorites to share")
)

// ProductID identifies a catalog product. The backend emits numeric ids while
// exported files may carry strings, so both JSON forms are accepted.
type ProductID string

// UnmarshalJSON accepts a JSON string or number
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

// Product is the input accepted when saving a favorite. Image, Category and
// Model are optional; an empty string means absent.
type Product struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image,omitempty"`
	Category string    `json:"category,omitempty"`
	Model    string    `json:"model,omitempty"`
}

// Validate checks the fields required to render a favorite without the catalog
func (p Product) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return ErrMissingProductID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingProductName
	}
	return nil
}

// ProductSnapshot is the subset of product fields kept with a favorite
type ProductSnapshot struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	Model    string    `json:"model,omitempty"`
}

// FavoriteItem is one product saved by a visitor
type FavoriteItem struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Model       string          `json:"model,omitempty"`
	AddedAt     time.Time       `json:"addedAt"`
	ProductData ProductSnapshot `json:"productData"`
}

// NewFavoriteItem builds the stored form of p, stamping addedAt with now
func NewFavoriteItem(p Product, now time.Time) FavoriteItem {
	image := p.Image
	if image == "" {
		image = PlaceholderImage
	}
	category := p.Category
	if category == "" {
		category = UnknownCategory
	}

	return FavoriteItem{
		ID:       p.ID,
		Name:     p.Name,
		Image:    image,
		Category: category,
		Model:    p.Model,
		AddedAt:  now.UTC(),
		ProductData: ProductSnapshot{
			ID:       p.ID,
			Name:     p.Name,
			Image:    image,
			Category: category,
			Model:    p.Model,
		},
	}
}

// CategoryOrUnknown returns the grouping key of the item
func (f FavoriteItem) CategoryOrUnknown() string {
	if strings.TrimSpace(f.Category) == "" {
		return UnknownCategory
	}
	return f.Category
}

// Product converts the favorite back to a product input
func (f FavoriteItem) Product() Product {
	return Product{
		ID:       f.ID,
		Name:     f.Name,
		Image:    f.Image,
		Category: f.Category,
		Model:    f.Model,
	}
}
