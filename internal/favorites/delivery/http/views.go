package http

import (
	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// Button variants
const (
	VariantIcon   = "icon"
	VariantButton = "button"
	VariantText   = "text"
)

// PulseMillis is how long the favorite button animates after activation
const PulseMillis = 300

// ButtonView is the render state of the favorite button of one product
type ButtonView struct {
	ProductID   domain.ProductID `json:"productId"`
	Variant     string           `json:"variant"`
	IsFavorite  bool             `json:"isFavorite"`
	Disabled    bool             `json:"disabled"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon"`
	PulseMillis int              `json:"pulseMillis"`
}

// NewButtonView renders the button of productID. The button is disabled
// while the store is loading or when no product is bound.
func NewButtonView(productID domain.ProductID, variant string, isFavorite, loading bool) ButtonView {
	switch variant {
	case VariantIcon, VariantButton, VariantText:
	default:
		variant = VariantIcon
	}

	v := ButtonView{
		ProductID:   productID,
		Variant:     variant,
		IsFavorite:  isFavorite,
		Disabled:    loading || productID == "",
		Icon:        "heart-outline",
		PulseMillis: PulseMillis,
	}

	switch {
	case isFavorite && variant == VariantText:
		v.Label = "Favorited"
	case isFavorite:
		v.Label = "Remove from favorites"
	default:
		v.Label = "Add to favorites"
	}
	if isFavorite {
		v.Icon = "heart-filled"
	}
	return v
}

// CounterView is the header badge with its optional dropdown
type CounterView struct {
	Count  int                   `json:"count"`
	Recent []domain.FavoriteItem `json:"recent,omitempty"`
}
