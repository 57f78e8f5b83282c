package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProductIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProductID
		wantErr bool
	}{
		{name: "number", input: `{"id": 42}`, want: "42"},
		{name: "string", input: `{"id": "sofa-7"}`, want: "sofa-7"},
		{name: "null", input: `{"id": null}`, want: ""},
		{name: "object", input: `{"id": {"x": 1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, p.ID)
		})
	}
}

func TestProductValidate(t *testing.T) {
	require.ErrorIs(t, Product{Name: "Desk"}.Validate(), ErrMissingProductID)
	require.ErrorIs(t, Product{ID: "1", Name: "  "}.Validate(), ErrMissingProductName)
	require.NoError(t, Product{ID: "1", Name: "Desk"}.Validate())
}

func TestNewFavoriteItemDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := NewFavoriteItem(Product{ID: "1", Name: "Desk"}, now)

	require.Equal(t, UnknownCategory, item.Category)
	require.Equal(t, PlaceholderImage, item.Image)
	require.Equal(t, now, item.AddedAt)
	require.Equal(t, ProductSnapshot{
		ID:       "1",
		Name:     "Desk",
		Image:    PlaceholderImage,
		Category: UnknownCategory,
	}, item.ProductData)
}
