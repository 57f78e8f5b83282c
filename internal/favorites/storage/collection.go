package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

var ErrInvalidImport = errors.New("import data must carry a favorites array")

// SortRecent returns a copy of items ordered by addedAt, newest first,
// truncated to limit. limit <= 0 uses domain.DefaultRecentLimit.
func SortRecent(items []domain.FavoriteItem, limit int) []domain.FavoriteItem {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b domain.FavoriteItem) int {
		return b.AddedAt.Compare(a.AddedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []domain.FavoriteItem{}
	}
	return sorted
}

// Filter returns the items matching query, keeping their order
func Filter(items []domain.FavoriteItem, query string) []domain.FavoriteItem {
	folder := cases.Fold()
	q := folder.String(query)

	out := []domain.FavoriteItem{}
	for _, item := range items {
		if matches(folder, item, q) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether name, category or model of item contains query,
// compared under Unicode case folding
func Match(item domain.FavoriteItem, query string) bool {
	folder := cases.Fold()
	return matches(folder, item, folder.String(query))
}

func matches(folder cases.Caser, item domain.FavoriteItem, foldedQuery string) bool {
	if strings.Contains(folder.String(item.Name), foldedQuery) {
		return true
	}
	if strings.Contains(folder.String(item.Category), foldedQuery) {
		return true
	}
	return item.Model != "" && strings.Contains(folder.String(item.Model), foldedQuery)
}

// Group partitions items by category; items without one go under "Unknown"
func Group(items []domain.FavoriteItem) map[string][]domain.FavoriteItem {
	groups := make(map[string][]domain.FavoriteItem)
	for _, item := range items {
		key := item.CategoryOrUnknown()
		groups[key] = append(groups[key], item)
	}
	return groups
}

// ParseImport extracts the favorites array of an export document, dropping
// entries without an id and all but the first entry of a repeated id
func ParseImport(raw []byte) ([]domain.FavoriteItem, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrInvalidImport, err)
	}

	favorites, ok := doc["favorites"]
	trimmed := bytes.TrimSpace(favorites)
	if !ok || len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidImport
	}

	var items []domain.FavoriteItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.Join(ErrInvalidImport, err)
	}

	seen := make(map[domain.ProductID]bool, len(items))
	kept := make([]domain.FavoriteItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(string(item.ID)) == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		kept = append(kept, item)
	}
	return kept, nil
}
