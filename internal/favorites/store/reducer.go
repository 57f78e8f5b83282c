package store

import (
	"slices"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// State is what the storefront renders from. It only changes through Reduce.
type State struct {
	Favorites   []domain.FavoriteItem `json:"favorites"`
	Count       int                   `json:"count"`
	Loading     bool                  `json:"loading"`
	Error       string                `json:"error,omitempty"`
	Initialized bool                  `json:"initialized"`
}

// ActionType names a state transition
type ActionType string

const (
	ActionInitialize ActionType = "initialize"
	ActionStart      ActionType = "start"
	ActionSucceed    ActionType = "succeed"
	ActionFail       ActionType = "fail"
)

// Action is the input of one reducer step
type Action struct {
	Type      ActionType
	Favorites []domain.FavoriteItem
	Error     string
}

// Reduce computes the state following action. It never mutates s.
func Reduce(s State, action Action) State {
	switch action.Type {
	case ActionInitialize:
		s.Favorites = normalize(action.Favorites)
		s.Count = len(s.Favorites)
		s.Loading = false
		s.Error = action.Error
		s.Initialized = true
	case ActionStart:
		s.Loading = true
	case ActionSucceed:
		s.Favorites = normalize(action.Favorites)
		s.Count = len(s.Favorites)
		s.Loading = false
		s.Error = ""
	case ActionFail:
		s.Loading = false
		s.Error = action.Error
	}
	return s
}

func normalize(items []domain.FavoriteItem) []domain.FavoriteItem {
	if items == nil {
		return []domain.FavoriteItem{}
	}
	return slices.Clone(items)
}

// clone returns a copy whose favorites slice is not shared
func (s State) clone() State {
	s.Favorites = normalize(s.Favorites)
	return s
}
