package storage

import (
	"encoding/json"
	"fmt"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// Migration upgrades the products array of an envelope from one schema
// version to the next
type Migration struct {
	From    string
	To      string
	Migrate func(products json.RawMessage) (json.RawMessage, error)
}

// migrate walks the registered steps from version to domain.CurrentVersion
func (a *Adapter) migrate(version string, products json.RawMessage) (json.RawMessage, error) {
	seen := make(map[string]bool)
	for version != domain.CurrentVersion {
		if seen[version] {
			return nil, fmt.Errorf("migration cycle at version %q", version)
		}
		seen[version] = true

		m, ok := a.migrations[version]
		if !ok || m.Migrate == nil {
			return nil, fmt.Errorf("no migration from version %q", version)
		}

		out, err := m.Migrate(products)
		if err != nil {
			return nil, fmt.Errorf("migrating %s to %s: %w", m.From, m.To, err)
		}
		products, version = out, m.To
	}
	return products, nil
}
