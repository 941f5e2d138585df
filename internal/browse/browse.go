// Package browse loads a catalog and turns it into views and facet panels.
package browse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/catalog"
	"github.com/erazemk/stvari/internal/metrics"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
)

// PanelTTL is how long computed facet panels stay cached.
const PanelTTL = time.Minute

// Scope selects which items a view is built from.
type Scope string

const (
	// Own is the caller's own catalog.
	Own Scope = "items"
	// Gallery is other people's non-private items, redacted.
	Gallery Scope = "gallery"
)

// Browser builds views over stored items.
type Browser struct {
	DB    *sql.DB
	Cache cache.Cache
	Lang  language.Tag
}

// View is a filtered, sorted page of items.
type View struct {
	Items []model.Item `json:"items"`
	// Total is the size of the collection before filtering.
	Total int `json:"total"`
}

// Load returns the items of a scope as seen by userID.
func (b *Browser) Load(ctx context.Context, userID int64, scope Scope) ([]model.Item, error) {
	switch scope {
	case Own:
		items, err := store.ListItems(ctx, b.DB, userID)
		if err != nil {
			return nil, err
		}
		return items, nil
	case Gallery:
		items, err := store.ListPublicItems(ctx, b.DB, userID)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i] = items[i].Redacted()
			items[i].UserID = 0
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

// View filters and sorts items with the selection.
func (b *Browser) View(items []model.Item, sel catalog.Selection, scope Scope) *View {
	metrics.Views.WithLabelValues(string(scope)).Inc()
	return &View{
		Items: catalog.BuildViewLocale(items, sel, b.Lang),
		Total: len(items),
	}
}

// Panel returns the facet panel for items under sel, memoized by scope and
// content. Cache failures are logged and fall back to computing the panel.
func (b *Browser) Panel(ctx context.Context, items []model.Item, sel catalog.Selection, scope Scope) (*catalog.Panel, error) {
	key := "facets:" + string(scope) + ":" + catalog.PanelKey(items, sel)

	if b.Cache != nil {
		var cached catalog.Panel
		hit, err := b.Cache.Get(ctx, key, &cached)
		if err != nil {
			slog.Warn("facet cache lookup failed", "error", err)
		}
		if hit {
			metrics.FacetCacheHits.Inc()
			return &cached, nil
		}
	}

	panel, err := catalog.Facets(ctx, items, sel)
	if err != nil {
		return nil, fmt.Errorf("computing facets: %w", err)
	}
	metrics.FacetPanels.Inc()

	if b.Cache != nil {
		if err := b.Cache.Set(ctx, key, panel, PanelTTL); err != nil {
			slog.Warn("facet cache store failed", "error", err)
		}
	}
	return panel, nil
}
