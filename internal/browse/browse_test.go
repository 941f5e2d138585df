package browse

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/catalog"
	"github.com/erazemk/stvari/internal/db"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
)

func setup(t *testing.T) (*Browser, int64, int64) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, database, "ana", "hash", model.RoleUser)
	bor, _ := store.CreateUser(ctx, database, "bor", "hash", model.RoleUser)

	store.CreateItem(ctx, database, ana.ID, &model.Item{ItemName: "Wool coat", Category: "clothing", Subcategory: "coat"})
	store.CreateItem(ctx, database, ana.ID, &model.Item{ItemName: "Desk lamp", Category: "decor"})
	store.CreateItem(ctx, database, bor.ID, &model.Item{
		ItemName: "Quilt", Category: "bedding", Description: "grandma's", Origin: "Ljubljana",
		PrivateDescription: true,
	})
	store.CreateItem(ctx, database, bor.ID, &model.Item{ItemName: "Diary", Category: "books", Private: true})

	return &Browser{DB: database, Cache: cache.NewMemory(), Lang: language.Und}, ana.ID, bor.ID
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemName
	}
	return out
}

func TestLoadOwn(t *testing.T) {
	b, ana, _ := setup(t)

	items, err := b.Load(context.Background(), ana, Own)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	view := b.View(items, catalog.Selection{Sort: catalog.SortAlphabetical}, Own)
	if diff := cmp.Diff([]string{"Desk lamp", "Wool coat"}, names(view.Items)); diff != "" {
		t.Errorf("own view mismatch (-want +got):\n%s", diff)
	}
	if view.Total != 2 {
		t.Errorf("expected total 2, got %d", view.Total)
	}
}

func TestLoadGalleryRedacts(t *testing.T) {
	b, ana, _ := setup(t)

	items, err := b.Load(context.Background(), ana, Gallery)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Quilt"}, names(items)); diff != "" {
		t.Fatalf("gallery mismatch (-want +got):\n%s", diff)
	}
	quilt := items[0]
	if quilt.Description != "" {
		t.Errorf("expected description redacted, got %q", quilt.Description)
	}
	if quilt.Origin != "Ljubljana" {
		t.Errorf("expected origin kept, got %q", quilt.Origin)
	}
	if quilt.UserID != 0 || quilt.OwnerName != "bor" {
		t.Errorf("unexpected owner fields: %d %q", quilt.UserID, quilt.OwnerName)
	}
}

func TestPanelMemoized(t *testing.T) {
	b, ana, _ := setup(t)
	ctx := context.Background()
	mem := b.Cache.(*cache.Memory)

	items, _ := b.Load(ctx, ana, Own)
	sel := catalog.Selection{Categories: []string{"clothing"}}

	first, err := b.Panel(ctx, items, sel, Own)
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected panel cached, cache has %d entries", mem.Len())
	}

	second, err := b.Panel(ctx, items, sel, Own)
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached panel differs (-first +second):\n%s", diff)
	}
	if second.Total != 1 {
		t.Errorf("expected total 1, got %d", second.Total)
	}

	b.Panel(ctx, items, catalog.Selection{}, Own)
	if mem.Len() != 2 {
		t.Errorf("expected a second cache entry, got %d", mem.Len())
	}
}

func TestPanelWithoutCache(t *testing.T) {
	b, ana, _ := setup(t)
	b.Cache = nil
	ctx := context.Background()

	items, _ := b.Load(ctx, ana, Own)
	panel, err := b.Panel(ctx, items, catalog.Selection{}, Own)
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}
	if panel.Total != 2 {
		t.Errorf("expected total 2, got %d", panel.Total)
	}
}

func TestPanelCacheSeparatesOwnerAndGallery(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := store.CreateUser(ctx, database, "owner", "hash", model.RoleUser)
	viewer, _ := store.CreateUser(ctx, database, "viewer", "hash", model.RoleUser)
	store.CreateItem(ctx, database, owner.ID, &model.Item{
		ItemName: "Box", Category: "decor", Description: "secretword", PrivateDescription: true,
	})

	b := &Browser{DB: database, Cache: cache.NewMemory(), Lang: language.Und}
	sel := catalog.Selection{Query: "secretword"}

	own, _ := b.Load(ctx, owner.ID, Own)
	ownPanel, err := b.Panel(ctx, own, sel, Own)
	if err != nil {
		t.Fatalf("Panel(own): %v", err)
	}
	if ownPanel.Total != 1 {
		t.Fatalf("expected owner to find the item, got total %d", ownPanel.Total)
	}

	gallery, _ := b.Load(ctx, viewer.ID, Gallery)
	galleryPanel, err := b.Panel(ctx, gallery, sel, Gallery)
	if err != nil {
		t.Fatalf("Panel(gallery): %v", err)
	}
	if galleryPanel.Total != 0 {
		t.Errorf("hidden description leaked through the gallery panel: total %d", galleryPanel.Total)
	}
}
