package catalog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/stvari/internal/model"
)

func TestFacetsAgreeWithCounter(t *testing.T) {
	items := wardrobe()
	sels := []Selection{
		{},
		{Categories: []string{"clothing"}},
		{Materials: []string{"Cotton"}, Gifted: GiftedYes},
		{Subcategories: []string{"shirt"}, Sources: []string{"secondhand"}},
		{Query: "o"},
	}

	for _, sel := range sels {
		panel, err := Facets(context.Background(), items, sel)
		if err != nil {
			t.Fatalf("Facets: %v", err)
		}
		if len(panel.Facets) != len(Axes) {
			t.Fatalf("expected %d facets, got %d", len(Axes), len(panel.Facets))
		}
		for _, f := range panel.Facets {
			for _, v := range f.Values {
				want := CountForAxisValue(items, sel, f.Axis, v.Value)
				if v.Count != want {
					t.Errorf("selection %+v axis %s value %q: panel %d, counter %d", sel, f.Axis, v.Value, v.Count, want)
				}
				if v.Selected != sel.Has(f.Axis, v.Value) {
					t.Errorf("axis %s value %q: selected flag %v", f.Axis, v.Value, v.Selected)
				}
			}
		}
		if want := len(BuildView(items, sel)); panel.Total != want {
			t.Errorf("selection %+v: total %d, view %d", sel, panel.Total, want)
		}
	}
}

func TestFacetValues(t *testing.T) {
	panel, err := Facets(context.Background(), wardrobe(), Selection{})
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}

	category, ok := panel.Facet(AxisCategory)
	if !ok {
		t.Fatal("missing category facet")
	}
	want := []FacetValue{
		{Value: "clothing", Count: 3},
		{Value: "bedding", Count: 1},
		{Value: "furniture", Count: 1},
	}
	if diff := cmp.Diff(want, category.Values); diff != "" {
		t.Errorf("category facet mismatch (-want +got):\n%s", diff)
	}

	materials, _ := panel.Facet(AxisMaterials)
	for _, v := range materials.Values {
		if v.Value == "Oak" {
			t.Error("furniture materials must not appear in the materials facet")
		}
	}

	subs, _ := panel.Facet(AxisSubcategory)
	wantSubs := []FacetValue{
		{Value: "coat", Count: 1},
		{Value: "shirt", Count: 1},
		{Value: Uncategorized, Count: 1},
	}
	if diff := cmp.Diff(wantSubs, subs.Values); diff != "" {
		t.Errorf("subcategory facet mismatch (-want +got):\n%s", diff)
	}
}

func TestFacetsKeepSelectedValues(t *testing.T) {
	sel := Selection{Categories: []string{"garden"}}
	panel, err := Facets(context.Background(), wardrobe(), sel)
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}

	category, _ := panel.Facet(AxisCategory)
	found := false
	for _, v := range category.Values {
		if v.Value == "garden" {
			found = true
			if v.Count != 0 || !v.Selected {
				t.Errorf("expected selected garden with count 0, got %+v", v)
			}
		}
	}
	if !found {
		t.Error("selected value missing from facet")
	}
	if panel.Total != 0 {
		t.Errorf("expected total 0, got %d", panel.Total)
	}
}

func TestFacetsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Facets(ctx, wardrobe(), Selection{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestPanelKey(t *testing.T) {
	items := wardrobe()
	a := Selection{Categories: []string{"clothing", "bedding"}, Sort: SortNewest}
	b := Selection{Categories: []string{"bedding", "clothing"}, Sort: SortRandom}

	if PanelKey(items, a) != PanelKey(items, b) {
		t.Error("set order and sort key must not change the key")
	}

	c := Selection{Categories: []string{"clothing"}}
	if PanelKey(items, a) == PanelKey(items, c) {
		t.Error("different selections must produce different keys")
	}

	changed := wardrobe()
	changed[0].ItemName += " (mended)"
	if PanelKey(items, a) == PanelKey(changed, a) {
		t.Error("changed items must produce a different key")
	}

	// A redacted copy of the same ids searches different text.
	hidden := wardrobe()
	hidden[0].Description = "secret"
	hidden[0].PrivateDescription = true
	redacted := make([]model.Item, len(hidden))
	for i := range hidden {
		redacted[i] = hidden[i].Redacted()
	}
	q := Selection{Query: "secret"}
	if PanelKey(hidden, q) == PanelKey(redacted, q) {
		t.Error("redacted items must not share a key with the originals")
	}

	if PanelKey(items[:1], Selection{}) == PanelKey([]model.Item{}, Selection{}) {
		t.Error("different collections must produce different keys")
	}
}
