package catalog

import (
	"cmp"
	"context"
	"encoding/hex"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/stvari/internal/model"
)

// CountForAxisValue returns how many items would match if axis were unconstrained
// and value were its only selection. The selection of axis itself is ignored.
func CountForAxisValue(items []model.Item, sel Selection, axis Axis, value string) int {
	if _, ok := ParseAxis(string(axis)); !ok {
		return 0
	}
	m := compile(&sel, axis)
	n := 0
	for i := range items {
		if m.match(&items[i]) && hasValue(&items[i], axis, value) {
			n++
		}
	}
	return n
}

// hasValue reports whether the item carries value on axis. Items outside the
// governing category of an axis carry no value on it.
func hasValue(item *model.Item, axis Axis, value string) bool {
	switch axis {
	case AxisCategory:
		return item.Category == value
	case AxisSubcategory:
		return item.Category == model.CategoryClothing && subcategoryKey(item) == value
	case AxisSource:
		return item.Secondhand == value
	case AxisGifted:
		return (value == "true" && bool(item.Gifted)) || (value == "false" && !bool(item.Gifted))
	case AxisMaterials:
		return slices.ContainsFunc(materialsOf(item), func(m model.Material) bool {
			return m.Material == value
		})
	}
	return false
}

// valuesOf lists the distinct values an item carries on axis.
func valuesOf(item *model.Item, axis Axis) []string {
	switch axis {
	case AxisCategory:
		if item.Category != "" {
			return []string{item.Category}
		}
	case AxisSubcategory:
		if item.Category == model.CategoryClothing {
			return []string{subcategoryKey(item)}
		}
	case AxisSource:
		if item.Secondhand != "" {
			return []string{item.Secondhand}
		}
	case AxisGifted:
		if item.Gifted {
			return []string{"true"}
		}
		return []string{"false"}
	case AxisMaterials:
		var out []string
		for _, m := range materialsOf(item) {
			if m.Material != "" && !slices.Contains(out, m.Material) {
				out = append(out, m.Material)
			}
		}
		return out
	}
	return nil
}

// FacetValue is one filter chip: a value, how many items it would show and
// whether it is currently selected.
type FacetValue struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// Facet holds the chips of one axis.
type Facet struct {
	Axis   Axis         `json:"axis"`
	Values []FacetValue `json:"values"`
}

// Panel is the full filter panel for a selection.
type Panel struct {
	Facets []Facet `json:"facets"`
	Total  int     `json:"total"`
}

// Facet returns the facet of the given axis, if present.
func (p *Panel) Facet(axis Axis) (Facet, bool) {
	for _, f := range p.Facets {
		if f.Axis == axis {
			return f, true
		}
	}
	return Facet{}, false
}

// Facets computes chip counts for every axis. Counts equal CountForAxisValue for
// each value; every value present in items is listed, plus selected values
// even when nothing matches them. Axes are computed concurrently.
func Facets(ctx context.Context, items []model.Item, sel Selection) (*Panel, error) {
	panel := &Panel{Facets: make([]Facet, len(Axes))}

	g, ctx := errgroup.WithContext(ctx)
	for i, axis := range Axes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			panel.Facets[i] = facetFor(items, &sel, axis)
			return nil
		})
	}
	g.Go(func() error {
		m := compile(&sel, NoAxis)
		for i := range items {
			if m.match(&items[i]) {
				panel.Total++
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return panel, nil
}

func facetFor(items []model.Item, sel *Selection, axis Axis) Facet {
	m := compile(sel, axis)
	counts := make(map[string]int)
	for i := range items {
		item := &items[i]
		values := valuesOf(item, axis)
		if len(values) == 0 {
			continue
		}
		if !m.match(item) {
			for _, v := range values {
				if _, ok := counts[v]; !ok {
					counts[v] = 0
				}
			}
			continue
		}
		for _, v := range values {
			counts[v]++
		}
	}
	for _, v := range sel.Values(axis) {
		if _, ok := counts[v]; !ok {
			counts[v] = 0
		}
	}

	f := Facet{Axis: axis, Values: make([]FacetValue, 0, len(counts))}
	for v, n := range counts {
		f.Values = append(f.Values, FacetValue{Value: v, Count: n, Selected: sel.Has(axis, v)})
	}
	slices.SortFunc(f.Values, func(a, b FacetValue) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return f
}

// PanelKey fingerprints an item collection and a selection for memoizing Facets.
// Every item field that matching or faceting reads is hashed, so a redacted copy
// of a collection never shares a key with the original. The sort key does not
// affect the panel and is left out.
func PanelKey(items []model.Item, sel Selection) string {
	h := blake3.New()
	field := func(v string) {
		io.WriteString(h, v)
		io.WriteString(h, "\x00")
	}
	for i := range items {
		it := &items[i]
		field(it.ID)
		field(it.ItemName)
		field(it.Description)
		field(it.Origin)
		field(it.Category)
		field(it.Subcategory)
		field(it.Secondhand)
		field(strconv.FormatBool(bool(it.Gifted)))
		for _, m := range it.Materials {
			field(m.Material)
		}
		io.WriteString(h, "\x02")
	}
	io.WriteString(h, "\x01q=")
	io.WriteString(h, sel.Query)
	for _, axis := range Axes {
		values := slices.Clone(sel.Values(axis))
		slices.Sort(values)
		io.WriteString(h, "\x01"+string(axis)+"=")
		io.WriteString(h, strings.Join(values, "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
