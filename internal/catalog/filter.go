// Package catalog filters, sorts and counts items for the browsing view.
//
// Every function here is pure: items and selections are read, never modified,
// and results are freshly allocated. Calls are safe to run concurrently.
package catalog

import (
	"strings"

	"github.com/erazemk/stvari/internal/model"
)

type set map[string]struct{}

func newSet(values []string) set {
	if len(values) == 0 {
		return nil
	}
	s := make(set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

// matcher is a selection prepared for evaluation against many items.
// A nil set or GiftedAny means the axis is inactive.
type matcher struct {
	query         string
	categories    set
	subcategories set
	sources       set
	materials     set
	gifted        GiftedFilter
}

func compile(sel *Selection, skip Axis) matcher {
	m := matcher{
		query:  strings.ToLower(sel.Query),
		gifted: sel.Gifted,
	}
	if skip != AxisCategory {
		m.categories = newSet(sel.Categories)
	}
	if skip != AxisSubcategory {
		m.subcategories = newSet(sel.Subcategories)
	}
	if skip != AxisSource {
		m.sources = newSet(sel.Sources)
	}
	if skip != AxisMaterials {
		m.materials = newSet(sel.Materials)
	}
	if skip == AxisGifted {
		m.gifted = GiftedAny
	}
	return m
}

// Matches reports whether item passes every active axis of sel except skip.
// Pass NoAxis to apply all of them.
func Matches(item *model.Item, sel *Selection, skip Axis) bool {
	m := compile(sel, skip)
	return m.match(item)
}

func (m *matcher) match(item *model.Item) bool {
	if m.query != "" && !matchesSearch(item, m.query) {
		return false
	}
	if m.categories != nil && !m.categories.has(item.Category) {
		return false
	}
	if m.subcategories != nil && item.Category == model.CategoryClothing &&
		!m.subcategories.has(subcategoryKey(item)) {
		return false
	}
	if m.sources != nil && !m.sources.has(item.Secondhand) {
		return false
	}
	switch m.gifted {
	case GiftedYes:
		if !item.Gifted {
			return false
		}
	case GiftedNo:
		if item.Gifted {
			return false
		}
	}
	if m.materials != nil && !m.hasMaterial(item) {
		return false
	}
	return true
}

func (m *matcher) hasMaterial(item *model.Item) bool {
	for _, mat := range materialsOf(item) {
		if m.materials.has(mat.Material) {
			return true
		}
	}
	return false
}

// matchesSearch expects query to be lowercased already.
func matchesSearch(item *model.Item, query string) bool {
	for _, field := range []string{item.ItemName, item.Description, item.Origin, item.Category, item.Subcategory} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func subcategoryKey(item *model.Item) string {
	if item.Subcategory == "" {
		return Uncategorized
	}
	return item.Subcategory
}

// materialsOf returns the materials that take part in filtering. Categories
// without a material composition never contribute any.
func materialsOf(item *model.Item) []model.Material {
	if !model.HasMaterials(item.Category) {
		return nil
	}
	return item.Materials
}

// Filter returns the items that pass every active axis, in input order.
func Filter(items []model.Item, sel Selection) []model.Item {
	m := compile(&sel, NoAxis)
	out := make([]model.Item, 0, len(items))
	for i := range items {
		if m.match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
