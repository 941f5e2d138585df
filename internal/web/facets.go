package web

import (
	"fmt"

	"github.com/erazemk/stvari/internal/catalog"
	"github.com/erazemk/stvari/internal/vocab"
)

// Chip is one clickable filter value. Href toggles it in the current selection.
type Chip struct {
	Label    string
	Count    int
	Selected bool
	Href     string
}

// Text is the chip caption, "Label (count)".
func (c Chip) Text() string {
	return fmt.Sprintf("%s (%d)", c.Label, c.Count)
}

// ChipGroup is the chips of one axis.
type ChipGroup struct {
	Title string
	Chips []Chip
}

// SortOption is one entry of the sort selector.
type SortOption struct {
	Label    string
	Href     string
	Selected bool
}

var axisTitles = map[catalog.Axis]string{
	catalog.AxisCategory:    "Kategorija",
	catalog.AxisSubcategory: "Podkategorija",
	catalog.AxisSource:      "Izvor",
	catalog.AxisGifted:      "Darilo",
	catalog.AxisMaterials:   "Material",
}

var sortLabels = map[catalog.SortKey]string{
	catalog.SortNewest:       "Najnovejše",
	catalog.SortOldest:       "Najstarejše",
	catalog.SortAlphabetical: "Po abecedi",
	catalog.SortRandom:       "Naključno",
}

func chipLabel(v *vocab.Vocabulary, axis catalog.Axis, value string) string {
	switch axis {
	case catalog.AxisCategory:
		return v.Label(value)
	case catalog.AxisSource:
		return v.SourceLabel(value)
	case catalog.AxisSubcategory:
		if value == catalog.Uncategorized {
			return "brez podkategorije"
		}
	case catalog.AxisGifted:
		if value == "true" {
			return "da"
		}
		return "ne"
	}
	return value
}

// chipGroups renders a facet panel as toggle links rooted at base. Axes with
// no values are left out.
func chipGroups(v *vocab.Vocabulary, base string, panel *catalog.Panel, sel catalog.Selection) []ChipGroup {
	var groups []ChipGroup
	for _, f := range panel.Facets {
		if len(f.Values) == 0 {
			continue
		}
		g := ChipGroup{Title: axisTitles[f.Axis]}
		for _, fv := range f.Values {
			g.Chips = append(g.Chips, Chip{
				Label:    chipLabel(v, f.Axis, fv.Value),
				Count:    fv.Count,
				Selected: fv.Selected,
				Href:     link(base, sel.Toggle(f.Axis, fv.Value)),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

func sortOptions(base string, sel catalog.Selection) []SortOption {
	opts := make([]SortOption, 0, len(catalog.SortKeys))
	for _, key := range catalog.SortKeys {
		next := sel
		next.Sort = key
		opts = append(opts, SortOption{
			Label:    sortLabels[key],
			Href:     link(base, next),
			Selected: sel.Sort == key,
		})
	}
	return opts
}

func link(base string, sel catalog.Selection) string {
	if q := sel.Encode().Encode(); q != "" {
		return base + "?" + q
	}
	return base
}

// HiddenField carries part of the selection through the search form.
type HiddenField struct {
	Name, Value string
}

// hiddenFields lists every selection parameter except the search query.
func hiddenFields(sel catalog.Selection) []HiddenField {
	q := sel.Encode()
	q.Del("q")

	var out []HiddenField
	for _, name := range []string{"category", "subcategory", "source", "material", "gifted", "sort"} {
		for _, v := range q[name] {
			out = append(out, HiddenField{Name: name, Value: v})
		}
	}
	return out
}
