package catalog

import (
	"bytes"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/gorilla/schema"
)

// Axis names one filter dimension of the browsing view.
type Axis string

// Filter axes. NoAxis excludes nothing.
const (
	NoAxis          Axis = ""
	AxisCategory    Axis = "category"
	AxisSubcategory Axis = "subcategory"
	AxisSource      Axis = "source"
	AxisGifted      Axis = "gifted"
	AxisMaterials   Axis = "materials"
)

// Axes lists every facet axis in panel order.
var Axes = []Axis{AxisCategory, AxisSubcategory, AxisSource, AxisGifted, AxisMaterials}

// Uncategorized is the subcategory value that selects clothing without a subcategory.
const Uncategorized = "uncategorized"

// ParseAxis returns the axis with the given name.
func ParseAxis(name string) (Axis, bool) {
	for _, a := range Axes {
		if string(a) == name {
			return a, true
		}
	}
	return NoAxis, false
}

// SortKey selects the order of the browsing view.
type SortKey string

// Sort keys.
const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortAlphabetical SortKey = "alphabetical"
	SortRandom       SortKey = "random"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortNewest, SortOldest, SortAlphabetical, SortRandom}

// GiftedFilter is the tri-state gifted selection.
type GiftedFilter int8

// Gifted selections.
const (
	GiftedAny GiftedFilter = iota
	GiftedYes
	GiftedNo
)

// ParseGifted maps "true" and "false" to a selection; anything else is unset.
func ParseGifted(s string) GiftedFilter {
	switch strings.TrimSpace(s) {
	case "true":
		return GiftedYes
	case "false":
		return GiftedNo
	default:
		return GiftedAny
	}
}

// String returns "true", "false" or "" for an unset filter.
func (g GiftedFilter) String() string {
	switch g {
	case GiftedYes:
		return "true"
	case GiftedNo:
		return "false"
	default:
		return ""
	}
}

// UnmarshalJSON accepts null, booleans and the strings "true"/"false".
func (g *GiftedFilter) UnmarshalJSON(data []byte) error {
	*g = ParseGifted(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	return nil
}

// MarshalJSON encodes an unset filter as null.
func (g GiftedFilter) MarshalJSON() ([]byte, error) {
	if g == GiftedAny {
		return []byte("null"), nil
	}
	return []byte(g.String()), nil
}

// Selection is the filter panel state supplied by the caller on every evaluation.
type Selection struct {
	Query         string       `json:"searchQuery" schema:"q"`
	Categories    []string     `json:"selectedCategories" schema:"category"`
	Subcategories []string     `json:"selectedSubcategories" schema:"subcategory"`
	Sources       []string     `json:"selectedSources" schema:"source"`
	Materials     []string     `json:"selectedMaterials" schema:"material"`
	Gifted        GiftedFilter `json:"selectedGifted" schema:"gifted"`
	Sort          SortKey      `json:"sortKey" schema:"sort"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(GiftedAny, func(s string) reflect.Value {
		return reflect.ValueOf(ParseGifted(s))
	})
}

// DecodeSelection builds a sanitized selection from URL query values.
func DecodeSelection(query url.Values) (Selection, error) {
	var sel Selection
	if err := decoder.Decode(&sel, query); err != nil {
		return Selection{Sort: SortNewest}, fmt.Errorf("decoding selection: %w", err)
	}
	sel.Sanitize()
	return sel, nil
}

// Sanitize trims values, drops empty and duplicate set entries and defaults the sort key.
func (s *Selection) Sanitize() {
	s.Query = strings.TrimSpace(s.Query)
	s.Categories = cleanSet(s.Categories)
	s.Subcategories = cleanSet(s.Subcategories)
	s.Sources = cleanSet(s.Sources)
	s.Materials = cleanSet(s.Materials)
	if !slices.Contains(SortKeys, s.Sort) {
		s.Sort = SortNewest
	}
}

func cleanSet(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Values returns the selected values on an axis.
func (s *Selection) Values(axis Axis) []string {
	switch axis {
	case AxisCategory:
		return s.Categories
	case AxisSubcategory:
		return s.Subcategories
	case AxisSource:
		return s.Sources
	case AxisMaterials:
		return s.Materials
	case AxisGifted:
		if s.Gifted != GiftedAny {
			return []string{s.Gifted.String()}
		}
	}
	return nil
}

// Has reports whether value is selected on axis.
func (s *Selection) Has(axis Axis, value string) bool {
	return slices.Contains(s.Values(axis), value)
}

// Active reports whether any axis or the search query constrains the view.
func (s *Selection) Active() bool {
	if s.Query != "" {
		return true
	}
	for _, a := range Axes {
		if len(s.Values(a)) > 0 {
			return true
		}
	}
	return false
}

// WithOut returns a copy of the selection with one axis cleared.
func (s Selection) WithOut(axis Axis) Selection {
	out := s.clone()
	out.set(axis, nil)
	return out
}

// Toggle returns a copy of the selection with value added to or removed from axis.
// The gifted axis holds at most one value, so toggling it replaces the previous one.
func (s Selection) Toggle(axis Axis, value string) Selection {
	out := s.clone()
	current := out.Values(axis)
	if slices.Contains(current, value) {
		out.set(axis, slices.DeleteFunc(slices.Clone(current), func(v string) bool { return v == value }))
	} else if axis == AxisGifted {
		out.set(axis, []string{value})
	} else {
		out.set(axis, append(slices.Clone(current), value))
	}
	return out
}

func (s *Selection) set(axis Axis, values []string) {
	if len(values) == 0 {
		values = nil
	}
	switch axis {
	case AxisCategory:
		s.Categories = values
	case AxisSubcategory:
		s.Subcategories = values
	case AxisSource:
		s.Sources = values
	case AxisMaterials:
		s.Materials = values
	case AxisGifted:
		s.Gifted = GiftedAny
		if len(values) > 0 {
			s.Gifted = ParseGifted(values[len(values)-1])
		}
	}
}

func (s Selection) clone() Selection {
	s.Categories = slices.Clone(s.Categories)
	s.Subcategories = slices.Clone(s.Subcategories)
	s.Sources = slices.Clone(s.Sources)
	s.Materials = slices.Clone(s.Materials)
	return s
}

// Encode renders the selection as URL query values understood by DecodeSelection.
func (s *Selection) Encode() url.Values {
	q := url.Values{}
	if s.Query != "" {
		q.Set("q", s.Query)
	}
	for _, v := range s.Categories {
		q.Add("category", v)
	}
	for _, v := range s.Subcategories {
		q.Add("subcategory", v)
	}
	for _, v := range s.Sources {
		q.Add("source", v)
	}
	for _, v := range s.Materials {
		q.Add("material", v)
	}
	if s.Gifted != GiftedAny {
		q.Set("gifted", s.Gifted.String())
	}
	if s.Sort != "" && s.Sort != SortNewest {
		q.Set("sort", string(s.Sort))
	}
	return q
}
