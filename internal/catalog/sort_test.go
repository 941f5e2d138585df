package catalog

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/model"
)

func named(names ...string) []model.Item {
	items := make([]model.Item, len(names))
	for i, n := range names {
		items[i] = model.Item{ID: n, ItemName: n}
	}
	return items
}

func TestSortAlphabetical(t *testing.T) {
	tests := []struct {
		names []string
		want  []string
	}{
		// Case does not outrank letters.
		{[]string{"banana", "Cherry", "apple"}, []string{"apple", "banana", "Cherry"}},
		// Accented letters sort with their base letter.
		{[]string{"ember", "Éclair", "dune"}, []string{"dune", "Éclair", "ember"}},
	}

	for _, tt := range tests {
		got := ids(SortItems(named(tt.names...), SortAlphabetical))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("alphabetical mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSortAlphabeticalLocale(t *testing.T) {
	items := named("dan", "čaj", "cvet")

	got := ids(SortItemsLocale(items, SortAlphabetical, language.Slovenian))
	if diff := cmp.Diff([]string{"cvet", "čaj", "dan"}, got); diff != "" {
		t.Errorf("slovenian order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByCreatedAt(t *testing.T) {
	items := []model.Item{
		{ID: "mid", CreatedAt: "2024-03-01T12:00:00Z"},
		{ID: "bad", CreatedAt: "yesterday"},
		{ID: "new", CreatedAt: "2024-06-01 08:30:00"},
		{ID: "missing"},
		{ID: "old", CreatedAt: "2023-12-31"},
	}

	newest := ids(SortItems(items, SortNewest))
	if diff := cmp.Diff([]string{"new", "mid", "old", "bad", "missing"}, newest); diff != "" {
		t.Errorf("newest mismatch (-want +got):\n%s", diff)
	}

	oldest := ids(SortItems(items, SortOldest))
	if diff := cmp.Diff([]string{"bad", "missing", "old", "mid", "new"}, oldest); diff != "" {
		t.Errorf("oldest mismatch (-want +got):\n%s", diff)
	}

	unknown := ids(SortItems(items, SortKey("popular")))
	if diff := cmp.Diff(newest, unknown); diff != "" {
		t.Errorf("unknown key should sort newest first (-want +got):\n%s", diff)
	}
}

func TestParseCreatedAt(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02T03:04:05.250Z", time.Date(2024, 1, 2, 3, 4, 5, 250e6, time.UTC)},
		{"2024-01-02 03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"", time.Unix(0, 0)},
		{"garbage", time.Unix(0, 0)},
	}

	for _, tt := range tests {
		if got := ParseCreatedAt(tt.input); !got.Equal(tt.want) {
			t.Errorf("ParseCreatedAt(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSortRandomIsPermutation(t *testing.T) {
	names := make([]string, 40)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	items := named(names...)

	reordered := false
	for range 5 {
		got := ids(SortItems(items, SortRandom))
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		if diff := cmp.Diff(names, sorted); diff != "" {
			t.Fatalf("random sort lost or duplicated items (-want +got):\n%s", diff)
		}
		if !slices.Equal(got, names) {
			reordered = true
		}
	}
	if !reordered {
		t.Error("expected random sort to reorder 40 items at least once in 5 tries")
	}
}
