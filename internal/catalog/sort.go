package catalog

import (
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/model"
)

// epoch is where items with a missing or unparseable createdAt sort.
var epoch = time.Unix(0, 0).UTC()

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses an item timestamp, falling back to the Unix epoch.
func ParseCreatedAt(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}

// SortItems returns a sorted copy of items using root-locale collation for names.
func SortItems(items []model.Item, key SortKey) []model.Item {
	return SortItemsLocale(items, key, language.Und)
}

// SortItemsLocale returns a sorted copy of items. Alphabetical order follows the
// collation rules of lang. Every key except random is stable; random reshuffles
// on every call. Unknown keys sort newest first.
func SortItemsLocale(items []model.Item, key SortKey, lang language.Tag) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)

	switch key {
	case SortRandom:
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	case SortAlphabetical:
		c := collate.New(lang)
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return c.CompareString(a.ItemName, b.ItemName)
		})
	case SortOldest:
		sortByTime(out, false)
	default:
		sortByTime(out, true)
	}
	return out
}

type timedItem struct {
	at   time.Time
	item model.Item
}

func sortByTime(items []model.Item, descending bool) {
	timed := make([]timedItem, len(items))
	for i := range items {
		timed[i] = timedItem{at: ParseCreatedAt(items[i].CreatedAt), item: items[i]}
	}
	slices.SortStableFunc(timed, func(a, b timedItem) int {
		if descending {
			return b.at.Compare(a.at)
		}
		return a.at.Compare(b.at)
	})
	for i := range timed {
		items[i] = timed[i].item
	}
}
