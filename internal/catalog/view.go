package catalog

import (
	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/model"
)

// BuildView returns the items passing every active axis of sel, ordered by sel.Sort.
func BuildView(items []model.Item, sel Selection) []model.Item {
	return BuildViewLocale(items, sel, language.Und)
}

// BuildViewLocale is BuildView with alphabetical order following lang.
func BuildViewLocale(items []model.Item, sel Selection, lang language.Tag) []model.Item {
	return SortItemsLocale(Filter(items, sel), sel.Sort, lang)
}
