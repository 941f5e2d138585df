package web

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/erazemk/stvari/internal/model"
)

// itemForm is the create/edit form of an item. Materials are posted as
// parallel material/percentage lists; blank rows are skipped.
type itemForm struct {
	ItemName           string     `schema:"item_name"`
	Description        string     `schema:"description"`
	Category           string     `schema:"category"`
	Subcategory        string     `schema:"subcategory"`
	Origin             string     `schema:"origin"`
	Secondhand         string     `schema:"secondhand"`
	Gifted             model.Flag `schema:"gifted"`
	Private            model.Flag `schema:"private"`
	PrivatePhotos      model.Flag `schema:"private_photos"`
	PrivateDescription model.Flag `schema:"private_description"`
	PrivateOrigin      model.Flag `schema:"private_origin"`
	Material           []string   `schema:"material"`
	Percentage         []string   `schema:"percentage"`
}

var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
	// Keep blank rows so material and percentage stay aligned.
	formDecoder.ZeroEmpty(true)
	// Checkboxes post "on".
	formDecoder.RegisterConverter(model.Flag(false), func(s string) reflect.Value {
		switch s {
		case "on", "true", "1":
			return reflect.ValueOf(model.Flag(true))
		}
		return reflect.ValueOf(model.Flag(false))
	})
}

// decodeItemForm turns posted form values into an item. Fields that do not
// apply to the chosen category are dropped.
func decodeItemForm(values url.Values) (*model.Item, error) {
	var f itemForm
	if err := formDecoder.Decode(&f, values); err != nil {
		return nil, fmt.Errorf("decoding item form: %w", err)
	}

	item := &model.Item{
		ItemName:           strings.TrimSpace(f.ItemName),
		Description:        strings.TrimSpace(f.Description),
		Category:           f.Category,
		Origin:             strings.TrimSpace(f.Origin),
		Secondhand:         f.Secondhand,
		Gifted:             f.Gifted,
		Private:            f.Private,
		PrivatePhotos:      f.PrivatePhotos,
		PrivateDescription: f.PrivateDescription,
		PrivateOrigin:      f.PrivateOrigin,
	}
	if model.HasSubcategories(item.Category) {
		item.Subcategory = f.Subcategory
	}
	if !model.HasMaterials(item.Category) {
		return item, nil
	}

	for i, name := range f.Material {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m := model.Material{Material: name}
		if i < len(f.Percentage) {
			if p := strings.TrimSpace(f.Percentage[i]); p != "" {
				n, err := strconv.Atoi(strings.TrimSuffix(p, "%"))
				if err != nil {
					return nil, fmt.Errorf("invalid percentage %q for %s", p, name)
				}
				m.Percentage = &n
			}
		}
		item.Materials = append(item.Materials, m)
	}
	return item, nil
}

// materialRows pads an item's materials with blank rows for the edit form.
func materialRows(materials []model.Material, blank int) []model.Material {
	rows := append([]model.Material(nil), materials...)
	for range blank {
		rows = append(rows, model.Material{})
	}
	return rows
}
