package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Item is one owned thing in a person's catalog.
type Item struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId,omitempty"`
	ItemName    string     `json:"itemName"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Origin      string     `json:"origin"`
	Secondhand  string     `json:"secondhand"`
	Gifted      Flag       `json:"gifted"`
	Materials   []Material `json:"materials"`

	Private            Flag `json:"private"`
	PrivatePhotos      Flag `json:"privatePhotos"`
	PrivateDescription Flag `json:"privateDescription"`
	PrivateOrigin      Flag `json:"privateOrigin"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	MainPhoto string `json:"mainPhoto,omitempty"`

	// Joined field (not always populated).
	OwnerName string `json:"ownerName,omitempty"`
}

// Material is one entry of an item's composition. Percentage is nil when unknown.
type Material struct {
	Material   string `json:"material"`
	Percentage *int   `json:"percentage"`
}

// Categories with special filter rules.
const (
	CategoryClothing = "clothing"
	CategoryBedding  = "bedding"
)

// Item sources (the secondhand field).
const (
	SourceNew        = "new"
	SourceSecondhand = "secondhand"
	SourceHandmade   = "handmade"
	SourceUnknown    = "unknown"
)

// Sources lists the valid values of Item.Secondhand.
var Sources = []string{SourceNew, SourceSecondhand, SourceHandmade, SourceUnknown}

// HasSubcategories reports whether items of the category carry a subcategory.
func HasSubcategories(category string) bool {
	return category == CategoryClothing
}

// HasMaterials reports whether items of the category carry a material composition.
func HasMaterials(category string) bool {
	return category == CategoryClothing || category == CategoryBedding
}

// HidesPhotos reports whether photos are only visible to the owner.
func (i *Item) HidesPhotos() bool {
	return bool(i.Private || i.PrivatePhotos)
}

// HidesDescription reports whether the description is only visible to the owner.
func (i *Item) HidesDescription() bool {
	return bool(i.Private || i.PrivateDescription)
}

// HidesOrigin reports whether the origin is only visible to the owner.
func (i *Item) HidesOrigin() bool {
	return bool(i.Private || i.PrivateOrigin)
}

// Redacted returns a copy of the item as seen by someone other than its owner.
func (i Item) Redacted() Item {
	out := i
	out.Materials = append([]Material(nil), i.Materials...)
	if i.HidesPhotos() {
		out.MainPhoto = ""
	}
	if i.HidesDescription() {
		out.Description = ""
	}
	if i.HidesOrigin() {
		out.Origin = ""
	}
	return out
}

// Flag is a boolean that also decodes from the strings "true" and "false".
// Anything else decodes to false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case `true`, `"true"`:
		*f = true
	default:
		*f = false
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Scan implements sql.Scanner for INTEGER 0/1 columns.
func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case int64:
		*f = v != 0
	case bool:
		*f = Flag(v)
	case []byte:
		*f = ParseFlag(string(v)) || string(v) == "1"
	case string:
		*f = ParseFlag(v) || v == "1"
	default:
		return fmt.Errorf("cannot scan %T into Flag", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// ParseFlag normalizes a loosely typed boolean (bool, "true", "false") to a Flag.
func ParseFlag(v any) Flag {
	switch t := v.(type) {
	case bool:
		return Flag(t)
	case Flag:
		return t
	case string:
		return Flag(t == "true")
	default:
		return false
	}
}
