package web

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/stvari/internal/model"
)

func TestDecodeItemForm(t *testing.T) {
	forty := 40
	tests := []struct {
		name string
		form url.Values
		want *model.Item
	}{
		{
			name: "clothing keeps subcategory and materials",
			form: url.Values{
				"item_name":   {"  Scarf "},
				"category":    {"clothing"},
				"subcategory": {"accessories"},
				"material":    {"", "Silk", "Wool"},
				"percentage":  {"", "40%", ""},
				"gifted":      {"on"},
			},
			want: &model.Item{
				ItemName:    "Scarf",
				Category:    "clothing",
				Subcategory: "accessories",
				Gifted:      true,
				Materials:   []model.Material{{Material: "Silk", Percentage: &forty}, {Material: "Wool"}},
			},
		},
		{
			name: "bedding drops subcategory",
			form: url.Values{"item_name": {"Sheet"}, "category": {"bedding"}, "subcategory": {"shirt"}, "private": {"on"}},
			want: &model.Item{ItemName: "Sheet", Category: "bedding", Private: true},
		},
		{
			name: "decor drops materials",
			form: url.Values{"item_name": {"Vase"}, "category": {"decor"}, "material": {"Glass"}, "private_photos": {"true"}},
			want: &model.Item{ItemName: "Vase", Category: "decor", PrivatePhotos: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeItemForm(tt.form)
			if err != nil {
				t.Fatalf("decodeItemForm: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("item mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeItemFormBadPercentage(t *testing.T) {
	_, err := decodeItemForm(url.Values{"item_name": {"Shirt"}, "category": {"clothing"}, "material": {"Cotton"}, "percentage": {"lots"}})
	if err == nil {
		t.Error("expected error for non-numeric percentage")
	}
}
