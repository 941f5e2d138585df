package model

import (
	"encoding/json"
	"testing"
)

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  Flag
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"false"`, false},
		{`null`, false},
		{`1`, false},
		{`"yes"`, false},
		{`"TRUE"`, false},
	}

	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.input, err)
		}
		if f != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, f, tt.want)
		}
	}
}

func TestItemDecodesMixedFlags(t *testing.T) {
	data := `{"id":"a","itemName":"Scarf","gifted":"true","private":false,"privatePhotos":"false","privateOrigin":true}`

	var item Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !item.Gifted {
		t.Error("expected gifted to decode from string")
	}
	if item.PrivatePhotos {
		t.Error("expected privatePhotos false")
	}
	if !item.PrivateOrigin {
		t.Error("expected privateOrigin true")
	}

	out, _ := json.Marshal(item.Gifted)
	if string(out) != "true" {
		t.Errorf("expected flag to encode as bool, got %s", out)
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		input any
		want  Flag
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"false", false},
		{"1", false},
		{nil, false},
		{1, false},
	}

	for _, tt := range tests {
		if got := ParseFlag(tt.input); got != tt.want {
			t.Errorf("ParseFlag(%#v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRedacted(t *testing.T) {
	item := Item{
		ItemName:      "Ring",
		Description:   "from grandma",
		Origin:        "Ljubljana",
		MainPhoto:     "/api/items/x/photo",
		PrivateOrigin: true,
	}

	got := item.Redacted()
	if got.Origin != "" {
		t.Errorf("expected origin hidden, got %q", got.Origin)
	}
	if got.Description != "from grandma" || got.MainPhoto == "" {
		t.Error("expected description and photo to stay visible")
	}

	item.Private = true
	got = item.Redacted()
	if got.Description != "" || got.MainPhoto != "" || got.Origin != "" {
		t.Errorf("private item should hide everything, got %+v", got)
	}
	if item.Description == "" {
		t.Error("Redacted must not modify the receiver")
	}
}

func TestCategoryRules(t *testing.T) {
	if !HasSubcategories(CategoryClothing) || HasSubcategories(CategoryBedding) {
		t.Error("only clothing has subcategories")
	}
	if !HasMaterials(CategoryClothing) || !HasMaterials(CategoryBedding) || HasMaterials("furniture") {
		t.Error("only clothing and bedding have materials")
	}
}

func TestFlagScan(t *testing.T) {
	tests := []struct {
		src  any
		want Flag
	}{
		{int64(1), true},
		{int64(0), false},
		{true, true},
		{[]byte("1"), true},
		{"true", true},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		var f Flag
		if err := f.Scan(tt.src); err != nil {
			t.Fatalf("Scan(%#v): %v", tt.src, err)
		}
		if f != tt.want {
			t.Errorf("Scan(%#v) = %v, want %v", tt.src, f, tt.want)
		}
	}

	var f Flag
	if err := f.Scan(3.5); err == nil {
		t.Error("expected error for float")
	}
}
