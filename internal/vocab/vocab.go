// Package vocab holds the category vocabulary and validates items against it.
package vocab

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/stvari/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidItem is wrapped by every ValidateItem error.
var ErrInvalidItem = errors.New("invalid item")

// Category is one entry of the category vocabulary.
type Category struct {
	Key           string   `yaml:"key" json:"key"`
	Label         string   `yaml:"label" json:"label"`
	Subcategories []string `yaml:"subcategories,omitempty" json:"subcategories,omitempty"`
}

// Source labels one value of the secondhand field.
type Source struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// Vocabulary lists the categories, sources and suggested materials.
type Vocabulary struct {
	Categories []Category `yaml:"categories" json:"categories"`
	Sources    []Source   `yaml:"sources" json:"sources"`
	Materials  []string   `yaml:"materials" json:"materials"`
}

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	v, err := Load(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// LoadFile reads a vocabulary from a YAML file.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and checks a YAML vocabulary. Unknown fields are rejected.
func Load(r io.Reader) (*Vocabulary, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var v Vocabulary
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vocabulary) check() error {
	seen := make(map[string]bool)
	for _, c := range v.Categories {
		if c.Key == "" {
			return fmt.Errorf("category without key")
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate category %q", c.Key)
		}
		seen[c.Key] = true
		if len(c.Subcategories) > 0 && !model.HasSubcategories(c.Key) {
			return fmt.Errorf("category %q cannot have subcategories", c.Key)
		}
	}
	for _, s := range v.Sources {
		if !slices.Contains(model.Sources, s.Key) {
			return fmt.Errorf("unknown source %q", s.Key)
		}
	}
	return nil
}

// Category returns the vocabulary entry for key.
func (v *Vocabulary) Category(key string) (Category, bool) {
	for _, c := range v.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Label returns the display label of a category, or the key itself.
func (v *Vocabulary) Label(category string) string {
	if c, ok := v.Category(category); ok && c.Label != "" {
		return c.Label
	}
	return category
}

// SourceLabel returns the display label of a source, or the key itself.
func (v *Vocabulary) SourceLabel(source string) string {
	for _, s := range v.Sources {
		if s.Key == source && s.Label != "" {
			return s.Label
		}
	}
	return source
}

// ValidateItem checks the item's classification fields against the vocabulary.
func (v *Vocabulary) ValidateItem(item *model.Item) error {
	if strings.TrimSpace(item.ItemName) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidItem)
	}

	if item.Category != "" {
		c, ok := v.Category(item.Category)
		if !ok {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, item.Category)
		}
		if item.Subcategory != "" && len(c.Subcategories) > 0 && !slices.Contains(c.Subcategories, item.Subcategory) {
			return fmt.Errorf("%w: unknown subcategory %q", ErrInvalidItem, item.Subcategory)
		}
	}
	if item.Subcategory != "" && !model.HasSubcategories(item.Category) {
		return fmt.Errorf("%w: only clothing has subcategories", ErrInvalidItem)
	}

	if item.Secondhand != "" && !slices.Contains(model.Sources, item.Secondhand) {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidItem, item.Secondhand)
	}

	if len(item.Materials) > 0 && !model.HasMaterials(item.Category) {
		return fmt.Errorf("%w: materials only apply to clothing and bedding", ErrInvalidItem)
	}
	total := 0
	for _, m := range item.Materials {
		if strings.TrimSpace(m.Material) == "" {
			return fmt.Errorf("%w: material name required", ErrInvalidItem)
		}
		if m.Percentage == nil {
			continue
		}
		if *m.Percentage < 0 || *m.Percentage > 100 {
			return fmt.Errorf("%w: percentage of %s out of range", ErrInvalidItem, m.Material)
		}
		total += *m.Percentage
	}
	if total > 100 {
		return fmt.Errorf("%w: material percentages add up to %d", ErrInvalidItem, total)
	}
	return nil
}
