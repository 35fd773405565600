package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

// Errors returned by the catalog.
var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrDuplicateItem   = errors.New("duplicate menu item id")
	ErrInvalidPrice    = errors.New("invalid menu item price")
	ErrUnknownCategory = errors.New("unknown menu category")
)

// MenuItem is a read-only entry of the fixed menu.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Category    string          `json:"category"`
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Category is a menu navigation group.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type menuFile struct {
	Categories []Category `yaml:"categories"`
	Items      []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Price       string `yaml:"price"`
		Category    string `yaml:"category"`
		Type        string `yaml:"type"`
		Description string `yaml:"description"`
	} `yaml:"items"`
}

// Catalog holds the menu in display order with an index by item ID.
type Catalog struct {
	categories []Category
	items      []MenuItem
	byID       map[string]int
}

// Default returns the catalog built from the embedded menu.
func Default() (*Catalog, error) {
	return Parse(defaultMenu)
}

// Load reads a YAML menu file. An empty path yields the embedded menu.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML menu data.
func Parse(data []byte) (*Catalog, error) {
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	known := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		known[c.Key] = true
	}

	c := &Catalog{
		categories: f.Categories,
		items:      make([]MenuItem, 0, len(f.Items)),
		byID:       make(map[string]int, len(f.Items)),
	}
	for i, it := range f.Items {
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("items[%d] %q: %w", i, it.ID, ErrDuplicateItem)
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("items[%d] %q: %w", i, it.ID, ErrInvalidPrice)
		}
		if len(known) > 0 && !known[it.Category] {
			return nil, fmt.Errorf("items[%d] %q: %w", i, it.ID, ErrUnknownCategory)
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			UnitPrice:   price,
			Category:    it.Category,
			Type:        it.Type,
			Description: it.Description,
		})
	}
	return c, nil
}

// Get looks up a menu item by ID.
func (c *Catalog) Get(id string) (MenuItem, error) {
	i, ok := c.byID[id]
	if !ok {
		return MenuItem{}, ErrItemNotFound
	}
	return c.items[i], nil
}

// Items returns every item, optionally restricted to one category.
func (c *Catalog) Items(category string) []MenuItem {
	out := make([]MenuItem, 0, len(c.items))
	for _, it := range c.items {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Categories returns the navigation groups in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}
