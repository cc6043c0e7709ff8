// Package catalog maps dish names to their ingredient and allergen records.
package catalog

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type Dish struct {
	Name           string   `json:"detected_dish" yaml:"name"`
	AlternateNames []string `json:"alternate_names" yaml:"alternate_names"`
	Ingredients    []string `json:"ingredients" yaml:"ingredients"`
	Allergens      []string `json:"allergens" yaml:"allergens"`
	Recognized     bool     `json:"recognized" yaml:"-"`
}

// Unknown is returned for every name the catalog does not hold.
var Unknown = Dish{
	Name:           "Unknown Dish",
	AlternateNames: []string{},
	Ingredients:    []string{"Ingredients not found"},
	Allergens:      []string{"None detected"},
	Recognized:     false,
}

var builtin = []Dish{
	{
		Name:           "Bistec Encebollado",
		AlternateNames: []string{"Steak and Onions"},
		Ingredients:    []string{"Beef steak", "Onion", "Garlic", "Soy sauce"},
		Allergens:      []string{"Soy"},
	},
	{
		Name:           "Cotoletta Alla Milanese",
		AlternateNames: []string{"Milanesa de Ternera"},
		Ingredients:    []string{"Veal chop", "Breadcrumbs", "Egg", "Butter"},
		Allergens:      []string{"Gluten (breadcrumbs)", "Egg", "Dairy (butter)"},
	},
	{
		Name:           "Mozzarella In Carrozza",
		AlternateNames: []string{"Fried mozzarella sandwich"},
		Ingredients:    []string{"Mozzarella", "Sandwich bread", "Egg", "Flour", "Milk"},
		Allergens:      []string{"Gluten (bread, flour)", "Dairy (cheese, milk)", "Egg"},
	},
	{
		Name:           "Parmigiana Di Melanzane",
		AlternateNames: []string{"Eggplant lasagna"},
		Ingredients:    []string{"Eggplant", "Tomato sauce", "Parmesan", "Basil"},
		Allergens:      []string{"Dairy (cheese)"},
	},
}

// Catalog is immutable after construction; lookups return copies.
type Catalog struct {
	names  []string
	dishes map[string]Dish
}

// Default returns the built-in menu.
func Default() *Catalog {
	c, _ := New(builtin)
	return c
}

// New builds a catalog keeping the given menu order. Names must be unique and non-empty.
func New(dishes []Dish) (*Catalog, error) {
	c := &Catalog{dishes: make(map[string]Dish, len(dishes))}
	for _, d := range dishes {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog.New: dish without a name")
		}
		if _, dup := c.dishes[d.Name]; dup {
			return nil, fmt.Errorf("catalog.New: duplicate dish %q", d.Name)
		}
		d = clone(d)
		d.Recognized = true
		c.dishes[d.Name] = d
		c.names = append(c.names, d.Name)
	}
	return c, nil
}

type file struct {
	Dishes []Dish `yaml:"dishes"`
}

// LoadFile reads a YAML menu of the form `dishes: [{name, alternate_names, ingredients, allergens}]`.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: read %q: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: parse YAML: %w", err)
	}
	if len(f.Dishes) == 0 {
		return nil, fmt.Errorf("catalog.LoadFile: %q has no dishes", path)
	}
	return New(f.Dishes)
}

// Lookup returns the record for name, or Unknown.
func (c *Catalog) Lookup(name string) Dish {
	if d, ok := c.dishes[name]; ok {
		return clone(d)
	}
	return clone(Unknown)
}

// Names lists the menu in catalog order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

func clone(d Dish) Dish {
	d.AlternateNames = cloneNonNil(d.AlternateNames)
	d.Ingredients = cloneNonNil(d.Ingredients)
	d.Allergens = cloneNonNil(d.Allergens)
	return d
}

// cloneNonNil keeps JSON output as [] instead of null.
func cloneNonNil(s []string) []string {
	return append([]string{}, s...)
}
