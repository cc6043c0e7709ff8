package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LookupKnown(t *testing.T) {
	c := Default()

	d := c.Lookup("Cotoletta Alla Milanese")
	assert.True(t, d.Recognized)
	assert.Equal(t, "Cotoletta Alla Milanese", d.Name)
	assert.Contains(t, d.Allergens, "Egg")
	assert.Equal(t, []string{"Milanesa de Ternera"}, d.AlternateNames)
}

func TestDefault_LookupUnknown(t *testing.T) {
	c := Default()

	for _, name := range []string{"Pizza", "", "bistec encebollado"} {
		d := c.Lookup(name)
		assert.False(t, d.Recognized, name)
		assert.Equal(t, Unknown.Name, d.Name)
		assert.NotNil(t, d.AlternateNames)
		assert.Empty(t, d.AlternateNames)
	}
}

func TestDefault_NamesInMenuOrder(t *testing.T) {
	assert.Equal(t, []string{
		"Bistec Encebollado",
		"Cotoletta Alla Milanese",
		"Mozzarella In Carrozza",
		"Parmigiana Di Melanzane",
	}, Default().Names())
}

func TestCatalog_IsImmutable(t *testing.T) {
	c := Default()

	d := c.Lookup("Bistec Encebollado")
	d.Ingredients[0] = "Tofu"
	d.Allergens = append(d.Allergens, "Peanut")

	names := c.Names()
	names[0] = "Changed"

	again := c.Lookup("Bistec Encebollado")
	assert.Equal(t, "Beef steak", again.Ingredients[0])
	assert.Equal(t, []string{"Soy"}, again.Allergens)
	assert.Equal(t, "Bistec Encebollado", c.Names()[0])

	u := c.Lookup("nope")
	u.Ingredients[0] = "mutated"
	assert.Equal(t, "Ingredients not found", c.Lookup("nope").Ingredients[0])
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Dish{{Name: "A"}, {Name: "A"}})
	require.Error(t, err)

	_, err = New([]Dish{{Name: ""}})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dishes:
  - name: Risotto
    alternate_names: [Rice dish]
    ingredients: [Rice, Parmesan, Butter]
    allergens: [Dairy]
  - name: Caprese
    ingredients: [Tomato, Mozzarella]
`), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Risotto", "Caprese"}, c.Names())

	d := c.Lookup("Caprese")
	assert.True(t, d.Recognized)
	assert.Equal(t, []string{}, d.Allergens)
	assert.False(t, c.Lookup("Bistec Encebollado").Recognized)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("dishes: []\n"), 0o600))
	_, err = LoadFile(empty)
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("dishes: [\n"), 0o600))
	_, err = LoadFile(bad)
	require.Error(t, err)
}
