package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed_Default(t *testing.T) {
	seedFile = ""
	categories, err := loadSeed()
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	titles := map[string]bool{}
	for _, c := range categories {
		assert.False(t, titles[c.Title], "duplicate category %q", c.Title)
		titles[c.Title] = true
		assert.NotEmpty(t, c.SubCategories, c.Title)
	}
}

func TestLoadSeed_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"Sports","sub_categories":[{"title":"Gym"}]}]`), 0o600))

	seedFile = path
	t.Cleanup(func() { seedFile = "" })

	categories, err := loadSeed()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Sports", categories[0].Title)
	assert.Equal(t, "Gym", categories[0].SubCategories[0].Title)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Sports"}]`), 0o600))
	_, err = loadSeed()
	assert.Error(t, err)
}
