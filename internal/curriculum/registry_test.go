package curriculum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	r := Default()

	require.True(t, r.Exists("young_kids"))
	assert.Equal(t, TierKids, r.Get("young_kids").Tier)
	assert.Equal(t, TierAdults, r.Get("ielts_pte").Tier)
	assert.False(t, r.Exists("klingon"))

	all := r.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "young_kids", all[0].ID)
	assert.Len(t, r.ByTier(TierTeens), 2)
}

func TestLevelFor(t *testing.T) {
	c := &Category{ID: "x"}
	assert.Equal(t, 1, c.LevelFor(0))
	assert.Equal(t, 1, c.LevelFor(99))
	assert.Equal(t, 2, c.LevelFor(100))
	assert.Equal(t, 10, c.LevelFor(100000))

	custom := &Category{ID: "y", LevelThresholds: []int{10, 20}}
	assert.Equal(t, 3, custom.LevelFor(25))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories":[{"id":"phonics","name":"Phonics","tier":"kids"}]}`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.True(t, r.Exists("phonics"))
	assert.False(t, r.Exists("young_kids"))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"categories":[{"id":"z","tier":"seniors"}]}`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}
