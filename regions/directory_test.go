package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := Load()
	require.NoError(t, err)
	return d
}

func TestLoadEmbeddedDataset(t *testing.T) {
	d := loadDirectory(t)
	assert.NotEmpty(t, d.States())
}

func TestValidateState(t *testing.T) {
	d := loadDirectory(t)

	assert.True(t, d.ValidateState("Maharashtra"))
	assert.True(t, d.ValidateState("maharashtra"))
	assert.False(t, d.ValidateState("Atlantis"))
}

func TestValidateCity(t *testing.T) {
	d := loadDirectory(t)

	assert.True(t, d.ValidateCity("Mumbai", "Maharashtra"))
	assert.True(t, d.ValidateCity("mumbai", "maharashtra"))
	assert.False(t, d.ValidateCity("Mumbai", "Gujarat"))
	assert.True(t, d.ValidateCity("Mumbai", ""))
	assert.False(t, d.ValidateCity("Gotham", ""))
}

func TestNormalize(t *testing.T) {
	d := loadDirectory(t)

	assert.Equal(t, "Maharashtra", d.NormalizeState("MAHARASHTRA"))
	assert.Equal(t, "Mumbai", d.NormalizeCity("mumbai", "maharashtra"))
	assert.Equal(t, "Unknown Place", d.NormalizeCity("Unknown Place", "Maharashtra"))
}

func TestCitiesInState(t *testing.T) {
	d := loadDirectory(t)

	cities := d.CitiesInState("Maharashtra")
	assert.Contains(t, cities, "Mumbai")
	assert.Contains(t, cities, "Pune")
	assert.Nil(t, d.CitiesInState("Atlantis"))
}

func TestSearchStates_Fuzzy(t *testing.T) {
	d := loadDirectory(t)

	hits := d.SearchStates("gujrat")
	require.NotEmpty(t, hits)
	assert.Equal(t, "Gujarat", hits[0].Name)

	byCode := d.SearchStates("MH")
	require.NotEmpty(t, byCode)
	assert.Equal(t, "Maharashtra", byCode[0].Name)
}

func TestSearchCities_Fuzzy(t *testing.T) {
	d := loadDirectory(t)

	hits := d.SearchCities("mumbi", "")
	require.NotEmpty(t, hits)
	assert.Equal(t, "Mumbai", hits[0].City)
	assert.Equal(t, "Maharashtra", hits[0].State)

	scoped := d.SearchCities("pun", "Maharashtra")
	require.NotEmpty(t, scoped)
	assert.Equal(t, "Pune", scoped[0].City)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("delhi", "delhi"))
	assert.Equal(t, 2, levenshtein("delhi", "dehli"))
	assert.Equal(t, 1, levenshtein("pune", "pun"))
	assert.Equal(t, 5, levenshtein("", "delhi"))
}
