package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionysus/cellarsight/internal/valuation"
)

func TestDefaultValuationTables_Valid(t *testing.T) {
	tables := DefaultValuationTables()
	require.NoError(t, tables.Validate())

	// The default entry must terminate resolution.
	last := tables.Profiles[len(tables.Profiles)-1]
	assert.Equal(t, valuation.DefaultKey, last.Key)
	assert.Equal(t, 1.0, last.Profile.PremiumMultiplier)
}

func TestDefaultValuationTables_SpecificTiersBeforeGeneric(t *testing.T) {
	tables := DefaultValuationTables()
	r := tables.NewResolver()

	// "premier grand cru" contains "premier cru" and "grand cru"; the most
	// specific tier must win through table order.
	assert.Equal(t, 1.8, r.ClassificationMultiplier("Premier Grand Cru Classé", ""))
	assert.Equal(t, 1.5, r.ClassificationMultiplier("Premier Cru", ""))
	assert.Equal(t, 1.6, r.ClassificationMultiplier("Grand Cru", ""))
}

func TestLoadValuationTables_MissingFileFallsBack(t *testing.T) {
	tables, err := LoadValuationTables("does/not/exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultValuationTables(), tables)

	tables, err = LoadValuationTables("")
	require.NoError(t, err)
	assert.Equal(t, DefaultValuationTables(), tables)
}

func TestLoadValuationTables_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.yaml")
	doc := `profiles:
  - key: Mosel
    base_return: 6.0
    volatility: 4
    liquidity: 6
    premium_multiplier: 1.2
  - key: default
    base_return: 3.5
    volatility: 5
    liquidity: 5
    premium_multiplier: 1.0
classifications:
  - key: grosses gewächs
    multiplier: 1.3
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tables, err := LoadValuationTables(path)
	require.NoError(t, err)

	require.Len(t, tables.Profiles, 2)
	assert.Equal(t, "Mosel", tables.Profiles[0].Key)
	assert.Equal(t, 6.0, tables.Profiles[0].Profile.BaseReturn)
	require.Len(t, tables.Classifications, 1)
	assert.Equal(t, 1.3, tables.Classifications[0].Multiplier)
}

func TestLoadValuationTables_InvalidFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.yaml")
	doc := `profiles:
  - key: Mosel
    base_return: 6.0
    volatility: 14
    liquidity: 6
    premium_multiplier: 1.2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadValuationTables(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volatility")
}

func TestValidate_Errors(t *testing.T) {
	noDefault := ValuationTables{
		Profiles: []valuation.ProfileEntry{
			{Key: "Pauillac", Profile: valuation.InvestmentProfile{BaseReturn: 8, Volatility: 3, Liquidity: 9, PremiumMultiplier: 1.5}},
		},
	}
	assert.Error(t, noDefault.Validate())

	discount := DefaultValuationTables()
	discount.Classifications = append(discount.Classifications, valuation.MultiplierEntry{Key: "bulk", Multiplier: 0.8})
	assert.Error(t, discount.Validate())
}
