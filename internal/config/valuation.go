package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/aionysus/cellarsight/internal/valuation"
)

// ValuationTables holds the static knowledge base for the profile resolver:
// region archetypes and classification boosts. Both are ordered lists because
// substring tie-breaks resolve in declaration order.
type ValuationTables struct {
	Profiles        []valuation.ProfileEntry    `yaml:"profiles"`
	Classifications []valuation.MultiplierEntry `yaml:"classifications"`
}

// DefaultValuationTables returns the compiled-in knowledge base covering the
// major fine-wine regions carried by the catalog.
func DefaultValuationTables() ValuationTables {
	return ValuationTables{
		Profiles: []valuation.ProfileEntry{
			{Key: "Pauillac", Profile: valuation.InvestmentProfile{BaseReturn: 8.0, Volatility: 3, Liquidity: 9, PremiumMultiplier: 1.5}},
			{Key: "Margaux", Profile: valuation.InvestmentProfile{BaseReturn: 7.5, Volatility: 3, Liquidity: 9, PremiumMultiplier: 1.5}},
			{Key: "Pomerol", Profile: valuation.InvestmentProfile{BaseReturn: 8.5, Volatility: 4, Liquidity: 8, PremiumMultiplier: 1.6}},
			{Key: "Saint-Émilion", Profile: valuation.InvestmentProfile{BaseReturn: 7.0, Volatility: 4, Liquidity: 8, PremiumMultiplier: 1.4}},
			{Key: "Saint-Julien", Profile: valuation.InvestmentProfile{BaseReturn: 7.0, Volatility: 3, Liquidity: 8, PremiumMultiplier: 1.4}},
			{Key: "Côte de Nuits", Profile: valuation.InvestmentProfile{BaseReturn: 9.5, Volatility: 5, Liquidity: 7, PremiumMultiplier: 1.8}},
			{Key: "Burgundy", Profile: valuation.InvestmentProfile{BaseReturn: 9.0, Volatility: 5, Liquidity: 7, PremiumMultiplier: 1.7}},
			{Key: "Bordeaux", Profile: valuation.InvestmentProfile{BaseReturn: 6.5, Volatility: 4, Liquidity: 8, PremiumMultiplier: 1.3}},
			{Key: "Champagne", Profile: valuation.InvestmentProfile{BaseReturn: 6.0, Volatility: 3, Liquidity: 9, PremiumMultiplier: 1.3}},
			{Key: "Rhône", Profile: valuation.InvestmentProfile{BaseReturn: 5.5, Volatility: 4, Liquidity: 7, PremiumMultiplier: 1.2}},
			{Key: "Barolo", Profile: valuation.InvestmentProfile{BaseReturn: 6.5, Volatility: 5, Liquidity: 6, PremiumMultiplier: 1.3}},
			{Key: "Tuscany", Profile: valuation.InvestmentProfile{BaseReturn: 6.0, Volatility: 5, Liquidity: 6, PremiumMultiplier: 1.2}},
			{Key: "Napa Valley", Profile: valuation.InvestmentProfile{BaseReturn: 7.0, Volatility: 6, Liquidity: 7, PremiumMultiplier: 1.4}},
			{Key: "Rioja", Profile: valuation.InvestmentProfile{BaseReturn: 4.5, Volatility: 4, Liquidity: 6, PremiumMultiplier: 1.1}},
			{Key: "Port", Profile: valuation.InvestmentProfile{BaseReturn: 5.0, Volatility: 3, Liquidity: 5, PremiumMultiplier: 1.2}},
			{Key: "England", Profile: valuation.InvestmentProfile{BaseReturn: 5.5, Volatility: 6, Liquidity: 4, PremiumMultiplier: 1.1}},
			{Key: valuation.DefaultKey, Profile: valuation.InvestmentProfile{BaseReturn: 4.0, Volatility: 5, Liquidity: 5, PremiumMultiplier: 1.0}},
		},
		Classifications: []valuation.MultiplierEntry{
			// Specific tiers come before the generic labels they contain.
			{Key: "premier grand cru", Multiplier: 1.8},
			{Key: "1er grand cru", Multiplier: 1.8},
			{Key: "premier cru", Multiplier: 1.5},
			{Key: "1er cru", Multiplier: 1.5},
			{Key: "2ème cru", Multiplier: 1.4},
			{Key: "deuxième cru", Multiplier: 1.4},
			{Key: "3ème cru", Multiplier: 1.3},
			{Key: "4ème cru", Multiplier: 1.25},
			{Key: "5ème cru", Multiplier: 1.2},
			{Key: "grand cru", Multiplier: 1.6},
			{Key: "cru classé", Multiplier: 1.3},
			{Key: "cru bourgeois", Multiplier: 1.15},
			{Key: "gran reserva", Multiplier: 1.2},
			{Key: "riserva", Multiplier: 1.15},
			{Key: "vieilles vignes", Multiplier: 1.1},
			{Key: "reserve", Multiplier: 1.1},
		},
	}
}

// LoadValuationTables reads the knowledge base from a YAML file, falling back
// to the compiled-in defaults when path is empty or the file is absent.
func LoadValuationTables(path string) (ValuationTables, error) {
	tables := DefaultValuationTables()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return tables, fmt.Errorf("failed to read valuation tables %s: %w", path, err)
			}

			var loaded ValuationTables
			if err := yaml.Unmarshal(data, &loaded); err != nil {
				return tables, fmt.Errorf("failed to parse valuation tables %s: %w", path, err)
			}
			if len(loaded.Profiles) > 0 {
				tables.Profiles = loaded.Profiles
			}
			if len(loaded.Classifications) > 0 {
				tables.Classifications = loaded.Classifications
			}
		}
	}

	if err := tables.Validate(); err != nil {
		return tables, err
	}
	return tables, nil
}

// Validate checks structural invariants: a default entry must exist, scores
// stay within [1,10], and multipliers never discount.
func (t ValuationTables) Validate() error {
	hasDefault := false
	for _, e := range t.Profiles {
		if e.Key == "" {
			return fmt.Errorf("profile entry with empty key")
		}
		if e.Key == valuation.DefaultKey {
			hasDefault = true
		}
		if e.Profile.Volatility < 1 || e.Profile.Volatility > 10 {
			return fmt.Errorf("profile %s: volatility %d outside [1,10]", e.Key, e.Profile.Volatility)
		}
		if e.Profile.Liquidity < 1 || e.Profile.Liquidity > 10 {
			return fmt.Errorf("profile %s: liquidity %d outside [1,10]", e.Key, e.Profile.Liquidity)
		}
		if e.Profile.PremiumMultiplier < 1.0 {
			return fmt.Errorf("profile %s: premium multiplier %.2f below 1.0", e.Key, e.Profile.PremiumMultiplier)
		}
	}
	if !hasDefault {
		return fmt.Errorf("profile table missing %q entry", valuation.DefaultKey)
	}

	for _, e := range t.Classifications {
		if e.Key == "" {
			return fmt.Errorf("classification entry with empty key")
		}
		if e.Multiplier < 1.0 {
			return fmt.Errorf("classification %s: multiplier %.2f below 1.0", e.Key, e.Multiplier)
		}
	}
	return nil
}

// NewResolver builds the profile resolver from these tables.
func (t ValuationTables) NewResolver() *valuation.Resolver {
	return valuation.NewResolver(t.Profiles, t.Classifications)
}
