package valuation

import (
	"strings"
)

// DefaultKey is the profile table entry used when nothing else matches.
const DefaultKey = "default"

// EnglandKey is the profile entry used for UK-country fallback resolution.
const EnglandKey = "England"

// InvestmentProfile is a static risk/return archetype keyed by a region label.
type InvestmentProfile struct {
	BaseReturn        float64 `yaml:"base_return" json:"base_return"`
	Volatility        int     `yaml:"volatility" json:"volatility"`
	Liquidity         int     `yaml:"liquidity" json:"liquidity"`
	PremiumMultiplier float64 `yaml:"premium_multiplier" json:"premium_multiplier"`
}

// ProfileEntry pairs a region key with its profile. Entries are held in a
// slice, not a map: substring tie-breaks resolve in declaration order.
type ProfileEntry struct {
	Key     string            `yaml:"key"`
	Profile InvestmentProfile `yaml:",inline"`
}

// MultiplierEntry pairs a quality-tier label with its multiplicative boost.
type MultiplierEntry struct {
	Key        string  `yaml:"key"`
	Multiplier float64 `yaml:"multiplier"`
}

// Resolver maps catalog labels to investment profiles. Construction takes the
// knowledge tables explicitly so alternate catalogs can substitute their own.
type Resolver struct {
	profiles    []ProfileEntry
	multipliers []MultiplierEntry
}

// NewResolver creates a resolver over the given ordered knowledge tables.
func NewResolver(profiles []ProfileEntry, multipliers []MultiplierEntry) *Resolver {
	return &Resolver{
		profiles:    profiles,
		multipliers: multipliers,
	}
}

// Resolve returns the investment profile for a region/country pair along with
// the table key that matched. Resolution is total: unresolvable input degrades
// to the England entry (UK countries) or the default entry, never an error.
//
// Precedence: exact key match on region, then bidirectional case-insensitive
// substring containment in table order, then country fallback.
func (r *Resolver) Resolve(region, country string) (InvestmentProfile, string) {
	region = strings.TrimSpace(region)

	if region != "" {
		for _, e := range r.profiles {
			if e.Key == region {
				return e.Profile, e.Key
			}
		}

		lower := strings.ToLower(region)
		for _, e := range r.profiles {
			if e.Key == DefaultKey {
				continue
			}
			key := strings.ToLower(e.Key)
			if strings.Contains(lower, key) || strings.Contains(key, lower) {
				return e.Profile, e.Key
			}
		}
	}

	switch strings.ToLower(strings.TrimSpace(country)) {
	case "england", "uk":
		if p, ok := r.lookup(EnglandKey); ok {
			return p, EnglandKey
		}
	}

	p, _ := r.lookup(DefaultKey)
	return p, DefaultKey
}

// ClassificationMultiplier scans the item's classification and name text for a
// recognized quality tier and returns its boost. First declared match wins;
// no match yields 1.0.
func (r *Resolver) ClassificationMultiplier(classification, name string) float64 {
	haystack := strings.ToLower(classification + " " + name)

	for _, e := range r.multipliers {
		if strings.Contains(haystack, strings.ToLower(e.Key)) {
			return e.Multiplier
		}
	}
	return 1.0
}

func (r *Resolver) lookup(key string) (InvestmentProfile, bool) {
	for _, e := range r.profiles {
		if e.Key == key {
			return e.Profile, true
		}
	}
	return InvestmentProfile{}, false
}
