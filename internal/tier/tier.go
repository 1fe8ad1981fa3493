// Package tier assigns documents to validation tiers and samples each tier.
package tier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Tier is a validation-intensity bucket.
type Tier int

const (
	// Tier1 documents are always validated.
	Tier1 Tier = 1
	// Tier2 documents are sampled at half coverage.
	Tier2 Tier = 2
	// Tier3 documents are spot-checked.
	Tier3 Tier = 3
)

// Tiers lists every tier in order.
var Tiers = []Tier{Tier1, Tier2, Tier3}

// String returns "tier1", "tier2" or "tier3".
func (t Tier) String() string {
	return fmt.Sprintf("tier%d", int(t))
}

// Valid reports whether t is one of the three tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

// DefaultPercentages are the sample fractions of each tier.
var DefaultPercentages = map[Tier]float64{
	Tier1: 1.0,
	Tier2: 0.5,
	Tier3: 0.2,
}

// Rule maps a doublestar pattern over repository-relative paths to a tier.
type Rule struct {
	Pattern string `json:"pattern"`
	Tier    Tier   `json:"tier"`
}

// DefaultRules place onboarding material in Tier1, guides and references
// in Tier2; everything else falls back to Tier3.
var DefaultRules = []Rule{
	{Pattern: "getting-started/**", Tier: Tier1},
	{Pattern: "**/getting-started/**", Tier: Tier1},
	{Pattern: "README.md", Tier: Tier1},
	{Pattern: "**/README.md", Tier: Tier1},
	{Pattern: "guides/**", Tier: Tier2},
	{Pattern: "**/guides/**", Tier: Tier2},
	{Pattern: "reference/**", Tier: Tier2},
	{Pattern: "**/reference/**", Tier: Tier2},
}

// Allocator assigns tiers by rule and draws per-tier samples.
type Allocator struct {
	rules       []Rule
	percentages map[Tier]float64
	seed        uint64
}

// NewAllocator validates rules and percentages and returns an Allocator
// whose samples are drawn from seed. Missing percentages use
// DefaultPercentages.
func NewAllocator(rules []Rule, percentages map[Tier]float64, seed uint64) (*Allocator, error) {
	for _, r := range rules {
		if !r.Tier.Valid() {
			return nil, fmt.Errorf("tier rule %q: invalid tier %d", r.Pattern, int(r.Tier))
		}
		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("tier rule %q: invalid pattern", r.Pattern)
		}
	}
	pct := make(map[Tier]float64, len(Tiers))
	for _, t := range Tiers {
		p, ok := percentages[t]
		if !ok {
			p = DefaultPercentages[t]
		}
		if p <= 0 || p > 1 {
			return nil, fmt.Errorf("%s percentage %v must be in (0, 1]", t, p)
		}
		pct[t] = p
	}
	return &Allocator{rules: append([]Rule(nil), rules...), percentages: pct, seed: seed}, nil
}

// Seed returns the seed samples are drawn from.
func (a *Allocator) Seed() uint64 {
	return a.seed
}

// Percentage returns the sample fraction of t.
func (a *Allocator) Percentage(t Tier) float64 {
	return a.percentages[t]
}

// Assign returns the tier of a repository-relative path: the tier of the
// first matching rule, or Tier3.
func (a *Allocator) Assign(p string) Tier {
	p = path.Clean(p)
	for _, r := range a.rules {
		if ok, _ := doublestar.Match(r.Pattern, p); ok {
			return r.Tier
		}
	}
	return Tier3
}

// SampleSize returns ceil(n * pct), clamped to [1, n] for a non-empty
// population and 0 for an empty one.
func SampleSize(n int, pct float64) int {
	if n <= 0 {
		return 0
	}
	size := int(math.Ceil(float64(n) * pct))
	if size < 1 {
		size = 1
	}
	if size > n {
		size = n
	}
	return size
}

// Sample draws SampleSize(len(population), Percentage(t)) distinct paths
// from population and returns them sorted. The draw depends only on the
// seed, the tier and the sorted population, so it can be replayed.
func (a *Allocator) Sample(t Tier, population []string) []string {
	sorted := append([]string(nil), population...)
	sort.Strings(sorted)
	size := SampleSize(len(sorted), a.percentages[t])
	if size == len(sorted) {
		return sorted
	}
	rng := rand.New(rand.NewPCG(a.seed, uint64(t)))
	rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
	picked := sorted[:size]
	sort.Strings(picked)
	return picked
}
