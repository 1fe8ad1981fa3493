// Package config loads docint configuration from defaults, an optional YAML
// file and DOCINT_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strconv"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/logger"
	"github.com/eykd/docint/internal/report"
	"github.com/eykd/docint/internal/tier"
)

// Config is the complete docint configuration.
type Config struct {
	Frontmatter FrontmatterConfig `koanf:"frontmatter" yaml:"frontmatter"`
	Structure   StructureConfig   `koanf:"structure"   yaml:"structure"`
	Tiers       TiersConfig       `koanf:"tiers"       yaml:"tiers"`
	Batch       BatchConfig       `koanf:"batch"       yaml:"batch"`
	Report      ReportConfig      `koanf:"report"      yaml:"report"`
	Log         LogConfig         `koanf:"log"         yaml:"log"`
}

// FrontmatterConfig lists the required frontmatter keys.
type FrontmatterConfig struct {
	RequiredKeys []string `koanf:"required_keys" yaml:"required_keys" validate:"dive,required"`
}

// StructureConfig holds the category → required sections table.
type StructureConfig struct {
	// Sections maps a category (directory path such as "reference/api") to
	// the level-2 headings its documents must contain.
	Sections        map[string][]string `koanf:"sections"         yaml:"sections"`
	DuplicateWindow int                 `koanf:"duplicate_window" yaml:"duplicate_window" validate:"gte=1"`
}

// TierRule is the configuration form of a tier.Rule.
type TierRule struct {
	Pattern string `koanf:"pattern" yaml:"pattern" validate:"required"`
	Tier    int    `koanf:"tier"    yaml:"tier"    validate:"min=1,max=3"`
}

// TiersConfig configures tier assignment and sampling.
type TiersConfig struct {
	Rules []TierRule `koanf:"rules" yaml:"rules" validate:"dive"`
	// Percentages maps "1", "2", "3" to sample fractions in (0, 1].
	Percentages map[string]float64 `koanf:"percentages" yaml:"percentages" validate:"dive,gt=0,lte=1"`
}

// BatchConfig configures discovery and the worker pool.
type BatchConfig struct {
	// Workers bounds concurrent validations; 0 means one per CPU.
	Workers int      `koanf:"workers" yaml:"workers" validate:"gte=0"`
	Exclude []string `koanf:"exclude" yaml:"exclude"`
}

// ReportConfig selects the rendered report formats.
type ReportConfig struct {
	Formats []string `koanf:"formats" yaml:"formats" validate:"min=1,dive,oneof=json markdown md html"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"  yaml:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rules := make([]TierRule, len(tier.DefaultRules))
	for i, r := range tier.DefaultRules {
		rules[i] = TierRule{Pattern: r.Pattern, Tier: int(r.Tier)}
	}
	pct := make(map[string]float64, len(tier.DefaultPercentages))
	for t, p := range tier.DefaultPercentages {
		pct[strconv.Itoa(int(t))] = p
	}
	return &Config{
		Frontmatter: FrontmatterConfig{RequiredKeys: append([]string(nil), check.DefaultRequiredKeys...)},
		Structure: StructureConfig{
			Sections:        map[string][]string{},
			DuplicateWindow: check.DefaultDuplicateWindow,
		},
		Tiers: TiersConfig{Rules: rules, Percentages: pct},
		Batch: BatchConfig{
			Exclude: []string{"**/node_modules/**", "**/.git/**", "**/vendor/**"},
		},
		Report: ReportConfig{Formats: []string{string(report.FormatJSON), string(report.FormatMarkdown)}},
		Log:    LogConfig{Level: string(logger.WarnLevel)},
	}
}

// Rules returns the checker rules described by c.
func (c *Config) Rules() check.Rules {
	sections := make(map[string][]string, len(c.Structure.Sections))
	for k, v := range c.Structure.Sections {
		sections[k] = append([]string(nil), v...)
	}
	return check.Rules{
		RequiredKeys:    append([]string(nil), c.Frontmatter.RequiredKeys...),
		Sections:        sections,
		DuplicateWindow: c.Structure.DuplicateWindow,
	}
}

// Allocator returns a tier allocator for c drawing samples from seed.
func (c *Config) Allocator(seed uint64) (*tier.Allocator, error) {
	rules := make([]tier.Rule, len(c.Tiers.Rules))
	for i, r := range c.Tiers.Rules {
		rules[i] = tier.Rule{Pattern: r.Pattern, Tier: tier.Tier(r.Tier)}
	}
	pct := make(map[tier.Tier]float64, len(c.Tiers.Percentages))
	for k, v := range c.Tiers.Percentages {
		n, err := strconv.Atoi(k)
		if err != nil || !tier.Tier(n).Valid() {
			return nil, fmt.Errorf("tiers.percentages: unknown tier %q", k)
		}
		pct[tier.Tier(n)] = v
	}
	return tier.NewAllocator(rules, pct, seed)
}

// Formats returns the parsed report formats.
func (c *Config) Formats() ([]report.Format, error) {
	return report.ParseFormats(c.Report.Formats)
}

// LoggerConfig returns the logger configuration described by c.
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(c.Log.Level)
	cfg.JSON = c.Log.JSON
	return cfg
}
