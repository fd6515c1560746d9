package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// TemplateSlot declares one recurring slot on a weekday in the month template.
type TemplateSlot struct {
	Time        string `yaml:"time" validate:"required,datetime=15:04"`
	Type        string `yaml:"type" validate:"required,oneof=junior senior"`
	Mode        string `yaml:"mode" validate:"required,oneof=sequential random"`
	CategoryKey string `yaml:"categoryKey" validate:"required"`
}

// TemplateOverride adds extra slots on dates matching an RRULE, e.g. a
// vacation-period mid-morning session that only exists in summer months.
type TemplateOverride struct {
	RRule string         `yaml:"rrule" validate:"required"`
	Slots []TemplateSlot `yaml:"slots" validate:"required,min=1,dive"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// Template maps weekday names (Mon..Sun) to their recurring slots.
	Template map[string][]TemplateSlot `yaml:"template" validate:"required"`

	// CoreCategories names the highest-priority recurring category per
	// participant type. Exactly one entry per type.
	CoreCategories map[string]string `yaml:"coreCategories" validate:"required"`

	// ExtraCategoryKeys are ledger keys seeded even when no slot in the
	// month carries them (fallback and vacation keys).
	ExtraCategoryKeys []string `yaml:"extraCategoryKeys,omitempty"`

	TemplateOverrides []TemplateOverride `yaml:"templateOverrides,omitempty" validate:"dive"`

	// MaxAssignments caps per-participant totals during the strict phases.
	// The equalizer relaxes past it level by level; see the roster package.
	MaxAssignments int `yaml:"maxAssignments" validate:"required,min=1"`

	// BlockWhenConfirmed refuses generation for a month whose schedule has
	// already been confirmed. Policy is ambiguous in the product; off by
	// default.
	BlockWhenConfirmed bool `yaml:"blockWhenConfirmed,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"Sun": time.Sunday, "Mon": time.Monday, "Tue": time.Tuesday, "Wed": time.Wednesday,
	"Thu": time.Thursday, "Fri": time.Friday, "Sat": time.Saturday,
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from roster_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile("roster_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadWithEnv loads the configuration for a named environment, e.g.
// roster_config.test.yaml for env "test".
func LoadWithEnv(env string) (*Config, error) {
	name := "roster_config.yaml"
	if env != "" {
		name = fmt.Sprintf("roster_config.%s.yaml", env)
	}

	configPath, err := findConfigFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the category table, and
// rrule syntax in template overrides.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	declaredKeys := make(map[string]bool)
	for day, slots := range cfg.Template {
		if _, ok := weekdayNames[day]; !ok {
			return fmt.Errorf("unknown weekday %q in template (want Sun..Sat)", day)
		}
		for i, slot := range slots {
			if err := validate.Struct(slot); err != nil {
				return fmt.Errorf("invalid template slot %s[%d]: %w", day, i, err)
			}
			declaredKeys[slot.CategoryKey] = true
		}
	}

	for ptype, key := range cfg.CoreCategories {
		if ptype != "junior" && ptype != "senior" {
			return fmt.Errorf("coreCategories has unknown participant type %q", ptype)
		}
		if !declaredKeys[key] {
			return fmt.Errorf("core category %q for type %q is not declared by any template slot", key, ptype)
		}
	}
	if len(cfg.CoreCategories) == 0 {
		return fmt.Errorf("coreCategories must name at least one category")
	}

	for i, override := range cfg.TemplateOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in templateOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// ParseWeekday resolves a template key (Mon..Sun) to a weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[name]
	return wd, ok
}

// WeekdayName returns the template key (Mon..Sun) for a weekday.
func WeekdayName(d time.Weekday) string {
	for name, wd := range weekdayNames {
		if wd == d {
			return name
		}
	}
	return ""
}

// findConfigFile searches for the named file in current directory and home directory
func findConfigFile(name string) (string, error) {
	// Check current directory
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", name)
}
