// Package config loads and validates the generator configuration. The core
// packages receive an already-validated value object; none of them read
// configuration sources themselves.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/origadmin/tsdgen/internal/dbenum"
	"github.com/origadmin/tsdgen/internal/translator"
)

// EnumSource configures one database-backed enum.
type EnumSource struct {
	Name        string `mapstructure:"name"`
	Schema      string `mapstructure:"schema"`
	Table       string `mapstructure:"table"`
	KeyColumn   string `mapstructure:"key_column"`
	ValueColumn string `mapstructure:"value_column"`
}

// Generator carries the translation policy options. Every option is explicit;
// defaults live in SetDefaults, nowhere else.
type Generator struct {
	CamelCaseNames           bool              `mapstructure:"camel_case_names"`
	NestedDeclarations       bool              `mapstructure:"nested_declarations"`
	ExcludeNavigation        bool              `mapstructure:"exclude_navigation_properties"`
	IncludeIgnoredProperties bool              `mapstructure:"include_ignored_properties"`
	CustomTypeMappings       map[string]string `mapstructure:"custom_type_mappings"`
	HeaderComment            bool              `mapstructure:"header_comment"`
	IndexManifests           bool              `mapstructure:"index_manifests"`
}

// Config is the full generator configuration.
type Config struct {
	// Packages are the Go package patterns to scan for export markers.
	Packages []string `mapstructure:"packages"`

	// OutputDir receives interface and reflected-enum declaration files.
	OutputDir string `mapstructure:"output_dir"`

	// EnumOutputDir receives database-synthesized enum files. Defaults to
	// OutputDir when empty.
	EnumOutputDir string `mapstructure:"enum_output_dir"`

	// DatabasePath is the SQLite database backing the enum sources.
	DatabasePath string `mapstructure:"database_path"`

	EnumSources []EnumSource `mapstructure:"enum_sources"`

	Generator Generator `mapstructure:"generator"`
}

// SetDefaults installs the default option values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "types")
	v.SetDefault("generator.camel_case_names", false)
	v.SetDefault("generator.nested_declarations", true)
	v.SetDefault("generator.exclude_navigation_properties", true)
	v.SetDefault("generator.include_ignored_properties", false)
	v.SetDefault("generator.header_comment", true)
	v.SetDefault("generator.index_manifests", false)
}

// LoadFromFile reads the configuration from a TOML file, applying defaults
// and TSDGEN_-prefixed environment overrides.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix("TSDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for contradictions before any work runs.
func (c *Config) Validate() error {
	if len(c.Packages) == 0 && len(c.EnumSources) == 0 {
		return errors.New("config declares neither packages nor enum_sources; nothing to generate")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if len(c.EnumSources) > 0 && c.DatabasePath == "" {
		return errors.New("enum_sources configured without database_path")
	}
	for _, src := range c.EnumSources {
		if src.Name == "" || src.Table == "" || src.KeyColumn == "" || src.ValueColumn == "" {
			return errors.Newf("enum source %q must set name, table, key_column and value_column", src.Name)
		}
	}
	if c.EnumOutputDir == "" {
		c.EnumOutputDir = c.OutputDir
	}
	return nil
}

// Policy maps the generator options onto the translator policy.
func (c *Config) Policy() translator.Policy {
	return translator.Policy{
		UseCamelCaseNames:           c.Generator.CamelCaseNames,
		GenerateNestedDeclarations:  c.Generator.NestedDeclarations,
		ExcludeNavigationCandidates: c.Generator.ExcludeNavigation,
		IncludeIgnoredProperties:    c.Generator.IncludeIgnoredProperties,
		CustomTypeMappings:          c.Generator.CustomTypeMappings,
		EmitHeaderComment:           c.Generator.HeaderComment,
		EmitIndexManifests:          c.Generator.IndexManifests,
	}
}

// Sources converts the configured enum sources to synthesizer sources.
func (c *Config) Sources() []dbenum.Source {
	sources := make([]dbenum.Source, 0, len(c.EnumSources))
	for _, src := range c.EnumSources {
		sources = append(sources, dbenum.Source{
			Name:        src.Name,
			Schema:      src.Schema,
			Table:       src.Table,
			KeyColumn:   src.KeyColumn,
			ValueColumn: src.ValueColumn,
		})
	}
	return sources
}
