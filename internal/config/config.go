// Package config loads the tripletext configuration file and builds the
// entity schema consumed by the text index. It is the declarative
// configuration collaborator: every schema validation error is raised
// here, before a definition is handed to the index, which performs no
// re-validation of its own.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tripletext/tripletext/internal/errs"
	"github.com/tripletext/tripletext/internal/textindex"
)

// Config represents the complete tripletext configuration.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	EntityMap EntityMapConfig `yaml:"entity_map"`
}

// IndexConfig configures the text index location and engine tuning.
type IndexConfig struct {
	// Path is the index storage directory.
	Path string `yaml:"path"`
	// Analyzer is the registered analyzer name for property fields.
	// Empty selects the standard analyzer.
	Analyzer string `yaml:"analyzer"`
	// MaxResults caps queries issued with a non-positive limit.
	MaxResults int `yaml:"max_results"`
	// CacheSize is the lookup record cache size; 0 keeps the default.
	CacheSize int `yaml:"cache_size"`
}

// StoreConfig configures the triple store sitting beside the index.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// EntityMapConfig declares the entity schema: which field carries the
// entity identifier, which field is searched by default, and the ordered
// mapping between fields and the predicates they mirror.
type EntityMapConfig struct {
	EntityField  string          `yaml:"entity_field"`
	DefaultField string          `yaml:"default_field"`
	Map          []FieldMapEntry `yaml:"map"`
}

// FieldMapEntry binds one searchable field to a predicate IRI.
type FieldMapEntry struct {
	Field     string `yaml:"field"`
	Predicate string `yaml:"predicate"`
}

// Default returns the configuration used when the file omits a section.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Path: ".tripletext/entities.bleve",
		},
		Store: StoreConfig{
			Path: ".tripletext/triples.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config(fmt.Sprintf("read config file %s", path), err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Config(fmt.Sprintf("parse config file %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Index.Path == "" {
		return errs.Config("index.path is required", nil)
	}
	return c.EntityMap.Validate()
}

// Validate enforces the entity-map contract.
func (m *EntityMapConfig) Validate() error {
	if m.EntityField == "" {
		return errs.Config("entity_map.entity_field is required", nil)
	}
	if m.DefaultField == "" {
		return errs.Config("entity_map.default_field is required", nil)
	}
	if len(m.Map) == 0 {
		return errs.Config("entity_map.map needs at least one entry", nil)
	}
	seen := make(map[string]bool, len(m.Map))
	for _, e := range m.Map {
		if e.Field == "" || e.Predicate == "" {
			return errs.Config("entity_map.map entries need both field and predicate", nil)
		}
		if e.Field == m.EntityField {
			return errs.Config(fmt.Sprintf("mapped field %q collides with the entity field", e.Field), nil)
		}
		if seen[e.Field] {
			return errs.Config(fmt.Sprintf("field %q is mapped twice", e.Field), nil)
		}
		seen[e.Field] = true
	}
	if !seen[m.DefaultField] {
		return errs.Config(fmt.Sprintf("default field %q has no map entry", m.DefaultField), nil)
	}
	return nil
}

// EntityDefinition builds the immutable schema object from a validated
// entity map.
func (m *EntityMapConfig) EntityDefinition() (*textindex.EntityDefinition, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	mappings := make([]textindex.FieldMapping, len(m.Map))
	for i, e := range m.Map {
		mappings[i] = textindex.FieldMapping{
			Field:    e.Field,
			Property: textindex.PropertyID(e.Predicate),
		}
	}
	return textindex.NewEntityDefinition(m.EntityField, m.DefaultField, mappings...), nil
}

// Options translates the index section into text index options.
func (c *IndexConfig) Options() textindex.Options {
	opts := textindex.DefaultOptions()
	if c.Analyzer != "" {
		opts.Analyzer = c.Analyzer
	}
	if c.MaxResults > 0 {
		opts.MaxResults = c.MaxResults
	}
	if c.CacheSize > 0 {
		opts.CacheSize = c.CacheSize
	}
	return opts
}
