// Package luaconfig defines the configuration contract the semantic
// core consumes: a yaml-tagged Config struct covering runtime
// extensions, require patterns, strictness and module-map rewrites.
package luaconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Extensions     []string `yaml:"extensions"`
	RequirePattern []string `yaml:"require_pattern"`
}

type StrictConfig struct {
	RequirePath bool `yaml:"require_path"`
}

type ModuleMapEntry struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

type WorkspaceConfig struct {
	ModuleMap []ModuleMapEntry `yaml:"module_map"`
}

// Config is passed to the module index and the VFS via UpdateConfig.
type Config struct {
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Strict    StrictConfig    `yaml:"strict"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// Default returns the configuration a fresh workspace starts with,
// matching common Lua require() conventions.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Extensions:     []string{".lua"},
			RequirePattern: []string{"?.lua", "?/init.lua"},
		},
		Strict: StrictConfig{RequirePath: false},
	}
}

// Load reads and parses a YAML config file, falling back to Default
// values for any field the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("luaconfig: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("luaconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}
