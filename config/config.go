// Package config loads the serializer's ambient configuration: which
// behavior flags to run with (selser, scrubWikitext), where the escape
// oracle's decision cache lives, and how to log. None of this is part of
// the core per spec.md §1 ("CLI, configuration loading... described only
// by the interfaces the core consumes"), but spec.md still expects an
// "env" with these fields (§6 EXTERNAL INTERFACES), and ambient concerns
// are carried regardless of what the core's Non-goals exclude.
package config

import (
	"fmt"
	"os"

	up "go.mau.fi/util/configupgrade"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"
)

// OracleCacheConfig configures the persisted escape-oracle decision cache
// (escape/oraclestore).
type OracleCacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dialect string `yaml:"dialect"`
	URI     string `yaml:"uri"`
}

// Config is the top-level configuration document.
type Config struct {
	Selser        bool              `yaml:"selser"`
	ScrubWikitext bool              `yaml:"scrub_wikitext"`
	OracleCache   OracleCacheConfig `yaml:"oracle_cache"`
	Logging       zeroconfig.Config `yaml:"logging"`
}

// Load reads and upgrades a config file at path, backfilling any field
// missing against exampleYAML (the same two-file pattern the teacher's
// config upgraders use: a "base" example embedded in the binary, and the
// user's file on disk gets merged forward into it).
func Load(path string, exampleYAML string) (*Config, bool, error) {
	upgraded, didUpgrade, err := up.Do(path, true, &up.StructUpgrader{SimpleUpgrader: Upgrader, Base: exampleYAML})
	if err != nil {
		return nil, false, fmt.Errorf("config: upgrade %s: %w", path, err)
	}
	var cfg Config
	if err = yaml.Unmarshal(upgraded, &cfg); err != nil {
		return nil, false, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, didUpgrade, nil
}

// WriteDefault writes exampleYAML to path if no file exists there yet.
func WriteDefault(path, exampleYAML string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(exampleYAML), 0o600)
}
