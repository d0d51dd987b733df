// file: config.go
package sitedb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteOverride replaces parts of the pool's default connection settings for
// one named site database. Sites on non-default hosts or non-SQL-Server
// engines are declared this way.
type SiteOverride struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type SitesConfig struct {
	Sites map[string]SiteOverride `yaml:"sites"`
}

func LoadSitesConfig(path string) (SitesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SitesConfig{}, err
	}
	var cfg SitesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SitesConfig{}, fmt.Errorf("parse sites config: %w", err)
	}
	for name := range cfg.Sites {
		if !ValidIdentifier(name) {
			return SitesConfig{}, fmt.Errorf("invalid site database name %q", name)
		}
	}
	return cfg, nil
}
