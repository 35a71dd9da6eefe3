// Package localize maps raw genre labels and series names from foreign
// catalogs onto the curated Turkish tag and series vocabulary. The tables
// live in embedded YAML so additions are data edits, not code changes.
package localize

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/genres.yaml data/series.yaml
var tableFS embed.FS

type genreTables struct {
	Banned       []string          `yaml:"banned"`
	LongAllow    []string          `yaml:"long_allow"`
	Translations map[string]string `yaml:"translations"`
}

type seriesTables struct {
	Aliases      map[string]string `yaml:"aliases"`
	Translations map[string]string `yaml:"translations"`
}

var (
	loadOnce sync.Once
	genres   genreTables
	series   seriesTables
)

func tables() (genreTables, seriesTables) {
	loadOnce.Do(func() {
		if err := loadYAML("data/genres.yaml", &genres); err != nil {
			panic(err)
		}
		if err := loadYAML("data/series.yaml", &series); err != nil {
			panic(err)
		}
	})
	return genres, series
}

func loadYAML(name string, out any) error {
	raw, err := tableFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("localize: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("localize: parse %s: %w", name, err)
	}
	return nil
}
