// Package templates loads the objective template catalog from YAML and
// seeds it into the database.
package templates

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/arnold/okrs-api/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Template is one catalog entry as written in the YAML file.
type Template struct {
	Title       string                     `yaml:"title"`
	Description string                     `yaml:"description"`
	Category    string                     `yaml:"category"`
	Priority    string                     `yaml:"priority"`
	Tags        []string                   `yaml:"tags"`
	KeyResults  []models.KeyResultTemplate `yaml:"keyResults"`
}

type catalog struct {
	Templates []Template `yaml:"templates"`
}

// Load reads a catalog file.
func Load(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) ([]Template, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	seen := make(map[string]bool, len(c.Templates))
	for i, t := range c.Templates {
		if t.Title == "" {
			return nil, fmt.Errorf("template %d: title is required", i)
		}
		if seen[t.Title] {
			return nil, fmt.Errorf("template %q: duplicate title", t.Title)
		}
		seen[t.Title] = true
		if len(t.KeyResults) == 0 {
			return nil, fmt.Errorf("template %q: at least one key result is required", t.Title)
		}
		for j, kr := range t.KeyResults {
			if kr.Title == "" || kr.TargetValue <= 0 {
				return nil, fmt.Errorf("template %q: key result %d needs a title and a positive target", t.Title, j)
			}
		}
	}
	return c.Templates, nil
}

// Seed upserts templates by title and returns how many rows were written.
func Seed(db *gorm.DB, list []Template) (int, error) {
	written := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, t := range list {
			priority := t.Priority
			if priority == "" {
				priority = "MEDIUM"
			}

			var row models.ObjectiveTemplate
			err := tx.Where("title = ?", t.Title).First(&row).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			row.Title = t.Title
			row.Description = t.Description
			row.Category = t.Category
			row.Priority = priority
			row.Tags = t.Tags
			row.KeyResults = t.KeyResults

			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("save template %q: %w", t.Title, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Printf("templates: seeded %d templates", written)
	return written, nil
}
