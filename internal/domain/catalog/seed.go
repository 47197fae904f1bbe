package catalog

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// SeedData is the list of product name and category templates the sample
// catalog is generated from
type SeedData struct {
	Categories []string `yaml:"categories" validate:"required,min=1,dive,required"`
	Products   []string `yaml:"products" validate:"required,min=1,dive,required,max=200"`
}

var seedValidator = validator.New(validator.WithRequiredStructEnabled())

// DefaultSeed returns the built-in templates
func DefaultSeed() SeedData {
	seed, err := ParseSeed(defaultTemplates)
	if err != nil {
		panic("embedded catalog templates are invalid: " + err.Error())
	}
	return seed
}

// ParseSeed decodes and validates YAML seed templates
func ParseSeed(data []byte) (SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedData{}, fmt.Errorf("failed to decode catalog templates: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return SeedData{}, err
	}
	return seed, nil
}

// Validate checks that the templates can produce a catalog
func (s SeedData) Validate() error {
	if err := seedValidator.Struct(s); err != nil {
		return fmt.Errorf("invalid catalog templates: %w", err)
	}
	return nil
}
