package schema

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk schema layout:
//
//	fields:
//	  - name: email
//	    type: string
//	    required: true
//	  - name: department
//	    validators:
//	      - type: required
type yamlFile struct {
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Required   bool        `yaml:"required"`
	Validators []Validator `yaml:"validators"`
}

// ParseYAML decodes a schema file body into a Description.
func ParseYAML(data []byte) (Description, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode schema yaml: %w", err)
	}
	if f.Fields == nil {
		return nil, fmt.Errorf("schema yaml: missing top-level fields list")
	}

	paths := make(Static, 0, len(f.Fields))
	for _, yf := range f.Fields {
		paths = append(paths, Path{
			Name:       yf.Name,
			Type:       yf.Type,
			Required:   yf.Required,
			Validators: yf.Validators,
		})
	}
	return paths, nil
}

// FileProvider reads the schema file on every Describe call.
type FileProvider struct {
	Path string
}

// Describe implements Provider.
func (p FileProvider) Describe(_ context.Context) (Description, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", p.Path, err)
	}
	return ParseYAML(data)
}
