package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/diguard/internal/model"
)

// document is the on-disk model format. Modifiers stay strings here so a
// bad modifier list can be reported as a model error with its location.
type document struct {
	Classes []docClass `json:"classes" yaml:"classes"`
}

type docClass struct {
	Name         string              `json:"name" yaml:"name"`
	Package      string              `json:"package" yaml:"package"`
	Markers      []model.Marker      `json:"markers" yaml:"markers"`
	Fields       []docField          `json:"fields" yaml:"fields"`
	Constructors []model.Constructor `json:"constructors" yaml:"constructors"`
}

type docField struct {
	Name      string         `json:"name" yaml:"name"`
	Type      string         `json:"type" yaml:"type"`
	Modifiers []string       `json:"modifiers" yaml:"modifiers"`
	Markers   []model.Marker `json:"markers" yaml:"markers"`
}

// DecodeDocument parses a JSON or YAML model document. format is a file
// extension such as ".json" or ".yaml".
func DecodeDocument(b []byte, format string) ([]model.Class, error) {
	return decodeDocument(b, "document"+format)
}

func decodeDocument(b []byte, rel string) ([]model.Class, error) {
	var doc document
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	out := make([]model.Class, 0, len(doc.Classes))
	for i, dc := range doc.Classes {
		c := model.Class{
			Name:         dc.Name,
			Package:      dc.Package,
			Markers:      dc.Markers,
			Constructors: dc.Constructors,
			Source:       fmt.Sprintf("%s#%d", rel, i),
		}
		for _, df := range dc.Fields {
			mods, err := model.ParseModifierSet(df.Modifiers)
			if err != nil {
				return nil, &model.ModelError{Class: c.QualifiedName() + " (" + c.Source + ")", Field: df.Name, Reason: err.Error()}
			}
			c.Fields = append(c.Fields, model.Field{Name: df.Name, Type: df.Type, Modifiers: mods, Markers: df.Markers})
		}
		for k := range c.Constructors {
			if c.Constructors[k].Parameters == nil {
				c.Constructors[k].Parameters = []string{}
			}
		}
		out = append(out, c)
	}
	return out, nil
}
