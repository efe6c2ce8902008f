package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/TimurManjosov/gotiers/internal/rules"
	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of a rule table.
type Document struct {
	Version string       `yaml:"version,omitempty"`
	Rules   []rules.Rule `yaml:"rules"`
}

// automatizedDocument records which rules set the automatized key.
type automatizedDocument struct {
	Rules []struct {
		Automatized *bool `yaml:"automatized"`
	} `yaml:"rules"`
}

// ReadYAML decodes a YAML rule document and validates every rule.
// Errors name the offending rule by position.
// A rule without an automatized key is enabled, as in the table file.
func ReadYAML(r io.Reader) ([]rules.Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML: %w", err)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return []rules.Rule{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var flags automatizedDocument
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	out := make([]rules.Rule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		if i < len(flags.Rules) && flags.Rules[i].Automatized == nil {
			r.Automatized = true
		}
		r.HGVSp = strings.TrimPrefix(r.HGVSp, "p.")
		if err := rules.ValidateRule(r); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// WriteYAML encodes rows as a YAML rule document.
func WriteYAML(w io.Writer, version string, rows []rules.Rule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Version: version, Rules: rows}); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
