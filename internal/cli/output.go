package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/rules"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatText  OutputFormat = "text"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use table, json, yaml or text)", s)
	}
}

// ClassifyView is the printed form of one classification.
type ClassifyView struct {
	Gene       string `json:"gene" yaml:"gene"`
	Alteration string `json:"alteration" yaml:"alteration"`
	Tier       string `json:"tier" yaml:"tier"`
	Matched    bool   `json:"matched" yaml:"matched"`
	Reason     string `json:"reason" yaml:"reason"`
	RuleIndex  int    `json:"ruleIndex" yaml:"rule_index"`
}

// NoTier is printed in place of a tier when no rule matched.
const NoTier = "none"

// NewClassifyView pairs a query with its result.
func NewClassifyView(q engine.Query, res engine.Result) ClassifyView {
	tier := res.Tier
	if !res.Matched {
		tier = NoTier
	}
	return ClassifyView{
		Gene:       q.Gene,
		Alteration: q.Alteration,
		Tier:       tier,
		Matched:    res.Matched,
		Reason:     string(res.Reason),
		RuleIndex:  res.RuleIndex,
	}
}

// PrintResult outputs a classification. The text format prints the tier or "none".
func PrintResult(w io.Writer, v ClassifyView, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, v)
	case FormatYAML:
		return printYAML(w, v)
	case FormatText:
		_, err := fmt.Fprintln(w, v.Tier)
		return err
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Gene", "Alteration", "Tier", "Reason", "Rule")
		rule := "-"
		if v.RuleIndex >= 0 {
			rule = fmt.Sprintf("%d", v.RuleIndex)
		}
		if err := table.Append(v.Gene, v.Alteration, v.Tier, v.Reason, rule); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintRules outputs rules in the specified format. The text format writes
// them back as a rule table.
func PrintRules(w io.Writer, rows []rules.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]rules.Rule{"rules": rows})
	case FormatYAML:
		return printYAML(w, loader.Document{Rules: rows})
	case FormatText:
		return loader.WriteTSV(w, rows)
	case FormatTable:
		return printRulesTable(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintGenes outputs gene names in the specified format.
func PrintGenes(w io.Writer, genes []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]string{"genes": genes})
	case FormatYAML:
		return printYAML(w, map[string][]string{"genes": genes})
	case FormatText:
		for _, g := range genes {
			if _, err := fmt.Fprintln(w, g); err != nil {
				return err
			}
		}
		return nil
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Gene")
		for _, g := range genes {
			if err := table.Append(g); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Problem is a rule that failed validation.
type Problem struct {
	Row     int    `json:"row" yaml:"row"` // 1-based data row
	Gene    string `json:"gene" yaml:"gene"`
	Message string `json:"message" yaml:"message"`
}

// PrintProblems outputs validation problems in the specified format.
func PrintProblems(w io.Writer, problems []Problem, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]Problem{"problems": problems})
	case FormatYAML:
		return printYAML(w, map[string][]Problem{"problems": problems})
	case FormatText:
		for _, p := range problems {
			if _, err := fmt.Fprintf(w, "row %d (%s): %s\n", p.Row, p.Gene, p.Message); err != nil {
				return err
			}
		}
		return nil
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Row", "Gene", "Problem")
		for _, p := range problems {
			if err := table.Append(fmt.Sprintf("%d", p.Row), p.Gene, p.Message); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

func printRulesTable(w io.Writer, rows []rules.Rule) error {
	table := tablewriter.NewWriter(w)
	table.Header("Gene", "Exon", "Intron", "Alteration", "HGVSp", "Exclusion", "Consequence", "Tier", "Enabled", "Version")

	for _, r := range rows {
		enabled := "yes"
		if !r.Enabled() {
			enabled = "no"
		}

		consequence := r.Consequence
		if len(consequence) > 30 {
			consequence = consequence[:27] + "..."
		}

		if err := table.Append(
			r.Gene,
			r.Exon,
			r.Intron,
			r.Alteration,
			r.HGVSp,
			r.ExclusionCriteria,
			consequence,
			r.Tier,
			enabled,
			r.Version,
		); err != nil {
			return err
		}
	}

	return table.Render()
}
