// Package config loads table rules from a TOML or HCL file into a flat
// table of Go values. Field validation happens in ledger.FromTable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Load reads the config file at path. Files ending in .hcl are parsed as
// HCL; everything else is parsed as TOML.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return ParseHCL(data, path)
	default:
		return ParseTOML(data, path)
	}
}

// ParseTOML decodes a TOML document. Integers decode as int64.
func ParseTOML(data []byte, filename string) (map[string]any, error) {
	table := make(map[string]any)
	if _, err := toml.Decode(string(data), &table); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return table, nil
}

// ParseHCL decodes the top-level attributes of an HCL document.
// Whole numbers become int64 and other numbers float64, so a fractional
// value is reported as a type error by the ledger.
func ParseHCL(data []byte, filename string) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %w", diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	table := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s: %w", name, diags)
		}
		table[name] = fromCty(val)
	}
	return table, nil
}

func fromCty(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}
	switch val.Type() {
	case cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == 0 {
				return n
			}
		}
		f, _ := bf.Float64()
		return f
	case cty.String:
		return val.AsString()
	case cty.Bool:
		return val.True()
	default:
		return val
	}
}
