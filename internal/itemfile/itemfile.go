// Package itemfile reads item lists for offline packing and writes packing
// reports, in YAML or JSON.
package itemfile

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/binpack/internal/packer"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is an item list, optionally carrying its own packing parameters.
// A bare list of items is also accepted on input. Capacity is nil when the
// file does not set it.
type Document struct {
	Capacity *int          `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Strategy string        `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Items    []packer.Item `json:"items" yaml:"items"`
}

// ParseFormat resolves a format name.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}

// FormatFromPath picks JSON for .json files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads a Document from r.
func Decode(r io.Reader, format Format) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read items: %w", err)
	}

	var unmarshal func([]byte, any) error
	switch format {
	case FormatJSON:
		unmarshal = json.Unmarshal
	case FormatYAML:
		unmarshal = yaml.Unmarshal
	default:
		return Document{}, fmt.Errorf("unsupported format %q", format)
	}

	var doc Document
	if err := unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	var items []packer.Item
	if err := unmarshal(data, &items); err != nil {
		return Document{}, fmt.Errorf("parse %s items: %w", format, err)
	}
	return Document{Items: items}, nil
}

// Report is the serialisable form of a packing result.
type Report struct {
	Strategy   string      `json:"strategy" yaml:"strategy"`
	Capacity   int         `json:"capacity" yaml:"capacity"`
	TotalBins  int         `json:"totalBins" yaml:"total_bins"`
	TotalItems int         `json:"totalItems" yaml:"total_items"`
	LowerBound int         `json:"lowerBound" yaml:"lower_bound"`
	Wasted     int         `json:"wasted" yaml:"wasted"`
	Fill       float64     `json:"fill" yaml:"fill"`
	Bins       []ReportBin `json:"bins" yaml:"bins"`
}

// ReportBin is one bin of a Report.
type ReportBin struct {
	Used      int           `json:"used" yaml:"used"`
	Remaining int           `json:"remaining" yaml:"remaining"`
	Items     []packer.Item `json:"items" yaml:"items"`
}

// NewReport flattens a packing result.
func NewReport(res packer.Result) Report {
	report := Report{
		Strategy:   string(res.Strategy),
		Capacity:   res.Capacity,
		TotalBins:  res.Stats.Bins,
		TotalItems: res.Stats.Items,
		LowerBound: res.LowerBound,
		Wasted:     res.Stats.Wasted,
		Fill:       res.Stats.Fill,
		Bins:       make([]ReportBin, len(res.Bins)),
	}
	for i, bin := range res.Bins {
		report.Bins[i] = ReportBin{Used: bin.Used, Remaining: bin.Remaining, Items: bin.Items}
	}
	return report
}

// Encode writes the report for res to w.
func Encode(w io.Writer, format Format, res packer.Result) error {
	report := NewReport(res)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
