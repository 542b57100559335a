package main

import (
	"fmt"
	"io"
	"os"

	"github.com/eugenenazirov/binpack/internal/itemfile"
	"github.com/eugenenazirov/binpack/internal/packer"
	"github.com/eugenenazirov/binpack/internal/storage"
	"github.com/eugenenazirov/binpack/pkg/binpack"
)

type packOptions struct {
	Path         string
	Capacity     *int // nil when --capacity is not given
	Strategy     string
	InputFormat  string
	OutputFormat string
}

// runPack packs the item file described by opts and writes a report to out.
// Flags win over values found in the file; the file wins over the defaults.
func runPack(stdin io.Reader, out io.Writer, opts packOptions) error {
	inputFormat := itemfile.FormatFromPath(opts.Path)
	if opts.InputFormat != "" {
		f, err := itemfile.ParseFormat(opts.InputFormat)
		if err != nil {
			return err
		}
		inputFormat = f
	}
	outputFormat, err := itemfile.ParseFormat(opts.OutputFormat)
	if err != nil {
		return err
	}

	doc, err := readDocument(stdin, opts.Path, inputFormat)
	if err != nil {
		return err
	}

	defaults := storage.DefaultSettings()
	capacity := defaults.Capacity
	switch {
	case opts.Capacity != nil:
		capacity = *opts.Capacity
	case doc.Capacity != nil:
		capacity = *doc.Capacity
	}

	rawStrategy := opts.Strategy
	if rawStrategy == "" {
		rawStrategy = doc.Strategy
	}
	strategy := defaults.Strategy
	if rawStrategy != "" {
		strategy, err = binpack.ParseStrategy(rawStrategy)
		if err != nil {
			return err
		}
	}

	res, err := packer.New().Pack(packer.Request{
		Capacity: capacity,
		Strategy: strategy,
		Items:    doc.Items,
	})
	if err != nil {
		return fmt.Errorf("pack %s: %w", opts.Path, err)
	}

	return itemfile.Encode(out, outputFormat, res)
}

func readDocument(stdin io.Reader, path string, format itemfile.Format) (itemfile.Document, error) {
	if path == "-" {
		return itemfile.Decode(stdin, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return itemfile.Document{}, fmt.Errorf("open items: %w", err)
	}
	defer f.Close()

	return itemfile.Decode(f, format)
}
