// Package cli renders humanizer results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/humanizer/internal/apiclient"
)

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

var (
	_                pflag.Value = (*OutputFormat)(nil)
	AllOutputFormats             = []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML}
)

// Set implements pflag.Value.
func (f *OutputFormat) Set(val string) error {
	for _, format := range AllOutputFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s. Possible values are %v", val, AllOutputFormats)
}

func (f OutputFormat) String() string {
	return string(f)
}

func (f *OutputFormat) Type() string {
	return "OutputFormat"
}

// Result is a rewrite as shown to the user, whether it ran locally or remotely.
type Result struct {
	HumanizedText   string  `json:"humanized_text" yaml:"humanized_text"`
	ProcessingTime  float64 `json:"processing_time" yaml:"processing_time"`
	OriginalLength  int     `json:"original_length" yaml:"original_length"`
	HumanizedLength int     `json:"humanized_length" yaml:"humanized_length"`
	Cached          bool    `json:"cached" yaml:"cached"`
}

// Printer writes results to out. In text mode the rewritten text alone goes
// to out and the summary goes to info, so the text can be piped.
type Printer struct {
	out    io.Writer
	info   io.Writer
	format OutputFormat

	bold  *color.Color
	faint *color.Color
	green *color.Color
}

func NewPrinter(out, info io.Writer, format OutputFormat) *Printer {
	return &Printer{
		out:    out,
		info:   info,
		format: format,
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
		green:  color.New(color.FgGreen),
	}
}

func (p *Printer) PrintResult(result Result) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.encode(result)
	}

	if _, err := fmt.Fprintln(p.out, result.HumanizedText); err != nil {
		return fmt.Errorf("fmt.Fprintln > %w", err)
	}
	source := "provider"
	if result.Cached {
		source = "cache"
	}
	if _, err := p.faint.Fprintf(p.info, "%d → %d characters in %.2fs (%s)\n",
		result.OriginalLength, result.HumanizedLength, result.ProcessingTime, source,
	); err != nil {
		return fmt.Errorf("p.faint.Fprintf > %w", err)
	}
	return nil
}

func (p *Printer) PrintStatus(status apiclient.StatusResponse) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.encode(status)
	}

	if _, err := p.bold.Fprint(p.out, status.Service); err != nil {
		return fmt.Errorf("p.bold.Fprint > %w", err)
	}
	if _, err := fmt.Fprint(p.out, ": "); err != nil {
		return fmt.Errorf("fmt.Fprint > %w", err)
	}
	if _, err := p.green.Fprintln(p.out, status.Status); err != nil {
		return fmt.Errorf("p.green.Fprintln > %w", err)
	}
	if _, err := fmt.Fprintf(p.out, "cached responses: %d\n", status.CacheSize); err != nil {
		return fmt.Errorf("fmt.Fprintf > %w", err)
	}
	return nil
}

func (p *Printer) encode(v any) error {
	if p.format == OutputFormatYAML {
		encoder := yaml.NewEncoder(p.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("yaml.Encode > %w", err)
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("json.Encode > %w", err)
	}
	return nil
}
