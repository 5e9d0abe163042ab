// Package prompt renders the instructions sent to the rewrite provider.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/at-ishikawa/humanizer/internal/inference"
)

//go:embed templates/system.txt
var systemPrompt string

//go:embed templates/rewrite.md.go.tmpl
var fallbackRewriteTemplate string

const fallbackTemplateName = "rewrite.md.go.tmpl"

// Replacement suggests alternatives for a word or symbol.
type Replacement struct {
	From string
	To   []string
}

// Rules is the data passed to the rewrite template.
type Rules struct {
	Text             string
	ForbiddenWords   []string
	Replacements     []Replacement
	ForbiddenSymbols []Replacement
}

var (
	forbiddenWords = []string{
		"Furthermore", "Moreover", "In contrast", "Overall", "Consequently", "Additionally",
		"Thus", "Therefore", "Hence", "Nevertheless", "Nonetheless", "Notwithstanding",
		"As a result", "In conclusion", "To summarize", "Notably", "Importantly",
		"Essentially", "Fundamentally", "Ultimately", "It is important to note",
		"Significant", "Demonstrates", "In addition",
	}

	replacements = []Replacement{
		{From: "Furthermore", To: []string{`"Also,"`, `"What's more,"`, `"On top of that"`}},
		{From: "Moreover", To: []string{`"Not only that,"`, `"Plus,"`, `"And another thing"`}},
		{From: "Therefore", To: []string{`"So,"`, `"That's why,"`, `"Because of that"`}},
		{From: "Consequently", To: []string{`"Which means,"`, `"So then"`}},
		{From: "Additionally", To: []string{`"Also,"`, `"Too,"`, `"Another thing"`}},
		{From: "Ever since", To: []string{`"Since"`, `"When"`, `"Because"`}},
		{From: "It is important to note", To: []string{`"Worth mentioning,"`, `"Keep in mind,"`, `"Remember that"`}},
		{From: "Significant", To: []string{`"Important,"`, `"Major,"`, `"Key,"`, `"Big"`}},
		{From: "Demonstrates", To: []string{`"Shows,"`, `"Proves,"`, `"Points to,"`, `"Suggests"`}},
		{From: "In conclusion", To: []string{`"To wrap up,"`, `"So what does this mean?"`}},
		{From: "To summarize", To: []string{`"Long story short,"`, `"Basically,"`, `"In short"`}},
	}

	forbiddenSymbols = []Replacement{
		{From: "—", To: []string{`"-"`}},
		{From: "Meanwhile", To: []string{`"At the same time"`}},
		{From: "flashpoint", To: []string{`"critical point"`}},
		{From: "which makes it", To: []string{`"so it's"`, `"making it"`}},
	}
)

// Builder turns input text into a provider request.
type Builder struct {
	system  string
	rewrite *template.Template
}

// NewBuilder parses the rewrite template at templatePath and falls back to the
// embedded template when the path is empty or cannot be parsed.
func NewBuilder(templatePath string) (*Builder, error) {
	tmpl, err := parseTemplateWithFallback(templatePath, fallbackRewriteTemplate)
	if err != nil {
		return nil, fmt.Errorf("parseTemplateWithFallback > %w", err)
	}
	return &Builder{
		system:  strings.TrimSpace(systemPrompt),
		rewrite: tmpl,
	}, nil
}

// Build renders the system persona and the user instruction for text.
func (b *Builder) Build(text string) (inference.RewriteRequest, error) {
	var buf bytes.Buffer
	if err := b.rewrite.Execute(&buf, Rules{
		Text:             text,
		ForbiddenWords:   forbiddenWords,
		Replacements:     replacements,
		ForbiddenSymbols: forbiddenSymbols,
	}); err != nil {
		return inference.RewriteRequest{}, fmt.Errorf("template.Execute > %w", err)
	}
	return inference.RewriteRequest{
		SystemPrompt: b.system,
		UserPrompt:   buf.String(),
	}, nil
}

func parseTemplateWithFallback(templatePath string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a prompt template, using the embedded one",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		} else {
			slog.Default().Warn("prompt template not found, using the embedded one",
				slog.String("templatePath", templatePath),
			)
		}
	}

	tmpl, err := template.New(fallbackTemplateName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
