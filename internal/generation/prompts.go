package generation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentranbao-ct/swipe-preview/pkg/tmplx"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsData []byte

var defaultPrompts = mustParsePrompts(defaultPromptsData)

// Prompts holds the instructions sent to the language model and the
// templates rendered per product.
type Prompts struct {
	System   string
	Optimize *tmplx.Template
	Direct   *tmplx.Template
}

type promptsFile struct {
	System   string `yaml:"system"`
	Optimize string `yaml:"optimize"`
	Direct   string `yaml:"direct"`
}

// LoadPrompts reads prompt templates from a YAML file. An empty path yields
// the built-in templates. Keys missing from the file keep their defaults.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return defaultPrompts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return parsePrompts(data)
}

func parsePrompts(data []byte) (*Prompts, error) {
	var f promptsFile
	if err := yaml.Unmarshal(defaultPromptsData, &f); err != nil {
		return nil, fmt.Errorf("unmarshal default prompts: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal prompts: %w", err)
	}
	if strings.TrimSpace(f.System) == "" {
		return nil, fmt.Errorf("prompts: system must not be empty")
	}

	optimize, err := tmplx.Parse("optimize", f.Optimize,
		tmplx.WithValidate(promptData{Title: "x"}, tmplx.NotBlank))
	if err != nil {
		return nil, fmt.Errorf("prompts: optimize: %w", err)
	}
	direct, err := tmplx.Parse("direct", f.Direct,
		tmplx.WithValidate(promptData{AltText: "x"}, tmplx.NotBlank))
	if err != nil {
		return nil, fmt.Errorf("prompts: direct: %w", err)
	}
	return &Prompts{System: strings.TrimSpace(f.System), Optimize: optimize, Direct: direct}, nil
}

func mustParsePrompts(data []byte) *Prompts {
	p, err := parsePrompts(data)
	if err != nil {
		panic(err)
	}
	return p
}
