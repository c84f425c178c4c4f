// Package prompt loads the chat-completion prompt templates shipped with
// the binary. Each template is a markdown file with YAML frontmatter
// holding the model parameters; the body is the system prompt. Templates
// are parsed once at startup and immutable for the process lifetime.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFS embed.FS

// Template names used by the AI gateway.
const (
	TitleGeneration  = "title-generation"
	TagsGeneration   = "tags-generation"
	IdeaOrganization = "idea-organization"
)

type frontmatter struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	// Pointer so an explicit 0 (deterministic output) is distinguishable
	// from the key being absent.
	Temperature  *float64 `yaml:"temperature"`
	ContentLimit int      `yaml:"content_limit"`
	Description  string   `yaml:"description"`
}

// Template is one parsed prompt file.
type Template struct {
	Name         string
	System       string
	Model        string
	MaxTokens    int
	Temperature  float64
	ContentLimit int
	Description  string
}

// Library holds all loaded templates.
type Library struct {
	templates map[string]Template
}

// Load parses every embedded prompt file.
func Load() (*Library, error) {
	entries, err := fs.Glob(promptFS, "prompts/*.md")
	if err != nil {
		return nil, fmt.Errorf("glob prompts: %w", err)
	}

	lib := &Library{templates: make(map[string]Template, len(entries))}
	for _, path := range entries {
		data, err := promptFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "prompts/"), ".md")
		tmpl, err := parse(name, string(data))
		if err != nil {
			return nil, err
		}
		lib.templates[name] = tmpl
	}
	return lib, nil
}

func parse(name, raw string) (Template, error) {
	rest, ok := strings.CutPrefix(raw, "---\n")
	if !ok {
		return Template{}, fmt.Errorf("prompt %s: missing frontmatter", name)
	}
	meta, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return Template{}, fmt.Errorf("prompt %s: unterminated frontmatter", name)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return Template{}, fmt.Errorf("prompt %s: parse frontmatter: %w", name, err)
	}

	system := strings.TrimSpace(body)
	if system == "" {
		return Template{}, fmt.Errorf("prompt %s: empty system prompt", name)
	}

	tmpl := Template{
		Name:         name,
		System:       system,
		Model:        fm.Model,
		MaxTokens:    fm.MaxTokens,
		Temperature:  0.3,
		ContentLimit: fm.ContentLimit,
		Description:  fm.Description,
	}
	if fm.Temperature != nil {
		tmpl.Temperature = *fm.Temperature
	}
	if tmpl.Model == "" {
		tmpl.Model = "llama-3.3-70b-versatile"
	}
	if tmpl.MaxTokens == 0 {
		tmpl.MaxTokens = 100
	}
	if tmpl.ContentLimit == 0 {
		tmpl.ContentLimit = 1000
	}
	return tmpl, nil
}

// Get returns the named template.
func (l *Library) Get(name string) (Template, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("prompt not found: %s", name)
	}
	return tmpl, nil
}

// Names lists the loaded template names.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	return names
}

// Truncate cuts content to the template's input character limit, applied
// before sending to bound upstream cost and latency.
func (t Template) Truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= t.ContentLimit {
		return content
	}
	return string(runes[:t.ContentLimit])
}
