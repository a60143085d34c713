package flow

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var embeddedPrompts embed.FS

const promptExt = ".tmpl"

// PromptRef names a versioned prompt template. Templates are looked up
// as <Name>.v<Version>.tmpl.
type PromptRef struct {
	Name    string
	Version int
}

func (p PromptRef) String() string {
	return fmt.Sprintf("%s@v%d", p.Name, p.Version)
}

func (p PromptRef) filename() string {
	return fmt.Sprintf("%s.v%d%s", p.Name, p.Version, promptExt)
}

// parsePromptFilename is the inverse of PromptRef.filename.
func parsePromptFilename(name string) (PromptRef, bool) {
	base := strings.TrimSuffix(name, promptExt)
	if base == name {
		return PromptRef{}, false
	}
	i := strings.LastIndex(base, ".v")
	if i <= 0 {
		return PromptRef{}, false
	}
	v, err := strconv.Atoi(base[i+2:])
	if err != nil || v <= 0 {
		return PromptRef{}, false
	}
	return PromptRef{Name: base[:i], Version: v}, true
}

// PromptSet holds parsed prompt templates keyed by reference.
type PromptSet struct {
	templates map[PromptRef]*template.Template
}

// LoadPrompts parses the embedded templates and, when overlayDir is set,
// replaces or extends them with the templates found there.
func LoadPrompts(overlayDir string) (*PromptSet, error) {
	ps := &PromptSet{templates: make(map[PromptRef]*template.Template)}

	sub, err := fs.Sub(embeddedPrompts, "prompts")
	if err != nil {
		return nil, fmt.Errorf("opening embedded prompts: %w", err)
	}
	if err := ps.load(sub); err != nil {
		return nil, err
	}

	if overlayDir != "" {
		if err := ps.load(os.DirFS(overlayDir)); err != nil {
			return nil, fmt.Errorf("loading prompt overlay %s: %w", overlayDir, err)
		}
	}

	return ps, nil
}

func (ps *PromptSet) load(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("listing prompts: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ref, ok := parsePromptFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("reading prompt %s: %w", e.Name(), err)
		}
		if err := ps.Add(ref, string(body)); err != nil {
			return err
		}
	}
	return nil
}

// Add parses body as the template for ref, replacing any existing one.
func (ps *PromptSet) Add(ref PromptRef, body string) error {
	tmpl, err := template.New(path.Base(ref.filename())).
		Option("missingkey=error").
		Parse(body)
	if err != nil {
		return fmt.Errorf("parsing prompt %s: %w", ref, err)
	}
	ps.templates[ref] = tmpl
	return nil
}

// Has reports whether a template exists for ref.
func (ps *PromptSet) Has(ref PromptRef) bool {
	_, ok := ps.templates[ref]
	return ok
}

// Render interpolates vars into the template for ref.
func (ps *PromptSet) Render(ref PromptRef, vars map[string]any) (string, error) {
	tmpl, ok := ps.templates[ref]
	if !ok {
		return "", fmt.Errorf("prompt %s not found", ref)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", ref, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
