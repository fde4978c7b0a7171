package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/highcut/internal/types"
)

// Placeholders substituted verbatim into templates.
const (
	TokenTranscript  = "TRANSCRIBE"
	TokenDuration    = "DURATION"
	TokenSegmentText = "SEGMENT_TEXT"
)

// DefaultName is the template used when no name is given.
const DefaultName = "default"

// Kind selects a template directory.
type Kind string

const (
	KindDetect   Kind = "detect_highlight"
	KindClassify Kind = "classify"
)

//go:embed defaults
var embedded embed.FS

// Template is a resolved prompt.
type Template struct {
	Kind Kind
	Name string
	// Source is the file the text came from, or "embedded".
	Source string
	Text   string
	// Fallback is set when the requested name was not found and the default
	// was used instead.
	Fallback bool
}

// Catalog resolves templates from an optional directory laid out as
// <dir>/<kind>/<name>.txt, backed by the built-in defaults.
type Catalog struct {
	dir string
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: strings.TrimSpace(dir)}
}

// Sanitize keeps letters, digits, '-' and '_' so a name cannot escape the
// template directory.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// List returns the sorted template names available for kind. The default
// is always present.
func (c *Catalog) List(kind Kind) ([]string, error) {
	seen := map[string]bool{DefaultName: true}
	if c.dir != "" {
		entries, err := os.ReadDir(filepath.Join(c.dir, string(kind)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s prompts: %w", kind, err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), ".txt")] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Load resolves name for kind: the named file, then the directory's
// default.txt, then the embedded default.
func (c *Catalog) Load(kind Kind, name string) (Template, error) {
	safe := Sanitize(name)
	if safe == "" {
		safe = DefaultName
	}

	if safe != DefaultName {
		tpl, ok, err := c.readDir(kind, safe)
		if err != nil {
			return Template{}, err
		}
		if ok {
			return tpl, nil
		}
	}

	tpl, err := c.loadDefault(kind)
	if err != nil {
		return Template{}, err
	}
	tpl.Fallback = safe != DefaultName
	return tpl, nil
}

// LoadFile reads a template from an explicit path.
func LoadFile(kind Kind, path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read prompt: %w", err)
	}
	return Template{
		Kind:   kind,
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Source: path,
		Text:   string(data),
	}, nil
}

func (c *Catalog) loadDefault(kind Kind) (Template, error) {
	tpl, ok, err := c.readDir(kind, DefaultName)
	if err != nil {
		return Template{}, err
	}
	if ok {
		return tpl, nil
	}
	data, err := embedded.ReadFile("defaults/" + string(kind) + "/" + DefaultName + ".txt")
	if err != nil {
		return Template{}, fmt.Errorf("no built-in %s prompt: %w", kind, err)
	}
	return Template{Kind: kind, Name: DefaultName, Source: "embedded", Text: string(data)}, nil
}

func (c *Catalog) readDir(kind Kind, name string) (Template, bool, error) {
	if c.dir == "" {
		return Template{}, false, nil
	}
	path := filepath.Join(c.dir, string(kind), name+".txt")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Template{}, false, nil
	}
	if err != nil {
		return Template{}, false, fmt.Errorf("read prompt %s: %w", path, err)
	}
	return Template{Kind: kind, Name: name, Source: path, Text: string(data)}, true, nil
}

// RenderDetection fills a detection template. Substitution is a single pass,
// so placeholder words inside the transcript are left alone.
func RenderDetection(tpl string, pc types.PromptContext) string {
	return strings.NewReplacer(
		TokenTranscript, pc.TranscriptText,
		TokenDuration, fmt.Sprintf("%.2f", pc.Duration),
	).Replace(tpl)
}

// RenderClassification fills a classification template with segment text.
func RenderClassification(tpl, segmentText string) string {
	return strings.ReplaceAll(tpl, TokenSegmentText, segmentText)
}
