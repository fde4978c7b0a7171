package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/highcut/internal/types"
)

func writePrompt(t *testing.T, dir string, kind Kind, name, text string) {
	t.Helper()
	d := filepath.Join(dir, string(kind))
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d, name+".txt"), []byte(text), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("../../etc/passwd"); got != "etcpasswd" {
		t.Fatalf("got %q", got)
	}
	if got := Sanitize("viral_clips-v2"); got != "viral_clips-v2" {
		t.Fatalf("got %q", got)
	}
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	c := NewCatalog("")
	detect, err := c.Load(KindDetect, "")
	if err != nil {
		t.Fatalf("Load detect: %v", err)
	}
	if detect.Source != "embedded" || !strings.Contains(detect.Text, TokenTranscript) || !strings.Contains(detect.Text, TokenDuration) {
		t.Fatalf("unexpected detect template: %+v", detect)
	}
	classify, err := c.Load(KindClassify, "default")
	if err != nil {
		t.Fatalf("Load classify: %v", err)
	}
	if !strings.Contains(classify.Text, TokenSegmentText) {
		t.Fatalf("classify template lacks placeholder")
	}
}

func TestLoad_NamedThenDefaultFallback(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, KindDetect, "podcast", "podcast TRANSCRIBE")
	writePrompt(t, dir, KindDetect, "default", "custom default TRANSCRIBE")
	c := NewCatalog(dir)

	tpl, err := c.Load(KindDetect, "podcast")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tpl.Text != "podcast TRANSCRIBE" || tpl.Fallback {
		t.Fatalf("unexpected template: %+v", tpl)
	}

	tpl, err = c.Load(KindDetect, "missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tpl.Text != "custom default TRANSCRIBE" || !tpl.Fallback {
		t.Fatalf("expected directory default with fallback flag, got %+v", tpl)
	}

	tpl, err = c.Load(KindClassify, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tpl.Source != "embedded" {
		t.Fatalf("expected embedded classify default, got %+v", tpl)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, KindDetect, "zeta", "z")
	writePrompt(t, dir, KindDetect, "alpha", "a")
	if err := os.WriteFile(filepath.Join(dir, string(KindDetect), "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := NewCatalog(dir).List(KindDetect)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "alpha,default,zeta" {
		t.Fatalf("got %v", names)
	}
	names, err = NewCatalog(filepath.Join(dir, "nope")).List(KindClassify)
	if err != nil || len(names) != 1 || names[0] != DefaultName {
		t.Fatalf("got %v, %v", names, err)
	}
}

func TestRenderDetection(t *testing.T) {
	got := RenderDetection("len=DURATION text=TRANSCRIBE", types.PromptContext{TranscriptText: "the DURATION of TRANSCRIBE", Duration: 125.5})
	if got != "len=125.50 text=the DURATION of TRANSCRIBE" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderClassification(t *testing.T) {
	if got := RenderClassification("rate: SEGMENT_TEXT", "hello {world}"); got != "rate: hello {world}" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.txt")
	if err := os.WriteFile(path, []byte("x TRANSCRIBE"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tpl, err := LoadFile(KindDetect, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tpl.Name != "mine" || tpl.Source != path {
		t.Fatalf("unexpected template: %+v", tpl)
	}
}
