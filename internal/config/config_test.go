package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/highcut/internal/config"
)

var legacyEnv = []string{
	"HIGHCUT_LLM_BACKEND", "OLLAMA_HOSTNAME", "OLLAMA_PORT", "OLLAMA_MODEL",
	"OLLAMA_TIMEOUT", "OPENAI_API_KEY", "MIN_SCORE", "MIN_LEN", "MAX_LEN",
	"API_TRANSCRIBE_URL", "API_TRANSCRIBE_PORT", "API_TRANSCRIBE_TIMEOUT",
}

// isolate points HOME and the working directory at empty temp dirs and
// blanks every legacy variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range legacyEnv {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if want := filepath.Join(home, ".config", "highcut", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if cfg.Paths.WorkDir != filepath.Join(home, ".cache", "highcut", "work") {
		t.Fatalf("unexpected work dir %q", cfg.Paths.WorkDir)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Segmentation.MinLen != 3 || cfg.Segmentation.MaxLen != 30 {
		t.Fatalf("unexpected segmentation %+v", cfg.Segmentation)
	}
	if cfg.Classification.Threshold != 7 {
		t.Fatalf("unexpected threshold %d", cfg.Classification.Threshold)
	}
	if cfg.LLM.Backend != config.BackendLocal || cfg.LLM.Local.PollAttempts != 60 || cfg.LLM.Local.TimeoutSeconds != 2400 {
		t.Fatalf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.Transcription.Language != "pt" || cfg.Transcription.URL != "http://localhost:9000" {
		t.Fatalf("unexpected transcription defaults %+v", cfg.Transcription)
	}
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "highcut.toml")
	body := `
[segmentation]
min_len = 5
max_len = 40

[classification]
threshold = 8

[llm.local]
model = "from-file"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MAX_LEN", "45")
	t.Setenv("OLLAMA_HOSTNAME", "gpu-box")
	t.Setenv("API_TRANSCRIBE_URL", "asr-host")
	t.Setenv("API_TRANSCRIBE_PORT", "9100")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved %q exists=%v", resolved, exists)
	}
	if cfg.Segmentation.MinLen != 5 {
		t.Fatalf("file value lost: %v", cfg.Segmentation.MinLen)
	}
	if cfg.Segmentation.MaxLen != 45 {
		t.Fatalf("env should override file: %v", cfg.Segmentation.MaxLen)
	}
	if cfg.Classification.Threshold != 8 || cfg.LLM.Local.Model != "from-file" {
		t.Fatalf("unexpected %+v %+v", cfg.Classification, cfg.LLM.Local)
	}
	if cfg.LLM.Local.URL != "http://gpu-box:11434" {
		t.Fatalf("unexpected ollama url %q", cfg.LLM.Local.URL)
	}
	if cfg.Transcription.URL != "http://asr-host:9100" {
		t.Fatalf("unexpected asr url %q", cfg.Transcription.URL)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "bounds", body: "[segmentation]\nmin_len = 10\nmax_len = 5\n", want: "max_len"},
		{name: "mode", body: "[detection]\nmode = \"magic\"\n", want: "detection.mode"},
		{name: "remote without key", body: "[llm]\nbackend = \"remote\"\n", want: "api_key"},
		{name: "whispercpp without model", body: "[transcription]\nbackend = \"whispercpp\"\n", want: "transcription.model"},
		{name: "bad env", env: map[string]string{"MIN_SCORE": "high"}, want: "MIN_SCORE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolate(t)
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestRemoteKeyNotRequiredInRulesMode(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.toml")
	body := "[detection]\nmode = \"rules\"\n[classification]\nenabled = false\n[llm]\nbackend = \"remote\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NeedsLLM() {
		t.Fatal("rules mode without classification should not need a model")
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Classification.Threshold != 7 || decoded.LLM.Backend != "local" {
		t.Fatalf("sample drifted from defaults: %+v", decoded)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}
