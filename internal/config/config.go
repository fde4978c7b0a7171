package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds the directories a job reads from and writes to.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	WorkDir    string `toml:"work_dir"`
	PromptsDir string `toml:"prompts_dir"`
	CacheDir   string `toml:"cache_dir"`
}

// Segmentation bounds the rule-based windows, in seconds.
type Segmentation struct {
	MinLen float64 `toml:"min_len"`
	MaxLen float64 `toml:"max_len"`
}

type Detection struct {
	// Mode is "llm" or "rules".
	Mode string `toml:"mode"`
	// Prompt names a template in prompts_dir/detect_highlight.
	Prompt string `toml:"prompt"`
	// PromptFile overrides Prompt with an explicit path.
	PromptFile string `toml:"prompt_file"`
	// TimedTranscript prefixes every block with its [start-end] range.
	TimedTranscript bool `toml:"timed_transcript"`
}

type Classification struct {
	Enabled   bool   `toml:"enabled"`
	Prompt    string `toml:"prompt"`
	Threshold int    `toml:"threshold"`
}

// Local configures the Ollama backend.
type Local struct {
	URL                 string  `toml:"url"`
	Model               string  `toml:"model"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
	PullTimeoutSeconds  int     `toml:"pull_timeout_seconds"`
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	PollAttempts        int     `toml:"poll_attempts"`
	Temperature         float64 `toml:"temperature"`
	TopP                float64 `toml:"top_p"`
	TopK                int     `toml:"top_k"`
	RepeatPenalty       float64 `toml:"repeat_penalty"`
	NumCtx              int     `toml:"num_ctx"`
	NumPredict          int     `toml:"num_predict"`
}

// Remote configures the OpenAI-compatible backend.
type Remote struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	Temperature    float64  `toml:"temperature"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	Referer        string   `toml:"referer"`
	Title          string   `toml:"title"`
}

type LLM struct {
	// Backend is "local" or "remote".
	Backend string `toml:"backend"`
	Local   Local  `toml:"local"`
	Remote  Remote `toml:"remote"`
}

type Transcription struct {
	// Backend is "asr" (HTTP webservice) or "whispercpp".
	Backend        string `toml:"backend"`
	URL            string `toml:"url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Bin            string `toml:"bin"`
	Model          string `toml:"model"`
	// Cache reuses transcripts of identical inputs.
	Cache bool `toml:"cache"`
}

type Media struct {
	FFmpeg        string `toml:"ffmpeg"`
	FFprobe       string `toml:"ffprobe"`
	BurnSubtitles bool   `toml:"burn_subtitles"`
}

type Cleanup struct {
	KeepIntermediates bool `toml:"keep_intermediates"`
	RemoveInput       bool `toml:"remove_input"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config is the full highcut configuration.
type Config struct {
	Paths          Paths          `toml:"paths"`
	Segmentation   Segmentation   `toml:"segmentation"`
	Detection      Detection      `toml:"detection"`
	Classification Classification `toml:"classification"`
	LLM            LLM            `toml:"llm"`
	Transcription  Transcription  `toml:"transcription"`
	Media          Media          `toml:"media"`
	Cleanup        Cleanup        `toml:"cleanup"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/highcut/config.toml")
}

// Load resolves the config file, decodes it over the defaults, applies
// environment fallbacks and validates the result. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("highcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the output, work and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules (home expansion, absolute) to p.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}
