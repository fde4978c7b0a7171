package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetection()
	c.normalizeLLM()
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.PromptsDir, err = expandPath(strings.TrimSpace(c.Paths.PromptsDir)); err != nil {
		return fmt.Errorf("paths.prompts_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetection() {
	c.Detection.Mode = strings.ToLower(strings.TrimSpace(c.Detection.Mode))
	if c.Detection.Mode == "" {
		c.Detection.Mode = ModeLLM
	}
	c.Detection.Prompt = strings.TrimSpace(c.Detection.Prompt)
	if c.Detection.Prompt == "" {
		c.Detection.Prompt = defaultPrompt
	}
	c.Classification.Prompt = strings.TrimSpace(c.Classification.Prompt)
	if c.Classification.Prompt == "" {
		c.Classification.Prompt = defaultPrompt
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Backend = strings.ToLower(strings.TrimSpace(c.LLM.Backend))
	if c.LLM.Backend == "" {
		c.LLM.Backend = BackendLocal
	}

	l := &c.LLM.Local
	l.URL = strings.TrimRight(strings.TrimSpace(l.URL), "/")
	if l.URL == "" {
		l.URL = defaultOllamaURL
	}
	l.Model = strings.TrimSpace(l.Model)
	if l.TimeoutSeconds <= 0 {
		l.TimeoutSeconds = defaultOllamaTimeout
	}
	if l.PullTimeoutSeconds <= 0 {
		l.PullTimeoutSeconds = defaultPullTimeout
	}
	if l.PollIntervalSeconds <= 0 {
		l.PollIntervalSeconds = defaultPollInterval
	}
	if l.PollAttempts <= 0 {
		l.PollAttempts = defaultPollAttempts
	}

	r := &c.LLM.Remote
	r.APIKey = strings.TrimSpace(r.APIKey)
	r.BaseURL = strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	if r.BaseURL == "" {
		r.BaseURL = defaultRemoteBaseURL
	}
	r.Model = strings.TrimSpace(r.Model)
	if r.Model == "" {
		r.Model = defaultRemoteModel
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = defaultRemoteTimeout
	}
	hosts := r.AllowedHosts[:0]
	for _, h := range r.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	r.AllowedHosts = hosts
}

func (c *Config) normalizeTranscription() error {
	t := &c.Transcription
	t.Backend = strings.ToLower(strings.TrimSpace(t.Backend))
	if t.Backend == "" {
		t.Backend = TranscriberASR
	}
	t.URL = strings.TrimRight(strings.TrimSpace(t.URL), "/")
	t.Language = strings.TrimSpace(t.Language)
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultASRTimeout
	}
	if strings.TrimSpace(t.Bin) == "" {
		t.Bin = defaultWhisperBin
	}
	if t.Model != "" {
		var err error
		if t.Model, err = expandPath(strings.TrimSpace(t.Model)); err != nil {
			return fmt.Errorf("transcription.model: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
