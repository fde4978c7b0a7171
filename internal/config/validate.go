package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MinLen < 0 {
		return errors.New("segmentation.min_len must be >= 0")
	}
	if c.Segmentation.MaxLen <= 0 {
		return errors.New("segmentation.max_len must be positive")
	}
	if c.Segmentation.MaxLen < c.Segmentation.MinLen {
		return fmt.Errorf("segmentation.max_len (%.2f) must be >= min_len (%.2f)", c.Segmentation.MaxLen, c.Segmentation.MinLen)
	}
	return nil
}

func (c *Config) validateDetection() error {
	switch c.Detection.Mode {
	case ModeLLM, ModeRules:
	default:
		return fmt.Errorf("detection.mode must be %q or %q, got %q", ModeLLM, ModeRules, c.Detection.Mode)
	}
	if c.Classification.Threshold < 0 {
		return errors.New("classification.threshold must be >= 0")
	}
	return nil
}

// validateLLM checks only the backend that will actually be used.
func (c *Config) validateLLM() error {
	if c.LLM.Backend != BackendLocal && c.LLM.Backend != BackendRemote {
		return fmt.Errorf("llm.backend must be %q or %q, got %q", BackendLocal, BackendRemote, c.LLM.Backend)
	}
	if !c.NeedsLLM() {
		return nil
	}
	switch c.LLM.Backend {
	case BackendLocal:
		if c.LLM.Local.Model == "" {
			return errors.New("llm.local.model is required. Set OLLAMA_MODEL or edit the config file (create with 'highcut config init')")
		}
	case BackendRemote:
		if c.LLM.Remote.APIKey == "" {
			return errors.New("llm.remote.api_key is required. Set OPENAI_API_KEY or edit the config file (create with 'highcut config init')")
		}
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case TranscriberASR:
		if c.Transcription.URL == "" {
			return errors.New("transcription.url is required for the asr backend")
		}
	case TranscriberWhisperCPP:
		if c.Transcription.Model == "" {
			return errors.New("transcription.model is required for the whispercpp backend")
		}
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", TranscriberASR, TranscriberWhisperCPP, c.Transcription.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}

// NeedsLLM reports whether any configured stage calls a model.
func (c *Config) NeedsLLM() bool {
	return c.Detection.Mode == ModeLLM || c.Classification.Enabled
}
