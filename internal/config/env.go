package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// applyEnv lets the legacy deployment variables override file values.
func (c *Config) applyEnv() error {
	if v, ok := lookup("HIGHCUT_LLM_BACKEND"); ok {
		c.LLM.Backend = v
	}

	if host, ok := lookup("OLLAMA_HOSTNAME"); ok {
		port, _ := lookup("OLLAMA_PORT")
		if port == "" {
			port = "11434"
		}
		c.LLM.Local.URL = joinHostPort(host, port)
	}
	if v, ok := lookup("OLLAMA_MODEL"); ok {
		c.LLM.Local.Model = v
	}
	if err := envInt("OLLAMA_TIMEOUT", &c.LLM.Local.TimeoutSeconds); err != nil {
		return err
	}

	if c.LLM.Remote.APIKey == "" {
		if v, ok := lookup("OPENAI_API_KEY"); ok {
			c.LLM.Remote.APIKey = v
		}
	}

	if err := envInt("MIN_SCORE", &c.Classification.Threshold); err != nil {
		return err
	}
	if err := envFloat("MIN_LEN", &c.Segmentation.MinLen); err != nil {
		return err
	}
	if err := envFloat("MAX_LEN", &c.Segmentation.MaxLen); err != nil {
		return err
	}

	if host, ok := lookup("API_TRANSCRIBE_URL"); ok {
		port, _ := lookup("API_TRANSCRIBE_PORT")
		if port == "" {
			port = "9000"
		}
		c.Transcription.URL = joinHostPort(host, port)
	}
	return envInt("API_TRANSCRIBE_TIMEOUT", &c.Transcription.TimeoutSeconds)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*dst = f
	return nil
}

// joinHostPort builds a base URL from the legacy host and port pair. A host
// that already carries a scheme or a port is kept as is.
func joinHostPort(host, port string) string {
	host = strings.TrimRight(host, "/")
	scheme := "http://"
	if i := strings.Index(host, "://"); i >= 0 {
		scheme, host = host[:i+3], host[i+3:]
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return scheme + host
	}
	return scheme + net.JoinHostPort(host, port)
}
