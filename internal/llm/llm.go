// Package llm picks the generation backend a job talks to.
package llm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/ports/adapters/ollama"
	"github.com/forPelevin/highcut/internal/ports/adapters/openai"
)

// New builds the generator selected by cfg.Backend. The choice is made once
// per job; callers pass the result along explicitly.
func New(cfg config.LLM, logger *slog.Logger) (ports.Generator, error) {
	switch cfg.Backend {
	case config.BackendLocal, "":
		return NewLocal(cfg.Local, logger), nil
	case config.BackendRemote:
		return NewRemote(cfg.Remote, logger)
	default:
		return nil, faults.Wrap(faults.ErrConfiguration, "", "llm", fmt.Sprintf("unknown backend %q", cfg.Backend), nil)
	}
}

func NewLocal(cfg config.Local, logger *slog.Logger) *ollama.Client {
	return ollama.New(ollama.Options{
		BaseURL:       cfg.URL,
		Model:         cfg.Model,
		Timeout:       seconds(cfg.TimeoutSeconds),
		PullTimeout:   seconds(cfg.PullTimeoutSeconds),
		PollInterval:  seconds(cfg.PollIntervalSeconds),
		PollAttempts:  cfg.PollAttempts,
		Temperature:   &cfg.Temperature,
		TopP:          cfg.TopP,
		TopK:          cfg.TopK,
		RepeatPenalty: cfg.RepeatPenalty,
		NumCtx:        cfg.NumCtx,
		NumPredict:    cfg.NumPredict,
	}, logger)
}

// NewRemote validates the base URL against the host allow-list before
// building the client.
func NewRemote(cfg config.Remote, logger *slog.Logger) (*openai.Client, error) {
	if err := openai.ValidateBaseURL(cfg.BaseURL, cfg.AllowedHosts); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "", "llm", "remote base url rejected", err)
	}
	return openai.New(openai.Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     seconds(cfg.TimeoutSeconds),
		Referer:     cfg.Referer,
		Title:       cfg.Title,
	}, logger)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
