package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/ports"
)

const backendName = "ollama"

type Options struct {
	// BaseURL is the server root, e.g. http://localhost:11434.
	BaseURL string
	Model   string
	// Timeout bounds one generate call.
	Timeout      time.Duration
	PullTimeout  time.Duration
	PollInterval time.Duration
	PollAttempts int

	// Temperature is sent when non-nil, so an explicit 0 is kept.
	Temperature   *float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	NumCtx        int
	NumPredict    int
}

// Client is the local generation backend. It pulls the configured model on
// first use and then reuses it for the life of the client.
type Client struct {
	opts   Options
	http   *http.Client
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error

	mu    sync.Mutex
	ready bool
}

var _ ports.Generator = (*Client)(nil)
var _ ports.ReadinessChecker = (*Client)(nil)

func New(opts Options, logger *slog.Logger) *Client {
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 2400 * time.Second
	}
	if opts.PullTimeout <= 0 {
		opts.PullTimeout = 10 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 60
	}
	return &Client{
		opts:   opts,
		http:   &http.Client{},
		logger: logging.Component(logger, backendName),
		sleep:  sleepCtx,
	}
}

// EnsureReady makes sure the model is listed by the server, pulling it when
// missing and polling until it appears. Success is remembered.
func (c *Client) EnsureReady(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	present, err := c.hasModel(ctx)
	if err != nil {
		return faults.Wrap(faults.ErrModelUnavailable, "", "list models", c.opts.Model, err)
	}
	if present {
		c.logger.Debug("model available", "model", c.opts.Model)
		c.ready = true
		return nil
	}

	c.logger.Info("model missing, pulling", "model", c.opts.Model)
	if err := c.pull(ctx); err != nil {
		return faults.Wrap(faults.ErrModelUnavailable, "", "pull model", c.opts.Model, err)
	}

	for attempt := 1; attempt <= c.opts.PollAttempts; attempt++ {
		present, err := c.hasModel(ctx)
		if err == nil && present {
			c.logger.Info("model pulled", "model", c.opts.Model, "attempt", attempt)
			c.ready = true
			return nil
		}
		if err != nil {
			c.logger.Debug("poll tags failed", "attempt", attempt, "error", err)
		}
		if attempt == c.opts.PollAttempts {
			break
		}
		if err := c.sleep(ctx, c.opts.PollInterval); err != nil {
			return err
		}
	}
	return faults.Wrap(faults.ErrModelUnavailable, "", "pull model",
		fmt.Sprintf("%s not listed after %d checks", c.opts.Model, c.opts.PollAttempts), nil)
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	if err := c.EnsureReady(ctx); err != nil {
		return "", err
	}

	req := generateRequest{
		Model:   c.opts.Model,
		Prompt:  prompt,
		System:  opts.System,
		Stream:  false,
		Options: c.modelOptions(),
	}
	if opts.JSON {
		req.Format = "json"
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	c.logger.Debug("generate", "model", c.opts.Model, "prompt_chars", len(prompt), "json", opts.JSON)
	started := time.Now()
	var out generateResponse
	if err := c.postJSON(reqCtx, "/api/generate", req, &out); err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &faults.ModelRequestError{Backend: backendName, Err: fmt.Errorf("timeout after %s: %w", c.opts.Timeout, err)}
		}
		return "", err
	}
	if out.Error != "" {
		return "", &faults.ModelRequestError{Backend: backendName, Body: out.Error}
	}
	c.logger.Debug("generate done", "elapsed", time.Since(started).Round(time.Millisecond), "response_chars", len(out.Response))
	return strings.TrimSpace(out.Response), nil
}

func (c *Client) modelOptions() map[string]any {
	o := map[string]any{}
	if c.opts.Temperature != nil {
		o["temperature"] = *c.opts.Temperature
	}
	if c.opts.TopP > 0 {
		o["top_p"] = c.opts.TopP
	}
	if c.opts.TopK > 0 {
		o["top_k"] = c.opts.TopK
	}
	if c.opts.RepeatPenalty > 0 {
		o["repeat_penalty"] = c.opts.RepeatPenalty
	}
	if c.opts.NumCtx > 0 {
		o["num_ctx"] = c.opts.NumCtx
	}
	if c.opts.NumPredict != 0 {
		o["num_predict"] = c.opts.NumPredict
	}
	if len(o) == 0 {
		return nil
	}
	return o
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func (c *Client) hasModel(ctx context.Context) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.opts.BaseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	var tags tagsResponse
	if err := c.do(req, &tags); err != nil {
		return false, err
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, c.opts.Model) || sameModel(m.Model, c.opts.Model) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) pull(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.PullTimeout)
	defer cancel()
	body := map[string]any{"name": c.opts.Model, "model": c.opts.Model, "stream": false}
	return c.postJSON(reqCtx, "/api/pull", body, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &faults.ModelRequestError{Backend: backendName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &faults.ModelRequestError{Backend: backendName, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &faults.ModelRequestError{Backend: backendName, StatusCode: resp.StatusCode, Body: faults.Snippet(string(body), 400)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &faults.ModelRequestError{Backend: backendName, StatusCode: resp.StatusCode, Body: faults.Snippet(string(body), 200), Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// sameModel treats "llama3" and "llama3:latest" as the same tag.
func sameModel(listed, want string) bool {
	if listed == "" || want == "" {
		return false
	}
	if listed == want {
		return true
	}
	return !strings.Contains(want, ":") && listed == want+":latest"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
