package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/ports"
)

const backendName = "remote"

// DefaultSystem steers chat models towards output the segment parser accepts.
const DefaultSystem = "You select highlight clips from video transcripts. " +
	"Reply with only a bare JSON array of objects with numeric \"start\" and \"end\" fields in seconds. " +
	"No prose, no markdown."

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer string
	Title   string
}

// Client is the hosted, OpenAI-compatible generation backend.
type Client struct {
	client  oai.Client
	key     string
	model   string
	temp    float64
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.Generator = (*Client)(nil)

func New(opts Options, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "", "remote llm", "api key is required", nil)
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(normalizeBaseURL(opts.BaseURL) + "/"),
		option.WithMaxRetries(0),
	}
	if opts.Referer != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", opts.Referer))
	}
	if opts.Title != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", opts.Title))
	}

	return &Client{
		client:  oai.NewClient(reqOpts...),
		key:     opts.APIKey,
		model:   opts.Model,
		temp:    opts.Temperature,
		timeout: opts.Timeout,
		logger:  logging.Component(logger, "openai"),
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	system := opts.System
	if strings.TrimSpace(system) == "" {
		system = DefaultSystem
	}
	params := oai.ChatCompletionNewParams{
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(prompt),
		},
		Model: c.model,
	}
	if c.temp > 0 {
		params.Temperature = oai.Float(c.temp)
	}
	if opts.JSON {
		params.ResponseFormat = oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("chat completion", "model", c.model, "prompt_chars", len(prompt), "json", opts.JSON)
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", c.requestError(reqCtx, ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", &faults.ModelRequestError{Backend: backendName, Err: errors.New("no choices returned")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) requestError(reqCtx, parent context.Context, err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if strings.TrimSpace(body) == "" {
			body = apiErr.Message
		}
		return &faults.ModelRequestError{
			Backend:    backendName,
			StatusCode: apiErr.StatusCode,
			Body:       truncate(redactSecrets(body, c.key), 400),
		}
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return &faults.ModelRequestError{Backend: backendName, Err: fmt.Errorf("timeout after %s (model=%s)", c.timeout, c.model)}
	}
	return &faults.ModelRequestError{Backend: backendName, Err: errors.New(redactSecrets(err.Error(), c.key))}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
