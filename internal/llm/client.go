package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Transformer is the text-transformation service boundary: render a
// registered prompt template with variables and return the model's text.
// Every call is independently failable and context-cancellable.
type Transformer interface {
	Transform(ctx context.Context, templateID string, vars map[string]string) (string, error)
}

// ClientConfig holds configuration for the OpenAI-backed transformer.
type ClientConfig struct {
	APIKey      string
	LightModel  string // chunk condensation, screening, field extraction
	StrongModel string // section and document syntheses
	MaxTokens   int64
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	BaseURL     string       // Optional (tests)
	HTTPClient  *http.Client // Optional (tests)
}

// Client implements Transformer against the OpenAI chat completions API.
type Client struct {
	client      openai.Client
	lightModel  string
	strongModel string
	maxTokens   int64
	maxRetries  uint
	retryDelay  time.Duration
	log         *slog.Logger

	// Stats tracks recent call latencies; read by the stats endpoint.
	Stats *Stats
}

// NewClient creates the process-wide transformer handle. It is read-only
// after construction and safe for concurrent use.
func NewClient(cfg ClientConfig, log *slog.Logger) *Client {
	if cfg.LightModel == "" {
		cfg.LightModel = "gpt-4o-mini"
	}
	if cfg.StrongModel == "" {
		cfg.StrongModel = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:      openai.NewClient(opts...),
		lightModel:  cfg.LightModel,
		strongModel: cfg.StrongModel,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  uint(cfg.MaxRetries),
		retryDelay:  cfg.RetryDelay,
		log:         log,
		Stats:       NewStats(time.Hour),
	}
}

// Transform renders the template and performs one chat completion, retrying
// transient failures.
func (c *Client) Transform(ctx context.Context, templateID string, vars map[string]string) (string, error) {
	prompt, tier, err := RenderPrompt(templateID, vars)
	if err != nil {
		return "", err
	}

	model := c.lightModel
	if tier == TierStrong {
		model = c.strongModel
	}

	start := time.Now()
	var text string
	err = retry.Do(
		func() error {
			resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model: openai.ChatModel(model),
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.UserMessage(prompt),
				},
				MaxTokens:   openai.Int(c.maxTokens),
				Temperature: openai.Float(0),
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("empty response for template %s", templateID)
			}
			text = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			c.log.Warn("retrying transformation call",
				"template", templateID, "model", model, "attempt", attempt, "error", err)
		}),
	)
	c.Stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return "", fmt.Errorf("transform %s: %w", templateID, err)
	}

	return StripCodeBlock(text), nil
}

// Models reports the configured model names.
func (c *Client) Models() (light, strong string) {
	return c.lightModel, c.strongModel
}

// IsRetryable reports whether an error is a transient service failure
// (rate limiting or server-side errors) worth another attempt.
func IsRetryable(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusTooManyRequests || apierr.StatusCode >= 500
	}
	return false
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json|html)?\\s*(.*?)\\s*```$")

// StripCodeBlock removes a surrounding Markdown code fence, which models
// emit despite instructions to the contrary.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
