package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	ilogger "github.com/kenryu42/tmuxifier-session-scripts/internal/logger"
)

const (
	// APIKeyEnv is the required credential variable for the summarizer.
	APIKeyEnv = "GEMINI_API_KEY"

	DefaultModel = "gemini-2.0-flash"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxAttempts    = 3
	retryDelay     = 2 * time.Second
	requestTimeout = 30 * time.Second

	promptPrefix = "Summarize the following system update commands result in a bullet list format:\n\n"
)

// ErrMissingAPIKey is returned before any network call when the credential
// variable is unset.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " environment variable is not set")

// Client calls the generative-language API to condense a full update report
// into a short natural-language summary. Transient failures are retried a
// fixed number of times with a fixed delay.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	keySet     bool
	sleep      func(time.Duration)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithModel(m string) Option {
	return func(c *Client) {
		if strings.TrimSpace(m) != "" {
			c.model = m
		}
	}
}

// WithAPIKey overrides the key lookup from the environment.
func WithAPIKey(k string) Option {
	return func(c *Client) {
		c.apiKey = k
		c.keySet = true
	}
}

// WithSleep replaces the between-attempts delay, for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gemini generateContent wire types. Only the fields the tool touches.
type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig map[string]any   `json:"generationConfig"`
}

type requestContent struct {
	Role  string        `json:"role"`
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []requestPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize sends the rendered report and returns the generated summary.
// It fails immediately, without a network call, when the API key is absent;
// otherwise it makes up to maxAttempts attempts before giving up.
func (c *Client) Summarize(ctx context.Context, reportText string) (string, error) {
	key := c.apiKey
	if !c.keySet {
		key = os.Getenv(APIKeyEnv)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrMissingAPIKey
	}

	prompt := promptPrefix + reportText

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		summary, err := c.generate(ctx, key, prompt)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		ilogger.LogWarn(fmt.Sprintf("summary attempt %d/%d failed: %v", attempt, maxAttempts, err))

		if attempt < maxAttempts {
			c.sleep(retryDelay)
		}
	}

	return "", fmt.Errorf("summary failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) generate(ctx context.Context, key, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []requestContent{
			{Role: "user", Parts: []requestPart{{Text: prompt}}},
		},
		GenerationConfig: map[string]any{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for diagnostics; the retry loop
		// handles the rest.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("API call failed with HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("response has no candidates")
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("response candidate has empty text")
	}
	return text, nil
}
