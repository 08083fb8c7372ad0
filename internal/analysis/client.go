// Package analysis asks a Gemini model questions about a single file.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"filelens/internal/logging"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrEmptyInput is returned when the file content or the question is blank.
	ErrEmptyInput = errors.New("file content and question are required")

	// ErrCommunication covers every transport, backend and empty-answer failure.
	// The cause is only logged.
	ErrCommunication = errors.New("failed to communicate with the Gemini API")
)

// Config holds connection settings for the Gemini backend.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single Analyze call. Zero means no client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Generator is the single call the client needs from a model backend.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Client is the language-model client used by the interaction panel and the
// ask command. It is safe for concurrent use.
type Client struct {
	gen     Generator
	model   string
	timeout time.Duration
	initErr error
}

// NewClient builds a Client on google.golang.org/genai. A missing API key is
// not an error here: browsing works without one, and Analyze reports it as
// ErrCommunication.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{model: modelOrDefault(cfg.Model), timeout: cfg.Timeout}
	if strings.TrimSpace(cfg.APIKey) == "" {
		c.initErr = errors.New("no API key configured")
		logging.API("Gemini client created without an API key")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.gen = genaiGenerator{client: gc}
	logging.API("Gemini client ready: model=%s", c.model)
	return c, nil
}

// NewWithGenerator wraps an arbitrary Generator.
func NewWithGenerator(gen Generator, model string) *Client {
	return &Client{gen: gen, model: modelOrDefault(model)}
}

func modelOrDefault(model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return DefaultModel
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Analyze sends one prompt built from content and question and returns the
// model's text answer. No retries, streaming or caching.
func (c *Client) Analyze(ctx context.Context, content, question string) (string, error) {
	if strings.TrimSpace(content) == "" || strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}

	reqID := uuid.NewString()
	log := logging.Get(logging.CategoryAPI).With("request_id", reqID)

	if c.gen == nil {
		cause := c.initErr
		if cause == nil {
			cause = errors.New("no generator configured")
		}
		log.Error("analysis unavailable: %v", cause)
		return "", ErrCommunication
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(content, question)
	log.Debug("analyze: model=%s prompt_len=%d", c.model, len(prompt))

	start := time.Now()
	text, err := c.gen.Generate(ctx, c.model, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty answer")
	}
	logging.Audit(logging.CategoryAPI).Analysis(reqID, c.model, len(prompt), time.Since(start).Milliseconds(), err)
	if err != nil {
		log.Error("generate failed after %v: %v", time.Since(start), err)
		return "", ErrCommunication
	}

	log.Info("analyze ok: %d chars in %v", len(text), time.Since(start))
	return text, nil
}

type genaiGenerator struct {
	client *genai.Client
}

func (g genaiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
