package summarize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = openai.GPT3Dot5Turbo
	DefaultMaxTokens   = 100
	DefaultTemperature = 0.2
)

// ErrEmptyCompletion is reported when the model returns no choices.
var ErrEmptyCompletion = errors.New("summarize: completion contained no choices")

// Result is the outcome of one summarization call: either text or the cause
// of the failure.
type Result struct {
	Text string
	Err  error
}

// Success wraps generated text.
func Success(text string) Result { return Result{Text: text} }

// Failure wraps the cause of a failed call.
func Failure(err error) Result { return Result{Err: err} }

// OK reports whether the call produced text.
func (r Result) OK() bool { return r.Err == nil }

// Summarizer answers a single-turn prompt with free-form text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) Result
}

// Config configures the OpenAI-backed summarizer.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	// Transport overrides the round tripper, e.g. to route through a proxy.
	Transport http.RoundTripper
}

// OpenAI is a Summarizer backed by the chat completions API.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAI builds the summarizer. Missing settings fall back to the defaults above.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	// go-openai omits a zero temperature, which the API reads as 1.
	if cfg.Temperature <= 0 {
		cfg.Temperature = math.SmallestNonzeroFloat32
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport}

	return &OpenAI{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Summarize sends prompt as a single user message. It never returns a Go
// error; failures are carried in the Result.
func (o *OpenAI) Summarize(ctx context.Context, prompt string) Result {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return Failure(fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Failure(ErrEmptyCompletion)
	}
	return Success(strings.TrimSpace(resp.Choices[0].Message.Content))
}
