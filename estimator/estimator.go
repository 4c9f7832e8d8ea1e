// Package estimator turns a meal description or photo into nutrition numbers
// by asking a hosted language model, and writes short coaching notes from
// daily summaries. Model output is free-form text; the JSON extraction lives
// in parse.go.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrUnrecognized means the model said the input is not food.
	ErrUnrecognized = errors.New("input not recognized as food")
	// ErrNotConfigured is returned by New when no provider is selected.
	ErrNotConfigured = errors.New("no estimator configured")
)

// EstimationError is any failure talking to the model or reading its answer.
type EstimationError struct {
	Op  string
	Err error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("estimate %s: %v", e.Op, e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

// Estimate is one meal's nutrition. Calories in kcal, macros in grams.
type Estimate struct {
	MenuName string  `json:"menu_name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Image is an uploaded meal photo.
type Image struct {
	Data      []byte
	MediaType string
}

// Estimator estimates meal nutrition.
type Estimator interface {
	EstimateFromText(ctx context.Context, description string) (Estimate, error)
	EstimateFromImage(ctx context.Context, img Image) (Estimate, error)
}

// Coach writes free-text advice from recent daily summaries.
type Coach interface {
	CoachReport(ctx context.Context, profile string, rows []balance.DailySummaryRow) (string, error)
}

// Config selects a provider and its credentials.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// completer sends one system+user turn, optionally with an image, and
// returns the model's text.
type completer interface {
	complete(ctx context.Context, system, user string, img *Image) (string, error)
}

// Client implements Estimator and Coach on top of a provider.
type Client struct {
	provider string
	llm      completer
	timeout  time.Duration
}

// New builds a Client for cfg.Provider. ErrNotConfigured is returned for
// "none" or an empty provider.
func New(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var llm completer
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		llm = newOpenAI(cfg)
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY not set")
		}
		llm = newAnthropic(cfg)
	case ProviderNone, "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown estimator provider %q", cfg.Provider)
	}
	return &Client{provider: strings.ToLower(cfg.Provider), llm: llm, timeout: timeout}, nil
}

// Provider returns the configured provider name.
func (c *Client) Provider() string { return c.provider }

func (c *Client) EstimateFromText(ctx context.Context, description string) (Estimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Estimate{}, &EstimationError{Op: "text", Err: errors.New("description is empty")}
	}
	out, err := c.call(ctx, foodSystemPrompt, description, nil)
	if err != nil {
		return Estimate{}, &EstimationError{Op: "text", Err: err}
	}
	est, err := parseEstimate(out)
	if err != nil {
		return Estimate{}, wrapParse("text", err)
	}
	if est.MenuName == "" {
		est.MenuName = description
	}
	return est, nil
}

func (c *Client) EstimateFromImage(ctx context.Context, img Image) (Estimate, error) {
	if len(img.Data) == 0 {
		return Estimate{}, &EstimationError{Op: "image", Err: errors.New("image is empty")}
	}
	img.MediaType = mediaType(img)
	if !supportedImage(img.MediaType) {
		return Estimate{}, &EstimationError{Op: "image", Err: fmt.Errorf("unsupported image type %q", img.MediaType)}
	}
	out, err := c.call(ctx, foodSystemPrompt, imageUserPrompt, &img)
	if err != nil {
		return Estimate{}, &EstimationError{Op: "image", Err: err}
	}
	est, err := parseEstimate(out)
	if err != nil {
		return Estimate{}, wrapParse("image", err)
	}
	if est.MenuName == "" {
		est.MenuName = "Photo meal"
	}
	return est, nil
}

func (c *Client) CoachReport(ctx context.Context, profile string, rows []balance.DailySummaryRow) (string, error) {
	if len(rows) == 0 {
		return "", &EstimationError{Op: "coach", Err: errors.New("no summary rows")}
	}
	out, err := c.call(ctx, coachSystemPrompt, coachUserPrompt(profile, rows), nil)
	if err != nil {
		return "", &EstimationError{Op: "coach", Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &EstimationError{Op: "coach", Err: errors.New("empty response")}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, system, user string, img *Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.llm.complete(ctx, system, user, img)
}

func wrapParse(op string, err error) error {
	if errors.Is(err, ErrUnrecognized) {
		return err
	}
	return &EstimationError{Op: op, Err: err}
}

func mediaType(img Image) string {
	if img.MediaType != "" {
		if mt, _, ok := strings.Cut(img.MediaType, ";"); ok {
			return strings.TrimSpace(mt)
		}
		return img.MediaType
	}
	return http.DetectContentType(img.Data)
}

func supportedImage(mt string) bool {
	switch mt {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

var (
	_ Estimator = (*Client)(nil)
	_ Coach     = (*Client)(nil)
)
