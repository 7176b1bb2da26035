// Package classifier labels case descriptions through the Anthropic Messages API.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/config"
	"github.com/caseflow/triage-service/internal/observability"
)

// ErrNotConfigured is returned for every call when no API key was supplied.
var ErrNotConfigured = errors.New("classifier api key not configured")

// ErrEmptyLabel is returned when the model answers without any text.
var ErrEmptyLabel = errors.New("classifier returned no label")

const systemPrompt = "Classify the case into one of: Fraud, Account Access, Verification, General Inquiry. " +
	"Answer with the category name only."

// Classifier returns the raw label for a case description.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// AnthropicClassifier asks a Claude model for a single category label.
type AnthropicClassifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	enabled   bool
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewAnthropicClassifier builds the gateway. httpClient may be nil to use the SDK default.
func NewAnthropicClassifier(cfg config.ClassifierConfig, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) *AnthropicClassifier {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 10
	}

	return &AnthropicClassifier{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout(),
		enabled:   strings.TrimSpace(cfg.APIKey) != "",
		logger:    logger,
		metrics:   metrics,
	}
}

// Classify issues one deterministic completion and returns the trimmed label.
func (c *AnthropicClassifier) Classify(ctx context.Context, description string) (string, error) {
	if !c.enabled {
		c.metrics.RecordClassification("not_configured", 0)
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(description)),
		},
	})
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordClassification("error", elapsed)
		c.logger.Warn("classifier call failed", zap.Error(err), zap.Duration("latency", elapsed))
		return "", fmt.Errorf("classify case: %w", err)
	}

	label := replyText(msg)
	if label == "" {
		c.metrics.RecordClassification("empty", elapsed)
		return "", ErrEmptyLabel
	}

	c.metrics.RecordClassification("ok", elapsed)
	c.logger.Debug("case classified", zap.String("label", label), zap.Duration("latency", elapsed))
	return label, nil
}

func replyText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
