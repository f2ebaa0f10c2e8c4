package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ShayCichocki/teamplan/internal/decompose"
)

// Provider defaults.
const (
	DefaultMaxTokens         = 4096
	DefaultRequestsPerMinute = 20
)

const systemPrompt = "You plan team assignments. You answer with a single JSON array and nothing else."

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	MaxTokens int64
	// RequestsPerMinute caps calls made through this provider.
	RequestsPerMinute int
	Logger            zerolog.Logger
}

// Provider asks Claude for candidate subtasks. It implements
// decompose.Provider and is safe for concurrent use.
type Provider struct {
	client    *Client
	limiter   *rate.Limiter
	maxTokens int64
	logger    zerolog.Logger
}

var _ decompose.Provider = (*Provider)(nil)

// NewProvider creates a Provider backed by client.
func NewProvider(client *Client, cfg ProviderConfig) *Provider {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return &Provider{
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		maxTokens: maxTokens,
		logger:    cfg.Logger,
	}
}

// Generate renders the decomposition prompt, sends it to Claude and parses
// the JSON array in the reply.
func (p *Provider) Generate(ctx context.Context, in decompose.Input) ([]decompose.Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	start := time.Now()
	resp, err := p.client.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.client.Model(),
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(decompose.BuildPrompt(in))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}
	p.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	text := ResponseText(resp)
	p.logger.Debug().
		Str("model", string(p.client.Model())).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Dur("elapsed", time.Since(start)).
		Msg("decomposition response received")

	return decompose.ParseResponse(text)
}

// ResponseText concatenates the text blocks of a message.
func ResponseText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(variant.Text)
		}
	}
	return b.String()
}
