// Package claude implements the llm ports on the Anthropic Messages API
package claude

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"curtaincall/internal/adapters/llm"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
)

// DefaultModel is used when the caller does not pin one
const DefaultModel = "claude-sonnet-4-5"

// searchModel runs the grounded lookups; haiku keeps per-actor cost low
const searchModel = "claude-haiku-4-5"

// Client wraps the Anthropic SDK
type Client struct {
	c     anthropic.Client
	model string
	log   logger.Logger
}

var (
	_ llm.Completer = (*Client)(nil)
	_ llm.Grounded  = (*Client)(nil)
)

// New constructs a Client. model may be empty for the default
func New(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		c:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: model,
		log:   *logger.Named("claude"),
	}
}

// Complete implements llm.Completer
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.c.Messages.New(ctx, params)
	if err != nil {
		return llm.Completion{}, classify(err, "claude completion")
	}

	out := llm.Completion{
		Text:         textOf(msg),
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
	out.CostUSD = llm.Cost(model, out.InputTokens, out.OutputTokens)
	c.log.Debug().Str("model", model).Int("in", out.InputTokens).Int("out", out.OutputTokens).
		Float64("cost_usd", out.CostUSD).Msg("claude completion")
	return out, nil
}

// GroundedSearch implements llm.Grounded via the provider-side web search tool
func (c *Client) GroundedSearch(ctx context.Context, prompt string, maxTokens int) (llm.GroundedAnswer, error) {
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	msg, err := c.c.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(searchModel),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(3),
			},
		}},
	})
	if err != nil {
		return llm.GroundedAnswer{}, classify(err, "claude grounded search")
	}

	ans := llm.GroundedAnswer{
		Text:  textOf(msg),
		Model: string(msg.Model),
	}
	seen := map[string]bool{}
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		for _, cite := range block.Citations {
			if cite.Type != "web_search_result_location" || cite.URL == "" || seen[cite.URL] {
				continue
			}
			seen[cite.URL] = true
			ans.Citations = append(ans.Citations, llm.Citation{URL: cite.URL, Title: cite.Title})
		}
	}
	ans.CostUSD = llm.Cost(searchModel, int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens))
	return ans, nil
}

// textOf joins the text blocks of a message
func textOf(msg *anthropic.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// classify maps SDK failures onto the platform error codes.
// Auth and quota problems surface immediately; the rest is retryable upstream
func classify(err error, op string) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return perr.Wrapf(err, perr.ErrorCodeUnauthorized, "%s auth rejected", op)
		case 429:
			return perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "%s rate limited", op)
		case 400, 404, 413, 422:
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s rejected request", op)
		default:
			if apierr.StatusCode >= 500 {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s provider error", op)
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrapf(err, perr.ErrorCodeTimeout, "%s deadline exceeded", op)
	}
	return perr.Wrapf(err, perr.ErrorCodeUpstream, "%s failed", op)
}
