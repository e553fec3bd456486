// Package gemini implements the llm ports on google.golang.org/genai
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"curtaincall/internal/adapters/llm"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
)

// DefaultModel balances cost against grounding quality
const DefaultModel = "gemini-2.5-flash"

// Client wraps the genai SDK
type Client struct {
	c     *genai.Client
	model string
	log   logger.Logger
}

var (
	_ llm.Grounded  = (*Client)(nil)
	_ llm.Extractor = (*Client)(nil)
)

// New dials the Gemini API. model may be empty for the default
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotConfigured, "gemini client init failed")
	}
	return &Client{c: c, model: model, log: *logger.Named("gemini")}, nil
}

// GroundedSearch implements llm.Grounded with the GoogleSearch grounding tool
func (c *Client) GroundedSearch(ctx context.Context, prompt string, maxTokens int) (llm.GroundedAnswer, error) {
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	resp, err := c.c.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools:           []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return llm.GroundedAnswer{}, classify(err, "gemini grounded search")
	}

	ans := llm.GroundedAnswer{Text: resp.Text(), Model: c.model}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			ans.Citations = append(ans.Citations, llm.Citation{URL: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	ans.CostUSD = cost(c.model, resp)
	c.log.Debug().Str("model", c.model).Float64("cost_usd", ans.CostUSD).
		Int("citations", len(ans.Citations)).Msg("gemini grounded search")
	return ans, nil
}

// ExtractBiographical implements llm.Extractor. It narrows a long article to
// only the passages about subject and grades the overall relevance
func (c *Client) ExtractBiographical(ctx context.Context, text, subject string) (llm.Extraction, error) {
	const maxInput = 24_000
	if len(text) > maxInput {
		text = text[:maxInput]
	}

	prompt := "From the article below, extract only the passages that are biographical " +
		"information about " + subject + " (life, family, career, or death). " +
		"Reply with a first line of exactly RELEVANCE: high, RELEVANCE: medium, " +
		"RELEVANCE: low, or RELEVANCE: none, followed by the extracted passages " +
		"verbatim. Do not add commentary.\n\n---\n" + text

	resp, err := c.c.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return llm.Extraction{}, classify(err, "gemini extraction")
	}

	out := parseExtraction(resp.Text())
	out.CostUSD = cost(c.model, resp)
	return out, nil
}

// parseExtraction splits the RELEVANCE header from the extracted body
func parseExtraction(s string) llm.Extraction {
	s = strings.TrimSpace(s)
	rel := llm.RelevanceNone
	body := ""
	if line, rest, ok := strings.Cut(s, "\n"); ok || s != "" {
		if !ok {
			line, rest = s, ""
		}
		if v, found := strings.CutPrefix(strings.TrimSpace(line), "RELEVANCE:"); found {
			switch strings.TrimSpace(strings.ToLower(v)) {
			case "high":
				rel = llm.RelevanceHigh
			case "medium":
				rel = llm.RelevanceMedium
			case "low":
				rel = llm.RelevanceLow
			}
			body = strings.TrimSpace(rest)
		} else {
			// model skipped the header; keep the text, grade it low
			rel = llm.RelevanceLow
			body = s
		}
	}
	if rel == llm.RelevanceNone {
		body = ""
	}
	return llm.Extraction{Text: body, Relevance: rel}
}

func cost(model string, resp *genai.GenerateContentResponse) float64 {
	if resp == nil || resp.UsageMetadata == nil {
		return 0
	}
	return llm.Cost(model, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
}

// classify maps genai failures onto the platform error codes
func classify(err error, op string) error {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		switch apierr.Code {
		case 401, 403:
			return perr.Wrapf(err, perr.ErrorCodeUnauthorized, "%s auth rejected", op)
		case 429:
			return perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "%s rate limited", op)
		default:
			if apierr.Code >= 500 {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s provider error", op)
			}
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s rejected request", op)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrapf(err, perr.ErrorCodeTimeout, "%s deadline exceeded", op)
	}
	return perr.Wrapf(err, perr.ErrorCodeUpstream, "%s failed", op)
}
