package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/tokokecil/pos-backend/internal/pos"
)

// ErrUpstream is returned when the generative-language API fails or answers
// with an unusable body. Handlers surface it as a 502 with a generic message.
var ErrUpstream = errors.New("assistant upstream error")

// BusinessSnapshot is the data window handed to the model: recent sales and
// expenses plus the full catalog.
type BusinessSnapshot struct {
	Sales    []pos.Sale    `json:"sales"`
	Expenses []pos.Expense `json:"expenses"`
	Products []pos.Product `json:"products"`
}

// Turn is one message of the prior conversation.
type Turn struct {
	Sender string `json:"sender"` // "user" | "assistant"
	Text   string `json:"text"`
}

type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

func (c *Client) Close() error { return c.http.Close() }

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Answer sends the business context plus the owner's question to the model
// and returns the answer text.
func (c *Client) Answer(ctx context.Context, query string, history []Turn, data BusinessSnapshot) (string, error) {
	body := generateRequest{
		SystemInstruction: &content{Parts: []contentPart{{Text: BuildSystemPrompt(data, history)}}},
		Contents:          []content{{Role: "user", Parts: []contentPart{{Text: query}}}},
	}

	var out generateResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Error("assistant request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if res.IsError() {
		c.logger.Error("assistant request rejected",
			zap.Int("status", res.StatusCode()),
			zap.String("model", c.model),
		)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
