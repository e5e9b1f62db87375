// Package lmstudio talks to a local OpenAI-compatible model server such as LM Studio.
package lmstudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/resty.v1"
)

// ErrRateLimited is returned by Query when the local query budget is spent.
var ErrRateLimited = errors.New("ai query rate limit exceeded")

const systemPrompt = "You are a helpful coding assistant. Project context: "

// Status describes the model server's reachability and loaded models.
type Status struct {
	Online      bool     `json:"online"`
	Models      []string `json:"models"`
	ActiveModel *string  `json:"active_model"`
}

// Options configures a Client.
type Options struct {
	BaseURL          string
	Model            string
	Timeout          time.Duration
	StatusTimeout    time.Duration
	QueriesPerMinute int
}

// Client is an LM Studio API client.
type Client struct {
	client        *resty.Client
	model         string
	statusTimeout time.Duration
	limiter       *rate.Limiter
}

// NewClient creates a Client for the endpoint in opts.
func NewClient(opts Options) *Client {
	cl := resty.New().
		SetHostURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json")

	limit := rate.Inf
	burst := 1
	if opts.QueriesPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.QueriesPerMinute))
		burst = opts.QueriesPerMinute
	}

	return &Client{
		client:        cl,
		model:         opts.Model,
		statusTimeout: opts.StatusTimeout,
		limiter:       rate.NewLimiter(limit, burst),
	}
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Status lists loaded models. Any failure reports the server offline.
func (c *Client) Status(ctx context.Context) Status {
	offline := Status{Models: []string{}}

	if c.statusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.statusTimeout)
		defer cancel()
	}

	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil || resp.StatusCode() != http.StatusOK {
		return offline
	}

	var list modelList
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return offline
	}

	st := Status{Online: true, Models: make([]string, 0, len(list.Data))}
	for _, m := range list.Data {
		st.Models = append(st.Models, m.ID)
	}
	if len(st.Models) > 0 {
		active := st.Models[0]
		st.ActiveModel = &active
	}
	return st
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Query asks the configured model about a project and returns its reply.
func (c *Client) Query(ctx context.Context, prompt, projectContext string) (string, error) {
	if !c.limiter.Allow() {
		return "", ErrRateLimited
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt + projectContext},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}

	resp, err := c.client.R().SetContext(ctx).SetBody(body).Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to query model %s: %w", c.model, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("failed to query model %s: status code %d %s", c.model, resp.StatusCode(), resp.Body())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decoding completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
