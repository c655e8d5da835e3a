// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/cv-optimizer/internal/llm"
)

// Call records a single request made to the fake.
type Call struct {
	Prompt string
	Tier   llm.ModelTier
	JSON   bool
}

// Client replays queued responses in order. When the queue is exhausted it
// returns an error so unexpected calls fail loudly.
type Client struct {
	mu        sync.Mutex
	responses []Response
	Calls     []Call
}

// Response is a queued reply.
type Response struct {
	Text string
	Err  error
}

// New returns a fake that answers with texts in order.
func New(texts ...string) *Client {
	c := &Client{}
	for _, t := range texts {
		c.responses = append(c.responses, Response{Text: t})
	}
	return c
}

// Push queues another response.
func (c *Client) Push(r Response) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, r)
	return c
}

func (c *Client) next(prompt string, tier llm.ModelTier, json bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, Call{Prompt: prompt, Tier: tier, JSON: json})
	if len(c.responses) == 0 {
		return "", fmt.Errorf("llmtest: no response queued for call %d", len(c.Calls))
	}
	r := c.responses[0]
	c.responses = c.responses[1:]
	return r.Text, r.Err
}

// GenerateContent implements llm.Client.
func (c *Client) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.next(prompt, tier, false)
}

// GenerateJSON implements llm.Client.
func (c *Client) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.next(prompt, tier, true)
}

// GetModel implements llm.Client.
func (c *Client) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close implements llm.Client.
func (c *Client) Close() error { return nil }

// CallCount returns the number of calls made so far.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// LastPrompt returns the prompt of the most recent call.
func (c *Client) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Calls) == 0 {
		return ""
	}
	return c.Calls[len(c.Calls)-1].Prompt
}
