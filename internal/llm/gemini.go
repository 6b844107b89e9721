// Package llm wraps the Gemini API behind a small provider interface:
// context text or raw document bytes plus a question in, generated text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/genai"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindRateLimited  ErrorKind = "rate_limited"
	KindInvalidInput ErrorKind = "invalid_input"
	KindTimeout      ErrorKind = "timeout"
	KindUnknown      ErrorKind = "unknown"
)

// ProviderError is a classified failure from the Gemini API.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimited || e.StatusCode >= 500
}

// Input is one generation request. Exactly one of ContextText or Blob is
// set: chunked documents pass assembled text, natively-ingested documents
// pass the original bytes.
type Input struct {
	ContextText string
	Blob        []byte
	BlobMIME    string
	Question    string
}

// Provider is the generation contract the pipeline depends on.
type Provider interface {
	Generate(ctx context.Context, in Input) (string, error)
	Model() string
}

const systemInstruction = "You are a document analysis AI. Answer each question based only on the provided document. " +
	"If the answer is not in the document, say so plainly. Respond with the answer only, no preamble."

// Client calls the Gemini API, rotating round-robin across API keys.
type Client struct {
	clients []*genai.Client
	model   string
	next    atomic.Uint64

	// Stats tracks call latency for the stats endpoint.
	Stats *Stats
}

// NewClient builds one underlying genai client per API key.
func NewClient(ctx context.Context, apiKeys []string, model string) (*Client, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}
	clients := make([]*genai.Client, 0, len(apiKeys))
	for _, key := range apiKeys {
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		clients = append(clients, gc)
	}
	return &Client{
		clients: clients,
		model:   model,
		Stats:   NewStats(time.Hour),
	}, nil
}

func (c *Client) Model() string { return c.model }

// Generate answers one question against the supplied context.
func (c *Client) Generate(ctx context.Context, in Input) (string, error) {
	var parts []*genai.Part
	if len(in.Blob) > 0 {
		parts = append(parts, genai.NewPartFromBytes(in.Blob, in.BlobMIME))
		parts = append(parts, genai.NewPartFromText("QUESTION:\n"+in.Question))
	} else {
		parts = append(parts, genai.NewPartFromText(buildPrompt(in.ContextText, in.Question)))
	}

	gc := c.clients[c.next.Add(1)%uint64(len(c.clients))]

	start := time.Now()
	resp, err := gc.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		},
	)
	c.Stats.Record(time.Since(start).Milliseconds())

	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{Kind: KindUnknown, Err: fmt.Errorf("empty response from model")}
	}
	return text, nil
}

func buildPrompt(contextText, question string) string {
	var sb strings.Builder
	sb.WriteString("DOCUMENT CONTEXT:\n---\n")
	sb.WriteString(contextText)
	sb.WriteString("\n---\n\nQUESTION:\n")
	sb.WriteString(question)
	return sb.String()
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: KindTimeout, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &ProviderError{Kind: KindRateLimited, StatusCode: apiErr.Code, Err: err}
		case apiErr.Code == 400 || apiErr.Code == 422:
			return &ProviderError{Kind: KindInvalidInput, StatusCode: apiErr.Code, Err: err}
		case apiErr.Code == 504:
			return &ProviderError{Kind: KindTimeout, StatusCode: apiErr.Code, Err: err}
		default:
			return &ProviderError{Kind: KindUnknown, StatusCode: apiErr.Code, Err: err}
		}
	}
	return &ProviderError{Kind: KindUnknown, Err: err}
}
