package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/docsight/pkg/interpret"
)

// Client implements interpret.Provider against an HTTP backend exposing
// POST /interpret and POST /generate-diagrams. Deadlines come from the
// caller's context; the client itself imposes no timeout because
// interpretation generation is compute-heavy upstream.
type Client struct {
	config     *interpret.Config
	httpClient *http.Client
}

// New creates a client for the given backend.
func New(config *interpret.Config) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{},
	}
}

// Interpret sends the source content for interpretation.
func (c *Client) Interpret(ctx context.Context, req *interpret.Request) (*interpret.Response, error) {
	var resp interpret.Response
	if err := c.post(ctx, "interpret", "/interpret", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateDiagrams requests diagram markup for the listed types.
func (c *Client) GenerateDiagrams(ctx context.Context, req *interpret.DiagramRequest) (*interpret.DiagramResponse, error) {
	var resp interpret.DiagramResponse
	if err := c.post(ctx, "generate diagrams", "/generate-diagrams", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, op, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &interpret.TimeoutError{Op: op, Budget: time.Since(start).Round(time.Second)}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return &interpret.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &interpret.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		var envelope errorBody
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &interpret.ServerError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
