// Package trpc implements the WarEra tRPC-over-GET remote procedure client.
//
// Every procedure is a GET request with the parameter object JSON-encoded
// into a single "input" query value. Replies come wrapped in a
// {result:{data:...}} envelope on success and {error:{message:...}} on
// failure, with any HTTP status.
package trpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the public WarEra API endpoint.
const DefaultEndpoint = "https://api2.warera.io/trpc"

// Client issues remote procedure calls against a WarEra-style endpoint.
// An empty Key is legal: the call proceeds unauthenticated and the server
// may answer 401.
type Client struct {
	Endpoint   string
	Key        string
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// New returns a Client for the given endpoint and API key.
func New(endpoint, key string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{Endpoint: endpoint, Key: key, HTTPClient: new(http.Client), Log: zerolog.Nop()}
}

// Error reports a failed remote procedure call, carrying the
// server-supplied message when one was readable.
type Error struct {
	Procedure string
	Status    int
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("trpc %s: %s", e.Procedure, e.Message)
}

// Call invokes a procedure and returns the unwrapped payload.
//
// Nil-valued params are stripped before encoding: the API rejects null
// fields or treats them inconsistently, so the clean step is part of the
// contract, not an optimization. A 2xx reply shaped {result:{data:T}}
// unwraps to T; a bare T passes through unchanged.
func (c *Client) Call(ctx context.Context, procedure string, params map[string]any) (json.RawMessage, error) {
	cleaned := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		cleaned[k] = v
	}
	input, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", procedure, err)
	}

	addr := fmt.Sprintf("%s/%s?input=%s", c.Endpoint, procedure, url.QueryEscape(string(input)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Key != "" {
		req.Header.Set("X-API-Key", c.Key)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", procedure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s reply: %w", procedure, err)
	}
	c.Log.Debug().Str("procedure", procedure).Int("status", resp.StatusCode).Msg("trpc call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(procedure, resp.StatusCode, body)
	}

	var envelope struct {
		Result *struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Result != nil && len(envelope.Result.Data) > 0 {
		return envelope.Result.Data, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// newError extracts the server-supplied message when the body parses as an
// error envelope. A body that is not JSON must not itself fail the error
// path, so the generic status message is the fallback.
func newError(procedure string, status int, body []byte) *Error {
	e := &Error{Procedure: procedure, Status: status, Message: fmt.Sprintf("HTTP %d", status)}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		e.Message = envelope.Error.Message
	}
	return e
}
