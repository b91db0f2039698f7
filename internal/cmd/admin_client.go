package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// adminClient calls the token-protected admin endpoints of a running server.
type adminClient struct {
	base  string
	token string
	http  *http.Client
}

func newAdminClient(base, token string) (*adminClient, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", base, err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("admin token required (--token or admin.token)")
	}
	return &adminClient{base: base, token: token, http: &http.Client{Timeout: 10 * time.Second}}, nil
}

// adminEnvelope is the success or error body written by the server.
type adminEnvelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorCode"`
}

func (c *adminClient) do(ctx context.Context, method, path string, query url.Values, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var env adminEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s %s: unexpected response (HTTP %d)", method, path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: %s (%s, HTTP %d)", method, path, env.Message, env.ErrorCode, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
