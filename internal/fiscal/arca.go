package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/australsoft/comercia/internal/shared"
)

// ArcaClient authorizes documents against the ARCA electronic billing
// gateway over HTTP.
type ArcaClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewArcaClient constructs a gateway client.
func NewArcaClient(baseURL, token string, timeout time.Duration) *ArcaClient {
	return &ArcaClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type arcaResponse struct {
	Result string `json:"result"`
	CAE    string `json:"cae"`
	CAEDue string `json:"cae_due"`
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// Authorize submits the request and returns the granted authorization.
// Any transport failure or rejection surfaces as an upstream error, which
// rolls back the issuing transaction.
func (c *ArcaClient) Authorize(ctx context.Context, req Request) (*Authorization, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("fiscal: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/vouchers", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fiscal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: authority unreachable: %v", shared.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read authority response: %v", shared.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: authority returned status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var out arcaResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode authority response: %v", shared.ErrUpstream, err)
	}
	if out.Result != "A" {
		return nil, fmt.Errorf("%w: authorization rejected: %s", shared.ErrUpstream, out.Reason)
	}

	expiry, err := time.Parse("2006-01-02", out.CAEDue)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid expiry %q", shared.ErrUpstream, out.CAEDue)
	}

	number := out.Number
	if number == "" {
		number = req.Number
	}
	return &Authorization{Code: out.CAE, Expiry: expiry, Number: number}, nil
}
